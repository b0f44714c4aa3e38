package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrExpired is returned by Verify when the token signature is valid but
// the expiry timestamp has passed.
var ErrExpired = errors.New("token expired")

// ErrInvalid is returned by Verify when the token is malformed, the
// signature does not match, or any claim other than expiry fails validation.
var ErrInvalid = errors.New("invalid token")

const defaultAccessTTL = 24 * time.Hour

// Config holds the signing parameters for a Manager. The secret is loaded
// once at startup; rotating it invalidates every previously issued token,
// which is acceptable because no revocation list is maintained.
type Config struct {
	Secret    []byte
	AccessTTL time.Duration
	Issuer    string
	Leeway    time.Duration
}

// Claims is the identity payload embedded in every issued token:
// the user id, username and role, never the password hash.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256-signed access tokens. A Manager is
// immutable after construction and safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager. AccessTTL defaults to
// 24 hours when zero.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: secret must not be empty")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.AccessTTL < 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// Issue signs a token for the given identity using the configured TTL.
func (m *Manager) Issue(userID int64, username, role string) (string, error) {
	return m.IssueWithTTL(userID, username, role, m.config.AccessTTL)
}

// IssueWithTTL signs a token with an explicit lifetime. A zero or negative
// ttl produces a token that is already expired.
func (m *Manager) IssueWithTTL(userID int64, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.config.Secret)
}

// Verify parses and validates a token, returning the embedded claims.
// It fails with exactly one of [ErrExpired] (signature valid, lifetime
// over) or [ErrInvalid] (anything else); no other failure states exist.
// Verify is a pure function of (token, secret, current time).
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}

	return claims, nil
}
