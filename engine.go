package baiyuspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baiyuheniao/BaiyuSpace/internal/rate"
	"github.com/baiyuheniao/BaiyuSpace/jwt"
	"github.com/baiyuheniao/BaiyuSpace/password"
	"github.com/baiyuheniao/BaiyuSpace/store"
)

// Engine orchestrates the authentication operations: registration, login,
// identity lookup and token verification. It is stateless apart from its
// injected collaborators and safe under unbounded parallel request
// handling.
type Engine struct {
	users   store.Users
	hasher  *password.Hasher
	tokens  *jwt.Manager
	limiter *rate.Limiter
}

// RegisterRequest carries the fields of a registration attempt.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginRequest carries the fields of a login attempt. Identifier may be a
// username or an email address.
type LoginRequest struct {
	Identifier string
	Password   string
}

// AuthResult pairs a freshly issued token with the profile it was issued
// for.
type AuthResult struct {
	Token string
	User  Profile
}

// NewEngine wires the credential store, password hasher and token manager
// into an Engine.
func NewEngine(cfg Config, users store.Users, opts ...Option) (*Engine, error) {
	if users == nil {
		return nil, errors.New("baiyuspace: credential store is required")
	}

	pwCfg := cfg.Password
	if pwCfg == (password.Config{}) {
		pwCfg = password.DefaultConfig()
	}
	hasher, err := password.New(pwCfg)
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(cfg.Token)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Register creates a new user record with the default role and issues a
// token for it. Duplicate usernames or emails fail with [ErrUserExists].
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := e.users.Create(ctx, &store.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         string(RoleUser),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return e.issueFor(created)
}

// Login verifies the identifier/password pair against the credential
// store and issues a token. Unknown identifiers and wrong passwords both
// fail with [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	ip := ClientIPFromContext(ctx)
	if e.limiter != nil {
		if err := e.limiter.Check(ctx, identifier, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return nil, ErrLoginRateLimited
			}
			return nil, fmt.Errorf("login throttle: %w", err)
		}
	}

	user, err := e.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, e.failLogin(ctx, identifier, ip)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := e.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		// A malformed stored hash is a server fault, never a mismatch.
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, e.failLogin(ctx, identifier, ip)
	}

	if e.limiter != nil {
		if err := e.limiter.Reset(ctx, identifier, ip); err != nil {
			return nil, fmt.Errorf("login throttle: %w", err)
		}
	}

	return e.issueFor(user)
}

// CurrentUser returns the profile of the user the given id belongs to.
func (e *Engine) CurrentUser(ctx context.Context, id int64) (Profile, error) {
	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, fmt.Errorf("find user: %w", err)
	}

	return ProfileOf(user), nil
}

// VerifyToken checks the signature and lifetime of a token and returns
// the embedded identity. It fails with [ErrTokenExpired] or
// [ErrTokenInvalid] and nothing else.
func (e *Engine) VerifyToken(token string) (*Identity, error) {
	claims, err := e.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	return &Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     Role(claims.Role),
	}, nil
}

// IssueToken signs a token for the given user record. Exposed for setup
// code that creates users directly in the store.
func (e *Engine) IssueToken(u *store.User) (string, error) {
	return e.tokens.Issue(u.ID, u.Username, u.Role)
}

// Hasher exposes the configured password hasher for setup code that
// inserts records directly into the store.
func (e *Engine) Hasher() *password.Hasher {
	return e.hasher
}

func (e *Engine) failLogin(ctx context.Context, identifier, ip string) error {
	if e.limiter != nil {
		if err := e.limiter.RecordFailure(ctx, identifier, ip); err != nil {
			return fmt.Errorf("login throttle: %w", err)
		}
	}

	return ErrInvalidCredentials
}

func (e *Engine) issueFor(u *store.User) (*AuthResult, error) {
	token, err := e.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{Token: token, User: ProfileOf(u)}, nil
}
