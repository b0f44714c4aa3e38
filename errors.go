package baiyuspace

import "errors"

var (
	// ErrMissingFields is returned when a register or login request omits
	// a required field.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidCredentials is returned on login when no record matches
	// the identifier or the password does not verify. The two cases are
	// deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("incorrect username/email or password")
	// ErrUserExists is returned on registration when the username or
	// email is already taken.
	ErrUserExists = errors.New("username or email already taken")
	// ErrUserNotFound is returned when the claimed user id no longer
	// exists in the credential store.
	ErrUserNotFound = errors.New("user not found")
	// ErrLoginRateLimited is returned when the login throttle rejects
	// the attempt before credentials are checked.
	ErrLoginRateLimited = errors.New("too many failed login attempts")
	// ErrTokenExpired is returned by VerifyToken when the token lifetime
	// is over.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned by VerifyToken when the token is
	// malformed or its signature does not match.
	ErrTokenInvalid = errors.New("invalid token")
)
