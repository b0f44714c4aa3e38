package baiyuspace

import (
	"github.com/baiyuheniao/BaiyuSpace/store"
)

// Role is a user's authorization level.
type Role string

const (
	// RoleUser is the default role assigned on registration.
	RoleUser Role = "user"
	// RoleAdmin marks forum administrators.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the minimal claim set embedded in a token. It never includes
// the password hash and is immutable once issued.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Profile is the user payload returned by the API: the identity claims
// plus the remaining profile fields, minus the password hash.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ProfileOf strips a store record down to its response payload.
func ProfileOf(u *store.User) Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     Role(u.Role),
	}
}

// IdentityOf extracts the claim set of a store record.
func IdentityOf(u *store.User) Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Role:     Role(u.Role),
	}
}
