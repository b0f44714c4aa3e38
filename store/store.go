// Package store defines the credential store: persistence of forum user
// records with unique usernames and emails. Two implementations are
// provided, an in-memory store for development and tests and a PostgreSQL
// store for production.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by Create when the username or email is
// already taken.
var ErrDuplicate = errors.New("username or email already exists")

// ErrNotFound is returned by lookups when no record matches.
var ErrNotFound = errors.New("user not found")

// User is a credential store record. PasswordHash never leaves the server
// process; response payloads are built from the other fields.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Users is the credential store contract. Create must enforce the
// uniqueness invariant on username and email atomically with the insert;
// a lookup-then-insert pair is not enough under concurrent registration.
type Users interface {
	// FindByIdentifier matches identifier against both username and email.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// Create inserts the record, assigns its ID and returns the stored copy.
	Create(ctx context.Context, u *User) (*User, error)
}
