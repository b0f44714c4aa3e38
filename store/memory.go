package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Users implementation. The mutex serializes
// Create so the uniqueness check and the insert are atomic, matching the
// constraint a relational backing store provides.
type Memory struct {
	mu     sync.RWMutex
	users  []*User
	nextID int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// FindByIdentifier matches identifier against username and email.
func (m *Memory) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == identifier || u.Email == identifier {
			return copyUser(u), nil
		}
	}

	return nil, ErrNotFound
}

// FindByID returns the record with the given id.
func (m *Memory) FindByID(ctx context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}

	return nil, ErrNotFound
}

// Create inserts u with a fresh id, rejecting duplicate usernames and
// emails.
func (m *Memory) Create(ctx context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, ErrDuplicate
		}
	}

	stored := copyUser(u)
	stored.ID = m.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.nextID++
	m.users = append(m.users, stored)

	return copyUser(stored), nil
}

// Len reports the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users)
}

func copyUser(u *User) *User {
	c := *u
	return &c
}
