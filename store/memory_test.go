package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newTestUser(username, email string) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Role:         "user",
	}
}

func TestMemoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.Create(ctx, newTestUser("alice", "a@x.com"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected a non-zero id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	byName, err := m.FindByIdentifier(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByIdentifier(username) error: %v", err)
	}
	byEmail, err := m.FindByIdentifier(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByIdentifier(email) error: %v", err)
	}
	if byName.ID != created.ID || byEmail.ID != created.ID {
		t.Fatal("lookups returned different records")
	}

	byID, err := m.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("Username = %q, want alice", byID.Username)
	}
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.FindByIdentifier(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByIdentifier error = %v, want ErrNotFound", err)
	}
	if _, err := m.FindByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByID error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDuplicates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Create(ctx, newTestUser("alice", "a@x.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := m.Create(ctx, newTestUser("alice", "other@x.com")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate username error = %v, want ErrDuplicate", err)
	}
	if _, err := m.Create(ctx, newTestUser("bob", "a@x.com")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email error = %v, want ErrDuplicate", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}

func TestMemoryConcurrentRegistrationRace(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(ctx, newTestUser("alice", "a@x.com"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, rejected int
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicate):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if created != 1 || rejected != attempts-1 {
		t.Fatalf("created = %d, rejected = %d; want exactly one winner", created, rejected)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.Create(ctx, newTestUser("alice", "a@x.com"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	created.Username = "mallory"

	stored, err := m.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if stored.Username != "alice" {
		t.Fatal("mutating a returned record leaked into the store")
	}
}
