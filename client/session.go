// Package client is the client half of the auth subsystem: durable
// session persistence, an HTTP pipeline stage that attaches the stored
// token and self-heals on authorization failures, and the navigation
// guard that gates route transitions.
package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
)

// ErrNotAuthenticated is returned by operations that need a live session
// when none is held.
var ErrNotAuthenticated = errors.New("not authenticated")

// Storage slot names, one for the opaque token and one for the serialized
// profile. Both are always written and cleared together.
const (
	tokenSlot = "auth_token"
	userSlot  = "user_data"
)

// Session is the client-held pairing of a token and the profile it was
// issued for, persisted across restarts in a state directory. Token and
// user are both present or both absent, never one without the other.
type Session struct {
	mu    sync.Mutex
	dir   string
	token string
	user  *baiyuspace.Profile
}

// DefaultSessionDir returns the per-user state directory.
func DefaultSessionDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "baiyuspace"), nil
}

// OpenSession loads any persisted session from dir, creating the
// directory when needed. A missing or malformed slot leaves the session
// empty; it never fails the open.
func OpenSession(dir string) (*Session, error) {
	if dir == "" {
		return nil, errors.New("client: session directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	s := &Session{dir: dir}
	s.load()
	return s, nil
}

// load restores token and user from the two slots. Any failure on either
// slot discards both so the invariant holds.
func (s *Session) load() {
	tokenRaw, err := os.ReadFile(filepath.Join(s.dir, tokenSlot))
	if err != nil || len(tokenRaw) == 0 {
		return
	}

	userRaw, err := os.ReadFile(filepath.Join(s.dir, userSlot))
	if err != nil {
		return
	}

	var user baiyuspace.Profile
	if err := json.Unmarshal(userRaw, &user); err != nil {
		return
	}

	s.token = string(tokenRaw)
	s.user = &user
}

// Set writes token and user to memory and durable storage. On a partial
// write failure both slots are discarded, so the session is never left
// with one slot and not the other.
func (s *Session) Set(token string, user baiyuspace.Profile) error {
	if token == "" {
		return errors.New("client: token must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userRaw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(s.dir, tokenSlot), []byte(token), 0o600); err != nil {
		s.discardLocked()
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, userSlot), userRaw, 0o600); err != nil {
		s.discardLocked()
		return err
	}

	s.token = token
	s.user = &user
	return nil
}

// UpdateUser replaces only the stored profile, keeping the current token.
func (s *Session) UpdateUser(user baiyuspace.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return ErrNotAuthenticated
	}

	userRaw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, userSlot), userRaw, 0o600); err != nil {
		return err
	}

	s.user = &user
	return nil
}

// Clear removes both slots from memory and durable storage. Clearing an
// already empty session is a no-op.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.discardLocked()
}

func (s *Session) discardLocked() error {
	s.token = ""
	s.user = nil

	var firstErr error
	for _, slot := range []string{tokenSlot, userSlot} {
		if err := os.Remove(filepath.Join(s.dir, slot)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Token returns the held token, if any.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token, s.token != ""
}

// User returns a copy of the held profile, if any.
func (s *Session) User() (baiyuspace.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return baiyuspace.Profile{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a token and profile are both held.
// This is a purely local check and can be stale relative to server-side
// expiry.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token != "" && s.user != nil
}

// IsAdmin reports whether the session is authenticated as an admin.
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token != "" && s.user != nil && s.user.IsAdmin()
}
