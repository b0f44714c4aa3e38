package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-success response from the server, carrying the
// status code and the server's message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to the auth endpoints and keeps the session in sync:
// login and register persist the returned token and profile, and every
// request flows through the [Transport] pipeline stage.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the server at baseURL, bound to the given
// session.
func New(baseURL string, session *Session, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http: &http.Client{
			Transport: &Transport{Session: session},
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client is bound to.
func (c *Client) Session() *Session {
	return c.session
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Token   string              `json:"token"`
	User    *baiyuspace.Profile `json:"user"`
}

// Register creates an account and persists the returned session.
func (c *Client) Register(ctx context.Context, username, email, password string) (baiyuspace.Profile, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/users/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return baiyuspace.Profile{}, err
	}

	return c.adopt(env)
}

// Login authenticates with a username or email and persists the returned
// session.
func (c *Client) Login(ctx context.Context, identifier, password string) (baiyuspace.Profile, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"username": identifier,
		"password": password,
	})
	if err != nil {
		return baiyuspace.Profile{}, err
	}

	return c.adopt(env)
}

// Logout discards the session. Purely client-side: the server keeps no
// revocation state.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me fetches the current user from the identity-lookup endpoint.
func (c *Client) Me(ctx context.Context) (baiyuspace.Profile, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/users/me", nil)
	if err != nil {
		return baiyuspace.Profile{}, err
	}
	if env.User == nil {
		return baiyuspace.Profile{}, errors.New("client: malformed response: missing user")
	}

	return *env.User, nil
}

// RefreshUser re-fetches the profile and replaces the stored copy.
// Authorization failures clear the session (in the pipeline stage) and
// propagate.
func (c *Client) RefreshUser(ctx context.Context) (baiyuspace.Profile, error) {
	if !c.session.IsAuthenticated() {
		return baiyuspace.Profile{}, ErrNotAuthenticated
	}

	user, err := c.Me(ctx)
	if err != nil {
		return baiyuspace.Profile{}, err
	}

	if err := c.session.UpdateUser(user); err != nil {
		return baiyuspace.Profile{}, err
	}

	return user, nil
}

func (c *Client) adopt(env *envelope) (baiyuspace.Profile, error) {
	if env.Token == "" || env.User == nil {
		return baiyuspace.Profile{}, errors.New("client: malformed response: missing token or user")
	}

	if err := c.session.Set(env.Token, *env.User); err != nil {
		return baiyuspace.Profile{}, err
	}

	return *env.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*envelope, error) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	// Error bodies share the envelope shape; a decode failure on a
	// non-success status must not mask the status itself.
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return &env, nil
}
