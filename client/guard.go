package client

import (
	"context"
	"net/url"
	"time"
)

const defaultGuardTimeout = 5 * time.Second

// Decision is the outcome of a guard check: either proceed to the target
// route or navigate to RedirectTo instead.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Redirected reports whether the decision diverts the navigation.
func (d Decision) Redirected() bool {
	return !d.Allow
}

// Guard gates route transitions. It is server-authoritative: logged-in
// state comes from a live identity-lookup round trip, so server-side
// token expiry is observed immediately. The local session state alone is
// never trusted for the primary decision, because it cannot detect
// expiry.
type Guard struct {
	client    *Client
	routes    *RouteTable
	timeout   time.Duration
	loginPath string
	homePath  string
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithGuardTimeout bounds the identity-lookup round trip. On expiry the
// user is treated as not logged in.
func WithGuardTimeout(d time.Duration) GuardOption {
	return func(g *Guard) { g.timeout = d }
}

// WithLoginPath overrides the login route the guard redirects to.
func WithLoginPath(path string) GuardOption {
	return func(g *Guard) { g.loginPath = path }
}

// WithHomePath overrides the route logged-in users are sent to from
// guest-only routes.
func WithHomePath(path string) GuardOption {
	return func(g *Guard) { g.homePath = path }
}

// NewGuard creates a Guard over the given client and route table.
func NewGuard(c *Client, routes *RouteTable, opts ...GuardOption) *Guard {
	g := &Guard{
		client:    c,
		routes:    routes,
		timeout:   defaultGuardTimeout,
		loginPath: "/login",
		homePath:  "/",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve decides a navigation from source to target. Routes that
// require authentication redirect anonymous users to the login route,
// carrying the intended path in the redirect query parameter so login
// can forward the user back. Guest-only routes send logged-in users
// home. Everything else proceeds unconditionally.
func (g *Guard) Resolve(ctx context.Context, target, source string) Decision {
	route, _ := g.routes.Find(target)

	loggedIn := g.loggedIn(ctx)

	switch {
	case route.RequiresAuth && !loggedIn:
		return Decision{RedirectTo: g.loginPath + "?redirect=" + url.QueryEscape(target)}
	case route.RequiresGuest && loggedIn:
		return Decision{RedirectTo: g.homePath}
	default:
		return Decision{Allow: true}
	}
}

// loggedIn asks the server. Any failure, including timeout, reads as
// not logged in; network errors never reach the caller.
func (g *Guard) loggedIn(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.client.Me(ctx)
	return err == nil
}
