package client

import "net/http"

// Transport is the request pipeline stage shared by every call the
// client makes. Outbound it attaches the stored token as a bearer
// Authorization header; inbound it clears the session when the server
// answers 401, so token expiry heals itself without every call site
// special-casing it. It is registered on the client's own http.Client
// instance, never on a library-wide default.
type Transport struct {
	Base    http.RoundTripper
	Session *Session
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if token, ok := t.Session.Token(); ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Best effort: the failure itself is surfaced to the caller.
		t.Session.Clear()
	}

	return resp, nil
}
