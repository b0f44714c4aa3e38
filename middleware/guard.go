// Package middleware provides the server-side auth gate: HTTP middleware
// that extracts a bearer token, verifies it and attaches the decoded
// identity to the request context.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity attached by [Require] or
// [Optional]. Under Optional the boolean is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (*baiyuspace.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*baiyuspace.Identity)
	return id, ok
}

// Require is the strict gate: requests without a valid token are
// rejected. An absent or malformed Authorization header yields 401,
// an expired token 401, an invalid one 403. On success exactly one
// identity is attached to the request context.
func Require(engine *baiyuspace.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "no token provided")
				return
			}

			identity, err := engine.VerifyToken(token)
			if err != nil {
				if errors.Is(err, baiyuspace.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, "token expired")
					return
				}
				writeError(w, http.StatusForbidden, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Optional is the permissive gate: it attaches an identity when a valid
// token is present and otherwise lets the request through anonymously.
// It never rejects; downstream handlers decide what a missing identity
// means.
func Optional(engine *baiyuspace.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := engine.VerifyToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
