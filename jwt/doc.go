// Package jwt implements the token service: issuance and verification of
// signed, time-limited access tokens carrying the forum identity claims.
package jwt
