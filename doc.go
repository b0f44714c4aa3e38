// Package baiyuspace implements the authentication core of the BaiyuSpace
// forum: credential verification, token issuance and the identity lookup
// that both the HTTP middleware and the client-side navigation guard rely
// on. The HTTP surface lives in the httpapi package, the server-side gate
// in middleware, and the client half (session persistence, request
// interception, route guarding) in client.
package baiyuspace
