// Package backendtest is an in-memory stand-in for the platform REST backend.
//
// It issues HS256 access tokens with the claims the real backend uses (sub, user_id,
// type), hashes passwords with bcrypt, and serves the endpoints the gateway calls.
// Hooks let tests revoke tokens and stall or fail the current-user endpoint.
//
// # What this package must NOT do
//
//   - Be imported by non-test production paths other than examples and tooling.
//   - Persist anything outside process memory.
package backendtest
