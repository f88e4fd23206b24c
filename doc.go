// Package goCareer is the client-side session and authorization runtime of the
// career-guidance platform. It keeps the bearer token and the signed-in identity,
// decides whether a navigation may render, and talks to the REST backend with a
// transport that forces a logout on every 401.
//
// A [Client] is assembled once through [Builder.Build] and is safe for concurrent
// use afterwards. All session state lives in the configured session backend;
// nothing is cached in the Client, so two Clients sharing a backend observe each
// other's logins and logouts on their next read.
//
// # Architecture boundaries
//
// goCareer is the public surface. It exposes [Client], [Builder], [Config] and the
// audit and metrics value types. The building blocks live in sub-packages:
// session (persistence), capability (role ordering), guard (navigation
// decisions) and gateway (REST access). Flow orchestration lives under internal/.
//
// # What this package must NOT do
//
//   - Hold package-level mutable state. Every collaborator is injected at Build.
//   - Validate token structure or expiry. The backend is the only judge of a token.
//   - Retry a request rejected with 401 or attempt a silent re-login.
//   - Import any sub-package that re-imports goCareer (no import cycles).
package goCareer
