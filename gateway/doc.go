// Package gateway is the HTTP boundary of the client: it attaches the session's
// bearer token to outgoing requests and reacts to authentication failures.
//
// # Interceptor contract
//
// [Transport] wraps an [http.RoundTripper]. Outgoing requests carry
// "Authorization: Bearer <token>" when the session holds a token and no such header
// otherwise. A 401 response clears the session, forces navigation to the login
// route, and is returned to the caller as an [*UnauthorizedError] instead of a
// response. No request is retried.
//
// # REST client
//
// [Client] exposes the platform endpoints (auth, users, jobs, formations,
// categories, statistics, recommendations) as typed calls. Non-2xx responses become
// [*APIError]; [UserMessage] turns any returned error into the message a view should
// render.
//
// # Architecture boundaries
//
// The gateway reads the token through [SessionStore] on every request and holds no
// private copy. Navigation is delegated to a [Navigator].
//
// # What this package must NOT do
//
//   - Decide route access (guard owns that).
//   - Persist identities (login results are returned to the caller).
//   - Retry, back off, or re-login after a 401.
package gateway
