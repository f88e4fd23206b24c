// Package guard decides whether a navigation to a view is permitted.
//
// # States
//
//	Pending ──(no token | verification failed | timeout)──▶ Unauthorized
//	   │
//	   └──(identity resolved)──▶ Authorized(role)
//
// [Guard.Resolve] runs the optional start-up verification against the backend's
// current-user endpoint. While it is in flight the guard reports [StatePending] and
// protected routes evaluate to [Wait]. Verification is bounded by a resolve timeout;
// expiry is treated as a failed verification.
//
// # Decisions
//
// [Guard.Evaluate] re-reads the session store on every call, so a logout performed
// through another store sharing the same backend is observed on the next
// navigation. Unauthorized sessions are sent to the login route; authorized sessions
// lacking the route's capability are sent to the default route and keep their session.
//
// # Admin evidence
//
// The identity role and the admin record from the admin login pathway are both
// admin evidence. With [Policy.TrustAdminSlot] set they are ORed; they are never
// intersected.
//
// # What this package must NOT do
//
//   - Cache decisions or roles across calls.
//   - Perform navigation (callers act on the returned [Decision]).
//   - Inspect token contents.
package guard
