// Package flows contains the session lifecycle orchestrators behind every Client
// operation: login, admin login, registration, logout and profile update.
//
// Each Run function accepts a typed dependency struct and performs no I/O of its
// own. The root package builds the dependencies once from the gateway client and
// the session store and delegates to these functions.
//
// # Architecture boundaries
//
// Flows sequence calls to the backend and the session store and report outcomes
// to metrics and audit through callbacks. They do NOT own any of these resources.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goCareer (to avoid import cycles).
//   - Decide route access.
package flows
