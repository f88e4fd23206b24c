// Package session provides the client-side session store: the single source of truth
// for the current token, user identity and optional admin identity.
//
// # Persistence
//
// A [Store] reads and writes named slots through a [Backend]. Three backends ship with
// the package: [MemoryBackend] for a single runtime context, [FileBackend] for a
// session file shared by every process on a machine, and [RedisBackend] for a session
// shared across hosts. Every mutation is applied as one whole-value operation, so a
// reader observes either the previous session or the new one, never a mix.
//
// # Consistency across contexts
//
// Stores sharing a backend (two tabs, two CLI invocations) are not notified of each
// other's writes. A logout in one context is observed by the others on their next
// read. Callers are expected to read through the store on every decision.
//
// # Architecture boundaries
//
// This package owns the [Session] model and its persistence. It does NOT interpret
// tokens, evaluate capabilities, or perform network calls.
//
// # What this package must NOT do
//
//   - Import goCareer, guard, or gateway (no upward imports).
//   - Validate token structure or expiry.
//   - Return errors from reads; absent and unreadable both read as absent.
package session
