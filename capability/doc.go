// Package capability provides the fixed capability levels of the platform, a bit
// registry for them, and role composition helpers used by route access checks.
//
// # Capability order
//
// The platform knows three capabilities ordered by inclusion:
//
//	admin ⊇ content_creator ⊇ user
//
// A role is mapped to a [Mask64] holding every capability it includes, so checking
// whether a role satisfies a route requirement is a single bit test.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. Roles are derived from
// the stored identity on every decision; masks are never persisted.
//
// # What this package must NOT do
//
//   - Access storage, the network, or the session store.
//   - Import goCareer, session, guard, or gateway.
//   - Mutate registries or role managers after Freeze.
package capability
