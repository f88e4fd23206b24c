package guard

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/MrEthical07/goCareer/capability"
)

const (
	// DefaultLoginRoute receives unauthorized navigations.
	DefaultLoginRoute = "/login"
	// DefaultHomeRoute receives navigations whose capability is not satisfied.
	DefaultHomeRoute = "/dashboard"
)

// ErrInvalidPolicy is returned by [Policy.Validate].
var ErrInvalidPolicy = errors.New("invalid guard policy")

// Policy maps routes to required capabilities.
type Policy struct {
	// LoginRoute is the redirect target for unauthorized sessions.
	LoginRoute string
	// DefaultRoute is the redirect target for insufficient capability.
	DefaultRoute string
	// Public routes are allowed without a session.
	Public []string
	// Routes maps a route prefix to its required capability. The longest matching
	// prefix wins; matching is by whole path segments.
	Routes map[string]capability.Capability
	// Fallback is required by routes that match neither Public nor Routes.
	Fallback capability.Capability
	// TrustAdminSlot treats a stored admin record as admin capability.
	TrustAdminSlot bool
}

// DefaultPolicy returns the platform route table.
func DefaultPolicy() Policy {
	return Policy{
		LoginRoute:   DefaultLoginRoute,
		DefaultRoute: DefaultHomeRoute,
		Public:       []string{"/login", "/register"},
		Routes: map[string]capability.Capability{
			"/dashboard":         capability.User,
			"/jobs":              capability.User,
			"/formations":        capability.User,
			"/profile":           capability.User,
			"/manage-formations": capability.ContentCreator,
			"/manage-jobs":       capability.ContentCreator,
			"/admin":             capability.Admin,
		},
		Fallback:       capability.User,
		TrustAdminSlot: true,
	}
}

// Validate checks the policy against roles.
func (p Policy) Validate(roles *capability.RoleManager) error {
	if !isRoute(p.LoginRoute) {
		return fmt.Errorf("%w: login route %q", ErrInvalidPolicy, p.LoginRoute)
	}
	if !isRoute(p.DefaultRoute) {
		return fmt.Errorf("%w: default route %q", ErrInvalidPolicy, p.DefaultRoute)
	}
	if !p.IsPublic(p.LoginRoute) {
		return fmt.Errorf("%w: login route must be public", ErrInvalidPolicy)
	}
	if p.IsPublic(p.DefaultRoute) {
		return fmt.Errorf("%w: default route must be protected", ErrInvalidPolicy)
	}
	if roles == nil {
		return nil
	}

	caps := []capability.Capability{p.Fallback}
	for route, c := range p.Routes {
		if !isRoute(route) {
			return fmt.Errorf("%w: route %q", ErrInvalidPolicy, route)
		}
		caps = append(caps, c)
	}
	for _, c := range caps {
		if _, ok := roles.Requirement(c); !ok {
			return fmt.Errorf("%w: %w: %s", ErrInvalidPolicy, capability.ErrUnknownCapability, c)
		}
	}
	if !roles.Satisfies(string(capability.User), p.Requirement(p.DefaultRoute)) {
		return fmt.Errorf("%w: default route must be reachable by every role", ErrInvalidPolicy)
	}
	return nil
}

// IsPublic reports whether route is reachable without a session.
func (p Policy) IsPublic(route string) bool {
	route = CleanRoute(route)
	for _, pub := range p.Public {
		if segmentPrefix(CleanRoute(pub), route) {
			return true
		}
	}
	return false
}

// Requirement returns the capability required by route.
func (p Policy) Requirement(route string) capability.Capability {
	route = CleanRoute(route)
	best := -1
	need := p.Fallback
	for prefix, c := range p.Routes {
		prefix = CleanRoute(prefix)
		if segmentPrefix(prefix, route) && len(prefix) > best {
			best = len(prefix)
			need = c
		}
	}
	return need
}

// CleanRoute normalizes a navigation target to a rooted, cleaned path without a
// query or fragment.
func CleanRoute(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return path.Clean(route)
}

func segmentPrefix(prefix, route string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(route, prefix) {
		return false
	}
	return len(route) == len(prefix) || route[len(prefix)] == '/'
}

func isRoute(route string) bool {
	return strings.HasPrefix(route, "/")
}
