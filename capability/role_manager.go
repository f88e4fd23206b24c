package capability

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrRoleManagerFrozen is returned when registering roles after Freeze.
	ErrRoleManagerFrozen = errors.New("role manager frozen")
	// ErrRoleExists is returned when a role is registered twice.
	ErrRoleExists = errors.New("role already registered")
	// ErrUnknownCapability is returned when a role references an unregistered capability.
	ErrUnknownCapability = errors.New("capability not registered")
)

// RoleManager maps role names to capability masks.
//
// A RoleManager is configured once, frozen, and then read concurrently.
type RoleManager struct {
	registry *Registry

	mu     sync.RWMutex
	roles  map[string]Mask64
	all    Mask64
	frozen bool
}

// NewRoleManager returns a RoleManager resolving capability names through registry.
func NewRoleManager(registry *Registry) *RoleManager {
	return &RoleManager{
		registry: registry,
		roles:    make(map[string]Mask64),
	}
}

// Default builds the platform role set: user, content_creator and admin, where each
// role includes every capability of the roles below it.
func Default() (*RoleManager, error) {
	registry := NewRegistry()
	for _, c := range []Capability{User, ContentCreator, Admin} {
		if _, err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	registry.Freeze()

	rm := NewRoleManager(registry)
	roles := []struct {
		name string
		caps []Capability
	}{
		{string(User), []Capability{User}},
		{string(ContentCreator), []Capability{User, ContentCreator}},
		{string(Admin), []Capability{User, ContentCreator, Admin}},
	}
	for _, r := range roles {
		if err := rm.RegisterRole(r.name, r.caps); err != nil {
			return nil, err
		}
	}
	rm.Freeze()
	return rm, nil
}

// RegisterRole records role with the given capability set.
func (rm *RoleManager) RegisterRole(role string, caps []Capability) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.frozen {
		return ErrRoleManagerFrozen
	}
	if role == "" {
		return ErrEmptyName
	}
	if _, exists := rm.roles[role]; exists {
		return ErrRoleExists
	}

	var mask Mask64
	for _, c := range caps {
		bit, ok := rm.registry.Bit(c)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCapability, c)
		}
		mask.Set(bit)
	}

	rm.roles[role] = mask
	rm.all |= mask
	return nil
}

// Mask returns the capability mask of role.
func (rm *RoleManager) Mask(role string) (Mask64, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	mask, ok := rm.roles[role]
	return mask, ok
}

// AllMask returns the union of every registered role, the highest capability set.
func (rm *RoleManager) AllMask() Mask64 {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.all
}

// Requirement returns the single-bit mask for c.
func (rm *RoleManager) Requirement(c Capability) (Mask64, bool) {
	bit, ok := rm.registry.Bit(c)
	if !ok {
		return 0, false
	}
	var m Mask64
	m.Set(bit)
	return m, true
}

// Satisfies reports whether role includes capability c. Unregistered roles and
// capabilities never satisfy anything.
func (rm *RoleManager) Satisfies(role string, c Capability) bool {
	have, ok := rm.Mask(role)
	if !ok {
		return false
	}
	return rm.MaskSatisfies(have, c)
}

// MaskSatisfies reports whether have includes capability c.
func (rm *RoleManager) MaskSatisfies(have Mask64, c Capability) bool {
	need, ok := rm.Requirement(c)
	if !ok {
		return false
	}
	return have.Contains(need)
}

// Registry exposes the underlying capability registry.
func (rm *RoleManager) Registry() *Registry {
	return rm.registry
}

// Freeze prevents further role registrations.
func (rm *RoleManager) Freeze() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.frozen = true
}

// Count returns the number of registered roles.
func (rm *RoleManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.roles)
}

// NormalizeRole maps a stored role string to a known platform role. Empty and
// unknown values fall back to user, the backend's default role.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(Admin):
		return string(Admin)
	case string(ContentCreator):
		return string(ContentCreator)
	default:
		return string(User)
	}
}
