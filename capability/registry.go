package capability

import (
	"errors"
	"sync"
)

const maxBits = 64

// Capability names a permission level.
type Capability string

const (
	// User is held by every authenticated identity.
	User Capability = "user"
	// ContentCreator may manage jobs and formations.
	ContentCreator Capability = "content_creator"
	// Admin may reach every route, including the admin dashboard.
	Admin Capability = "admin"
)

var (
	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("capability registry frozen")
	// ErrEmptyName is returned for empty capability or role names.
	ErrEmptyName = errors.New("capability name cannot be empty")
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("capability already registered")
	// ErrLimitExceeded is returned when all 64 bits are taken.
	ErrLimitExceeded = errors.New("capability limit exceeded")
)

// Registry maps capability names to bit positions within a [Mask64].
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[Capability]int
	bitToName map[int]Capability
	frozen    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nameToBit: make(map[Capability]int),
		bitToName: make(map[int]Capability),
	}
}

// Register assigns the next free bit to name and returns it.
func (r *Registry) Register(name Capability) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, ErrRegistryFrozen
	}
	if name == "" {
		return -1, ErrEmptyName
	}
	if _, exists := r.nameToBit[name]; exists {
		return -1, ErrDuplicate
	}

	next := len(r.nameToBit)
	if next >= maxBits {
		return -1, ErrLimitExceeded
	}

	r.nameToBit[name] = next
	r.bitToName[next] = name
	return next, nil
}

// Bit returns the bit for name, or false if it was never registered.
func (r *Registry) Bit(name Capability) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[name]
	return bit, ok
}

// Name returns the capability registered at bit.
func (r *Registry) Name(bit int) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// Names lists the capabilities set in mask, in bit order.
func (r *Registry) Names(mask Mask64) []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Capability, 0, len(r.bitToName))
	for bit := 0; bit < len(r.bitToName); bit++ {
		if mask.Has(bit) {
			out = append(out, r.bitToName[bit])
		}
	}
	return out
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered capabilities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}
