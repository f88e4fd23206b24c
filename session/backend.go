package session

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBackendUnavailable wraps failures of the persistence medium.
	ErrBackendUnavailable = errors.New("session backend unavailable")
	// ErrTokenChanged is returned by Apply when the stored token no longer matches
	// the mutation's IfToken.
	ErrTokenChanged = errors.New("session token changed")
)

// Mutation is a set of slot writes and deletions applied as one unit.
//
// A non-empty IfToken makes the mutation conditional: it is applied only while the
// stored token equals IfToken, checked atomically with the write.
type Mutation struct {
	Set     map[Slot][]byte
	Delete  []Slot
	IfToken string
}

func (m Mutation) allows(token []byte, present bool) bool {
	if m.IfToken == "" {
		return true
	}
	return present && string(token) == m.IfToken
}

// Backend persists session slots.
//
// Load returns only the slots that exist. Apply must make the whole mutation visible
// at once or not at all.
type Backend interface {
	Load(ctx context.Context, slots ...Slot) (map[Slot][]byte, error)
	Apply(ctx context.Context, m Mutation) error
}

// MemoryBackend keeps slots in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	slots map[Slot][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[Slot][]byte)}
}

// Load implements [Backend].
func (b *MemoryBackend) Load(_ context.Context, slots ...Slot) (map[Slot][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[Slot][]byte, len(slots))
	for _, slot := range slots {
		if v, ok := b.slots[slot]; ok {
			out[slot] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

// Apply implements [Backend].
func (b *MemoryBackend) Apply(_ context.Context, m Mutation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	token, ok := b.slots[SlotToken]
	if !m.allows(token, ok) {
		return ErrTokenChanged
	}

	for _, slot := range m.Delete {
		delete(b.slots, slot)
	}
	for slot, v := range m.Set {
		b.slots[slot] = append([]byte(nil), v...)
	}
	return nil
}
