package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var (
	// ErrEmptyToken is returned when a session is set without a token.
	ErrEmptyToken = errors.New("session token is empty")
	// ErrNoSession is returned by updates that require an existing session.
	ErrNoSession = errors.New("no active session")
)

// Store reads and writes the session through a [Backend]. It holds no copy of the
// session; every read goes to the backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used for degraded reads and lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store over backend. A nil backend falls back to a fresh
// [MemoryBackend].
func NewStore(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the persistence backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// SetSession persists token and identity and drops any admin record.
func (s *Store) SetSession(ctx context.Context, token string, identity Identity) error {
	if token == "" {
		return ErrEmptyToken
	}

	user, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	err = s.backend.Apply(ctx, Mutation{
		Set: map[Slot][]byte{
			SlotToken: []byte(token),
			SlotUser:  user,
		},
		Delete: []Slot{SlotAdmin},
	})
	if err != nil {
		return err
	}

	s.logger.Info("session established", "user_id", identity.ID, "role", identity.Role)
	return nil
}

// SetAdminSession persists token and the admin record from the admin login pathway.
// The user slot is left as is.
func (s *Store) SetAdminSession(ctx context.Context, token string, admin AdminIdentity) error {
	if token == "" {
		return ErrEmptyToken
	}

	rec, err := json.Marshal(admin)
	if err != nil {
		return err
	}

	err = s.backend.Apply(ctx, Mutation{
		Set: map[Slot][]byte{
			SlotToken: []byte(token),
			SlotAdmin: rec,
		},
	})
	if err != nil {
		return err
	}

	s.logger.Info("admin session established", "admin_id", admin.ID)
	return nil
}

// GetToken returns the persisted token. ok is false when no token is stored or the
// backend cannot be read.
func (s *Store) GetToken(ctx context.Context) (string, bool) {
	slots, err := s.backend.Load(ctx, SlotToken)
	if err != nil {
		s.logger.Debug("session token read degraded to absent", "error", err)
		return "", false
	}
	token := string(slots[SlotToken])
	return token, token != ""
}

// GetIdentity returns the persisted user identity.
func (s *Store) GetIdentity(ctx context.Context) (Identity, bool) {
	var id Identity
	if !s.loadRecord(ctx, SlotUser, &id) {
		return Identity{}, false
	}
	return id, true
}

// GetAdmin returns the persisted admin identity.
func (s *Store) GetAdmin(ctx context.Context) (AdminIdentity, bool) {
	var admin AdminIdentity
	if !s.loadRecord(ctx, SlotAdmin, &admin) {
		return AdminIdentity{}, false
	}
	return admin, true
}

// Snapshot reads every slot at once. Identity records without a token are reported
// as absent.
func (s *Store) Snapshot(ctx context.Context) Session {
	slots, err := s.backend.Load(ctx, AllSlots...)
	if err != nil {
		s.logger.Debug("session snapshot degraded to absent", "error", err)
		return Session{}
	}

	token := string(slots[SlotToken])
	if token == "" {
		return Session{}
	}

	out := Session{Token: token}
	if raw, ok := slots[SlotUser]; ok {
		var id Identity
		if err := json.Unmarshal(raw, &id); err != nil {
			s.logger.Debug("corrupt user record ignored", "error", err)
		} else {
			out.Identity = &id
		}
	}
	if raw, ok := slots[SlotAdmin]; ok {
		var admin AdminIdentity
		if err := json.Unmarshal(raw, &admin); err != nil {
			s.logger.Debug("corrupt admin record ignored", "error", err)
		} else {
			out.Admin = &admin
		}
	}
	return out
}

// UpdateProfile replaces the stored identity fields after a profile update. The
// stored role and the token are preserved. The write is dropped with [ErrNoSession]
// when another context replaced the session in the meantime.
func (s *Store) UpdateProfile(ctx context.Context, identity Identity) error {
	current := s.Snapshot(ctx)
	if current.Identity == nil {
		return ErrNoSession
	}

	identity.Role = current.Identity.Role
	return s.writeIdentity(ctx, current.Token, identity)
}

// ReplaceIdentity stores identity, role included, as returned by the current-user
// endpoint for token. It fails with [ErrNoSession] unless token is still the stored
// one.
func (s *Store) ReplaceIdentity(ctx context.Context, token string, identity Identity) error {
	if token == "" {
		return ErrNoSession
	}
	return s.writeIdentity(ctx, token, identity)
}

// ClearSession removes every slot in one mutation. Clearing an empty store is a
// no-op.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.backend.Apply(ctx, Mutation{Delete: AllSlots}); err != nil {
		return err
	}
	s.logger.Info("session cleared")
	return nil
}

// ClearSessionIf clears the session only while token is still stored. It reports
// whether anything was cleared; a session replaced by another context is kept.
func (s *Store) ClearSessionIf(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	err := s.backend.Apply(ctx, Mutation{Delete: AllSlots, IfToken: token})
	if errors.Is(err, ErrTokenChanged) {
		s.logger.Debug("session clear skipped, token changed")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Info("session cleared")
	return true, nil
}

func (s *Store) writeIdentity(ctx context.Context, token string, identity Identity) error {
	user, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	err = s.backend.Apply(ctx, Mutation{Set: map[Slot][]byte{SlotUser: user}, IfToken: token})
	if errors.Is(err, ErrTokenChanged) {
		return fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return err
}

func (s *Store) loadRecord(ctx context.Context, slot Slot, dst any) bool {
	slots, err := s.backend.Load(ctx, slot)
	if err != nil {
		s.logger.Debug("session read degraded to absent", "slot", slot, "error", err)
		return false
	}
	raw, ok := slots[slot]
	if !ok || len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Debug("corrupt session record ignored", "slot", slot, "error", err)
		return false
	}
	return true
}
