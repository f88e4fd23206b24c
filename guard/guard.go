package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goCareer/capability"
	"github.com/MrEthical07/goCareer/session"
)

// DefaultResolveTimeout bounds start-up verification.
const DefaultResolveTimeout = 10 * time.Second

// ErrResolveTimeout is reported when verification does not finish in time.
var ErrResolveTimeout = errors.New("session verification timed out")

// State is the guard's view of the session.
type State int

const (
	StatePending State = iota
	StateAuthorized
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthorized:
		return "authorized"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is what the caller must do with a navigation.
type Outcome int

const (
	// Allow renders the requested route.
	Allow Outcome = iota
	// RedirectLogin sends the user to the login route.
	RedirectLogin
	// RedirectDefault sends the user to the default authorized route.
	RedirectDefault
	// Wait defers the decision until resolution finishes.
	Wait
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDefault:
		return "redirect_default"
	case Wait:
		return "wait"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is the result of one navigation evaluation.
type Decision struct {
	Route    string
	Outcome  Outcome
	Location string
	State    State
	Role     string
	Required capability.Capability
	Reason   string
}

// Allowed reports whether the route may render.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// ResolveEvent describes one finished [Guard.Resolve].
type ResolveEvent struct {
	State    State
	Role     string
	Verified bool
	Err      error
	Duration time.Duration
}

// SessionStore is the part of the session store the guard depends on.
type SessionStore interface {
	Snapshot(ctx context.Context) session.Session
	ReplaceIdentity(ctx context.Context, token string, identity session.Identity) error
	ClearSessionIf(ctx context.Context, token string) (bool, error)
}

// Verifier re-validates the session against the backend.
type Verifier interface {
	CurrentUser(ctx context.Context) (session.Identity, error)
}

// VerifierFunc adapts a function to [Verifier].
type VerifierFunc func(ctx context.Context) (session.Identity, error)

// CurrentUser calls f(ctx).
func (f VerifierFunc) CurrentUser(ctx context.Context) (session.Identity, error) {
	return f(ctx)
}

// Option configures a [Guard].
type Option func(*Guard)

// WithVerifier enables backend verification in [Guard.Resolve].
func WithVerifier(v Verifier) Option {
	return func(g *Guard) {
		g.verifier = v
	}
}

// WithResolveTimeout bounds verification. Non-positive values keep the default.
func WithResolveTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.resolveTimeout = d
		}
	}
}

// WithLogger sets the guard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithObserver is called with every decision.
func WithObserver(fn func(Decision)) Option {
	return func(g *Guard) {
		g.observer = fn
	}
}

// WithResolveObserver is called when a resolution finishes.
func WithResolveObserver(fn func(ResolveEvent)) Option {
	return func(g *Guard) {
		g.resolveObserver = fn
	}
}

// Guard evaluates navigations against the session store.
type Guard struct {
	store           SessionStore
	roles           *capability.RoleManager
	policy          Policy
	verifier        Verifier
	resolveTimeout  time.Duration
	logger          *slog.Logger
	observer        func(Decision)
	resolveObserver func(ResolveEvent)

	resolving atomic.Int32
}

// New creates a guard. A nil roles manager uses [capability.Default].
func New(store SessionStore, roles *capability.RoleManager, policy Policy, opts ...Option) (*Guard, error) {
	if store == nil {
		return nil, errors.New("guard requires a session store")
	}
	if roles == nil {
		var err error
		roles, err = capability.Default()
		if err != nil {
			return nil, err
		}
	}
	if err := policy.Validate(roles); err != nil {
		return nil, err
	}

	g := &Guard{
		store:          store,
		roles:          roles,
		policy:         policy,
		resolveTimeout: DefaultResolveTimeout,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Policy returns the route policy.
func (g *Guard) Policy() Policy {
	return g.policy
}

// Resolve establishes the initial state. With a verifier, a stored user identity is
// re-validated; success replaces the stored identity, any failure clears the session.
// Both writes apply only while the verified token is still stored; a session
// replaced by another context meanwhile is classified as found.
// Sessions holding only an admin record are not sent to the user endpoint.
func (g *Guard) Resolve(ctx context.Context) State {
	start := time.Now()
	g.resolving.Add(1)
	defer g.resolving.Add(-1)

	snap := g.store.Snapshot(ctx)
	if !snap.HasToken() {
		return g.finishResolve(ResolveEvent{State: StateUnauthorized}, start)
	}

	if g.verifier == nil || (snap.Identity == nil && snap.Admin != nil) {
		state, role, _ := g.classify(snap, false)
		return g.finishResolve(ResolveEvent{State: state, Role: role}, start)
	}

	identity, err := g.verify(ctx)
	if err != nil {
		cleared, clearErr := g.store.ClearSessionIf(ctx, snap.Token)
		if clearErr != nil {
			g.logger.Warn("session clear after failed verification", "error", clearErr)
		}
		if !cleared && clearErr == nil {
			return g.resolveReplaced(ctx, err, start)
		}
		return g.finishResolve(ResolveEvent{State: StateUnauthorized, Verified: true, Err: err}, start)
	}

	if err := g.store.ReplaceIdentity(ctx, snap.Token, identity); err != nil {
		return g.resolveReplaced(ctx, err, start)
	}

	state, role, _ := g.classify(g.store.Snapshot(ctx), false)
	return g.finishResolve(ResolveEvent{State: state, Role: role, Verified: true}, start)
}

// resolveReplaced classifies whatever session another context left behind while
// verification was in flight. A logout there yields Unauthorized.
func (g *Guard) resolveReplaced(ctx context.Context, cause error, start time.Time) State {
	g.logger.Debug("session replaced during verification", "error", cause)
	state, role, _ := g.classify(g.store.Snapshot(ctx), false)
	return g.finishResolve(ResolveEvent{State: state, Role: role, Verified: true, Err: cause}, start)
}

func (g *Guard) verify(ctx context.Context) (session.Identity, error) {
	vctx, cancel := context.WithTimeout(ctx, g.resolveTimeout)
	defer cancel()

	type result struct {
		identity session.Identity
		err      error
	}
	done := make(chan result, 1)
	go func() {
		id, err := g.verifier.CurrentUser(vctx)
		done <- result{identity: id, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(vctx.Err(), context.DeadlineExceeded) {
			return session.Identity{}, fmt.Errorf("%w: %v", ErrResolveTimeout, res.err)
		}
		return res.identity, res.err
	case <-vctx.Done():
		if errors.Is(vctx.Err(), context.DeadlineExceeded) {
			return session.Identity{}, ErrResolveTimeout
		}
		return session.Identity{}, vctx.Err()
	}
}

func (g *Guard) finishResolve(ev ResolveEvent, start time.Time) State {
	ev.Duration = time.Since(start)
	if ev.Err != nil {
		g.logger.Warn("session resolution failed", "state", ev.State, "error", ev.Err, "duration", ev.Duration)
	} else {
		g.logger.Info("session resolved", "state", ev.State, "role", ev.Role, "verified", ev.Verified)
	}
	if g.resolveObserver != nil {
		g.resolveObserver(ev)
	}
	return ev.State
}

// Current derives the state from a fresh store read.
func (g *Guard) Current(ctx context.Context) (State, string) {
	state, role, _ := g.derive(g.store.Snapshot(ctx))
	return state, role
}

// Pending reports whether a resolution is in flight.
func (g *Guard) Pending() bool {
	return g.resolving.Load() > 0
}

// Evaluate decides a navigation to route.
func (g *Guard) Evaluate(ctx context.Context, route string) Decision {
	route = CleanRoute(route)
	state, role, mask := g.derive(g.store.Snapshot(ctx))
	d := Decision{Route: route, State: state, Role: role}

	switch {
	case g.policy.IsPublic(route):
		d.Outcome = Allow
		d.Reason = "public route"
	case state == StatePending:
		d.Outcome = Wait
		d.Reason = "session resolution in progress"
	case state == StateUnauthorized:
		d.Outcome = RedirectLogin
		d.Location = g.policy.LoginRoute
		d.Reason = "no authenticated session"
	default:
		d.Required = g.policy.Requirement(route)
		if g.roles.MaskSatisfies(mask, d.Required) {
			d.Outcome = Allow
			d.Reason = "capability satisfied"
		} else {
			d.Outcome = RedirectDefault
			d.Location = g.policy.DefaultRoute
			d.Reason = "missing capability " + string(d.Required)
		}
	}

	if d.Outcome == RedirectLogin || d.Outcome == RedirectDefault {
		g.logger.Debug("navigation redirected", "route", route, "outcome", d.Outcome, "location", d.Location, "role", role)
	}
	if g.observer != nil {
		g.observer(d)
	}
	return d
}

func (g *Guard) derive(snap session.Session) (State, string, capability.Mask64) {
	return g.classify(snap, g.Pending())
}

// classify computes state, effective role and capability mask from a snapshot.
func (g *Guard) classify(snap session.Session, pending bool) (State, string, capability.Mask64) {
	if !snap.HasToken() {
		return StateUnauthorized, "", 0
	}
	if pending {
		return StatePending, "", 0
	}
	if !snap.Authenticated() {
		return StateUnauthorized, "", 0
	}

	var mask capability.Mask64
	role := ""
	if snap.Identity != nil {
		role = capability.NormalizeRole(snap.Identity.Role)
		mask, _ = g.roles.Mask(role)
	}
	if snap.Admin != nil && g.policy.TrustAdminSlot {
		if adminMask, ok := g.roles.Mask(string(capability.Admin)); ok {
			mask |= adminMask
		}
		role = string(capability.Admin)
	}
	if mask == 0 {
		return StateUnauthorized, "", 0
	}
	return StateAuthorized, role, mask
}
