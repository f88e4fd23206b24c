package goCareer

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/guard"
	"github.com/MrEthical07/goCareer/internal/flows"
	"github.com/MrEthical07/goCareer/session"
	"github.com/redis/go-redis/v9"
)

// AdminHomeRoute is where a successful admin login navigates.
const AdminHomeRoute = "/admin"

// Client is the session-aware platform client: one per runtime context (a CLI
// invocation, a browser-like session in a BFF, a test).
type Client struct {
	config    Config
	logger    *slog.Logger
	store     *session.Store
	guard     *guard.Guard
	api       *gateway.Client
	navigator gateway.Navigator
	history   *gateway.History
	audit     *auditDispatcher
	metrics   *Metrics
	flows     flows.Deps

	ownedRedis *redis.Client
	ready      atomic.Bool
	closed     atomic.Bool
}

// RegisterInput is a registration form. FullName is split into nom (first word)
// and prenom (the rest).
type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	Competence []string
	Interests  []string
}

// Bootstrap resolves the stored session. Navigations made while it runs get
// [guard.Wait].
func (c *Client) Bootstrap(ctx context.Context) guard.State {
	if !c.usable() {
		return guard.StateUnauthorized
	}
	return c.guard.Resolve(ctx)
}

// Navigate evaluates route against the current session and forwards any redirect
// to the navigator.
func (c *Client) Navigate(ctx context.Context, route string) guard.Decision {
	if !c.usable() {
		return guard.Decision{
			Route:    guard.CleanRoute(route),
			Outcome:  guard.RedirectLogin,
			Location: c.config.Guard.LoginRoute,
			State:    guard.StateUnauthorized,
			Reason:   ErrNotReady.Error(),
		}
	}

	d := c.guard.Evaluate(ctx, route)
	if d.Location != "" {
		c.navigator.Navigate(d.Location)
	}
	return d
}

// Login exchanges user credentials, persists the session and navigates to the
// default route.
func (c *Client) Login(ctx context.Context, email, password string) (session.Identity, error) {
	if !c.usable() {
		return session.Identity{}, ErrNotReady
	}
	identity, err := flows.RunLogin(ctx, email, password, c.flows.Login)
	if err != nil {
		return session.Identity{}, err
	}
	c.navigator.Navigate(c.config.Guard.DefaultRoute)
	return identity, nil
}

// AdminLogin exchanges admin credentials through the admin pathway and navigates
// to [AdminHomeRoute].
func (c *Client) AdminLogin(ctx context.Context, email, password string) (session.AdminIdentity, error) {
	if !c.usable() {
		return session.AdminIdentity{}, ErrNotReady
	}
	admin, err := flows.RunAdminLogin(ctx, email, password, c.flows.Login)
	if err != nil {
		return session.AdminIdentity{}, err
	}
	c.navigator.Navigate(AdminHomeRoute)
	return admin, nil
}

// Register creates an account without signing in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (session.Identity, error) {
	if !c.usable() {
		return session.Identity{}, ErrNotReady
	}
	return flows.RunRegister(ctx, flows.RegisterInput{
		FullName:   in.FullName,
		Email:      in.Email,
		Password:   in.Password,
		Competence: in.Competence,
		Interests:  in.Interests,
	}, c.flows.Register)
}

// RegisterAndLogin creates an account and signs in with the same credentials.
func (c *Client) RegisterAndLogin(ctx context.Context, in RegisterInput) (session.Identity, error) {
	if _, err := c.Register(ctx, in); err != nil {
		return session.Identity{}, err
	}
	return c.Login(ctx, in.Email, in.Password)
}

// Logout clears the session and navigates to the login route. It succeeds
// without a session.
func (c *Client) Logout(ctx context.Context) error {
	if !c.usable() {
		return ErrNotReady
	}
	return flows.RunLogout(ctx, c.flows.Logout)
}

// UpdateProfile sends a profile update and mirrors the result into the session.
// The stored role is kept.
func (c *Client) UpdateProfile(ctx context.Context, update gateway.UserUpdate) (session.Identity, error) {
	if !c.usable() {
		return session.Identity{}, ErrNotReady
	}
	return flows.RunProfileUpdate(ctx, update, c.flows.Profile)
}

// Session returns a fresh snapshot of the stored session.
func (c *Client) Session(ctx context.Context) session.Session {
	if c == nil || c.store == nil {
		return session.Session{}
	}
	return c.store.Snapshot(ctx)
}

// Store exposes the session store.
func (c *Client) Store() *session.Store {
	return c.store
}

// Guard exposes the access guard, for use with [guard.Middleware].
func (c *Client) Guard() *guard.Guard {
	return c.guard
}

// API exposes the REST client. Every call carries the session token and forces a
// logout on 401.
func (c *Client) API() *gateway.Client {
	return c.api
}

// History returns the navigation recorder, or nil when a navigator was injected.
func (c *Client) History() *gateway.History {
	return c.history
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.config
}

// MetricsSnapshot copies the client counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// AuditDropped returns the number of audit events lost to back-pressure.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// Close flushes the audit buffer and releases connections the client opened. The
// stored session is left in place.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.audit.Close()
	return c.closeOwned()
}

func (c *Client) closeOwned() error {
	if c.ownedRedis == nil {
		return nil
	}
	err := c.ownedRedis.Close()
	c.ownedRedis = nil
	return err
}

func (c *Client) usable() bool {
	return c != nil && c.ready.Load() && !c.closed.Load()
}

func (c *Client) buildFlowDeps() flows.Deps {
	metricInc := func(id int) { c.metrics.Inc(MetricID(id)) }

	return flows.Deps{
		Login: flows.LoginDeps{
			Exchange: func(ctx context.Context, email, password string) (string, session.Identity, error) {
				res, err := c.api.Login(ctx, email, password)
				return res.AccessToken, res.User, err
			},
			AdminExchange: func(ctx context.Context, email, password string) (string, session.AdminIdentity, error) {
				res, err := c.api.AdminLogin(ctx, email, password)
				return res.AccessToken, res.Admin, err
			},
			SetSession: c.store.SetSession,
			SetAdmin:   c.store.SetAdminSession,
			IsCredentialError: func(err error) bool {
				return errors.Is(err, gateway.ErrUnauthenticated)
			},
			MetricInc: metricInc,
			EmitAudit: c.emitAudit,
			Metrics: flows.LoginMetrics{
				LoginSuccess:      int(MetricLoginSuccess),
				LoginFailure:      int(MetricLoginFailure),
				AdminLoginSuccess: int(MetricAdminLoginSuccess),
				AdminLoginFailure: int(MetricAdminLoginFailure),
			},
			Events: flows.LoginEvents{
				LoginSuccess:      auditEventLoginSuccess,
				LoginFailure:      auditEventLoginFailure,
				AdminLoginSuccess: auditEventAdminLoginSuccess,
				AdminLoginFailure: auditEventAdminLoginFailure,
			},
			Errors: flows.LoginErrors{
				NotReady:           ErrNotReady,
				MissingCredentials: ErrMissingCredentials,
				InvalidCredentials: ErrInvalidCredentials,
			},
		},
		Register: flows.RegisterDeps{
			Register:  c.api.Register,
			MetricInc: metricInc,
			EmitAudit: c.emitAudit,
			Metrics: flows.RegisterMetrics{
				RegisterSuccess: int(MetricRegisterSuccess),
				RegisterFailure: int(MetricRegisterFailure),
			},
			Events: flows.RegisterEvents{
				RegisterSuccess: auditEventRegisterSuccess,
				RegisterFailure: auditEventRegisterFailure,
			},
			Errors: flows.RegisterErrors{
				NotReady:      ErrNotReady,
				MissingFields: ErrMissingFields,
			},
		},
		Logout: flows.LogoutDeps{
			Snapshot:     c.store.Snapshot,
			ClearSession: c.store.ClearSession,
			Navigate:     c.navigator.Navigate,
			LoginRoute:   c.config.Guard.LoginRoute,
			MetricInc:    metricInc,
			EmitAudit:    c.emitAudit,
			LogoutMetric: int(MetricLogout),
			LogoutEvent:  auditEventLogout,
		},
		Profile: flows.ProfileDeps{
			Update:        c.api.UpdateCurrentUser,
			UpdateProfile: c.store.UpdateProfile,
			MetricInc:     metricInc,
			EmitAudit:     c.emitAudit,
			UpdatedMetric: int(MetricProfileUpdated),
			UpdatedEvent:  auditEventProfileUpdated,
			NotReady:      ErrNotReady,
		},
	}
}
