package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrEthical07/goCareer/session"
)

// LoginMetrics carries metric IDs used by the login flows.
type LoginMetrics struct {
	LoginSuccess      int
	LoginFailure      int
	AdminLoginSuccess int
	AdminLoginFailure int
}

// LoginEvents carries audit event names used by the login flows.
type LoginEvents struct {
	LoginSuccess      string
	LoginFailure      string
	AdminLoginSuccess string
	AdminLoginFailure string
}

// LoginErrors carries host-level sentinel errors used by the login flows.
type LoginErrors struct {
	NotReady           error
	MissingCredentials error
	InvalidCredentials error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Exchange      func(ctx context.Context, email, password string) (token string, identity session.Identity, err error)
	AdminExchange func(ctx context.Context, email, password string) (token string, admin session.AdminIdentity, err error)
	SetSession    func(ctx context.Context, token string, identity session.Identity) error
	SetAdmin      func(ctx context.Context, token string, admin session.AdminIdentity) error

	// IsCredentialError reports whether err is a rejected credential exchange.
	IsCredentialError func(error) bool

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

func (d *LoginDeps) defaults() {
	if d.MetricInc == nil {
		d.MetricInc = noMetric
	}
	if d.EmitAudit == nil {
		d.EmitAudit = noAudit
	}
	if d.IsCredentialError == nil {
		d.IsCredentialError = func(error) bool { return false }
	}
}

// RunLogin exchanges credentials and persists the resulting session. Nothing is
// persisted when the exchange fails.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (session.Identity, error) {
	deps.defaults()
	if deps.Exchange == nil || deps.SetSession == nil {
		return session.Identity{}, deps.Errors.NotReady
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return session.Identity{}, deps.Errors.MissingCredentials
	}

	token, identity, err := deps.Exchange(ctx, email, password)
	if err != nil {
		err = credentialError(err, deps)
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", err, func() map[string]string {
			return map[string]string{"email": email}
		})
		return session.Identity{}, err
	}

	if err := deps.SetSession(ctx, token, identity); err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, userID(identity.ID), err, nil)
		return session.Identity{}, fmt.Errorf("persist session: %w", err)
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, userID(identity.ID), nil, func() map[string]string {
		return map[string]string{"role": identity.Role}
	})
	return identity, nil
}

// RunAdminLogin is the admin login pathway: the token and admin record are stored
// in the admin slot.
func RunAdminLogin(ctx context.Context, email, password string, deps LoginDeps) (session.AdminIdentity, error) {
	deps.defaults()
	if deps.AdminExchange == nil || deps.SetAdmin == nil {
		return session.AdminIdentity{}, deps.Errors.NotReady
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return session.AdminIdentity{}, deps.Errors.MissingCredentials
	}

	token, admin, err := deps.AdminExchange(ctx, email, password)
	if err != nil {
		err = credentialError(err, deps)
		deps.MetricInc(deps.Metrics.AdminLoginFailure)
		deps.EmitAudit(ctx, deps.Events.AdminLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{"email": email}
		})
		return session.AdminIdentity{}, err
	}

	if err := deps.SetAdmin(ctx, token, admin); err != nil {
		deps.MetricInc(deps.Metrics.AdminLoginFailure)
		deps.EmitAudit(ctx, deps.Events.AdminLoginFailure, false, userID(admin.ID), err, nil)
		return session.AdminIdentity{}, fmt.Errorf("persist admin session: %w", err)
	}

	deps.MetricInc(deps.Metrics.AdminLoginSuccess)
	deps.EmitAudit(ctx, deps.Events.AdminLoginSuccess, true, userID(admin.ID), nil, nil)
	return admin, nil
}

func credentialError(err error, deps LoginDeps) error {
	if deps.Errors.InvalidCredentials != nil && deps.IsCredentialError(err) {
		return fmt.Errorf("%w: %w", deps.Errors.InvalidCredentials, err)
	}
	return err
}

func userID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
