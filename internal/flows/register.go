package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/session"
)

// RegisterMetrics carries metric IDs used by registration.
type RegisterMetrics struct {
	RegisterSuccess int
	RegisterFailure int
}

// RegisterEvents carries audit event names used by registration.
type RegisterEvents struct {
	RegisterSuccess string
	RegisterFailure string
}

// RegisterErrors carries host-level sentinel errors used by registration.
type RegisterErrors struct {
	NotReady      error
	MissingFields error
}

// RegisterDeps captures registration dependencies.
type RegisterDeps struct {
	Register  func(ctx context.Context, reg gateway.Registration) (session.Identity, error)
	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics RegisterMetrics
	Events  RegisterEvents
	Errors  RegisterErrors
}

// RegisterInput is a registration form.
type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	Competence []string
	Interests  []string
}

// RunRegister creates an account. The full name is split into nom and prenom. No
// session is created.
func RunRegister(ctx context.Context, in RegisterInput, deps RegisterDeps) (session.Identity, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.Register == nil {
		return session.Identity{}, deps.Errors.NotReady
	}

	nom, prenom := gateway.SplitFullName(in.FullName)
	email := strings.TrimSpace(in.Email)
	if nom == "" || email == "" || in.Password == "" {
		return session.Identity{}, deps.Errors.MissingFields
	}

	identity, err := deps.Register(ctx, gateway.Registration{
		Nom:        nom,
		Prenom:     prenom,
		Email:      email,
		Password:   in.Password,
		Competence: in.Competence,
		Interests:  in.Interests,
	})
	if err != nil {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.EmitAudit(ctx, deps.Events.RegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{"email": email}
		})
		return session.Identity{}, err
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.EmitAudit(ctx, deps.Events.RegisterSuccess, true, userID(identity.ID), nil, nil)
	return identity, nil
}
