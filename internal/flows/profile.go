package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/session"
)

// ProfileDeps captures profile update dependencies.
type ProfileDeps struct {
	Update        func(ctx context.Context, update gateway.UserUpdate) (session.Identity, error)
	UpdateProfile func(ctx context.Context, identity session.Identity) error

	MetricInc     func(int)
	EmitAudit     AuditFunc
	UpdatedMetric int
	UpdatedEvent  string
	NotReady      error
}

// RunProfileUpdate sends a profile update and mirrors the returned identity into
// the session. The stored role and token are left untouched.
func RunProfileUpdate(ctx context.Context, update gateway.UserUpdate, deps ProfileDeps) (session.Identity, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.Update == nil || deps.UpdateProfile == nil {
		return session.Identity{}, deps.NotReady
	}

	identity, err := deps.Update(ctx, update)
	if err != nil {
		deps.EmitAudit(ctx, deps.UpdatedEvent, false, "", err, nil)
		return session.Identity{}, err
	}

	if err := deps.UpdateProfile(ctx, identity); err != nil {
		deps.EmitAudit(ctx, deps.UpdatedEvent, false, userID(identity.ID), err, nil)
		return session.Identity{}, fmt.Errorf("sync profile: %w", err)
	}

	deps.MetricInc(deps.UpdatedMetric)
	deps.EmitAudit(ctx, deps.UpdatedEvent, true, userID(identity.ID), nil, func() map[string]string {
		return map[string]string{"email": identity.Email}
	})
	return identity, nil
}
