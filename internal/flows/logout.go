package flows

import (
	"context"

	"github.com/MrEthical07/goCareer/session"
)

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	Snapshot     func(ctx context.Context) session.Session
	ClearSession func(ctx context.Context) error
	Navigate     func(route string)
	LoginRoute   string

	MetricInc    func(int)
	EmitAudit    AuditFunc
	LogoutMetric int
	LogoutEvent  string
}

// RunLogout clears the session and navigates to the login route. Logging out
// without a session still navigates and is not an error.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}

	var uid string
	if deps.Snapshot != nil {
		snap := deps.Snapshot(ctx)
		switch {
		case snap.Identity != nil:
			uid = userID(snap.Identity.ID)
		case snap.Admin != nil:
			uid = userID(snap.Admin.ID)
		}
	}

	if deps.ClearSession != nil {
		if err := deps.ClearSession(ctx); err != nil {
			deps.EmitAudit(ctx, deps.LogoutEvent, false, uid, err, nil)
			return err
		}
	}
	if deps.Navigate != nil && deps.LoginRoute != "" {
		deps.Navigate(deps.LoginRoute)
	}

	deps.MetricInc(deps.LogoutMetric)
	deps.EmitAudit(ctx, deps.LogoutEvent, true, uid, nil, nil)
	return nil
}
