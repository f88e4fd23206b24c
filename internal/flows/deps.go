package flows

import "context"

// Deps groups flow dependency sets. The root client builds this once.
type Deps struct {
	Login    LoginDeps
	Register RegisterDeps
	Logout   LogoutDeps
	Profile  ProfileDeps
}

// AuditFunc records one lifecycle event. metadata is only evaluated when the sink
// is enabled.
type AuditFunc func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

func noAudit(context.Context, string, bool, string, error, func() map[string]string) {}

func noMetric(int) {}
