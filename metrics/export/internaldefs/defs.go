package internaldefs

import (
	goCareer "github.com/MrEthical07/goCareer"
)

// CounterDef names one counter.
type CounterDef struct {
	ID   goCareer.MetricID
	Name string
	Help string
}

// HistogramDef names one histogram.
type HistogramDef struct {
	ID   goCareer.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: goCareer.MetricLoginSuccess, Name: "gocareer_login_success_total", Help: "User logins that persisted a session."},
	{ID: goCareer.MetricLoginFailure, Name: "gocareer_login_failure_total", Help: "Rejected or unpersisted user logins."},
	{ID: goCareer.MetricAdminLoginSuccess, Name: "gocareer_admin_login_success_total", Help: "Admin logins that persisted a session."},
	{ID: goCareer.MetricAdminLoginFailure, Name: "gocareer_admin_login_failure_total", Help: "Rejected or unpersisted admin logins."},
	{ID: goCareer.MetricRegisterSuccess, Name: "gocareer_register_success_total", Help: "Created accounts."},
	{ID: goCareer.MetricRegisterFailure, Name: "gocareer_register_failure_total", Help: "Rejected registrations."},
	{ID: goCareer.MetricLogout, Name: "gocareer_logout_total", Help: "Explicit logouts."},
	{ID: goCareer.MetricForcedLogout, Name: "gocareer_forced_logout_total", Help: "Sessions cleared by a 401 response."},
	{ID: goCareer.MetricProfileUpdated, Name: "gocareer_profile_updated_total", Help: "Profile updates mirrored into the session."},
	{ID: goCareer.MetricNavigationAllowed, Name: "gocareer_navigation_allowed_total", Help: "Navigations that rendered."},
	{ID: goCareer.MetricNavigationRedirectLogin, Name: "gocareer_navigation_redirect_login_total", Help: "Navigations redirected to the login route."},
	{ID: goCareer.MetricNavigationRedirectDefault, Name: "gocareer_navigation_redirect_default_total", Help: "Navigations redirected to the default route."},
	{ID: goCareer.MetricNavigationWait, Name: "gocareer_navigation_wait_total", Help: "Navigations made while a session was resolving."},
	{ID: goCareer.MetricResolveAuthorized, Name: "gocareer_resolve_authorized_total", Help: "Session resolutions ending authorized."},
	{ID: goCareer.MetricResolveUnauthorized, Name: "gocareer_resolve_unauthorized_total", Help: "Session resolutions ending unauthorized."},
	{ID: goCareer.MetricResolveFailure, Name: "gocareer_resolve_failure_total", Help: "Session verifications that failed and cleared the session."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goCareer.MetricResolveLatency, Name: "gocareer_resolve_latency_seconds", Help: "Session resolution latency."},
}

// AuditDroppedName is the counter of audit events lost to back-pressure.
const AuditDroppedName = "gocareer_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// BucketCount is the number of histogram buckets, +Inf included.
const BucketCount = len(goCareer.HistogramBounds) + 1

// HistogramBounds are the finite upper bounds in seconds.
var HistogramBounds = func() []float64 {
	out := make([]float64, 0, len(goCareer.HistogramBounds))
	for _, d := range goCareer.HistogramBounds {
		out = append(out, d.Seconds())
	}
	return out
}()

// HistogramBoundSuffix names each bucket, +Inf last, for exporters without native
// histograms.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
