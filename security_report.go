package goCareer

import (
	"net/url"
	"time"
)

// SecurityReport summarizes the session posture of a built client.
type SecurityReport struct {
	SessionBackend    SessionBackend `json:"session_backend" yaml:"session_backend"`
	SharedSession     bool           `json:"shared_session" yaml:"shared_session"`
	SessionTTL        time.Duration  `json:"session_ttl" yaml:"session_ttl"`
	TLS               bool           `json:"tls" yaml:"tls"`
	RequestTimeout    time.Duration  `json:"request_timeout" yaml:"request_timeout"`
	ResolveTimeout    time.Duration  `json:"resolve_timeout" yaml:"resolve_timeout"`
	VerifyOnBootstrap bool           `json:"verify_on_bootstrap" yaml:"verify_on_bootstrap"`
	TrustAdminSlot    bool           `json:"trust_admin_slot" yaml:"trust_admin_slot"`
	AuditEnabled      bool           `json:"audit_enabled" yaml:"audit_enabled"`
	MetricsEnabled    bool           `json:"metrics_enabled" yaml:"metrics_enabled"`
	LintCodes         []string       `json:"lint_codes,omitempty" yaml:"lint_codes,omitempty"`
}

// SecurityReport describes the posture of c. An injected session backend is
// reported as the configured one.
func (c *Client) SecurityReport() SecurityReport {
	if c == nil {
		return SecurityReport{}
	}
	cfg := c.config

	tls := false
	if u, err := url.Parse(cfg.API.BaseURL); err == nil {
		tls = u.Scheme == "https"
	}

	return SecurityReport{
		SessionBackend:    cfg.Session.Backend,
		SharedSession:     cfg.Session.Backend != BackendMemory,
		SessionTTL:        cfg.Session.TTL,
		TLS:               tls,
		RequestTimeout:    cfg.API.Timeout,
		ResolveTimeout:    cfg.Guard.ResolveTimeout,
		VerifyOnBootstrap: cfg.Guard.VerifyOnBootstrap,
		TrustAdminSlot:    cfg.Guard.TrustAdminSlot,
		AuditEnabled:      cfg.Audit.Enabled,
		MetricsEnabled:    cfg.Metrics.Enabled,
		LintCodes:         cfg.Lint().Codes(),
	}
}
