package goCareer

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// LintSeverity ranks a configuration warning.
type LintSeverity int

const (
	// LintInfo marks a setting worth knowing about.
	LintInfo LintSeverity = iota
	// LintWarn marks a setting that weakens the session model.
	LintWarn
	// LintHigh marks a setting that should not reach production.
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "info"
	case LintWarn:
		return "warn"
	case LintHigh:
		return "high"
	default:
		return "unknown"
	}
}

// LintWarning is one finding of [Config.Lint].
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult holds every finding of one lint pass.
type LintResult []LintWarning

// Codes lists the warning codes in order.
func (r LintResult) Codes() []string {
	codes := make([]string, 0, len(r))
	for _, w := range r {
		codes = append(codes, w.Code)
	}
	return codes
}

// BySeverity keeps warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins warnings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	filtered := r.BySeverity(min)
	if len(filtered) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(filtered))
	for _, w := range filtered {
		msgs = append(msgs, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return errors.New("config lint: " + strings.Join(msgs, "; "))
}

// Lint reports valid but questionable settings. It never fails; run Validate for
// hard errors.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		add("plaintext_api", LintHigh, "bearer tokens are sent over plain http to a non-local host")
	}
	if c.API.Timeout == 0 {
		add("api_timeout_disabled", LintWarn, "requests have no client-side timeout")
	}
	if c.Guard.TrustAdminSlot {
		add("admin_slot_trusted", LintInfo, "a stored admin record grants admin capability without a role check")
	}
	if !c.Guard.VerifyOnBootstrap {
		add("bootstrap_unverified", LintWarn, "stored sessions are trusted until the first 401")
	}
	if c.Guard.ResolveTimeout > 30*time.Second {
		add("resolve_timeout_long", LintWarn, "navigation waits up to the resolve timeout while a session is verified")
	}
	if c.Session.Backend == BackendRedis && c.Session.TTL == 0 {
		add("redis_no_ttl", LintInfo, "redis session slots never expire on their own")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "session lifecycle events are not recorded")
	}

	return ws
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
