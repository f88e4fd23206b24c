package goCareer

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/guard"
	"github.com/MrEthical07/goCareer/session"
	"github.com/google/uuid"
)

const (
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventAdminLoginSuccess    = "admin_login_success"
	auditEventAdminLoginFailure    = "admin_login_failure"
	auditEventRegisterSuccess      = "register_success"
	auditEventRegisterFailure      = "register_failure"
	auditEventLogout               = "logout"
	auditEventForcedLogout         = "forced_logout"
	auditEventNavigationDenied     = "navigation_denied"
	auditEventSessionResolved      = "session_resolved"
	auditEventSessionResolveFailed = "session_resolve_failed"
	auditEventProfileUpdated       = "profile_updated"
)

// AuditErrorCode is the stable error classification carried by audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrInvalidInput       AuditErrorCode = "invalid_input"
	auditErrUnauthenticated    AuditErrorCode = "unauthenticated"
	auditErrResolveTimeout     AuditErrorCode = "resolve_timeout"
	auditErrCanceled           AuditErrorCode = "canceled"
	auditErrAPI                AuditErrorCode = "api_error"
	auditErrRequestFailed      AuditErrorCode = "request_failed"
	auditErrInvalidResponse    AuditErrorCode = "invalid_response"
	auditErrNoSession          AuditErrorCode = "no_session"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	c.emitAuditRoute(ctx, eventType, success, userID, "", err, metadataBuilder)
}

func (c *Client) emitAuditRoute(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	route string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Route:     route,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

// onUnauthorized runs inside the transport after a 401 cleared the session.
func (c *Client) onUnauthorized(unauth *gateway.UnauthorizedError) {
	c.metrics.Inc(MetricForcedLogout)
	c.emitAuditRoute(context.Background(), auditEventForcedLogout, true, "", unauth.Path, unauth, func() map[string]string {
		md := map[string]string{"method": unauth.Method}
		if unauth.Detail != "" {
			md["detail"] = unauth.Detail
		}
		return md
	})
}

func (c *Client) observeDecision(d guard.Decision) {
	switch d.Outcome {
	case guard.Allow:
		c.metrics.Inc(MetricNavigationAllowed)
		return
	case guard.Wait:
		c.metrics.Inc(MetricNavigationWait)
		return
	case guard.RedirectLogin:
		c.metrics.Inc(MetricNavigationRedirectLogin)
	case guard.RedirectDefault:
		c.metrics.Inc(MetricNavigationRedirectDefault)
	}

	c.emitAuditRoute(context.Background(), auditEventNavigationDenied, false, "", d.Route, nil, func() map[string]string {
		md := map[string]string{
			"outcome":  d.Outcome.String(),
			"location": d.Location,
			"state":    d.State.String(),
		}
		if d.Role != "" {
			md["role"] = d.Role
		}
		if d.Required != "" {
			md["required"] = string(d.Required)
		}
		return md
	})
}

func (c *Client) observeResolve(ev guard.ResolveEvent) {
	c.metrics.Observe(MetricResolveLatency, ev.Duration)

	if ev.Err != nil {
		c.metrics.Inc(MetricResolveFailure)
		c.metrics.Inc(MetricResolveUnauthorized)
		c.emitAudit(context.Background(), auditEventSessionResolveFailed, false, "", ev.Err, nil)
		return
	}

	if ev.State == guard.StateAuthorized {
		c.metrics.Inc(MetricResolveAuthorized)
	} else {
		c.metrics.Inc(MetricResolveUnauthorized)
	}
	c.emitAudit(context.Background(), auditEventSessionResolved, ev.State == guard.StateAuthorized, "", nil, func() map[string]string {
		md := map[string]string{"state": ev.State.String()}
		if ev.Role != "" {
			md["role"] = ev.Role
		}
		if ev.Verified {
			md["verified"] = "true"
		}
		return md
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, session.ErrEmptyToken):
		return auditErrInvalidInput
	case errors.Is(err, guard.ErrResolveTimeout):
		return auditErrResolveTimeout
	case errors.Is(err, gateway.ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, context.Canceled):
		return auditErrCanceled
	case errors.As(err, &apiErr):
		return auditErrAPI
	case errors.Is(err, gateway.ErrRequestFailed):
		return auditErrRequestFailed
	case errors.Is(err, gateway.ErrInvalidResponse):
		return auditErrInvalidResponse
	case errors.Is(err, session.ErrNoSession):
		return auditErrNoSession
	case errors.Is(err, session.ErrBackendUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
