package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultLoginRoute is where a 401 sends the user.
	DefaultLoginRoute = "/login"

	// RequestIDHeader carries a per-request correlation ID.
	RequestIDHeader = "X-Request-ID"

	maxDetailBytes = 64 << 10
)

// Transport is the bearer/401 interceptor pair as an [http.RoundTripper].
type Transport struct {
	// Base performs the request. Nil uses [http.DefaultTransport].
	Base http.RoundTripper
	// Store supplies the token and is cleared on 401.
	Store SessionStore
	// Navigator receives the forced login navigation. Nil skips navigation.
	Navigator Navigator
	// LoginRoute defaults to [DefaultLoginRoute].
	LoginRoute string
	// OnUnauthorized runs after the session is cleared and navigation forced.
	OnUnauthorized func(*UnauthorizedError)
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Del("Authorization")
	if t.Store != nil {
		if token, ok := t.Store.GetToken(req.Context()); ok {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	detail := readDetail(resp.Body)
	resp.Body.Close()

	unauth := &UnauthorizedError{
		Method: req.Method,
		Path:   req.URL.Path,
		Detail: detail,
	}
	t.forceLogout(req, unauth)
	return nil, unauth
}

func (t *Transport) forceLogout(req *http.Request, unauth *UnauthorizedError) {
	logger := t.logger()
	if t.Store != nil {
		if err := t.Store.ClearSession(req.Context()); err != nil {
			logger.Warn("session clear after 401 failed", "path", unauth.Path, "error", err)
		}
	}
	if t.Navigator != nil {
		t.Navigator.Navigate(t.loginRoute())
	}
	logger.Warn("forced logout", "method", unauth.Method, "path", unauth.Path, "request_id", req.Header.Get(RequestIDHeader))
	if t.OnUnauthorized != nil {
		t.OnUnauthorized(unauth)
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) loginRoute() string {
	if t.LoginRoute != "" {
		return t.LoginRoute
	}
	return DefaultLoginRoute
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// readDetail extracts the backend's {"detail": ...} message. Validation errors carry
// a list of objects with a "msg" field; those are joined.
func readDetail(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, maxDetailBytes))
	if err != nil || len(data) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
