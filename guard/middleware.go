package guard

import (
	"context"
	"net/http"
	"strconv"
)

// RetryAfterSeconds is advertised while resolution is pending.
const RetryAfterSeconds = 1

type decisionContextKey struct{}

// DecisionFromContext returns the decision injected by [Middleware].
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(Decision)
	return d, ok
}

// WithDecision returns a copy of ctx carrying d.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey{}, d)
}

// Middleware guards every request path served by next. Redirect outcomes answer 302,
// pending resolution answers 503 with Retry-After, allowed requests carry the
// decision in their context.
func Middleware(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			d := g.Evaluate(r.Context(), r.URL.Path)
			switch d.Outcome {
			case Allow:
				next.ServeHTTP(w, r.WithContext(WithDecision(r.Context(), d)))
			case Wait:
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
				http.Error(w, "session resolution in progress", http.StatusServiceUnavailable)
			default:
				http.Redirect(w, r, d.Location, http.StatusFound)
			}
		})
	}
}
