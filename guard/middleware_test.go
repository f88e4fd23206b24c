package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/goCareer/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMiddlewareOutcomes(t *testing.T) {
	g, store := newGuard(t)
	var got Decision
	h := Middleware(g)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, ok := DecisionFromContext(r.Context())
		require.True(t, ok)
		got = d
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := serve(h, "/profile")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = serve(h, "/login")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	login(t, store, "user")
	rec = serve(h, "/admin")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = serve(h, "/jobs")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/jobs", got.Route)
	assert.Equal(t, "user", got.Role)
}

func TestMiddlewarePendingAnswers503(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	g, store := newGuard(t, WithVerifier(VerifierFunc(func(ctx context.Context) (session.Identity, error) {
		close(entered)
		<-release
		return session.Identity{ID: 1, Role: "user"}, nil
	})))
	login(t, store, "user")

	done := make(chan State, 1)
	go func() { done <- g.Resolve(context.Background()) }()
	<-entered

	h := Middleware(g)(http.NotFoundHandler())
	rec := serve(h, "/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	close(release)
	assert.Equal(t, StateAuthorized, <-done)
	rec = serve(h, "/dashboard")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddlewareNilGuard(t *testing.T) {
	rec := serve(Middleware(nil)(http.NotFoundHandler()), "/")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
