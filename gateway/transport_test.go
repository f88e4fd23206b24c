package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/MrEthical07/goCareer/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store, *History) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewStore(session.NewMemoryBackend())
	history := &History{}
	client, err := New(srv.URL, &Transport{Store: store, Navigator: history})
	require.NoError(t, err)
	return client, store, history
}

type headerLog struct {
	mu     sync.Mutex
	values []string
}

func (l *headerLog) add(v string) {
	l.mu.Lock()
	l.values = append(l.values, v)
	l.mu.Unlock()
}

func (l *headerLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.values...)
}

func TestTransportAttachesBearerOnlyWhenTokenPresent(t *testing.T) {
	var seen headerLog
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	ctx := context.Background()

	_, err := client.ListJobs(ctx)
	require.NoError(t, err)

	require.NoError(t, store.SetSession(ctx, "tok-1", session.Identity{ID: 1}))
	_, err = client.ListJobs(ctx)
	require.NoError(t, err)

	require.Equal(t, []string{"", "Bearer tok-1"}, seen.all())
}

func TestTransportReadsTokenOnEveryRequest(t *testing.T) {
	var seen headerLog
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("[]"))
	}))
	ctx := context.Background()

	require.NoError(t, store.SetSession(ctx, "first", session.Identity{ID: 1}))
	_, err := client.ListJobs(ctx)
	require.NoError(t, err)

	require.NoError(t, store.SetSession(ctx, "second", session.Identity{ID: 1}))
	_, err = client.ListJobs(ctx)
	require.NoError(t, err)

	require.NoError(t, store.ClearSession(ctx))
	_, err = client.ListJobs(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer first", "Bearer second", ""}, seen.all())
}

func TestTransportSetsRequestID(t *testing.T) {
	var log headerLog
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.Header.Get(RequestIDHeader))
		_, _ = w.Write([]byte("[]"))
	}))

	_, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	_, err = client.ListCategories(context.Background())
	require.NoError(t, err)

	ids := log.all()
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestUnauthorizedClearsSessionAndForcesLogin(t *testing.T) {
	var calls atomic.Int32
	client, store, history := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "stale", session.Identity{ID: 4, Role: "user"}))

	_, err := client.Statistics(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	var unauth *UnauthorizedError
	require.True(t, errors.As(err, &unauth))
	assert.Equal(t, "/api/statistics", unauth.Path)
	assert.Equal(t, "Could not validate credentials", unauth.Detail)

	_, ok := store.GetToken(ctx)
	assert.False(t, ok, "token must be cleared")
	_, ok = store.GetIdentity(ctx)
	assert.False(t, ok, "identity must be cleared")

	last, ok := history.Last()
	require.True(t, ok)
	assert.Equal(t, DefaultLoginRoute, last)
	assert.Equal(t, int32(1), calls.Load(), "401 must not be retried")
}

func TestUnauthorizedFromAnyEndpoint(t *testing.T) {
	calls := map[string]func(context.Context, *Client) error{
		"jobs": func(ctx context.Context, c *Client) error {
			_, err := c.ListJobs(ctx)
			return err
		},
		"formation": func(ctx context.Context, c *Client) error {
			_, err := c.GetFormation(ctx, 3)
			return err
		},
		"profile": func(ctx context.Context, c *Client) error {
			nom := "x"
			_, err := c.UpdateCurrentUser(ctx, UserUpdate{Nom: &nom})
			return err
		},
		"delete user": func(ctx context.Context, c *Client) error {
			return c.DeleteUser(ctx, 9)
		},
		"recommend": func(ctx context.Context, c *Client) error {
			_, err := c.RecommendKeyword(ctx, 1, 0)
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			client, store, history := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			ctx := context.Background()
			require.NoError(t, store.SetSession(ctx, "tok", session.Identity{ID: 1}))

			err := call(ctx, client)

			require.ErrorIs(t, err, ErrUnauthenticated)
			assert.False(t, store.Snapshot(ctx).HasToken())
			assert.Equal(t, []string{DefaultLoginRoute}, history.Routes())
		})
	}
}

func TestUnauthorizedHookAndCustomLoginRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewStore(nil)
	var routes []string
	var hooked *UnauthorizedError
	client, err := New(srv.URL, &Transport{
		Store:          store,
		Navigator:      NavigatorFunc(func(route string) { routes = append(routes, route) }),
		LoginRoute:     "/signin",
		OnUnauthorized: func(e *UnauthorizedError) { hooked = e },
	})
	require.NoError(t, err)

	_, err = client.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, []string{"/signin"}, routes)
	require.NotNil(t, hooked)
	assert.Equal(t, "/users/me", hooked.Path)
}

func TestNonAuthFailuresRetainSession(t *testing.T) {
	client, store, history := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/admin"):
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail":"Admin access required"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"Error fetching statistics: boom"}`))
		}
	}))
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "tok", session.Identity{ID: 1}))

	_, err := client.AdminStatistics(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Admin access required", UserMessage(err, "Failed to fetch statistics"))

	_, err = client.Statistics(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	token, ok := store.GetToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
	assert.Empty(t, history.Routes())
}

func TestNetworkFailureIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := session.NewStore(nil)
	require.NoError(t, store.SetSession(context.Background(), "tok", session.Identity{ID: 1}))
	client, err := New(url, &Transport{Store: store})
	require.NoError(t, err)

	_, err = client.ListJobs(context.Background())
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Failed to fetch jobs", UserMessage(err, "Failed to fetch jobs"))

	_, ok := store.GetToken(context.Background())
	assert.True(t, ok, "network failure must retain the session")
}

func TestReadDetailShapes(t *testing.T) {
	cases := map[string]string{
		`{"detail":"Email already registered"}`:                     "Email already registered",
		`{"detail":[{"msg":"field required"},{"msg":"bad email"}]}`: "field required; bad email",
		`{"message":"nope"}`:                                        "",
		`not json`:                                                  "",
		``:                                                          "",
	}
	for body, want := range cases {
		assert.Equal(t, want, readDetail(strings.NewReader(body)), body)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "x"))
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(&APIError{StatusCode: 500}, "fallback"))
	assert.Equal(t, "detail", UserMessage(&APIError{StatusCode: 400, Detail: "detail"}, "fallback"))
	assert.Equal(t, "Incorrect email or password",
		UserMessage(&UnauthorizedError{Detail: "Incorrect email or password"}, "Login failed"))
}
