package goCareer

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/goCareer/capability"
	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/guard"
	"github.com/MrEthical07/goCareer/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Client]. A Builder is single-use.
type Builder struct {
	config Config

	backend    session.Backend
	redis      redis.UniversalClient
	navigator  gateway.Navigator
	httpClient *http.Client
	auditSink  AuditSink
	logger     *slog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBackend injects the session backend, overriding Config.Session.
func (b *Builder) WithBackend(backend session.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRedis supplies the client used by the redis session backend. The client is
// not closed by [Client.Close].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithNavigator receives every navigation the client requests. The default
// records them in a [gateway.History].
func (b *Builder) WithNavigator(nav gateway.Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithHTTPClient supplies the HTTP client. Its Transport, when set, performs the
// requests underneath the session interceptor.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithAuditSink sets the audit sink. Audit must also be enabled in the config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger shared by every component.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		config:  cfg,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
	}

	// -------- SESSION STORE --------
	backend, err := b.sessionBackend(cfg, c)
	if err != nil {
		return nil, err
	}
	c.store = session.NewStore(backend, session.WithLogger(logger.With("component", "session")))

	// -------- NAVIGATION --------
	c.navigator = b.navigator
	if c.navigator == nil {
		c.history = &gateway.History{}
		c.navigator = c.history
	}

	// -------- API GATEWAY --------
	transport := &gateway.Transport{
		Store:          c.store,
		Navigator:      c.navigator,
		LoginRoute:     cfg.Guard.LoginRoute,
		OnUnauthorized: c.onUnauthorized,
		Logger:         logger.With("component", "gateway"),
	}
	var apiOpts []gateway.ClientOption
	if b.httpClient != nil {
		transport.Base = b.httpClient.Transport
		apiOpts = append(apiOpts, gateway.WithHTTPClient(b.httpClient))
	}
	apiOpts = append(apiOpts,
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithUserAgent(cfg.API.UserAgent),
	)
	api, err := gateway.New(cfg.API.BaseURL, transport, apiOpts...)
	if err != nil {
		c.closeOwned()
		return nil, err
	}
	c.api = api

	// -------- ACCESS GUARD --------
	roles, err := capability.Default()
	if err != nil {
		c.closeOwned()
		return nil, err
	}
	guardOpts := []guard.Option{
		guard.WithResolveTimeout(cfg.Guard.ResolveTimeout),
		guard.WithLogger(logger.With("component", "guard")),
		guard.WithObserver(c.observeDecision),
		guard.WithResolveObserver(c.observeResolve),
	}
	if cfg.Guard.VerifyOnBootstrap {
		guardOpts = append(guardOpts, guard.WithVerifier(api))
	}
	g, err := guard.New(c.store, roles, cfg.policy(), guardOpts...)
	if err != nil {
		c.closeOwned()
		return nil, err
	}
	c.guard = g

	c.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	c.flows = c.buildFlowDeps()

	b.built = true
	c.ready.Store(true)

	return c, nil
}

func (b *Builder) sessionBackend(cfg Config, c *Client) (session.Backend, error) {
	if b.backend != nil {
		return b.backend, nil
	}

	switch cfg.Session.Backend {
	case BackendFile:
		return session.NewFileBackend(cfg.Session.Path,
			session.WithFileLogger(c.logger.With("component", "session"))), nil
	case BackendRedis:
		client := b.redis
		if client == nil {
			if cfg.Session.RedisAddr == "" {
				return nil, ErrRedisRequired
			}
			owned := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr})
			c.ownedRedis = owned
			client = owned
		}
		return session.NewRedisBackend(client, cfg.Session.RedisPrefix, cfg.Session.TTL), nil
	default:
		return session.NewMemoryBackend(), nil
	}
}
