package goCareer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/guard"
	"gopkg.in/yaml.v3"
)

// Config is the full client configuration. The zero value is not usable; start
// from [DefaultConfig] or [LoadConfig].
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Guard   GuardConfig   `yaml:"guard"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the REST backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionBackend selects where the session slots are persisted.
type SessionBackend string

const (
	// BackendMemory keeps the session in process memory.
	BackendMemory SessionBackend = "memory"
	// BackendFile keeps the session in a JSON file shared by every process using the path.
	BackendFile SessionBackend = "file"
	// BackendRedis keeps the session in redis keys shared by every client using the prefix.
	BackendRedis SessionBackend = "redis"
)

// SessionConfig configures session persistence. It is ignored when a backend is
// injected with [Builder.WithBackend].
type SessionConfig struct {
	Backend     SessionBackend `yaml:"backend"`
	Path        string         `yaml:"path"`
	RedisAddr   string         `yaml:"redis_addr"`
	RedisPrefix string         `yaml:"redis_prefix"`
	// TTL expires redis slots. Zero keeps them until cleared.
	TTL time.Duration `yaml:"ttl"`
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig configures navigation decisions.
type GuardConfig struct {
	LoginRoute     string        `yaml:"login_route"`
	DefaultRoute   string        `yaml:"default_route"`
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
	// TrustAdminSlot grants the admin capability to any session holding an admin
	// record, in addition to the capability of the identity role.
	TrustAdminSlot bool `yaml:"trust_admin_slot"`
	// VerifyOnBootstrap re-validates a stored session against the current-user
	// endpoint when the client bootstraps.
	VerifyOnBootstrap bool `yaml:"verify_on_bootstrap"`
}

/*
====================================
AUDIT / METRICS / LOGGING
====================================
*/

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig configures in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// LoggingConfig configures the logger built by [LoggingConfig.NewLogger].
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration for a local backend on port 8000 with an
// in-memory session.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   gateway.DefaultTimeout,
			UserAgent: gateway.DefaultUserAgent,
		},
		Session: SessionConfig{
			Backend:     BackendMemory,
			RedisPrefix: "gc",
		},
		Guard: GuardConfig{
			LoginRoute:        guard.DefaultLoginRoute,
			DefaultRoute:      guard.DefaultHomeRoute,
			ResolveTimeout:    guard.DefaultResolveTimeout,
			TrustAdminSlot:    true,
			VerifyOnBootstrap: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML file over [DefaultConfig] and validates the result.
// Keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over [DefaultConfig] and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL must be set")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API BaseURL must be an absolute http or https URL")
	}
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}

	// Session
	switch c.Session.Backend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.Session.Path) == "" {
			return errors.New("Session Path is required for the file backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Session.RedisPrefix) == "" {
			return errors.New("Session RedisPrefix must be set for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported session backend %q", c.Session.Backend)
	}
	if c.Session.TTL < 0 {
		return errors.New("Session TTL must be >= 0")
	}

	// Guard
	if !strings.HasPrefix(c.Guard.LoginRoute, "/") {
		return errors.New("Guard LoginRoute must start with /")
	}
	if !strings.HasPrefix(c.Guard.DefaultRoute, "/") {
		return errors.New("Guard DefaultRoute must start with /")
	}
	if c.Guard.LoginRoute == c.Guard.DefaultRoute {
		return errors.New("Guard LoginRoute and DefaultRoute must differ")
	}
	if c.Guard.ResolveTimeout <= 0 {
		return errors.New("Guard ResolveTimeout must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Logging
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}

	return nil
}

// NewLogger builds a slog logger writing to w at the configured level and format.
func (c LoggingConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unsupported log level %q", s)
	}
	return level, nil
}

func (c Config) policy() guard.Policy {
	p := guard.DefaultPolicy()
	p.LoginRoute = c.Guard.LoginRoute
	p.DefaultRoute = c.Guard.DefaultRoute
	p.TrustAdminSlot = c.Guard.TrustAdminSlot
	if !containsRoute(p.Public, p.LoginRoute) {
		p.Public = append(p.Public, p.LoginRoute)
	}
	return p
}

func containsRoute(routes []string, route string) bool {
	for _, r := range routes {
		if r == route {
			return true
		}
	}
	return false
}
