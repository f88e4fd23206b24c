package goCareer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "https base url",
			mutate:    func(c *Config) { c.API.BaseURL = "https://api.example.com/v1" },
			wantValid: true,
		},
		{
			name:   "empty base url",
			mutate: func(c *Config) { c.API.BaseURL = "  " },
		},
		{
			name:   "relative base url",
			mutate: func(c *Config) { c.API.BaseURL = "localhost:8000" },
		},
		{
			name:   "negative api timeout",
			mutate: func(c *Config) { c.API.Timeout = -time.Second },
		},
		{
			name:   "file backend without path",
			mutate: func(c *Config) { c.Session.Backend = BackendFile },
		},
		{
			name: "file backend with path",
			mutate: func(c *Config) {
				c.Session.Backend = BackendFile
				c.Session.Path = "/tmp/session.json"
			},
			wantValid: true,
		},
		{
			name:      "redis backend",
			mutate:    func(c *Config) { c.Session.Backend = BackendRedis },
			wantValid: true,
		},
		{
			name: "redis backend without prefix",
			mutate: func(c *Config) {
				c.Session.Backend = BackendRedis
				c.Session.RedisPrefix = ""
			},
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Session.Backend = "cookie" },
		},
		{
			name:   "negative ttl",
			mutate: func(c *Config) { c.Session.TTL = -time.Minute },
		},
		{
			name:   "unrooted login route",
			mutate: func(c *Config) { c.Guard.LoginRoute = "login" },
		},
		{
			name:   "login equals default",
			mutate: func(c *Config) { c.Guard.DefaultRoute = c.Guard.LoginRoute },
		},
		{
			name:   "zero resolve timeout",
			mutate: func(c *Config) { c.Guard.ResolveTimeout = 0 },
		},
		{
			name: "audit without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
		{
			name:      "json log format",
			mutate:    func(c *Config) { c.Logging.Format = "JSON" },
			wantValid: true,
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "logfmt" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
			}
		})
	}
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
api:
  base_url: https://careers.example.com
  timeout: 5s
session:
  backend: redis
  redis_addr: 127.0.0.1:6379
  ttl: 30m
guard:
  trust_admin_slot: false
  resolve_timeout: 2s
logging:
  level: debug
`))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if cfg.API.BaseURL != "https://careers.example.com" || cfg.API.Timeout != 5*time.Second {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Session.Backend != BackendRedis || cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Session.RedisPrefix != "gc" {
		t.Fatalf("expected default prefix to survive, got %q", cfg.Session.RedisPrefix)
	}
	if cfg.Guard.TrustAdminSlot || cfg.Guard.ResolveTimeout != 2*time.Second {
		t.Fatalf("unexpected guard config: %+v", cfg.Guard)
	}
	if cfg.Guard.LoginRoute != "/login" || !cfg.Guard.VerifyOnBootstrap {
		t.Fatalf("expected guard defaults to survive: %+v", cfg.Guard)
	}
	if cfg.API.UserAgent == "" {
		t.Fatal("expected default user agent to survive")
	}
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"malformed yaml": "api: [",
		"bad duration":   "api:\n  timeout: soon\n",
		"bad backend":    "session:\n  backend: cookie\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(doc)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "careerctl.yaml")
	doc := "session:\n  backend: file\n  path: " + filepath.Join(t.TempDir(), "session.json") + "\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Session.Backend != BackendFile {
		t.Fatalf("expected file backend, got %q", cfg.Session.Backend)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoggingConfigNewLogger(t *testing.T) {
	var buf syncBuffer
	logger, err := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	if buf.Contains("hidden") {
		t.Fatal("info record must be filtered at warn level")
	}
	if !buf.Contains(`"msg":"shown"`) {
		t.Fatal("expected JSON warn record")
	}

	if _, err := (LoggingConfig{Level: "loud"}).NewLogger(&buf); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestConfigPolicyKeepsLoginRoutePublic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Guard.LoginRoute = "/signin"
	cfg.Guard.TrustAdminSlot = false

	p := cfg.policy()
	if !p.IsPublic("/signin") {
		t.Fatal("custom login route must be public")
	}
	if p.TrustAdminSlot {
		t.Fatal("expected TrustAdminSlot to follow config")
	}
	if p.LoginRoute != "/signin" || p.DefaultRoute != "/dashboard" {
		t.Fatalf("unexpected routes: %q %q", p.LoginRoute, p.DefaultRoute)
	}
}
