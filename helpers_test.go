package goCareer

import (
	"testing"

	"github.com/MrEthical07/goCareer/internal/backendtest"
)

type testEnv struct {
	backend *backendtest.Server
	client  *Client
}

func newTestEnv(t *testing.T, mutate func(*Config), configure ...func(*Builder)) *testEnv {
	t.Helper()

	backend := backendtest.New()
	t.Cleanup(backend.Close)
	backend.SeedCatalog()

	cfg := DefaultConfig()
	cfg.API.BaseURL = backend.URL()
	if mutate != nil {
		mutate(&cfg)
	}

	b := New().WithConfig(cfg)
	for _, fn := range configure {
		fn(b)
	}
	client, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return &testEnv{backend: backend, client: client}
}

var aliceSeed = backendtest.UserSeed{
	Nom:        "Martin",
	Prenom:     "Alice",
	Email:      "alice@example.com",
	Password:   "correct-horse",
	Competence: []string{"go", "sql"},
	Interests:  []string{"backend"},
}
