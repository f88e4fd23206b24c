package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	goCareer "github.com/MrEthical07/goCareer"
	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/internal/backendtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	backend     *backendtest.Server
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	backend := backendtest.New()
	t.Cleanup(backend.Close)
	backend.SeedCatalog()
	backend.AddUser(backendtest.UserSeed{
		Nom:        "Martin",
		Prenom:     "Alice",
		Email:      "alice@example.com",
		Password:   "correct-horse",
		Competence: []string{"go", "sql"},
		Interests:  []string{"backend"},
	})
	backend.AddUser(backendtest.UserSeed{
		Nom:      "Bernard",
		Prenom:   "Chloe",
		Email:    "chloe@example.com",
		Password: "pen-and-ink",
		Role:     "content_creator",
	})
	backend.AddAdmin("Durand", "Root", "root@example.com", "admin-pass")

	return &harness{
		backend:     backend,
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--api", h.backend.URL(), "--session-file", h.sessionFile}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err, "careerctl %v", args)
	return out
}

func TestRootRegistersSubcommands(t *testing.T) {
	want := []string{"login", "admin-login", "register", "logout", "whoami", "check", "status", "jobs", "formations", "recommend"}

	found := map[string]bool{}
	for _, c := range NewRootCommand().Commands() {
		found[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, found[name], "subcommand %q not registered", name)
	}
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "login", "--email", "alice@example.com", "--password", "correct-horse")
	assert.Contains(t, out, "signed in as Alice Martin (user)")

	out = h.mustRun(t, "whoami")
	assert.Contains(t, out, "Alice Martin <alice@example.com> role=user")

	_, err := os.Stat(h.sessionFile)
	require.NoError(t, err)
}

func TestLoginPasswordFromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv(envPassword, "correct-horse")

	out := h.mustRun(t, "login", "--email", "alice@example.com")
	assert.Contains(t, out, "signed in")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "login", "--email", "alice@example.com", "--password", "wrong")
	require.ErrorIs(t, err, goCareer.ErrInvalidCredentials)

	out := h.mustRun(t, "whoami")
	assert.Contains(t, out, "not signed in")
}

func TestCheckWithoutSession(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "-o", "json", "check", "/dashboard", "/login")

	var results []checkResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "redirect_login", results[0].Outcome)
	assert.Equal(t, "/login", results[0].Location)
	assert.Equal(t, "allow", results[1].Outcome)

	_, err := h.run(t, "check", "--strict", "/dashboard")
	require.ErrorIs(t, err, ErrDenied)
}

func TestCheckContentCreator(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "--email", "chloe@example.com", "--password", "pen-and-ink")

	out := h.mustRun(t, "-o", "json", "check", "/manage-jobs", "/admin", "/jobs")

	var results []checkResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "allow", results[0].Outcome)
	assert.Equal(t, "redirect_default", results[1].Outcome)
	assert.Equal(t, "/dashboard", results[1].Location)
	assert.Equal(t, "admin", results[1].Required)
	assert.Equal(t, "allow", results[2].Outcome)
}

func TestAdminLoginOpensAdminRoute(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "admin-login", "--email", "root@example.com", "--password", "admin-pass")
	assert.Contains(t, out, "administrator Root Durand")

	h.mustRun(t, "check", "--strict", "/admin")

	out = h.mustRun(t, "whoami")
	assert.Contains(t, out, "root@example.com")
	assert.Contains(t, out, "role=admin")
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "--email", "alice@example.com", "--password", "correct-horse")

	out := h.mustRun(t, "logout")
	assert.Contains(t, out, "signed out")

	out = h.mustRun(t, "whoami")
	assert.Contains(t, out, "not signed in")

	// logging out twice is fine
	h.mustRun(t, "logout")
}

func TestRevokedSessionIsClearedOnNextInvocation(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "--email", "alice@example.com", "--password", "correct-horse")
	h.backend.RevokeAll()

	out := h.mustRun(t, "-o", "json", "whoami")

	var got whoami
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "unauthorized", got.State)
	assert.Nil(t, got.Identity)
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "register",
		"--name", "Petit Jean Paul",
		"--email", "jean@example.com",
		"--password", "s3cret-pass",
		"--competence", "python,sql",
		"--interest", "data",
		"--login",
	)
	assert.Contains(t, out, "registered jean@example.com")
	assert.Contains(t, out, "signed in")

	out = h.mustRun(t, "-o", "json", "whoami")
	var got whoami
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Identity)
	assert.Equal(t, "Petit", got.Identity.Nom)
	assert.Equal(t, "Jean Paul", got.Identity.Prenom)
	assert.Equal(t, []string{"python", "sql"}, got.Identity.Competence)
}

func TestJobsAndFormations(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "-o", "json", "jobs")
	var jobs []gateway.Job
	require.NoError(t, json.Unmarshal([]byte(out), &jobs))
	assert.Len(t, jobs, 3)

	out = h.mustRun(t, "formations")
	assert.Contains(t, out, "Go pour le backend")
}

func TestRecommendRequiresSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "recommend")
	require.ErrorIs(t, err, ErrNotSignedIn)

	h.mustRun(t, "login", "--email", "alice@example.com", "--password", "correct-horse")
	out := h.mustRun(t, "-o", "json", "recommend", "--top", "2")

	var rec gateway.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "keyword", rec.Source)
	assert.NotEmpty(t, rec.Skillpath)
}

func TestRecommendRejectsUnknownMode(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "recommend", "--mode", "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestStatusReportsPosture(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "-o", "json", "status")

	var report struct {
		State    string `json:"state"`
		API      string `json:"api"`
		Security struct {
			SessionBackend string   `json:"session_backend"`
			SharedSession  bool     `json:"shared_session"`
			TLS            bool     `json:"tls"`
			LintCodes      []string `json:"lint_codes"`
		} `json:"security"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "unauthorized", report.State)
	assert.Equal(t, h.backend.URL(), report.API)
	assert.Equal(t, "file", report.Security.SessionBackend)
	assert.True(t, report.Security.SharedSession)
	assert.False(t, report.Security.TLS)

	text := h.mustRun(t, "status")
	assert.Contains(t, text, "backend:  file (shared=true)")
}

func TestConfigFileIsLoaded(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "careerctl.yaml")
	yaml := "api:\n  base_url: " + h.backend.URL() + "\nguard:\n  default_route: /jobs\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	var stdout bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "--session-file", h.sessionFile, "-o", "json", "check", "/admin"})
	require.NoError(t, cmd.Execute())

	var results []checkResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "redirect_login", results[0].Outcome)
}

func TestUnknownOutputFormat(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "-o", "xml", "jobs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestYAMLOutput(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "-o", "yaml", "check", "/register")
	assert.Contains(t, out, "outcome: allow")
}
