package backendtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/MrEthical07/goCareer/session"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSecret signs tokens unless [WithSecret] is given.
const DefaultSecret = "backendtest-secret"

// Job mirrors the backend job schema.
type Job struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// Formation mirrors the backend formation schema.
type Formation struct {
	ID          int64  `json:"id"`
	Titre       string `json:"titre"`
	Description string `json:"description,omitempty"`
	Video       string `json:"video,omitempty"`
	CategoryID  int64  `json:"category_id"`
}

// Category mirrors the backend category schema.
type Category struct {
	ID  int64  `json:"id"`
	Nom string `json:"nom"`
}

// UserSeed describes a user created directly in the backend.
type UserSeed struct {
	Nom        string
	Prenom     string
	Email      string
	Password   string
	Role       string
	Competence []string
	Interests  []string
}

// RecordedRequest is one request seen by the server.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type userRecord struct {
	identity session.Identity
	hash     []byte
}

type adminRecord struct {
	admin session.AdminIdentity
	hash  []byte
}

type config struct {
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
	bcryptCost int
}

// Option configures a [Server].
type Option func(*config)

// WithSecret sets the HS256 signing secret.
func WithSecret(secret string) Option {
	return func(c *config) {
		c.secret = []byte(secret)
	}
}

// WithTokenTTL sets the access token lifetime. The default is 30 minutes.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithClock sets the time source used to issue and check tokens.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(c *config) {
		c.bcryptCost = cost
	}
}

// Server is a running fake backend.
type Server struct {
	issuer     *tokenIssuer
	bcryptCost int
	srv        *httptest.Server

	mu          sync.Mutex
	nextID      int64
	users       map[int64]*userRecord
	admins      map[int64]*adminRecord
	jobs        map[int64]Job
	formations  map[int64]Formation
	categories  map[int64]Category
	issued      map[string]struct{}
	revoked     map[string]struct{}
	requests    []RecordedRequest
	meGate      chan struct{}
	meStatus    int
	meDetail    string
	aiAvailable bool
}

// New starts a fake backend on a loopback listener. Close it when done.
func New(opts ...Option) *Server {
	cfg := config{
		secret:     []byte(DefaultSecret),
		ttl:        30 * time.Minute,
		now:        time.Now,
		bcryptCost: bcrypt.MinCost,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	issuer, err := newTokenIssuer(cfg.secret, cfg.ttl, cfg.now)
	if err != nil {
		panic("backendtest: " + err.Error())
	}

	s := &Server{
		issuer:      issuer,
		bcryptCost:  cfg.bcryptCost,
		users:       make(map[int64]*userRecord),
		admins:      make(map[int64]*adminRecord),
		jobs:        make(map[int64]Job),
		formations:  make(map[int64]Formation),
		categories:  make(map[int64]Category),
		issued:      make(map[string]struct{}),
		revoked:     make(map[string]struct{}),
		aiAvailable: true,
	}
	s.srv = httptest.NewServer(s.Handler())
	return s
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close stops the server and releases any stalled current-user calls.
func (s *Server) Close() {
	s.mu.Lock()
	if s.meGate != nil {
		close(s.meGate)
		s.meGate = nil
	}
	s.mu.Unlock()
	s.srv.Close()
}

// AddUser creates a user and returns its identity. An empty role is stored as "user".
func (s *Server) AddUser(seed UserSeed) session.Identity {
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), s.bcryptCost)
	if err != nil {
		panic("backendtest: hash password: " + err.Error())
	}
	role := seed.Role
	if role == "" {
		role = "user"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := session.Identity{
		ID:         s.nextID,
		Nom:        seed.Nom,
		Prenom:     seed.Prenom,
		Email:      seed.Email,
		Competence: nonNil(seed.Competence),
		Interests:  nonNil(seed.Interests),
		Role:       role,
	}
	s.users[id.ID] = &userRecord{identity: id, hash: hash}
	return id
}

// AddAdmin creates an administrator.
func (s *Server) AddAdmin(nom, prenom, email, password string) session.AdminIdentity {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		panic("backendtest: hash password: " + err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	admin := session.AdminIdentity{ID: s.nextID, Nom: nom, Prenom: prenom, Email: email}
	s.admins[admin.ID] = &adminRecord{admin: admin, hash: hash}
	return admin
}

// SetRole changes a stored user's role.
func (s *Server) SetRole(id int64, role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if ok {
		u.identity.Role = role
	}
	return ok
}

// IssueToken signs a token directly, bypassing the login endpoints.
func (s *Server) IssueToken(email string, id int64, typ string) (string, error) {
	token, err := s.issuer.issue(email, id, typ)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.issued[token] = struct{}{}
	s.mu.Unlock()
	return token, nil
}

// Revoke makes every later request carrying token fail with 401.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	s.revoked[token] = struct{}{}
	s.mu.Unlock()
}

// RevokeAll revokes every token issued so far.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	for token := range s.issued {
		s.revoked[token] = struct{}{}
	}
	s.mu.Unlock()
}

// StallCurrentUser makes GET /users/me block until the returned release function is
// called, the server is closed, or the request is cancelled.
func (s *Server) StallCurrentUser() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.meGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.meGate == gate {
				close(gate)
				s.meGate = nil
			}
			s.mu.Unlock()
		})
	}
}

// FailCurrentUser makes GET /users/me answer with status and detail. A zero status
// restores normal behavior.
func (s *Server) FailCurrentUser(status int, detail string) {
	s.mu.Lock()
	s.meStatus = status
	s.meDetail = detail
	s.mu.Unlock()
}

// SetAIAvailable toggles the AI recommender. When unavailable, AI requests fall back
// to keyword recommendations with a fallback reason.
func (s *Server) SetAIAvailable(ok bool) {
	s.mu.Lock()
	s.aiAvailable = ok
	s.mu.Unlock()
}

// Requests returns every request received, oldest first.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// SeedCatalog adds sample categories, formations and jobs.
func (s *Server) SeedCatalog() {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev := s.addCategoryLocked("Developpement")
	data := s.addCategoryLocked("Data")
	s.addFormationLocked(Formation{Titre: "Go pour le backend", Description: "Services HTTP et concurrence en Go", CategoryID: dev.ID})
	s.addFormationLocked(Formation{Titre: "SQL avance", Description: "Requetes analytiques et index", CategoryID: data.ID})
	s.addFormationLocked(Formation{Titre: "React moderne", Description: "Hooks et routage", CategoryID: dev.ID})
	s.addJobLocked(Job{Title: "Developpeur Go", Requirements: []string{"go", "sql", "docker"}, Company: "Acme", Location: "Paris"})
	s.addJobLocked(Job{Title: "Data analyst", Requirements: []string{"sql", "python"}, Company: "Globex", Location: "Lyon"})
	s.addJobLocked(Job{Title: "Developpeur front", Requirements: []string{"react", "javascript"}, Company: "Initech", Location: "Remote"})
}

func (s *Server) addCategoryLocked(nom string) Category {
	s.nextID++
	c := Category{ID: s.nextID, Nom: nom}
	s.categories[c.ID] = c
	return c
}

func (s *Server) addFormationLocked(f Formation) Formation {
	s.nextID++
	f.ID = s.nextID
	s.formations[f.ID] = f
	return f
}

func (s *Server) addJobLocked(j Job) Job {
	s.nextID++
	j.ID = s.nextID
	j.Requirements = nonNil(j.Requirements)
	s.jobs[j.ID] = j
	return j
}

func (s *Server) waitCurrentUser(ctx context.Context) {
	s.mu.Lock()
	gate := s.meGate
	s.mu.Unlock()
	if gate == nil {
		return
	}
	select {
	case <-gate:
	case <-ctx.Done():
	}
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	})
	s.mu.Unlock()
}

func sortedValues[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
