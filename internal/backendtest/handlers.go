package backendtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/goCareer/session"
	"golang.org/x/crypto/bcrypt"
)

const (
	detailBadCredentials = "Incorrect email or password"
	detailInvalidToken   = "Could not validate credentials"
	detailNotAuth        = "Not authenticated"
)

// Handler returns the backend routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/admin/login", s.handleAdminLogin)

	mux.HandleFunc("GET /users/me", s.handleCurrentUser)
	mux.HandleFunc("PUT /users/me", s.handleUpdateCurrentUser)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)

	mux.HandleFunc("GET /formations", s.handleListFormations)
	mux.HandleFunc("GET /formations/{id}", s.handleGetFormation)
	mux.HandleFunc("POST /formations", s.handleCreateFormation)
	mux.HandleFunc("PUT /formations/{id}", s.handleUpdateFormation)
	mux.HandleFunc("DELETE /formations/{id}", s.handleDeleteFormation)
	mux.HandleFunc("GET /categories", s.handleListCategories)

	mux.HandleFunc("GET /api/statistics", s.handleStatistics)
	mux.HandleFunc("GET /api/admin/statistics", s.handleAdminStatistics)

	mux.HandleFunc("POST /api/recommend/keyword", s.handleRecommendKeyword)
	mux.HandleFunc("POST /api/recommend/ai", s.handleRecommendAI)
	mux.HandleFunc("POST /api/recommend/submit", s.handleRecommendSubmit)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		mux.ServeHTTP(w, r)
	})
}

type registration struct {
	Nom        string   `json:"nom"`
	Prenom     string   `json:"prenom"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Competence []string `json:"competence"`
	Interests  []string `json:"interests"`
}

type userUpdate struct {
	Nom        *string  `json:"nom"`
	Prenom     *string  `json:"prenom"`
	Email      *string  `json:"email"`
	Competence []string `json:"competence"`
	Interests  []string `json:"interests"`
	Password   *string  `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registration
	if !decodeBody(w, r, &in) {
		return
	}
	id, ok := s.createUser(w, in)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (s *Server) createUser(w http.ResponseWriter, in registration) (session.Identity, bool) {
	if in.Email == "" || in.Password == "" || in.Nom == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "nom, email and password are required")
		return session.Identity{}, false
	}
	if s.userByEmail(in.Email) != nil {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return session.Identity{}, false
	}
	return s.AddUser(UserSeed{
		Nom:        in.Nom,
		Prenom:     in.Prenom,
		Email:      in.Email,
		Password:   in.Password,
		Competence: in.Competence,
		Interests:  in.Interests,
	}), true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email, password, ok := credentials(w, r)
	if !ok {
		return
	}

	u := s.userByEmail(email)
	if u == nil || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
		return
	}

	token, err := s.IssueToken(u.identity.Email, u.identity.ID, TypeUser)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         u.identity,
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	email, password, ok := credentials(w, r)
	if !ok {
		return
	}

	a := s.adminByEmail(email)
	if a == nil || bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
		return
	}

	token, err := s.IssueToken(a.admin.Email, a.admin.ID, TypeAdmin)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"admin":        a.admin,
	})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	s.waitCurrentUser(r.Context())
	if r.Context().Err() != nil {
		return
	}

	s.mu.Lock()
	status, detail := s.meStatus, s.meDetail
	s.mu.Unlock()
	if status != 0 {
		writeDetail(w, status, detail)
		return
	}

	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u.identity)
}

func (s *Server) handleUpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	s.applyUserUpdate(w, r, u.identity.ID)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	s.mu.Lock()
	records := sortedValues(s.users)
	s.mu.Unlock()

	out := make([]session.Identity, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.identity)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var in registration
	if !decodeBody(w, r, &in) {
		return
	}
	id, ok := s.createUser(w, in)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	u, found := s.users[id]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.identity)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.applyUserUpdate(w, r, id)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	_, found := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyUserUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var in userUpdate
	if !decodeBody(w, r, &in) {
		return
	}

	var hash []byte
	if in.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if in.Email != nil && *in.Email != u.identity.Email {
		for _, other := range s.users {
			if other.identity.Email == *in.Email {
				writeDetail(w, http.StatusBadRequest, "Email already registered")
				return
			}
		}
		u.identity.Email = *in.Email
	}
	if in.Nom != nil {
		u.identity.Nom = *in.Nom
	}
	if in.Prenom != nil {
		u.identity.Prenom = *in.Prenom
	}
	if in.Competence != nil {
		u.identity.Competence = nonNil(in.Competence)
	}
	if in.Interests != nil {
		u.identity.Interests = nonNil(in.Interests)
	}
	if hash != nil {
		u.hash = hash
	}
	writeJSON(w, http.StatusOK, u.identity)
}

func (s *Server) userByEmail(email string) *userRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.identity.Email, email) {
			return u
		}
	}
	return nil
}

func (s *Server) adminByEmail(email string) *adminRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.admin.Email, email) {
			return a
		}
	}
	return nil
}

// authenticate parses the bearer token. On failure the response has been written.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*Claims, bool) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeDetail(w, http.StatusUnauthorized, detailNotAuth)
		return nil, false
	}

	s.mu.Lock()
	_, revoked := s.revoked[token]
	s.mu.Unlock()
	if revoked {
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
		return nil, false
	}

	claims, err := s.issuer.parse(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
		return nil, false
	}
	return claims, true
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*userRecord, bool) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return nil, false
	}
	if claims.Type == TypeAdmin {
		writeDetail(w, http.StatusForbidden, "Admin access required. Use /auth/admin/login endpoint.")
		return nil, false
	}

	s.mu.Lock()
	u, found := s.users[claims.UserID]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
		return nil, false
	}
	return u, true
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*adminRecord, bool) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return nil, false
	}
	if claims.Type != TypeAdmin {
		writeDetail(w, http.StatusForbidden, "Admin access required")
		return nil, false
	}

	s.mu.Lock()
	a, found := s.admins[claims.UserID]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
		return nil, false
	}
	return a, true
}

// requireEditor admits administrators and users whose role is content_creator or
// admin.
func (s *Server) requireEditor(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if claims.Type == TypeAdmin {
		if _, found := s.admins[claims.UserID]; found {
			return true
		}
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
		return false
	}
	u, found := s.users[claims.UserID]
	if !found {
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
		return false
	}
	if u.identity.Role != "content_creator" && u.identity.Role != "admin" {
		writeDetail(w, http.StatusForbidden, "Content creator access required")
		return false
	}
	return true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}

func credentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return "", "", false
	}
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return "", "", false
	}
	return email, password, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, map[string]string{"detail": detail})
}

var errNotFound = errors.New("not found")
