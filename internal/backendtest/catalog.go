package backendtest

import (
	"net/http"
)

type jobInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
}

type formationInput struct {
	Titre       string `json:"titre"`
	Description string `json:"description"`
	Video       string `json:"video"`
	CategoryID  int64  `json:"category_id"`
}

func (in jobInput) job() Job {
	return Job{
		Title:        in.Title,
		Description:  in.Description,
		Requirements: in.Requirements,
		Company:      in.Company,
		Location:     in.Location,
	}
}

func (in formationInput) formation() Formation {
	return Formation{
		Titre:       in.Titre,
		Description: in.Description,
		Video:       in.Video,
		CategoryID:  in.CategoryID,
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := sortedValues(s.jobs)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	j, found := s.jobs[id]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireEditor(w, r) {
		return
	}
	var in jobInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	s.mu.Lock()
	j := s.addJobLocked(in.job())
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, j)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in jobInput
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.jobs[id]; !found {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	j := in.job()
	j.ID = id
	j.Requirements = nonNil(j.Requirements)
	s.jobs[id] = j
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := deleteLocked(s, s.jobs, id); err != nil {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFormations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := sortedValues(s.formations)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFormation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	f, found := s.formations[id]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Formation not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleCreateFormation(w http.ResponseWriter, r *http.Request) {
	if !s.requireEditor(w, r) {
		return
	}
	var in formationInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Titre == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "titre is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.categories[in.CategoryID]; !found {
		writeDetail(w, http.StatusBadRequest, "Category not found")
		return
	}
	f := s.addFormationLocked(in.formation())
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleUpdateFormation(w http.ResponseWriter, r *http.Request) {
	if !s.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in formationInput
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.formations[id]; !found {
		writeDetail(w, http.StatusNotFound, "Formation not found")
		return
	}
	f := in.formation()
	f.ID = id
	s.formations[id] = f
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFormation(w http.ResponseWriter, r *http.Request) {
	if !s.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := deleteLocked(s, s.formations, id); err != nil {
		writeDetail(w, http.StatusNotFound, "Formation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := sortedValues(s.categories)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":      len(s.users),
		"total_formations": len(s.formations),
		"total_categories": len(s.categories),
		"total_parcours":   0,
		"user_stats": map[string]any{
			"competence_count": len(u.identity.Competence),
			"interests_count":  len(u.identity.Interests),
			"role":             u.identity.Role,
		},
	})
}

func (s *Server) handleAdminStatistics(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byRole := map[string]int{}
	for _, u := range s.users {
		byRole[u.identity.Role]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":          len(s.users),
		"total_providers":      byRole["content_creator"],
		"total_regular_users":  byRole["user"],
		"total_formations":     len(s.formations),
		"total_categories":     len(s.categories),
		"total_parcours":       0,
		"total_admins":         len(s.admins),
		"users_by_role":        byRole,
		"recent_registrations": len(s.users),
	})
}

func deleteLocked[T any](s *Server, m map[int64]T, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := m[id]; !found {
		return errNotFound
	}
	delete(m, id)
	return nil
}
