package backendtest

import (
	"net/http"
	"sort"
	"strings"
)

type profileRequest struct {
	UserID int64  `json:"user_id"`
	Mode   string `json:"mode"`
	TopN   int    `json:"top_n"`
}

type submitRequest struct {
	Goal        string   `json:"goal"`
	Competences []string `json:"competences"`
	Interests   []string `json:"interests"`
	Mode        string   `json:"mode"`
	TopN        int      `json:"top_n"`
}

type scored struct {
	ID          int64   `json:"id"`
	Titre       string  `json:"titre"`
	Score       float64 `json:"score"`
	MatchReason string  `json:"match_reason,omitempty"`
}

func (s *Server) handleRecommendKeyword(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var in profileRequest
	if !decodeBody(w, r, &in) {
		return
	}
	profile, ok := s.profile(w, in.UserID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    "keyword",
		"skillpath": s.keywordPath(profile, "", in.TopN),
	})
}

func (s *Server) handleRecommendAI(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var in profileRequest
	if !decodeBody(w, r, &in) {
		return
	}
	profile, ok := s.profile(w, in.UserID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.aiOrFallback(profile, "", in.TopN))
}

func (s *Server) handleRecommendSubmit(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var in submitRequest
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Mode == "ai" && strings.TrimSpace(in.Goal) == "" {
		writeDetail(w, http.StatusBadRequest, "Goal is required for AI mode")
		return
	}

	words := append(append([]string{}, in.Competences...), in.Interests...)
	if in.Mode == "ai" {
		writeJSON(w, http.StatusOK, s.aiOrFallback(words, in.Goal, in.TopN))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    "keyword",
		"skillpath": s.keywordPath(words, in.Goal, in.TopN),
	})
}

func (s *Server) profile(w http.ResponseWriter, id int64) ([]string, bool) {
	s.mu.Lock()
	u, found := s.users[id]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return append(append([]string{}, u.identity.Competence...), u.identity.Interests...), true
}

func (s *Server) aiOrFallback(words []string, goal string, topN int) map[string]any {
	s.mu.Lock()
	available := s.aiAvailable
	s.mu.Unlock()

	if !available {
		return map[string]any{
			"source":          "keyword",
			"fallback_reason": "AI service error: unavailable",
			"skillpath":       s.keywordPath(words, goal, topN),
		}
	}

	path := s.keywordPath(words, goal, topN)
	steps := make([]map[string]any, 0, len(path["formations"]))
	for i, f := range path["formations"] {
		steps = append(steps, map[string]any{
			"order": i + 1,
			"title": f.Titre,
			"resources": []map[string]any{
				{"type": "formation", "id": f.ID},
			},
		})
	}
	return map[string]any{
		"source": "ai",
		"skillpath": map[string]any{
			"goal":                   goal,
			"steps":                  steps,
			"recommended_jobs":       path["jobs"],
			"recommended_formations": path["formations"],
		},
	}
}

func (s *Server) keywordPath(words []string, goal string, topN int) map[string][]scored {
	if topN <= 0 {
		topN = 5
	}
	terms := keywords(append(words, strings.Fields(goal)...))

	s.mu.Lock()
	jobs := sortedValues(s.jobs)
	formations := sortedValues(s.formations)
	s.mu.Unlock()

	jobHits := make([]scored, 0, len(jobs))
	for _, j := range jobs {
		text := strings.ToLower(j.Title + " " + j.Description + " " + strings.Join(j.Requirements, " "))
		if score, reason := match(terms, text); score > 0 {
			jobHits = append(jobHits, scored{ID: j.ID, Titre: j.Title, Score: score, MatchReason: reason})
		}
	}
	formationHits := make([]scored, 0, len(formations))
	for _, f := range formations {
		text := strings.ToLower(f.Titre + " " + f.Description)
		if score, reason := match(terms, text); score > 0 {
			formationHits = append(formationHits, scored{ID: f.ID, Titre: f.Titre, Score: score, MatchReason: reason})
		}
	}

	return map[string][]scored{
		"jobs":       top(jobHits, topN),
		"formations": top(formationHits, topN),
	}
}

func keywords(words []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) < 2 {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func match(terms []string, text string) (float64, string) {
	if len(terms) == 0 {
		return 0, ""
	}
	hits := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.Contains(text, t) {
			hits = append(hits, t)
		}
	}
	if len(hits) == 0 {
		return 0, ""
	}
	return float64(len(hits)) / float64(len(terms)), "matches " + strings.Join(hits, ", ")
}

func top(in []scored, n int) []scored {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Score > in[j].Score })
	if len(in) > n {
		in = in[:n]
	}
	return in
}
