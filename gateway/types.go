package gateway

import (
	"encoding/json"

	"github.com/MrEthical07/goCareer/session"
)

// LoginResult is the credential exchange response for users.
type LoginResult struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        session.Identity `json:"user"`
}

// AdminLoginResult is the credential exchange response for administrators.
type AdminLoginResult struct {
	AccessToken string                `json:"access_token"`
	TokenType   string                `json:"token_type"`
	Admin       session.AdminIdentity `json:"admin"`
}

// Registration is the payload of POST /auth/register and POST /users.
type Registration struct {
	Nom        string   `json:"nom"`
	Prenom     string   `json:"prenom"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Competence []string `json:"competence"`
	Interests  []string `json:"interests"`
}

// UserUpdate is a partial user update. Nil fields are left unchanged.
type UserUpdate struct {
	Nom        *string  `json:"nom,omitempty"`
	Prenom     *string  `json:"prenom,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Competence []string `json:"competence,omitempty"`
	Interests  []string `json:"interests,omitempty"`
	Password   *string  `json:"password,omitempty"`
}

// Job is a job offer.
type Job struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// JobInput creates or updates a job.
type JobInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// Formation is a training course.
type Formation struct {
	ID          int64  `json:"id"`
	Titre       string `json:"titre"`
	Description string `json:"description,omitempty"`
	Video       string `json:"video,omitempty"`
	CategoryID  int64  `json:"category_id"`
}

// FormationInput creates or updates a formation.
type FormationInput struct {
	Titre       string `json:"titre"`
	Description string `json:"description,omitempty"`
	Video       string `json:"video,omitempty"`
	CategoryID  int64  `json:"category_id"`
}

// Category groups formations.
type Category struct {
	ID  int64  `json:"id"`
	Nom string `json:"nom"`
}

// UserStatistics is the caller-specific part of [Statistics].
type UserStatistics struct {
	CompetenceCount int    `json:"competence_count"`
	InterestsCount  int    `json:"interests_count"`
	Role            string `json:"role"`
}

// Statistics is returned by GET /api/statistics.
type Statistics struct {
	TotalUsers      int            `json:"total_users"`
	TotalFormations int            `json:"total_formations"`
	TotalCategories int            `json:"total_categories"`
	TotalParcours   int            `json:"total_parcours"`
	UserStats       UserStatistics `json:"user_stats"`
}

// AdminStatistics is returned by GET /api/admin/statistics.
type AdminStatistics struct {
	TotalUsers          int            `json:"total_users"`
	TotalProviders      int            `json:"total_providers"`
	TotalRegularUsers   int            `json:"total_regular_users"`
	TotalFormations     int            `json:"total_formations"`
	TotalCategories     int            `json:"total_categories"`
	TotalParcours       int            `json:"total_parcours"`
	TotalAdmins         int            `json:"total_admins"`
	UsersByRole         map[string]int `json:"users_by_role"`
	RecentRegistrations int            `json:"recent_registrations"`
}

// RecommendMode selects the recommender.
type RecommendMode string

const (
	ModeKeyword RecommendMode = "keyword"
	ModeAI      RecommendMode = "ai"
)

// RecommendSubmission is the form-driven recommendation request.
type RecommendSubmission struct {
	Goal        string        `json:"goal"`
	Competences []string      `json:"competences"`
	Interests   []string      `json:"interests"`
	Mode        RecommendMode `json:"mode"`
	TopN        int           `json:"top_n,omitempty"`
}

// Recommendation is a recommender response. Source is "ai" or "keyword";
// FallbackReason is set when an AI request fell back to keywords. The skill path
// layout depends on the source and is left undecoded.
type Recommendation struct {
	Source         string          `json:"source"`
	FallbackReason string          `json:"fallback_reason,omitempty"`
	Skillpath      json.RawMessage `json:"skillpath"`
}

// FellBack reports whether the backend substituted the keyword recommender.
func (r Recommendation) FellBack() bool {
	return r.FallbackReason != ""
}
