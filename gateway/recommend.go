package gateway

import (
	"context"
	"net/http"
)

// DefaultTopN is the result count requested when none is given.
const DefaultTopN = 5

type profileRecommendRequest struct {
	UserID int64         `json:"user_id"`
	Mode   RecommendMode `json:"mode,omitempty"`
	TopN   int           `json:"top_n"`
}

// RecommendKeyword requests keyword recommendations from a stored profile.
func (c *Client) RecommendKeyword(ctx context.Context, userID int64, topN int) (Recommendation, error) {
	var out Recommendation
	err := c.doJSON(ctx, http.MethodPost, "/api/recommend/keyword", profileRecommendRequest{
		UserID: userID,
		TopN:   topNOrDefault(topN),
	}, &out)
	return out, err
}

// RecommendAI requests AI recommendations from a stored profile. An empty mode
// defaults to "enhance".
func (c *Client) RecommendAI(ctx context.Context, userID int64, mode RecommendMode, topN int) (Recommendation, error) {
	if mode == "" {
		mode = "enhance"
	}
	var out Recommendation
	err := c.doJSON(ctx, http.MethodPost, "/api/recommend/ai", profileRecommendRequest{
		UserID: userID,
		Mode:   mode,
		TopN:   topNOrDefault(topN),
	}, &out)
	return out, err
}

// SubmitRecommendation requests a skill path from form input.
func (c *Client) SubmitRecommendation(ctx context.Context, sub RecommendSubmission) (Recommendation, error) {
	if sub.Mode == "" {
		sub.Mode = ModeKeyword
	}
	sub.TopN = topNOrDefault(sub.TopN)
	if sub.Competences == nil {
		sub.Competences = []string{}
	}
	if sub.Interests == nil {
		sub.Interests = []string{}
	}

	var out Recommendation
	err := c.doJSON(ctx, http.MethodPost, "/api/recommend/submit", sub, &out)
	return out, err
}

func topNOrDefault(n int) int {
	if n <= 0 {
		return DefaultTopN
	}
	return n
}
