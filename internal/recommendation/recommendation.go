package recommendation

import (
	"context"
	"time"

	"github.com/dustin/marketplace-backend/internal/profile"
	"github.com/google/uuid"
)

// Result types, one per strategy that can produce a result
const (
	TypeCollaborative = "collaborative"
	TypeContent       = "content"
	TypeHybrid        = "hybrid"
	TypeTrending      = "trending"
	TypePersonalized  = "personalized"
)

// Limits applied to every recommendation request
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Result is one ranked recommendation. Scores are comparable within one
// blend only.
type Result struct {
	AgentID uuid.UUID `json:"agent_id"`
	Score   float64   `json:"score"`
	Reason  string    `json:"reason"`
	Type    string    `json:"type"`
}

// Request carries everything a strategy may read. All of it is shared and
// read-only.
type Request struct {
	UserID   uuid.UUID
	Profile  *profile.UserProfile
	Snapshot *Snapshot
	Limit    int
	// Query is free text used by the preference score, usually the user's
	// latest search
	Query string
}

// Strategy is one independent way of producing recommendations
type Strategy interface {
	Name() string
	Recommend(ctx context.Context, req *Request) ([]*Result, error)
}

// SnapshotSource hands out the current snapshot
type SnapshotSource interface {
	Current(ctx context.Context) (*Snapshot, error)
}

// Service defines the interface for recommendation business logic
type Service interface {
	Recommend(ctx context.Context, userID uuid.UUID, limit int) ([]*Result, error)
}

// Response DTOs
type RecommendationResponse struct {
	Recommendations []*Result `json:"recommendations"`
	GeneratedAt     time.Time `json:"generated_at"`
	UserID          uuid.UUID `json:"user_id"`
	Count           int       `json:"count"`
}

// BuildRecommendationResponse wraps results for the HTTP API
func BuildRecommendationResponse(results []*Result, userID uuid.UUID) *RecommendationResponse {
	if results == nil {
		results = []*Result{}
	}
	return &RecommendationResponse{
		Recommendations: results,
		GeneratedAt:     time.Now(),
		UserID:          userID,
		Count:           len(results),
	}
}

// ClampLimit applies the default and the upper bound to a requested limit
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
