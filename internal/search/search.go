// Package search answers catalog queries: hard filters, sorting or
// relevance ranking, pagination, plus the suggestions, trending list and
// recommendations shown next to the results.
package search

import (
	"context"
	"time"

	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/utils"
	"github.com/google/uuid"
)

const (
	// TrendingLimit is the size of the trending list
	TrendingLimit = 5
	// RecommendationLimit is the number of recommendations attached to a search
	RecommendationLimit = 5
	// MaxSuggestions caps the suggestion list
	MaxSuggestions = 5
)

// Params are the validated inputs of one search
type Params struct {
	Query        string
	Category     string
	MinPrice     *float64
	MaxPrice     *float64
	MinRating    *float64
	Sort         string
	FeaturedOnly bool
	VerifiedOnly bool
	Page         int
	Limit        int
	// UserID is uuid.Nil for anonymous searches
	UserID uuid.UUID
}

// Filters converts params to gateway filters without paging
func (p Params) Filters() catalog.Filters {
	return catalog.Filters{
		Category:     p.Category,
		MinPrice:     p.MinPrice,
		MaxPrice:     p.MaxPrice,
		MinRating:    p.MinRating,
		FeaturedOnly: p.FeaturedOnly,
		VerifiedOnly: p.VerifiedOnly,
		Sort:         catalog.NormalizeSort(p.Sort),
	}
}

// Recommendation mirrors the recommendation result shape
type Recommendation struct {
	AgentID uuid.UUID `json:"agent_id"`
	Score   float64   `json:"score"`
	Reason  string    `json:"reason"`
	Type    string    `json:"type"`
}

// Recommender produces personalized recommendations for a signed-in user
type Recommender interface {
	Recommend(ctx context.Context, userID uuid.UUID, limit int) ([]*Recommendation, error)
}

// Service defines the interface for search business logic
type Service interface {
	Search(ctx context.Context, params Params) (*Response, error)
}

// AgentView is the public shape of a listing in search responses
type AgentView struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"review_count"`
	TotalSales     int       `json:"total_sales"`
	Tags           []string  `json:"tags"`
	Features       []string  `json:"features"`
	Verified       bool      `json:"verified"`
	Featured       bool      `json:"featured"`
	CreatedAt      time.Time `json:"created_at"`
	RelevanceScore *float64  `json:"relevance_score,omitempty"`
}

// NewAgentView converts a catalog record for output
func NewAgentView(a *catalog.Agent) *AgentView {
	return &AgentView{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Category:    a.Category,
		Price:       a.Price,
		Rating:      a.Rating,
		ReviewCount: a.ReviewCount,
		TotalSales:  a.TotalSales,
		Tags:        a.TagList(),
		Features:    a.FeatureList(),
		Verified:    a.Verified,
		Featured:    a.Featured,
		CreatedAt:   a.CreatedAt,
	}
}

// Response is the full search payload
type Response struct {
	Agents          []*AgentView         `json:"agents"`
	Recommendations []*Recommendation    `json:"recommendations"`
	Trending        []*AgentView         `json:"trending"`
	Suggestions     []string             `json:"suggestions"`
	Pagination      utils.PaginationMeta `json:"pagination"`
}
