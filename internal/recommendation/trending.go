package recommendation

import (
	"context"

	"github.com/dustin/marketplace-backend/internal/features"
	"github.com/dustin/marketplace-backend/internal/scoring"
)

// TrendingEngine ranks the whole catalog by popularity plus quality with no
// personalization
type TrendingEngine struct{}

// NewTrendingEngine creates the unpersonalized fallback recommender
func NewTrendingEngine() *TrendingEngine {
	return &TrendingEngine{}
}

func (e *TrendingEngine) Name() string {
	return TypeTrending
}

func (e *TrendingEngine) Recommend(ctx context.Context, req *Request) ([]*Result, error) {
	if req.Snapshot == nil || req.Limit <= 0 {
		return []*Result{}, nil
	}

	agents := append([]*features.AgentFeatures(nil), req.Snapshot.Catalog.Agents()...)
	scoring.StableSortDesc(agents, trendScore)
	if len(agents) > req.Limit {
		agents = agents[:req.Limit]
	}

	results := make([]*Result, 0, len(agents))
	for _, f := range agents {
		results = append(results, &Result{
			AgentID: f.ID,
			Score:   trendScore(f),
			Reason:  "Trending in the marketplace",
			Type:    TypeTrending,
		})
	}
	return results, nil
}

func trendScore(f *features.AgentFeatures) float64 {
	return f.PopularityScore + f.QualityScore
}
