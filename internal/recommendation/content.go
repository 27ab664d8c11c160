package recommendation

import (
	"context"

	"github.com/dustin/marketplace-backend/internal/embedding"
	"github.com/dustin/marketplace-backend/internal/scoring"
)

// ContentBasedEngine recommends agents whose text embedding is close to the
// mean embedding of the user's purchases
type ContentBasedEngine struct{}

// NewContentBasedEngine creates a new content-based recommendation engine
func NewContentBasedEngine() *ContentBasedEngine {
	return &ContentBasedEngine{}
}

func (e *ContentBasedEngine) Name() string {
	return TypeContent
}

func (e *ContentBasedEngine) Recommend(ctx context.Context, req *Request) ([]*Result, error) {
	snap := req.Snapshot
	if snap == nil || req.Profile == nil || req.Limit <= 0 {
		return []*Result{}, nil
	}

	var purchased [][]float64
	for _, id := range req.Profile.Behavior.PurchasedAgents {
		if f, ok := snap.Catalog.Get(id); ok {
			purchased = append(purchased, f.TextEmbedding)
		}
	}
	if len(purchased) == 0 {
		return []*Result{}, nil
	}

	preference := embedding.Mean(purchased)

	results := make([]*Result, 0)
	for _, f := range snap.Catalog.Agents() {
		if req.Profile.HasPurchased(f.ID) {
			continue
		}
		sim := embedding.Cosine(preference, f.TextEmbedding)
		if sim <= 0 {
			continue
		}
		results = append(results, &Result{
			AgentID: f.ID,
			Score:   sim * 100,
			Reason:  "Similar to agents you have purchased",
			Type:    TypeContent,
		})
	}

	scoring.StableSortDesc(results, func(r *Result) float64 { return r.Score })
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}
