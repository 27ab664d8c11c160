package recommendation

import (
	"context"
	"strings"

	"github.com/dustin/marketplace-backend/internal/features"
	"github.com/dustin/marketplace-backend/internal/scoring"
)

// PersonalizedEngine ranks unpurchased agents in the user's preferred
// categories and price range by the preference score
type PersonalizedEngine struct {
	weights scoring.Weights
}

// NewPersonalizedEngine creates a preference-filtered recommender
func NewPersonalizedEngine(weights scoring.Weights) *PersonalizedEngine {
	return &PersonalizedEngine{weights: weights}
}

func (e *PersonalizedEngine) Name() string {
	return TypePersonalized
}

func (e *PersonalizedEngine) Recommend(ctx context.Context, req *Request) ([]*Result, error) {
	snap := req.Snapshot
	p := req.Profile
	if snap == nil || p == nil || req.Limit <= 0 {
		return []*Result{}, nil
	}

	signals := p.Signals()
	results := make([]*Result, 0)
	for _, f := range snap.Catalog.Agents() {
		if p.HasPurchased(f.ID) || !p.Preferences.PriceRange.Contains(f.Price) {
			continue
		}
		if len(signals.PreferredCategories) > 0 && !inCategories(f, signals.PreferredCategories) {
			continue
		}
		results = append(results, &Result{
			AgentID: f.ID,
			Score:   scoring.Preference(signals, f.Candidate(), req.Query, e.weights),
			Reason:  "Matches your interest in " + f.Category,
			Type:    TypePersonalized,
		})
	}

	scoring.StableSortDesc(results, func(r *Result) float64 { return r.Score })
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

func inCategories(f *features.AgentFeatures, categories []string) bool {
	for _, c := range categories {
		if strings.EqualFold(c, f.Category) {
			return true
		}
	}
	return false
}
