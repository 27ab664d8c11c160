package adapter

import (
	"context"

	"github.com/dustin/marketplace-backend/internal/recommendation"
	"github.com/dustin/marketplace-backend/internal/search"
	"github.com/dustin/marketplace-backend/internal/worker"
	"github.com/google/uuid"
)

// RecommendationServiceToSearchRecommender adapts recommendation.Service to search.Recommender
type RecommendationServiceToSearchRecommender struct {
	service recommendation.Service
}

// NewRecommendationServiceToSearchRecommender creates a new adapter
func NewRecommendationServiceToSearchRecommender(s recommendation.Service) search.Recommender {
	return &RecommendationServiceToSearchRecommender{
		service: s,
	}
}

func (a *RecommendationServiceToSearchRecommender) Recommend(ctx context.Context, userID uuid.UUID, limit int) ([]*search.Recommendation, error) {
	results, err := a.service.Recommend(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	// Convert recommendation.Result to search.Recommendation
	recs := make([]*search.Recommendation, 0, len(results))
	for _, r := range results {
		recs = append(recs, &search.Recommendation{
			AgentID: r.AgentID,
			Score:   r.Score,
			Reason:  r.Reason,
			Type:    r.Type,
		})
	}
	return recs, nil
}

// SnapshotRefresher rebuilds the ranking snapshot
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (*recommendation.Snapshot, error)
}

// SnapshotStoreToRefreshFunc adapts a snapshot store to worker.RefreshFunc
func SnapshotStoreToRefreshFunc(store SnapshotRefresher) worker.RefreshFunc {
	return func(ctx context.Context) error {
		_, err := store.Refresh(ctx)
		return err
	}
}
