package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/marketplace-backend/config"
	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/profile"
	"github.com/dustin/marketplace-backend/internal/scoring"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/dustin/marketplace-backend/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Share of the requested limit each strategy is asked for. These are soft
// targets; a strategy may return fewer.
const (
	CollaborativeShare = 0.4
	ContentShare       = 0.3
	PersonalizedShare  = 0.2
	TrendingShare      = 0.1
)

// service blends the four strategies
type service struct {
	store         SnapshotSource
	gateway       catalog.Gateway
	collaborative Strategy
	content       Strategy
	personalized  Strategy
	trending      Strategy
	defaultLimit  int
	logger        *logger.Logger
}

// NewService creates a new recommendation service. gateway may be nil, in
// which case profiles come from the snapshot only.
func NewService(cfg *config.RecommendationConfig, store SnapshotSource, gateway catalog.Gateway, weights scoring.Weights, log *logger.Logger) (Service, error) {
	neighbors := DefaultNeighbors
	defaultLimit := DefaultLimit
	if cfg != nil && cfg.Neighbors != "" {
		v, err := strconv.Atoi(cfg.Neighbors)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid neighbor count '%s'", cfg.Neighbors)
		}
		neighbors = v
	}
	if cfg != nil && cfg.DefaultLimit != "" {
		v, err := strconv.Atoi(cfg.DefaultLimit)
		if err != nil || v <= 0 || v > MaxLimit {
			return nil, fmt.Errorf("invalid default recommendation limit '%s'", cfg.DefaultLimit)
		}
		defaultLimit = v
	}

	return &service{
		store:         store,
		gateway:       gateway,
		collaborative: NewCollaborativeEngine(neighbors),
		content:       NewContentBasedEngine(),
		personalized:  NewPersonalizedEngine(weights),
		trending:      NewTrendingEngine(),
		defaultLimit:  defaultLimit,
		logger:        log.WithComponent("recommendation-service"),
	}, nil
}

// Quota returns ceil(share × limit)
func Quota(share float64, limit int) int {
	return int(math.Ceil(share * float64(limit)))
}

func (s *service) Recommend(ctx context.Context, userID uuid.UUID, limit int) ([]*Result, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	limit = ClampLimit(limit)

	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation snapshot: %w", err)
	}

	p := s.loadProfile(ctx, snap, userID)
	if p == nil || !p.HasHistory() {
		metrics.RecommendationRequests.WithLabelValues("trending_only").Inc()
		results := s.run(ctx, s.trending, &Request{UserID: userID, Profile: p, Snapshot: snap, Limit: limit})
		return results, nil
	}
	metrics.RecommendationRequests.WithLabelValues("blended").Inc()

	plan := []struct {
		strategy Strategy
		limit    int
	}{
		{s.collaborative, Quota(CollaborativeShare, limit)},
		{s.content, Quota(ContentShare, limit)},
		{s.personalized, Quota(PersonalizedShare, limit)},
		{s.trending, max(1, Quota(TrendingShare, limit))},
	}

	// each slot is written by exactly one goroutine
	batches := make([][]*Result, len(plan))
	var g errgroup.Group
	for i, step := range plan {
		i, step := i, step
		g.Go(func() error {
			batches[i] = s.run(ctx, step.strategy, &Request{
				UserID:   userID,
				Profile:  p,
				Snapshot: snap,
				Limit:    step.limit,
				Query:    p.LastSearch(),
			})
			return nil
		})
	}
	_ = g.Wait()

	results := Blend(batches, limit)
	s.logger.Debug(fmt.Sprintf("Blended %d recommendations for user %s", len(results), userID))
	return results, nil
}

// run executes one strategy. Errors and panics are logged and counted, and
// the strategy contributes nothing.
func (s *service) run(ctx context.Context, strategy Strategy, req *Request) (results []*Result) {
	defer func() {
		if r := recover(); r != nil {
			s.strategyFailed(strategy.Name(), fmt.Errorf("panic: %v", r))
			results = []*Result{}
		}
	}()

	results, err := strategy.Recommend(ctx, req)
	if err != nil {
		s.strategyFailed(strategy.Name(), err)
		return []*Result{}
	}
	if results == nil {
		results = []*Result{}
	}
	metrics.StrategyResults.WithLabelValues(strategy.Name()).Observe(float64(len(results)))
	return results
}

func (s *service) strategyFailed(name string, err error) {
	metrics.StrategyFailures.WithLabelValues(name).Inc()
	s.logger.WithField("strategy", name).ErrorErr("Recommendation strategy failed", err)
}

// loadProfile builds a fresh profile for the user from the gateway, falling
// back to the snapshot's copy when the gateway is unavailable.
func (s *service) loadProfile(ctx context.Context, snap *Snapshot, userID uuid.UUID) *profile.UserProfile {
	if userID == uuid.Nil {
		return nil
	}
	cached := snap.Profiles[userID]
	if s.gateway == nil {
		return cached
	}

	user, err := s.gateway.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.Warn("Failed to load user " + userID.String() + ", using cached profile: " + err.Error())
		}
		return cached
	}
	history, err := s.gateway.GetUserHistory(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load history for user " + userID.String() + ", using cached profile: " + err.Error())
		return cached
	}
	return profile.Build(user, history, snap.Catalog)
}

// Blend concatenates strategy outputs in order, keeps the highest-scoring
// occurrence of each agent, sorts by score and truncates to limit. An agent
// that several strategies agree on is marked hybrid.
func Blend(batches [][]*Result, limit int) []*Result {
	best := map[uuid.UUID]*Result{}
	sources := map[uuid.UUID]string{}
	order := make([]uuid.UUID, 0)

	for _, batch := range batches {
		for _, r := range batch {
			current, seen := best[r.AgentID]
			if !seen {
				order = append(order, r.AgentID)
				sources[r.AgentID] = r.Type
				copied := *r
				best[r.AgentID] = &copied
				continue
			}
			if sources[r.AgentID] != r.Type {
				sources[r.AgentID] = TypeHybrid
			}
			if r.Score > current.Score {
				copied := *r
				best[r.AgentID] = &copied
			}
		}
	}

	results := make([]*Result, 0, len(order))
	for _, id := range order {
		r := best[id]
		if sources[id] == TypeHybrid {
			r.Type = TypeHybrid
		}
		results = append(results, r)
	}

	scoring.StableSortDesc(results, func(r *Result) float64 { return r.Score })
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
