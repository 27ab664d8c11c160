package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/scoring"
	"github.com/dustin/marketplace-backend/internal/utils"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/dustin/marketplace-backend/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// service implements the Service interface
type service struct {
	gateway     catalog.Gateway
	recommender Recommender
	weights     scoring.Weights
	logger      *logger.Logger
}

// NewService creates a new search service. recommender may be nil.
func NewService(gateway catalog.Gateway, recommender Recommender, weights scoring.Weights, log *logger.Logger) Service {
	return &service{
		gateway:     gateway,
		recommender: recommender,
		weights:     weights,
		logger:      log.WithComponent("search-service"),
	}
}

func (s *service) Search(ctx context.Context, params Params) (*Response, error) {
	start := time.Now()
	params.Page, params.Limit = utils.NormalizePage(params.Page, params.Limit)
	params.Query = strings.TrimSpace(params.Query)
	filters := params.Filters()

	sortLabel := filters.Sort
	if sortLabel == catalog.SortDefault {
		sortLabel = "default"
	}
	defer metrics.ObserveSearch(sortLabel, start)

	resp := &Response{
		Agents:          []*AgentView{},
		Recommendations: []*Recommendation{},
		Trending:        []*AgentView{},
		Suggestions:     []string{},
	}
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.gateway.CountAgentsMatching(gctx, filters)
		if err != nil {
			return fmt.Errorf("failed to count agents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		agents, err := s.page(gctx, params, filters)
		if err != nil {
			return err
		}
		resp.Agents = agents
		return nil
	})
	g.Go(func() error {
		trending, err := s.gateway.ListApprovedAgents(gctx, catalog.Filters{Sort: catalog.SortSales, Limit: TrendingLimit})
		if err != nil {
			return fmt.Errorf("failed to load trending agents: %w", err)
		}
		for _, a := range trending {
			resp.Trending = append(resp.Trending, NewAgentView(a))
		}
		return nil
	})
	if params.Query != "" {
		g.Go(func() error {
			suggestions, err := s.suggestions(gctx, params.Query)
			if err != nil {
				return err
			}
			resp.Suggestions = suggestions
			return nil
		})
	}
	if params.UserID != uuid.Nil && s.recommender != nil {
		g.Go(func() error {
			resp.Recommendations = s.recommendations(gctx, params.UserID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.ErrorErr("Search failed", err)
		return nil, err
	}

	resp.Pagination = utils.CalculatePagination(total, params.Page, params.Limit)

	if params.UserID != uuid.Nil && params.Query != "" {
		if err := s.gateway.RecordSearch(ctx, params.UserID, params.Query); err != nil {
			s.logger.Warn("Failed to record search for user " + params.UserID.String() + ": " + err.Error())
		}
	}

	return resp, nil
}

// page returns one page of matching agents. Relevance ranking happens here;
// every other order is the gateway's.
func (s *service) page(ctx context.Context, params Params, filters catalog.Filters) ([]*AgentView, error) {
	offset := utils.Offset(params.Page, params.Limit)

	if filters.Sort != catalog.SortRelevance {
		filters.Offset = offset
		filters.Limit = params.Limit
		agents, err := s.gateway.ListApprovedAgents(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list agents: %w", err)
		}
		views := make([]*AgentView, 0, len(agents))
		for _, a := range agents {
			views = append(views, NewAgentView(a))
		}
		return views, nil
	}

	candidates := filters.Unpaged()
	candidates.Sort = catalog.SortDefault
	agents, err := s.gateway.ListApprovedAgents(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	views := make([]*AgentView, 0, len(agents))
	for _, a := range agents {
		v := NewAgentView(a)
		score := scoring.Relevance(params.Query, scoring.Candidate{
			Name:        a.Name,
			Description: a.Description,
			Category:    a.Category,
			Tags:        v.Tags,
			Price:       a.Price,
			Rating:      a.Rating,
			ReviewCount: a.ReviewCount,
			TotalSales:  a.TotalSales,
			Verified:    a.Verified,
			Featured:    a.Featured,
		}, s.weights)
		v.RelevanceScore = &score
		views = append(views, v)
	}
	scoring.StableSortDesc(views, func(v *AgentView) float64 { return *v.RelevanceScore })

	if offset < 0 || offset >= len(views) {
		return []*AgentView{}, nil
	}
	end := min(offset+params.Limit, len(views))
	return views[offset:end], nil
}

func (s *service) suggestions(ctx context.Context, query string) ([]string, error) {
	agents, err := s.gateway.ListApprovedAgents(ctx, catalog.Filters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion sources: %w", err)
	}

	names := make([]string, 0, len(agents))
	categories := make([]string, 0, len(agents))
	for _, a := range agents {
		names = append(names, a.Name)
		categories = append(categories, a.Category)
	}
	return Suggest(query, names, categories), nil
}

// recommendations never fails the search; errors leave the list empty
func (s *service) recommendations(ctx context.Context, userID uuid.UUID) []*Recommendation {
	recs, err := s.recommender.Recommend(ctx, userID, RecommendationLimit)
	if err != nil {
		s.logger.Warn("Failed to load recommendations for user " + userID.String() + ": " + err.Error())
		return []*Recommendation{}
	}
	if recs == nil {
		return []*Recommendation{}
	}
	return recs
}
