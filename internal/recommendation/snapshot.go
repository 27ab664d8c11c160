package recommendation

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/marketplace-backend/config"
	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/features"
	"github.com/dustin/marketplace-backend/internal/profile"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/dustin/marketplace-backend/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Snapshot is one consistent, read-only view of the catalog features, user
// profiles and interaction matrix. It is replaced wholesale, never updated.
type Snapshot struct {
	Catalog  *features.Catalog
	Profiles map[uuid.UUID]*profile.UserProfile
	Users    []uuid.UUID
	Matrix   *InteractionMatrix
	BuiltAt  time.Time
}

// BuildSnapshot runs the ranking pipeline over already loaded records:
// features, then profiles, then the interaction matrix.
func BuildSnapshot(extractor *features.Extractor, agents []*catalog.Agent, users []*catalog.User, orders []*catalog.Order, reviews []*catalog.Review, purchaseCredit float64) *Snapshot {
	c := extractor.ExtractCatalog(agents)
	profiles := profile.BuildAll(users, orders, reviews, c)

	order := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		order = append(order, u.ID)
	}

	return &Snapshot{
		Catalog:  c,
		Profiles: profiles,
		Users:    order,
		Matrix:   BuildInteractionMatrix(order, c, profiles, purchaseCredit),
		BuiltAt:  time.Now(),
	}
}

// Store holds the current snapshot and rebuilds it from the gateway
type Store struct {
	gateway        catalog.Gateway
	extractor      *features.Extractor
	purchaseCredit float64
	current        atomic.Pointer[Snapshot]
	generation     atomic.Uint64
	buildMu        sync.Mutex
	logger         *logger.Logger
}

// NewStore creates an empty snapshot store with validation and defaults
func NewStore(cfg *config.RecommendationConfig, gateway catalog.Gateway, extractor *features.Extractor, log *logger.Logger) (*Store, error) {
	credit := DefaultPurchaseCredit
	if cfg != nil && cfg.PurchaseCredit != "" {
		v, err := strconv.ParseFloat(cfg.PurchaseCredit, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid purchase credit '%s'", cfg.PurchaseCredit)
		}
		credit = v
	}

	return &Store{
		gateway:        gateway,
		extractor:      extractor,
		purchaseCredit: credit,
		logger:         log.WithComponent("recommendation-snapshot"),
	}, nil
}

// Current returns the live snapshot, building one if none exists
func (s *Store) Current(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.rebuild(ctx)
}

// Refresh rebuilds the snapshot and swaps it in
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.rebuild(ctx)
}

// Invalidate drops the live snapshot so the next Current rebuilds it. A
// rebuild already in flight will not publish its result.
func (s *Store) Invalidate() {
	s.generation.Add(1)
	s.current.Store(nil)
}

func (s *Store) rebuild(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	generation := s.generation.Load()

	var (
		agents  []*catalog.Agent
		users   []*catalog.User
		orders  []*catalog.Order
		reviews []*catalog.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agents, err = s.gateway.ListApprovedAgents(gctx, catalog.Filters{})
		if err != nil {
			return fmt.Errorf("failed to load agents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = s.gateway.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		orders, err = s.gateway.ListCompletedOrders(gctx)
		if err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reviews, err = s.gateway.ListReviews(gctx)
		if err != nil {
			return fmt.Errorf("failed to load reviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorErr("Snapshot rebuild failed", err)
		return nil, err
	}

	snap := BuildSnapshot(s.extractor, agents, users, orders, reviews, s.purchaseCredit)
	s.current.Store(snap)
	if s.generation.Load() != generation {
		// loaded before an invalidation; serve it to this caller only
		s.current.CompareAndSwap(snap, nil)
	}

	metrics.ObserveSnapshot(snap.Catalog.Len(), snap.Matrix.Rows(), start)
	s.logger.Info(fmt.Sprintf("Snapshot rebuilt: %d agents, %d users in %v", snap.Catalog.Len(), snap.Matrix.Rows(), time.Since(start)))
	return snap, nil
}
