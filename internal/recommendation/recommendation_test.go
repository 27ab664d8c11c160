package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dustin/marketplace-backend/config"
	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/embedding"
	"github.com/dustin/marketplace-backend/internal/features"
	"github.com/dustin/marketplace-backend/internal/profile"
	"github.com/dustin/marketplace-backend/internal/scoring"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/dustin/marketplace-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fixture struct {
	gateway *catalog.MemoryGateway
	agents  map[string]*catalog.Agent
	users   map[string]*catalog.User
}

func newFixture() *fixture {
	f := &fixture{
		gateway: catalog.NewMemoryGateway(),
		agents:  map[string]*catalog.Agent{},
		users:   map[string]*catalog.User{},
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	add := func(key, name, description, category string, price, rating float64, reviews, sales int, verified, featured bool) {
		a := &catalog.Agent{
			ID:          uuid.New(),
			Name:        name,
			Description: description,
			Category:    category,
			Price:       price,
			Rating:      rating,
			ReviewCount: reviews,
			TotalSales:  sales,
			Tags:        datatypes.JSON(`[]`),
			Status:      catalog.AgentStatusApproved,
			Verified:    verified,
			Featured:    featured,
			CreatedAt:   base.Add(time.Duration(len(f.agents)) * time.Hour),
		}
		f.agents[key] = a
		f.gateway.Agents = append(f.gateway.Agents, a)
	}

	add("support", "Customer Support Bot", "Answers tickets", "support", 50, 4.8, 40, 300, true, true)
	add("triage", "Ticket Triage Assistant", "Routes tickets", "support", 30, 4.2, 12, 120, true, false)
	add("refund", "Refund Helper", "Processes refunds", "support", 20, 3.9, 8, 60, false, false)
	add("invoice", "Invoice Parser", "Reads invoices", "finance", 80, 4.5, 20, 90, true, false)
	add("extract", "Invoice Extractor", "Extracts invoices", "finance", 90, 4.1, 5, 40, false, false)
	add("seo", "SEO Blog Writer", "Drafts articles", "writing", 25, 4.6, 30, 500, false, true)
	add("leads", "Lead Scorer", "Ranks prospects", "sales", 150, 3.5, 3, 10, false, false)

	hidden := &catalog.Agent{ID: uuid.New(), Name: "Pending Agent", Status: catalog.AgentStatusPending, TotalSales: 10000}
	f.gateway.Agents = append(f.gateway.Agents, hidden)

	for _, key := range []string{"alice", "bob", "carol", "newbie"} {
		u := &catalog.User{ID: uuid.New()}
		f.users[key] = u
		f.gateway.Users = append(f.gateway.Users, u)
	}

	// alice and bob share three purchases rated the same way
	for _, key := range []string{"alice", "bob"} {
		for _, agent := range []string{"support", "triage", "refund"} {
			f.purchase(key, agent)
			f.review(key, agent, 5)
		}
	}
	f.purchase("alice", "invoice")
	f.purchase("bob", "extract")
	f.purchase("carol", "leads")

	return f
}

func (f *fixture) purchase(user, agent string) {
	f.gateway.Orders = append(f.gateway.Orders, &catalog.Order{
		ID:      uuid.New(),
		UserID:  f.users[user].ID,
		AgentID: f.agents[agent].ID,
		Amount:  f.agents[agent].Price,
		Status:  catalog.OrderStatusCompleted,
	})
}

func (f *fixture) review(user, agent string, rating int) {
	f.gateway.Reviews = append(f.gateway.Reviews, &catalog.Review{
		UserID:  f.users[user].ID,
		AgentID: f.agents[agent].ID,
		Rating:  rating,
	})
}

func newExtractor() *features.Extractor {
	return features.NewExtractor(embedding.NewHashingEmbedder(100), scoring.DefaultWeights(), logger.Nop())
}

func (f *fixture) store(t *testing.T) *Store {
	store, err := NewStore(nil, f.gateway, newExtractor(), logger.Nop())
	require.NoError(t, err)
	return store
}

func (f *fixture) snapshot(t *testing.T) *Snapshot {
	snap, err := f.store(t).Current(context.Background())
	require.NoError(t, err)
	return snap
}

func (f *fixture) service(t *testing.T) Service {
	svc, err := NewService(nil, f.store(t), f.gateway, scoring.DefaultWeights(), logger.Nop())
	require.NoError(t, err)
	return svc
}

func ids(results []*Result) []uuid.UUID {
	out := make([]uuid.UUID, len(results))
	for i, r := range results {
		out[i] = r.AgentID
	}
	return out
}

func TestInteractionMatrix(t *testing.T) {
	f := newFixture()
	snap := f.snapshot(t)
	m := snap.Matrix

	assert.Equal(t, 4, m.Rows())
	assert.Equal(t, 7, m.Cols())
	assert.Equal(t, snap.Users, m.Users())

	col := func(key string) int {
		i, ok := snap.Catalog.Index(f.agents[key].ID)
		require.True(t, ok)
		return i
	}

	alice, ok := m.Row(f.users["alice"].ID)
	require.True(t, ok)
	assert.Equal(t, 5.0, alice[col("support")])
	assert.Equal(t, DefaultPurchaseCredit, alice[col("invoice")])
	assert.Equal(t, 0.0, alice[col("extract")])

	newbie, ok := m.Row(f.users["newbie"].ID)
	require.True(t, ok)
	assert.Equal(t, make([]float64, 7), newbie)

	_, ok = m.Row(uuid.New())
	assert.False(t, ok)

	t.Run("Configurable purchase credit", func(t *testing.T) {
		rows := BuildInteractionMatrix(snap.Users, snap.Catalog, snap.Profiles, 1)
		assert.Equal(t, 1.0, rows.At(0, col("invoice")))
		assert.Equal(t, 5.0, rows.At(0, col("support")))
	})
}

func TestCollaborativeEngine(t *testing.T) {
	f := newFixture()
	snap := f.snapshot(t)
	engine := NewCollaborativeEngine(10)
	ctx := context.Background()

	t.Run("Similar users surface each other's purchases", func(t *testing.T) {
		results, err := engine.Recommend(ctx, &Request{UserID: f.users["alice"].ID, Snapshot: snap, Limit: 5})
		require.NoError(t, err)
		require.Len(t, results, 1)

		aliceRow, _ := snap.Matrix.Row(f.users["alice"].ID)
		bobRow, _ := snap.Matrix.Row(f.users["bob"].ID)
		similarity := embedding.Cosine(aliceRow, bobRow)

		assert.Equal(t, f.agents["extract"].ID, results[0].AgentID)
		assert.InDelta(t, DefaultPurchaseCredit*similarity, results[0].Score, 1e-9)
		assert.Equal(t, TypeCollaborative, results[0].Type)
		assert.Equal(t, "Users with similar preferences also liked this", results[0].Reason)

		results, err = engine.Recommend(ctx, &Request{UserID: f.users["bob"].ID, Snapshot: snap, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{f.agents["invoice"].ID}, ids(results))
	})

	t.Run("Purchases newer than the snapshot are excluded", func(t *testing.T) {
		alice := f.users["alice"]
		history := &catalog.UserHistory{}
		for _, o := range f.gateway.Orders {
			if o.UserID == alice.ID {
				history.Orders = append(history.Orders, o)
			}
		}
		history.Orders = append(history.Orders, &catalog.Order{
			ID:      uuid.New(),
			UserID:  alice.ID,
			AgentID: f.agents["extract"].ID,
			Status:  catalog.OrderStatusCompleted,
		})
		fresh := profile.Build(alice, history, snap.Catalog)
		require.True(t, fresh.HasPurchased(f.agents["extract"].ID))

		results, err := engine.Recommend(ctx, &Request{UserID: alice.ID, Profile: fresh, Snapshot: snap, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("No similar users", func(t *testing.T) {
		results, err := engine.Recommend(ctx, &Request{UserID: f.users["carol"].ID, Snapshot: snap, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Unknown user", func(t *testing.T) {
		results, err := engine.Recommend(ctx, &Request{UserID: uuid.New(), Snapshot: snap, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Neighbor count bounds contributions", func(t *testing.T) {
		m := snap.Matrix
		assert.Len(t, NewCollaborativeEngine(1).nearest(m, f.users["alice"].ID), 1)
		assert.Equal(t, DefaultNeighbors, NewCollaborativeEngine(0).neighbors)
	})
}

func TestContentBasedEngine(t *testing.T) {
	f := newFixture()
	snap := f.snapshot(t)
	engine := NewContentBasedEngine()
	ctx := context.Background()

	t.Run("Closest listing to purchases first", func(t *testing.T) {
		p := profile.Build(&catalog.User{ID: uuid.New()}, &catalog.UserHistory{
			Orders: []*catalog.Order{{AgentID: f.agents["invoice"].ID, Amount: 80, Status: catalog.OrderStatusCompleted}},
		}, snap.Catalog)
		results, err := engine.Recommend(ctx, &Request{UserID: p.ID, Profile: p, Snapshot: snap, Limit: 3})
		require.NoError(t, err)
		require.NotEmpty(t, results)

		assert.Equal(t, f.agents["extract"].ID, results[0].AgentID)
		for _, r := range results {
			assert.False(t, p.HasPurchased(r.AgentID))
			assert.Greater(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 100.0+1e-9)
			assert.Equal(t, TypeContent, r.Type)
		}
	})

	t.Run("No purchases", func(t *testing.T) {
		p := snap.Profiles[f.users["newbie"].ID]
		results, err := engine.Recommend(ctx, &Request{UserID: p.ID, Profile: p, Snapshot: snap, Limit: 3})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestPersonalizedEngine(t *testing.T) {
	f := newFixture()
	snap := f.snapshot(t)
	engine := NewPersonalizedEngine(scoring.DefaultWeights())

	user := &catalog.User{
		ID:          uuid.New(),
		Preferences: datatypes.JSON(`{"categories":["finance","support"],"priceRange":{"min":0,"max":85}}`),
	}
	p := profile.Build(user, &catalog.UserHistory{
		Orders: []*catalog.Order{{AgentID: f.agents["support"].ID, Amount: 50, Status: catalog.OrderStatusCompleted}},
	}, snap.Catalog)

	results, err := engine.Recommend(context.Background(), &Request{UserID: user.ID, Profile: p, Snapshot: snap, Limit: 10})
	require.NoError(t, err)

	got := ids(results)
	assert.NotContains(t, got, f.agents["support"].ID, "purchased")
	assert.NotContains(t, got, f.agents["extract"].ID, "above price range")
	assert.NotContains(t, got, f.agents["seo"].ID, "not a preferred category")
	assert.ElementsMatch(t, []uuid.UUID{f.agents["invoice"].ID, f.agents["triage"].ID, f.agents["refund"].ID}, got)

	for _, r := range results {
		a, _ := snap.Catalog.Get(r.AgentID)
		assert.Equal(t, "Matches your interest in "+a.Category, r.Reason)
		assert.Equal(t, TypePersonalized, r.Type)
	}
	// finance is ranked first in the explicit list
	assert.Equal(t, f.agents["invoice"].ID, results[0].AgentID)
}

func TestTrendingEngine(t *testing.T) {
	f := newFixture()
	snap := f.snapshot(t)

	results, err := NewTrendingEngine().Recommend(context.Background(), &Request{Snapshot: snap, Limit: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	for _, r := range results {
		a, _ := snap.Catalog.Get(r.AgentID)
		assert.InDelta(t, a.PopularityScore+a.QualityScore, r.Score, 1e-9)
		assert.Equal(t, TypeTrending, r.Type)
	}
	// pending listings never enter the snapshot
	assert.Equal(t, 7, snap.Catalog.Len())
}

func TestBlend(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	results := Blend([][]*Result{
		{{AgentID: a, Score: 10, Type: TypeCollaborative}, {AgentID: b, Score: 50, Type: TypeCollaborative}},
		{{AgentID: a, Score: 80, Type: TypeContent, Reason: "content"}},
		{{AgentID: c, Score: 50, Type: TypePersonalized}},
		{{AgentID: b, Score: 20, Type: TypeCollaborative}},
	}, 10)

	require.Len(t, results, 3)
	assert.Equal(t, []uuid.UUID{a, b, c}, ids(results))
	assert.Equal(t, 80.0, results[0].Score)
	assert.Equal(t, TypeHybrid, results[0].Type)
	assert.Equal(t, "content", results[0].Reason)
	assert.Equal(t, TypeCollaborative, results[1].Type, "same strategy twice is not hybrid")
	assert.Equal(t, 50.0, results[1].Score)

	assert.Len(t, Blend([][]*Result{{{AgentID: a, Score: 1}, {AgentID: b, Score: 2}}}, 1), 1)
	assert.Empty(t, Blend(nil, 5))
}

func TestQuota(t *testing.T) {
	assert.Equal(t, 4, Quota(CollaborativeShare, 10))
	assert.Equal(t, 2, Quota(ContentShare, 5))
	assert.Equal(t, 1, Quota(PersonalizedShare, 5))
	assert.Equal(t, 1, Quota(TrendingShare, 5))
	assert.Equal(t, 0, Quota(TrendingShare, 0))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-4))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxLimit, ClampLimit(500))
}

func TestService_Recommend(t *testing.T) {
	ctx := context.Background()

	t.Run("Cold start returns trending only", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		snap := f.snapshot(t)

		results, err := svc.Recommend(ctx, f.users["newbie"].ID, 5)
		require.NoError(t, err)

		expected, err := NewTrendingEngine().Recommend(ctx, &Request{Snapshot: snap, Limit: 5})
		require.NoError(t, err)

		assert.Equal(t, ids(expected), ids(results))
		for _, r := range results {
			assert.Equal(t, TypeTrending, r.Type)
		}
	})

	t.Run("Anonymous and unknown users get trending", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)

		for _, id := range []uuid.UUID{uuid.Nil, uuid.New()} {
			results, err := svc.Recommend(ctx, id, 3)
			require.NoError(t, err)
			assert.Len(t, results, 3)
			for _, r := range results {
				assert.Equal(t, TypeTrending, r.Type)
			}
		}
	})

	t.Run("Blended results are unique, sorted and bounded", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)

		results, err := svc.Recommend(ctx, f.users["alice"].ID, 5)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.LessOrEqual(t, len(results), 5)

		seen := map[uuid.UUID]bool{}
		for i, r := range results {
			assert.False(t, seen[r.AgentID], "duplicate agent %s", r.AgentID)
			seen[r.AgentID] = true
			if i > 0 {
				assert.GreaterOrEqual(t, results[i-1].Score, r.Score)
			}
		}
		assert.True(t, seen[f.agents["extract"].ID])
	})

	t.Run("Deterministic", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)

		first, err := svc.Recommend(ctx, f.users["alice"].ID, 6)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := svc.Recommend(ctx, f.users["alice"].ID, 6)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("Default limit from config", func(t *testing.T) {
		f := newFixture()
		svc, err := NewService(&config.RecommendationConfig{DefaultLimit: "2"}, f.store(t), f.gateway, scoring.DefaultWeights(), logger.Nop())
		require.NoError(t, err)

		results, err := svc.Recommend(ctx, f.users["newbie"].ID, 0)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Snapshot failure is returned", func(t *testing.T) {
		f := newFixture()
		f.gateway.Err = errors.New("database unavailable")
		svc := f.service(t)

		_, err := svc.Recommend(ctx, f.users["alice"].ID, 5)
		assert.Error(t, err)
	})
}

type brokenStrategy struct {
	name  string
	panic bool
}

func (b brokenStrategy) Name() string { return b.name }

func (b brokenStrategy) Recommend(ctx context.Context, req *Request) ([]*Result, error) {
	if b.panic {
		var m *InteractionMatrix
		_ = m.Rows()
	}
	return nil, errors.New("empty matrix")
}

func TestService_StrategyFailureIsIsolated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := &service{
		store:         f.store(t),
		gateway:       f.gateway,
		collaborative: brokenStrategy{name: "broken-collaborative", panic: true},
		content:       brokenStrategy{name: "broken-content"},
		personalized:  NewPersonalizedEngine(scoring.DefaultWeights()),
		trending:      NewTrendingEngine(),
		defaultLimit:  DefaultLimit,
		logger:        logger.Nop(),
	}

	before := testutil.ToFloat64(metrics.StrategyFailures.WithLabelValues("broken-collaborative"))

	results, err := svc.Recommend(ctx, f.users["alice"].ID, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	for _, r := range results {
		assert.NotEqual(t, TypeCollaborative, r.Type)
		assert.NotEqual(t, TypeContent, r.Type)
	}

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StrategyFailures.WithLabelValues("broken-collaborative")))
}

func TestNewService_InvalidConfig(t *testing.T) {
	f := newFixture()
	store := f.store(t)

	_, err := NewService(&config.RecommendationConfig{Neighbors: "many"}, store, nil, scoring.DefaultWeights(), logger.Nop())
	assert.Error(t, err)

	_, err = NewService(&config.RecommendationConfig{DefaultLimit: "1000"}, store, nil, scoring.DefaultWeights(), logger.Nop())
	assert.Error(t, err)

	_, err = NewStore(&config.RecommendationConfig{PurchaseCredit: "-1"}, f.gateway, newExtractor(), logger.Nop())
	assert.Error(t, err)
}

// hookedGateway runs a callback while reviews are being loaded
type hookedGateway struct {
	*catalog.MemoryGateway
	onListReviews func()
}

func (h *hookedGateway) ListReviews(ctx context.Context) ([]*catalog.Review, error) {
	h.onListReviews()
	return h.MemoryGateway.ListReviews(ctx)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Current caches until invalidated", func(t *testing.T) {
		f := newFixture()
		store := f.store(t)

		first, err := store.Current(ctx)
		require.NoError(t, err)
		again, err := store.Current(ctx)
		require.NoError(t, err)
		assert.Same(t, first, again)

		f.gateway.Agents = append(f.gateway.Agents, &catalog.Agent{ID: uuid.New(), Name: "New Agent", Status: catalog.AgentStatusApproved})
		store.Invalidate()

		rebuilt, err := store.Current(ctx)
		require.NoError(t, err)
		assert.NotSame(t, first, rebuilt)
		assert.Equal(t, first.Catalog.Len()+1, rebuilt.Catalog.Len())
		assert.Equal(t, 7, first.Catalog.Len(), "old snapshot is untouched")
	})

	t.Run("Refresh swaps wholesale", func(t *testing.T) {
		f := newFixture()
		store := f.store(t)

		first, err := store.Current(ctx)
		require.NoError(t, err)
		refreshed, err := store.Refresh(ctx)
		require.NoError(t, err)
		assert.NotSame(t, first, refreshed)

		current, _ := store.Current(ctx)
		assert.Same(t, refreshed, current)
	})

	t.Run("Invalidate during rebuild discards the result", func(t *testing.T) {
		f := newFixture()
		store := f.store(t)
		store.gateway = &hookedGateway{
			MemoryGateway: f.gateway,
			onListReviews: store.Invalidate,
		}

		stale, err := store.Refresh(ctx)
		require.NoError(t, err)
		require.NotNil(t, stale)
		assert.Nil(t, store.current.Load())

		store.gateway = f.gateway
		current, err := store.Current(ctx)
		require.NoError(t, err)
		assert.NotSame(t, stale, current)
	})

	t.Run("Gateway failure keeps previous snapshot", func(t *testing.T) {
		f := newFixture()
		store := f.store(t)

		first, err := store.Current(ctx)
		require.NoError(t, err)

		f.gateway.Err = errors.New("connection reset")
		_, err = store.Refresh(ctx)
		assert.Error(t, err)

		current, err := store.Current(ctx)
		require.NoError(t, err)
		assert.Same(t, first, current)
	})
}

func TestBuildRecommendationResponse(t *testing.T) {
	userID := uuid.New()
	results := []*Result{
		{AgentID: uuid.New(), Score: 90, Reason: "Trending in the marketplace", Type: TypeTrending},
		{AgentID: uuid.New(), Score: 70, Reason: "Trending in the marketplace", Type: TypeTrending},
	}

	response := BuildRecommendationResponse(results, userID)
	assert.Len(t, response.Recommendations, 2)
	assert.Equal(t, userID, response.UserID)
	assert.Equal(t, 2, response.Count)
	assert.NotZero(t, response.GeneratedAt)

	empty := BuildRecommendationResponse(nil, userID)
	assert.NotNil(t, empty.Recommendations)
	assert.Equal(t, 0, empty.Count)
}
