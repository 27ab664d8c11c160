package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recentSearchLimit caps the search history loaded per user
const recentSearchLimit = 50

// gormGateway implements catalog.Gateway over the marketplace tables
type gormGateway struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMGateway creates a GORM-backed catalog gateway
func NewGORMGateway(db *gorm.DB, log *logger.Logger) catalog.Gateway {
	return &gormGateway{
		db:     db,
		logger: log.WithComponent("gorm-gateway"),
	}
}

// orderClause mirrors catalog.Less for each sort key
func orderClause(sort string) string {
	const tail = "created_at DESC, id ASC"
	switch catalog.NormalizeSort(sort) {
	case catalog.SortPriceAsc:
		return "price ASC, " + tail
	case catalog.SortPriceDesc:
		return "price DESC, " + tail
	case catalog.SortRating:
		return "rating DESC, " + tail
	case catalog.SortSales:
		return "total_sales DESC, rating DESC, " + tail
	case catalog.SortNewest:
		return tail
	default:
		return "featured DESC, verified DESC, rating DESC, total_sales DESC, " + tail
	}
}

// filterScope applies the approved status and every hard filter
func filterScope(filters catalog.Filters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("status = ?", catalog.AgentStatusApproved)
		if filters.Category != "" {
			db = db.Where("category = ?", filters.Category)
		}
		if filters.MinPrice != nil {
			db = db.Where("price >= ?", *filters.MinPrice)
		}
		if filters.MaxPrice != nil {
			db = db.Where("price <= ?", *filters.MaxPrice)
		}
		if filters.MinRating != nil {
			db = db.Where("rating >= ?", *filters.MinRating)
		}
		if filters.FeaturedOnly {
			db = db.Where("featured = ?", true)
		}
		if filters.VerifiedOnly {
			db = db.Where("verified = ?", true)
		}
		return db
	}
}

func (g *gormGateway) ListApprovedAgents(ctx context.Context, filters catalog.Filters) ([]*catalog.Agent, error) {
	var agents []*catalog.Agent

	query := g.db.WithContext(ctx).
		Model(&catalog.Agent{}).
		Scopes(filterScope(filters)).
		Order(orderClause(filters.Sort))
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	if err := query.Find(&agents).Error; err != nil {
		g.logger.Error("Failed to list agents: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return agents, nil
}

func (g *gormGateway) CountAgentsMatching(ctx context.Context, filters catalog.Filters) (int64, error) {
	var count int64

	err := g.db.WithContext(ctx).
		Model(&catalog.Agent{}).
		Scopes(filterScope(filters)).
		Count(&count).Error
	if err != nil {
		g.logger.Error("Failed to count agents: " + err.Error())
		return 0, fmt.Errorf("database error: %w", err)
	}

	return count, nil
}

func (g *gormGateway) GetUserHistory(ctx context.Context, userID uuid.UUID) (*catalog.UserHistory, error) {
	db := g.db.WithContext(ctx)
	history := &catalog.UserHistory{
		Orders:   []*catalog.Order{},
		Reviews:  []*catalog.Review{},
		Searches: []string{},
	}

	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&history.Orders).Error; err != nil {
		g.logger.Error("Failed to load orders for user " + userID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&history.Reviews).Error; err != nil {
		g.logger.Error("Failed to load reviews for user " + userID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	var searches []*catalog.SearchHistory
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(recentSearchLimit).
		Find(&searches).Error
	if err != nil {
		g.logger.Error("Failed to load searches for user " + userID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Oldest first, so the last element is the latest query
	slices.Reverse(searches)
	for _, s := range searches {
		history.Searches = append(history.Searches, s.Query)
	}

	return history, nil
}

func (g *gormGateway) GetUser(ctx context.Context, userID uuid.UUID) (*catalog.User, error) {
	var user catalog.User

	err := g.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrNotFound
		}

		g.logger.Error("Database error finding user " + userID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

func (g *gormGateway) ListUsers(ctx context.Context) ([]*catalog.User, error) {
	var users []*catalog.User

	if err := g.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		g.logger.Error("Failed to list users: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return users, nil
}

func (g *gormGateway) ListCompletedOrders(ctx context.Context) ([]*catalog.Order, error) {
	var orders []*catalog.Order

	err := g.db.WithContext(ctx).
		Where("status = ?", catalog.OrderStatusCompleted).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		g.logger.Error("Failed to list completed orders: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return orders, nil
}

func (g *gormGateway) ListReviews(ctx context.Context) ([]*catalog.Review, error) {
	var reviews []*catalog.Review

	if err := g.db.WithContext(ctx).Order("created_at ASC").Find(&reviews).Error; err != nil {
		g.logger.Error("Failed to list reviews: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return reviews, nil
}

func (g *gormGateway) RecordSearch(ctx context.Context, userID uuid.UUID, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	entry := &catalog.SearchHistory{
		ID:     uuid.New(),
		UserID: userID,
		Query:  query,
	}
	if err := g.db.WithContext(ctx).Create(entry).Error; err != nil {
		g.logger.Error("Failed to record search for user " + userID.String() + ": " + err.Error())
		return fmt.Errorf("failed to record search: %w", err)
	}

	return nil
}
