package repository

import (
	"errors"
	"fmt"

	reviewPkg "github.com/dustin/marketplace-backend/internal/review"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormReviewRepository implements the review.Repository interface
type gormReviewRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMReviewRepository creates a new GORM-based review repository
func NewGORMReviewRepository(db *gorm.DB, log *logger.Logger) reviewPkg.Repository {
	return &gormReviewRepository{
		db:     db,
		logger: log.WithComponent("gorm-review-repository"),
	}
}

func (r *gormReviewRepository) Create(review *reviewPkg.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		r.logger.Error("Failed to create review for agent " + review.AgentID.String() + " by user " + review.UserID.String() + ": " + err.Error())
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *gormReviewRepository) FindByUserAndAgent(userID, agentID uuid.UUID) (*reviewPkg.Review, error) {
	var review reviewPkg.Review

	// Compound primary key lookup
	err := r.db.Where("user_id = ? AND agent_id = ?", userID, agentID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reviewPkg.ErrReviewNotFound
		}

		r.logger.Error("Database error finding review for agent " + agentID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &review, nil
}

func (r *gormReviewRepository) Update(review *reviewPkg.Review) error {
	if err := r.db.Save(review).Error; err != nil {
		r.logger.Error("Failed to update review for agent " + review.AgentID.String() + ": " + err.Error())
		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

func (r *gormReviewRepository) Delete(userID, agentID uuid.UUID) error {
	result := r.db.Delete(&reviewPkg.Review{}, "user_id = ? AND agent_id = ?", userID, agentID)
	if err := result.Error; err != nil {
		r.logger.Error("Failed to delete review for agent " + agentID.String() + ": " + err.Error())
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("No review to delete for agent " + agentID.String() + " by user " + userID.String())
		return reviewPkg.ErrReviewNotFound
	}

	return nil
}

func (r *gormReviewRepository) FindAgent(agentID uuid.UUID) (*reviewPkg.Agent, error) {
	var agent reviewPkg.Agent

	err := r.db.Where("id = ?", agentID).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reviewPkg.ErrAgentNotFound
		}

		r.logger.Error("Database error finding agent " + agentID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &agent, nil
}

func (r *gormReviewRepository) GetAverageRating(agentID uuid.UUID) (float64, int, error) {
	type Result struct {
		Average float64
		Count   int
	}

	var result Result

	err := r.db.Model(&reviewPkg.Review{}).
		Select("COALESCE(AVG(rating), 0) as average, COUNT(*) as count").
		Where("agent_id = ?", agentID).
		Scan(&result).Error
	if err != nil {
		r.logger.Error("Failed to aggregate ratings for agent " + agentID.String() + ": " + err.Error())
		return 0, 0, fmt.Errorf("database error: %w", err)
	}

	return result.Average, result.Count, nil
}

func (r *gormReviewRepository) UpdateAgentRating(agentID uuid.UUID, average float64, count int) error {
	err := r.db.Model(&reviewPkg.Agent{}).
		Where("id = ?", agentID).
		Updates(map[string]interface{}{
			"rating":       average,
			"review_count": count,
		}).Error
	if err != nil {
		r.logger.Error("Failed to update rating of agent " + agentID.String() + ": " + err.Error())
		return fmt.Errorf("failed to update agent rating: %w", err)
	}

	return nil
}
