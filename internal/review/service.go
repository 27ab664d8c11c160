package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/marketplace-backend/internal/utils"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
)

// approved listings are the only reviewable ones
const agentStatusApproved = "approved"

// service implements the Service interface
type service struct {
	repo        Repository
	invalidator Invalidator
	logger      *logger.Logger
}

// NewService creates a new review service. invalidator may be nil.
func NewService(repo Repository, invalidator Invalidator, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		invalidator: invalidator,
		logger:      log.WithComponent("review-service"),
	}
}

func (s *service) ReviewAgent(userID, agentID uuid.UUID, rating int, comment string) (*Review, error) {
	s.logger.Info("Reviewing agent " + agentID.String() + " by user " + userID.String() + " with rating " + utils.IntToString(rating))

	if rating < 1 || rating > 5 {
		s.logger.Warn("Invalid rating " + utils.IntToString(rating) + " for agent " + agentID.String())
		return nil, fmt.Errorf("%w, got %d", ErrInvalidRating, rating)
	}

	agent, err := s.repo.FindAgent(agentID)
	if err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}
	if agent.Status != agentStatusApproved {
		return nil, ErrAgentNotFound
	}

	comment = strings.TrimSpace(comment)

	review, err := s.repo.FindByUserAndAgent(userID, agentID)
	switch {
	case err == nil:
		review.Rating = rating
		review.Comment = comment
		review.UpdatedAt = time.Now()
		if err := s.repo.Update(review); err != nil {
			s.logger.Error("Failed to update review for agent " + agentID.String() + " by user " + userID.String() + ": " + err.Error())
			return nil, err
		}
	case errors.Is(err, ErrReviewNotFound):
		review = &Review{
			UserID:    userID,
			AgentID:   agentID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.repo.Create(review); err != nil {
			s.logger.Error("Failed to create review for agent " + agentID.String() + " by user " + userID.String() + ": " + err.Error())
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.refreshAgentRating(agentID); err != nil {
		return nil, err
	}

	s.logger.Info("Review saved for agent " + agentID.String() + " by user " + userID.String())
	return review, nil
}

func (s *service) GetReview(userID, agentID uuid.UUID) (*Review, error) {
	review, err := s.repo.FindByUserAndAgent(userID, agentID)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *service) DeleteReview(userID, agentID uuid.UUID) error {
	s.logger.Info("Deleting review for agent " + agentID.String() + " by user " + userID.String())

	if err := s.repo.Delete(userID, agentID); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		s.logger.Error("Failed to delete review for agent " + agentID.String() + " by user " + userID.String() + ": " + err.Error())
		return err
	}

	return s.refreshAgentRating(agentID)
}

// refreshAgentRating recomputes the listing's average rating and review
// count and drops cached rankings
func (s *service) refreshAgentRating(agentID uuid.UUID) error {
	average, count, err := s.repo.GetAverageRating(agentID)
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	if err := s.repo.UpdateAgentRating(agentID, average, count); err != nil {
		return fmt.Errorf("failed to update agent rating: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
	return nil
}
