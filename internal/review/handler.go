package review

import (
	"errors"
	"net/http"

	"github.com/dustin/marketplace-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for review operations
type Handler struct {
	service Service
}

// NewHandler creates a new review handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) identify(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return uuid.Nil, uuid.Nil, false
	}

	agentID, err := uuid.Parse(c.Param("agentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, agentID, true
}

// ReviewAgent handles review creation/update
func (h *Handler) ReviewAgent(c *gin.Context) {
	var req ReviewAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, agentID, ok := h.identify(c)
	if !ok {
		return
	}

	review, err := h.service.ReviewAgent(userID, agentID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, ErrAgentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		case errors.Is(err, ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review agent"})
		}
		return
	}

	c.JSON(http.StatusOK, review.ToResponse())
}

// GetReview handles getting the caller's review of an agent
func (h *Handler) GetReview(c *gin.Context) {
	userID, agentID, ok := h.identify(c)
	if !ok {
		return
	}

	review, err := h.service.GetReview(userID, agentID)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get review"})
		}
		return
	}

	c.JSON(http.StatusOK, review.ToResponse())
}

// DeleteReview handles review deletion
func (h *Handler) DeleteReview(c *gin.Context) {
	userID, agentID, ok := h.identify(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(userID, agentID); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// RegisterRoutes registers all review routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	// All review routes require authentication
	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware)
	{
		reviews.POST("/agents/:agentId", h.ReviewAgent)
		reviews.GET("/agents/:agentId", h.GetReview)
		reviews.DELETE("/agents/:agentId", h.DeleteReview)
	}
}
