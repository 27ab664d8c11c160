package search

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/marketplace-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for search operations
type Handler struct {
	service Service
}

// NewHandler creates a new search handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Search handles catalog search. Authentication is optional; a signed-in
// user also gets recommendations.
func (h *Handler) Search(c *gin.Context) {
	params, err := ParseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if userID, ok := utils.CurrentUserID(c); ok {
		params.UserID = userID
	}

	resp, err := h.service.Search(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search agents"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ParseParams reads and validates the search query string. Malformed numbers
// and flags are rejected rather than ignored.
func ParseParams(c *gin.Context) (Params, error) {
	params := Params{
		Query:    c.Query("q"),
		Category: strings.TrimSpace(c.Query("category")),
		Sort:     c.Query("sort"),
	}

	var err error
	if params.MinPrice, err = parseFloat(c, "min_price"); err != nil {
		return params, err
	}
	if params.MaxPrice, err = parseFloat(c, "max_price"); err != nil {
		return params, err
	}
	if params.MinRating, err = parseFloat(c, "min_rating"); err != nil {
		return params, err
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return params, fmt.Errorf("min_price must not exceed max_price")
	}
	if params.MinRating != nil && *params.MinRating > 5 {
		return params, fmt.Errorf("min_rating must be between 0 and 5")
	}

	if params.FeaturedOnly, err = parseBool(c, "featured"); err != nil {
		return params, err
	}
	if params.VerifiedOnly, err = parseBool(c, "verified"); err != nil {
		return params, err
	}

	if params.Page, err = parseInt(c, "page"); err != nil {
		return params, err
	}
	if params.Limit, err = parseInt(c, "limit"); err != nil {
		return params, err
	}

	return params, nil
}

func parseFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number", key)
	}
	return &v, nil
}

func parseBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", key)
	}
	return v, nil
}

func parseInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return v, nil
}

// RegisterRoutes registers the search route behind optional authentication
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	router.GET("/search", optionalAuth, h.Search)
}
