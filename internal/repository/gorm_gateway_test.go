package repository

import (
	"testing"

	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func TestOrderClause(t *testing.T) {
	testCases := []struct {
		sort     string
		expected string
	}{
		{catalog.SortPriceAsc, "price ASC, created_at DESC, id ASC"},
		{catalog.SortPriceDesc, "price DESC, created_at DESC, id ASC"},
		{catalog.SortRating, "rating DESC, created_at DESC, id ASC"},
		{catalog.SortSales, "total_sales DESC, rating DESC, created_at DESC, id ASC"},
		{catalog.SortNewest, "created_at DESC, id ASC"},
		{catalog.SortRelevance, "featured DESC, verified DESC, rating DESC, total_sales DESC, created_at DESC, id ASC"},
		{"", "featured DESC, verified DESC, rating DESC, total_sales DESC, created_at DESC, id ASC"},
		{"bogus; DROP TABLE agents", "featured DESC, verified DESC, rating DESC, total_sales DESC, created_at DESC, id ASC"},
	}

	for _, tc := range testCases {
		t.Run(tc.sort, func(t *testing.T) {
			assert.Equal(t, tc.expected, orderClause(tc.sort))
		})
	}
}
