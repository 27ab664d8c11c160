package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	testCases := []struct {
		name     string
		total    int64
		page     int
		limit    int
		expected PaginationMeta
	}{
		{"Exact division", 100, 1, 10, PaginationMeta{Total: 100, Page: 1, Limit: 10, Pages: 10}},
		{"With remainder", 105, 2, 10, PaginationMeta{Total: 105, Page: 2, Limit: 10, Pages: 11}},
		{"Zero total", 0, 1, 20, PaginationMeta{Total: 0, Page: 1, Limit: 20, Pages: 0}},
		{"One item", 1, 1, 20, PaginationMeta{Total: 1, Page: 1, Limit: 20, Pages: 1}},
		{"Page past the end", 10, 999, 10, PaginationMeta{Total: 10, Page: 999, Limit: 10, Pages: 1}},
		{"Zero limit", 10, 1, 0, PaginationMeta{Total: 10, Page: 1, Limit: 0, Pages: 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculatePagination(tc.total, tc.page, tc.limit))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	testCases := []struct {
		name          string
		page, limit   int
		expectedPage  int
		expectedLimit int
	}{
		{"Defaults", 0, 0, 1, DefaultPageLimit},
		{"Negative page", -3, 10, 1, 10},
		{"Limit capped", 2, 1000, 2, MaxPageLimit},
		{"Untouched", 4, 25, 4, 25},
		{"Huge page capped", math.MaxInt, 20, math.MaxInt / 20, 20},
		{"Page at cap", math.MaxInt / 100, 100, math.MaxInt / 100, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := NormalizePage(tc.page, tc.limit)
			assert.Equal(t, tc.expectedPage, page)
			assert.Equal(t, tc.expectedLimit, limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 40, Offset(3, 20))

	page, limit := NormalizePage(500000000000000000, 20)
	offset := Offset(page, limit)
	assert.Positive(t, offset)
	assert.Positive(t, offset+limit)
}

func TestIntToString(t *testing.T) {
	assert.Equal(t, "42", IntToString(42))
	assert.Equal(t, "-7", IntToString(-7))
}
