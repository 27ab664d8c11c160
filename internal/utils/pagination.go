package utils

import (
	"math"
	"strconv"
)

// Search pagination bounds
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// CalculatePagination calculates pagination metadata
func CalculatePagination(total int64, page, limit int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}

	return PaginationMeta{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}

// NormalizePage clamps page to at least 1 and limit to [1, MaxPageLimit],
// using DefaultPageLimit for a missing limit. page is capped so that
// Offset(page, limit)+limit fits in an int.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// Offset returns the number of rows before page
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// IntToString converts an integer to string
func IntToString(i int) string {
	return strconv.Itoa(i)
}
