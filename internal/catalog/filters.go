package catalog

import "strings"

// Sort keys accepted by search
const (
	SortDefault   = ""
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortSales     = "sales"
	SortNewest    = "newest"
)

// Filters are the hard constraints of a catalog query. Nil bounds are open.
type Filters struct {
	Category     string
	MinPrice     *float64
	MaxPrice     *float64
	MinRating    *float64
	FeaturedOnly bool
	VerifiedOnly bool
	Sort         string
	Offset       int
	Limit        int // 0 means no limit
}

// NormalizeSort maps a requested sort key onto a known one; unknown keys
// fall back to the default composite order.
func NormalizeSort(sort string) string {
	switch s := strings.ToLower(strings.TrimSpace(sort)); s {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortRating, SortSales, SortNewest:
		return s
	default:
		return SortDefault
	}
}

// Matches reports whether an agent satisfies every hard filter, including
// the approved-for-sale status.
func (f Filters) Matches(a *Agent) bool {
	if !a.IsApproved() {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && a.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && a.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && a.Rating < *f.MinRating {
		return false
	}
	if f.FeaturedOnly && !a.Featured {
		return false
	}
	if f.VerifiedOnly && !a.Verified {
		return false
	}
	return true
}

// Unpaged returns a copy of the filters without offset and limit
func (f Filters) Unpaged() Filters {
	f.Offset = 0
	f.Limit = 0
	return f
}

// Less orders two agents the way the gateway's SQL ORDER BY does for sort.
// The relevance and default keys use the composite order
// (featured, verified, rating, sales, newest).
func Less(sort string, a, b *Agent) bool {
	switch NormalizeSort(sort) {
	case SortPriceAsc:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case SortPriceDesc:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	case SortRating:
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
	case SortSales:
		if a.TotalSales != b.TotalSales {
			return a.TotalSales > b.TotalSales
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
	case SortNewest:
	default:
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.Verified != b.Verified {
			return a.Verified
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.TotalSales != b.TotalSales {
			return a.TotalSales > b.TotalSales
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
