package scoring

import (
	"math"
	"sort"
	"strings"
)

// Candidate is the per-agent input every scorer reads. Missing data is the
// zero value and contributes nothing.
type Candidate struct {
	Name        string
	Description string
	Category    string
	Tags        []string
	Price       float64
	Rating      float64
	ReviewCount int
	TotalSales  int
	Verified    bool
	Featured    bool
}

// Signals are the profile-derived inputs of the preference score
type Signals struct {
	PreferredCategories []string // most preferred first
	AvgPrice            float64
}

// QueryTokens lower-cases query and splits it on whitespace
func QueryTokens(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Relevance scores an agent against a free-text query using case-insensitive
// substring containment per token. An empty query scores 0.
func Relevance(query string, c Candidate, w Weights) float64 {
	tokens := QueryTokens(query)
	if len(tokens) == 0 {
		return 0
	}

	name := strings.ToLower(c.Name)
	description := strings.ToLower(c.Description)
	category := strings.ToLower(c.Category)
	tags := make([]string, len(c.Tags))
	for i, tag := range c.Tags {
		tags[i] = strings.ToLower(tag)
	}

	var score float64
	for _, token := range tokens {
		if strings.Contains(name, token) {
			score += w.NameMatch
		}
		if strings.Contains(description, token) {
			score += w.DescriptionMatch
		}
		if strings.Contains(category, token) {
			score += w.CategoryMatch
		}
		for _, tag := range tags {
			if strings.Contains(tag, token) {
				score += w.TagMatch
			}
		}
	}

	if c.Verified {
		score += w.VerifiedBonus
	}
	if c.Featured {
		score += w.FeaturedBonus
	}
	if c.Rating > w.HighRatingThreshold {
		score += w.HighRatingBonus
	}
	return score
}

// Popularity = sales·0.4 + reviews·0.3 + rating·20·0.3 with default weights
func Popularity(totalSales, reviewCount int, rating float64, w Weights) float64 {
	return w.SalesWeight*float64(totalSales) +
		w.ReviewWeight*float64(reviewCount) +
		w.RatingWeight*rating*w.RatingScale
}

// Quality discounts the rating linearly until the listing has
// ConfidenceReviews reviews, then adds the verified and featured bonuses.
func Quality(rating float64, reviewCount int, verified, featured bool, w Weights) float64 {
	confidence := 1.0
	if w.ConfidenceReviews > 0 {
		confidence = math.Min(float64(reviewCount)/w.ConfidenceReviews, 1)
	}
	if confidence < 0 {
		confidence = 0
	}

	score := rating * confidence * w.QualityRatingWeight
	if verified {
		score += w.QualityVerified
	}
	if featured {
		score += w.QualityFeatured
	}
	return score
}

// Preference scores an agent for one user. Each component is additive and
// independent of the others.
func Preference(s Signals, c Candidate, query string, w Weights) float64 {
	score := CategoryBonus(s.PreferredCategories, c.Category, w)

	rating := math.Max(0, math.Min(c.Rating, 5))
	score += rating * w.PreferenceRating

	if w.SalesDivisor > 0 {
		score += math.Min(w.SalesCap, float64(c.TotalSales)/w.SalesDivisor)
	}

	if c.Featured {
		score += w.PreferenceFeatured
	}

	score += PriceCloseness(s.AvgPrice, c.Price, w)

	tokens := QueryTokens(query)
	if containsAny(strings.ToLower(c.Name), tokens) {
		score += w.QueryNameBonus
	}
	if containsAny(strings.ToLower(c.Description), tokens) {
		score += w.QueryDescriptionBonus
	}
	return score
}

// CategoryBonus awards CategoryTopBonus to the first preferred category and
// CategoryRankStep less for each following one, never below 0.
func CategoryBonus(preferred []string, category string, w Weights) float64 {
	if category == "" {
		return 0
	}
	for rank, p := range preferred {
		if strings.EqualFold(p, category) {
			return math.Max(0, w.CategoryTopBonus-w.CategoryRankStep*float64(rank))
		}
	}
	return 0
}

// PriceCloseness is PriceClosenessMax at avgPrice and falls linearly to 0 as
// the relative gap reaches 100%. Without a purchase average it is 0.
func PriceCloseness(avgPrice, price float64, w Weights) float64 {
	if avgPrice <= 0 {
		return 0
	}
	gap := math.Abs(price-avgPrice) / avgPrice
	return math.Max(0, w.PriceClosenessMax*(1-gap))
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// StableSortDesc orders items by score, highest first. Equal scores keep
// their input order.
func StableSortDesc[T any](items []T, score func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return score(items[i]) > score(items[j])
	})
}
