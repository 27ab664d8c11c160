// Package scoring holds the one authoritative formula per score type used by
// search and recommendations. Every function is pure; the constants live in
// a Weights table so they can be tuned without touching the formulas.
package scoring

// Weights is the named constants table behind every score
type Weights struct {
	// Relevance, per query token
	NameMatch        float64
	DescriptionMatch float64
	CategoryMatch    float64
	TagMatch         float64

	// Relevance, fixed bonuses
	VerifiedBonus       float64
	FeaturedBonus       float64
	HighRatingBonus     float64
	HighRatingThreshold float64

	// Popularity
	SalesWeight  float64
	ReviewWeight float64
	RatingWeight float64
	RatingScale  float64 // maps a 0-5 rating onto 0-100

	// Quality
	QualityRatingWeight float64
	ConfidenceReviews   float64 // review count at which confidence saturates
	QualityVerified     float64
	QualityFeatured     float64

	// Preference
	CategoryTopBonus      float64
	CategoryRankStep      float64
	PreferenceRating      float64
	SalesDivisor          float64
	SalesCap              float64
	PreferenceFeatured    float64
	PriceClosenessMax     float64
	QueryNameBonus        float64
	QueryDescriptionBonus float64
}

// DefaultWeights returns the production constants
func DefaultWeights() Weights {
	return Weights{
		NameMatch:        50,
		DescriptionMatch: 30,
		CategoryMatch:    40,
		TagMatch:         25,

		VerifiedBonus:       10,
		FeaturedBonus:       15,
		HighRatingBonus:     5,
		HighRatingThreshold: 4.5,

		SalesWeight:  0.4,
		ReviewWeight: 0.3,
		RatingWeight: 0.3,
		RatingScale:  20,

		QualityRatingWeight: 0.6,
		ConfidenceReviews:   10,
		QualityVerified:     20,
		QualityFeatured:     10,

		CategoryTopBonus:      30,
		CategoryRankStep:      5,
		PreferenceRating:      5,
		SalesDivisor:          10,
		SalesCap:              20,
		PreferenceFeatured:    10,
		PriceClosenessMax:     15,
		QueryNameBonus:        15,
		QueryDescriptionBonus: 10,
	}
}
