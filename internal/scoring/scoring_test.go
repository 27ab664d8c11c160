package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func TestRelevance(t *testing.T) {
	w := DefaultWeights()

	supportBot := Candidate{
		Name:        "Customer Support Bot",
		Description: "Answers tickets around the clock",
		Category:    "support",
		Verified:    true,
		Featured:    true,
		Rating:      4.8,
	}
	randomTool := Candidate{
		Name:        "Random Tool",
		Description: "Does things",
		Category:    "misc",
		Rating:      3.0,
	}

	t.Run("Matching listing outranks unrelated one", func(t *testing.T) {
		a := Relevance("customer support", supportBot, w)
		b := Relevance("customer support", randomTool, w)

		// name x2, category "support", verified, featured, rating > 4.5
		assert.InDelta(t, 50+50+40+10+15+5, a, epsilon)
		assert.Equal(t, 0.0, b)
		assert.Greater(t, a, b)
	})

	t.Run("Empty query scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Relevance("", supportBot, w))
		assert.Equal(t, 0.0, Relevance("   ", supportBot, w))
	})

	t.Run("Case insensitive substring", func(t *testing.T) {
		assert.InDelta(t, 50+10+15+5, Relevance("CUST", supportBot, w), epsilon)
	})

	t.Run("Every matching tag counts", func(t *testing.T) {
		c := Candidate{Name: "x", Tags: []string{"seo", "SEO writer", "blog"}}
		assert.InDelta(t, 50.0, Relevance("seo", c, w), epsilon)
	})

	t.Run("Rating bonus is strict", func(t *testing.T) {
		c := Candidate{Name: "writer", Rating: 4.5}
		assert.InDelta(t, 50.0, Relevance("writer", c, w), epsilon)
	})
}

func TestPopularity(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 40+6+27, Popularity(100, 20, 4.5, w), epsilon)
	assert.Equal(t, 0.0, Popularity(0, 0, 0, w))
}

func TestQuality(t *testing.T) {
	w := DefaultWeights()

	testCases := []struct {
		name     string
		rating   float64
		reviews  int
		verified bool
		featured bool
		expected float64
	}{
		{"Low confidence verified", 4.5, 5, true, false, 4.5*0.5*0.6 + 20},
		{"Full confidence featured", 4, 20, false, true, 4*0.6 + 10},
		{"Confidence saturates at ten", 5, 10, false, false, 3},
		{"No reviews", 5, 0, false, false, 0},
		{"Both flags", 0, 0, true, true, 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Quality(tc.rating, tc.reviews, tc.verified, tc.featured, w), epsilon)
		})
	}

	t.Run("Single five star review is discounted", func(t *testing.T) {
		assert.Less(t, Quality(5, 1, false, false, w), Quality(5, 50, false, false, w))
	})
}

func TestPreference(t *testing.T) {
	w := DefaultWeights()
	signals := Signals{
		PreferredCategories: []string{"support", "sales", "writing"},
		AvgPrice:            50,
	}

	t.Run("All components", func(t *testing.T) {
		c := Candidate{
			Name:        "Sales Bot",
			Description: "Qualifies leads",
			Category:    "sales",
			Price:       50,
			Rating:      4,
			TotalSales:  500,
			Featured:    true,
		}
		// category rank 1, rating, capped sales, featured, exact price, name hit
		assert.InDelta(t, 25+20+20+10+15+15, Preference(signals, c, "bot", w), epsilon)
	})

	t.Run("Price closeness", func(t *testing.T) {
		near := Candidate{Name: "a", Price: 50}
		far := Candidate{Name: "a", Price: 500}
		assert.Greater(t, Preference(signals, near, "", w), Preference(signals, far, "", w))
		assert.InDelta(t, 15.0, PriceCloseness(50, 50, w), epsilon)
		assert.InDelta(t, 7.5, PriceCloseness(50, 75, w), epsilon)
		assert.Equal(t, 0.0, PriceCloseness(50, 500, w))
		assert.Equal(t, 0.0, PriceCloseness(0, 10, w))
	})

	t.Run("Category rank diminishes", func(t *testing.T) {
		prefs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
		assert.Equal(t, 30.0, CategoryBonus(prefs, "a", w))
		assert.Equal(t, 25.0, CategoryBonus(prefs, "B", w))
		assert.Equal(t, 0.0, CategoryBonus(prefs, "g", w))
		assert.Equal(t, 0.0, CategoryBonus(prefs, "h", w))
		assert.Equal(t, 0.0, CategoryBonus(prefs, "z", w))
		assert.Equal(t, 0.0, CategoryBonus(nil, "a", w))
	})

	t.Run("Missing data contributes nothing", func(t *testing.T) {
		assert.Equal(t, 0.0, Preference(Signals{}, Candidate{}, "", w))
	})

	t.Run("Rating component is capped", func(t *testing.T) {
		c := Candidate{Rating: 9}
		assert.Equal(t, 25.0, Preference(Signals{}, c, "", w))
	})

	t.Run("Description hit", func(t *testing.T) {
		c := Candidate{Name: "Helper", Description: "Writes blog posts"}
		assert.Equal(t, 10.0, Preference(Signals{}, c, "blog", w))
	})
}

func TestStableSortDesc(t *testing.T) {
	type item struct {
		id    string
		score float64
	}
	items := []item{{"a", 1}, {"b", 3}, {"c", 1}, {"d", 3}, {"e", 2}}

	StableSortDesc(items, func(i item) float64 { return i.score })

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	assert.Equal(t, []string{"b", "d", "e", "a", "c"}, ids)
}
