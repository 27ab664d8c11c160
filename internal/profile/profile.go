// Package profile projects a user's stored settings and transactional
// history into the preference profile used for personalization.
package profile

import (
	"sort"
	"strings"

	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/features"
	"github.com/dustin/marketplace-backend/internal/scoring"
	"github.com/google/uuid"
)

const (
	// MaxPreferredTags caps PreferredTags
	MaxPreferredTags = 10
	// LikedRating is the lowest review rating whose agent tags count as liked
	LikedRating = 4
)

// RatingEntry is one explicit star rating
type RatingEntry struct {
	AgentID uuid.UUID `json:"agent_id"`
	Rating  int       `json:"rating"`
}

// Behavior holds the signals derived from history
type Behavior struct {
	PurchasedAgents []uuid.UUID   `json:"purchased_agents"`
	RatingHistory   []RatingEntry `json:"rating_history"`
	SearchHistory   []string      `json:"search_history"`
	ViewedAgents    []uuid.UUID   `json:"viewed_agents"`
}

// UserProfile is a pure projection of the authoritative records. It is
// rebuilt, never updated.
type UserProfile struct {
	ID                  uuid.UUID           `json:"id"`
	Preferences         catalog.Preferences `json:"preferences"`
	Behavior            Behavior            `json:"behavior"`
	PreferredCategories []string            `json:"preferred_categories"`
	PreferredTags       []string            `json:"preferred_tags"`
	AvgPrice            float64             `json:"avg_price"`
	PurchaseCount       int                 `json:"purchase_count"`

	purchased map[uuid.UUID]struct{}
}

// Lookup resolves agent ids against the current feature catalog
type Lookup interface {
	Get(id uuid.UUID) (*features.AgentFeatures, bool)
}

// HasPurchased reports whether the user completed an order for the agent
func (p *UserProfile) HasPurchased(agentID uuid.UUID) bool {
	_, ok := p.purchased[agentID]
	return ok
}

// HasHistory reports whether the profile has any purchase or rating signal
func (p *UserProfile) HasHistory() bool {
	return len(p.Behavior.PurchasedAgents) > 0 || len(p.Behavior.RatingHistory) > 0
}

// LastSearch returns the most recent recorded query, or ""
func (p *UserProfile) LastSearch() string {
	if n := len(p.Behavior.SearchHistory); n > 0 {
		return p.Behavior.SearchHistory[n-1]
	}
	return ""
}

// Signals returns the preference-score inputs of this profile
func (p *UserProfile) Signals() scoring.Signals {
	return scoring.Signals{
		PreferredCategories: p.PreferredCategories,
		AvgPrice:            p.AvgPrice,
	}
}

// Build projects one user's records into a profile. A nil user or history
// yields the default profile. When lookup is set, agent ids it does not know
// are skipped.
func Build(user *catalog.User, history *catalog.UserHistory, lookup Lookup) *UserProfile {
	p := &UserProfile{
		Preferences: catalog.DefaultPreferences(),
		Behavior: Behavior{
			PurchasedAgents: []uuid.UUID{},
			RatingHistory:   []RatingEntry{},
			SearchHistory:   []string{},
			ViewedAgents:    []uuid.UUID{},
		},
		purchased: map[uuid.UUID]struct{}{},
	}
	if user != nil {
		p.ID = user.ID
		p.Preferences = catalog.DecodePreferences(user.Preferences)
	}
	if history == nil {
		history = &catalog.UserHistory{}
	}

	known := func(id uuid.UUID) bool {
		if lookup == nil {
			return true
		}
		_, ok := lookup.Get(id)
		return ok
	}

	var spent float64
	var priced int
	for _, o := range history.Orders {
		if o == nil || !o.IsCompleted() || !known(o.AgentID) {
			continue
		}
		if _, seen := p.purchased[o.AgentID]; !seen {
			p.purchased[o.AgentID] = struct{}{}
			p.Behavior.PurchasedAgents = append(p.Behavior.PurchasedAgents, o.AgentID)
		}

		amount := o.Amount
		if amount <= 0 && lookup != nil {
			if f, ok := lookup.Get(o.AgentID); ok {
				amount = f.Price
			}
		}
		if amount > 0 {
			spent += amount
			priced++
		}
	}
	if priced > 0 {
		p.AvgPrice = spent / float64(priced)
	}
	p.PurchaseCount = len(p.Behavior.PurchasedAgents)

	for _, r := range history.Reviews {
		if r == nil || !known(r.AgentID) {
			continue
		}
		p.Behavior.RatingHistory = append(p.Behavior.RatingHistory, RatingEntry{AgentID: r.AgentID, Rating: r.Rating})
	}

	for _, q := range history.Searches {
		if q = strings.TrimSpace(q); q != "" {
			p.Behavior.SearchHistory = append(p.Behavior.SearchHistory, q)
		}
	}

	p.PreferredCategories = preferredCategories(p, lookup)
	p.PreferredTags = preferredTags(p, lookup)
	return p
}

// BuildAll builds the profile of every user from bulk records. Search
// history is not loaded in bulk.
func BuildAll(users []*catalog.User, orders []*catalog.Order, reviews []*catalog.Review, lookup Lookup) map[uuid.UUID]*UserProfile {
	histories := make(map[uuid.UUID]*catalog.UserHistory, len(users))
	for _, u := range users {
		histories[u.ID] = &catalog.UserHistory{}
	}
	for _, o := range orders {
		if h, ok := histories[o.UserID]; ok {
			h.Orders = append(h.Orders, o)
		}
	}
	for _, r := range reviews {
		if h, ok := histories[r.UserID]; ok {
			h.Reviews = append(h.Reviews, r)
		}
	}

	profiles := make(map[uuid.UUID]*UserProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = Build(u, histories[u.ID], lookup)
	}
	return profiles
}

// preferredCategories lists the explicit categories first, then the
// categories of purchased agents by purchase count.
func preferredCategories(p *UserProfile, lookup Lookup) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, c := range p.Preferences.Categories {
		key := strings.ToLower(c)
		if !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	if lookup == nil {
		return out
	}

	var counted []string
	counts := map[string]int{}
	for _, id := range p.Behavior.PurchasedAgents {
		f, ok := lookup.Get(id)
		if !ok || f.Category == "" {
			continue
		}
		key := strings.ToLower(f.Category)
		if seen[key] {
			continue
		}
		if counts[key] == 0 {
			counted = append(counted, f.Category)
		}
		counts[key]++
	}
	sort.SliceStable(counted, func(i, j int) bool {
		return counts[strings.ToLower(counted[i])] > counts[strings.ToLower(counted[j])]
	})
	return append(out, counted...)
}

// preferredTags ranks the tags of purchased and well-rated agents by
// frequency.
func preferredTags(p *UserProfile, lookup Lookup) []string {
	if lookup == nil {
		return []string{}
	}

	ids := append([]uuid.UUID{}, p.Behavior.PurchasedAgents...)
	for _, r := range p.Behavior.RatingHistory {
		if r.Rating >= LikedRating && !p.HasPurchased(r.AgentID) {
			ids = append(ids, r.AgentID)
		}
	}

	var tags []string
	counts := map[string]int{}
	for _, id := range ids {
		f, ok := lookup.Get(id)
		if !ok {
			continue
		}
		for _, tag := range f.Tags {
			key := strings.ToLower(tag)
			if counts[key] == 0 {
				tags = append(tags, key)
			}
			counts[key]++
		}
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return counts[tags[i]] > counts[tags[j]]
	})
	if len(tags) > MaxPreferredTags {
		tags = tags[:MaxPreferredTags]
	}
	if tags == nil {
		return []string{}
	}
	return tags
}
