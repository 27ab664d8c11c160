package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryGateway is an in-process Gateway over plain slices. It applies the
// same filters and orderings as the SQL gateway and is used by tests and
// local tooling.
type MemoryGateway struct {
	mu       sync.RWMutex
	Agents   []*Agent
	Users    []*User
	Orders   []*Order
	Reviews  []*Review
	Searches []*SearchHistory

	// Err, when set, is returned by every call
	Err error
}

// NewMemoryGateway creates an empty in-memory gateway
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

func (m *MemoryGateway) ListApprovedAgents(ctx context.Context, filters Filters) ([]*Agent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*Agent, 0, len(m.Agents))
	for _, a := range m.Agents {
		if filters.Matches(a) {
			matched = append(matched, a)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return Less(filters.Sort, matched[i], matched[j])
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return []*Agent{}, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, nil
}

func (m *MemoryGateway) CountAgentsMatching(ctx context.Context, filters Filters) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, a := range m.Agents {
		if filters.Matches(a) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryGateway) GetUserHistory(ctx context.Context, userID uuid.UUID) (*UserHistory, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := &UserHistory{
		Orders:   []*Order{},
		Reviews:  []*Review{},
		Searches: []string{},
	}
	for _, o := range m.Orders {
		if o.UserID == userID {
			history.Orders = append(history.Orders, o)
		}
	}
	for _, r := range m.Reviews {
		if r.UserID == userID {
			history.Reviews = append(history.Reviews, r)
		}
	}
	for _, s := range m.Searches {
		if s.UserID == userID {
			history.Searches = append(history.Searches, s.Query)
		}
	}
	return history, nil
}

func (m *MemoryGateway) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.Users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryGateway) ListUsers(ctx context.Context) ([]*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*User(nil), m.Users...), nil
}

func (m *MemoryGateway) ListCompletedOrders(ctx context.Context) ([]*Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := make([]*Order, 0, len(m.Orders))
	for _, o := range m.Orders {
		if o.IsCompleted() {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *MemoryGateway) ListReviews(ctx context.Context) ([]*Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*Review(nil), m.Reviews...), nil
}

func (m *MemoryGateway) RecordSearch(ctx context.Context, userID uuid.UUID, query string) error {
	if m.Err != nil {
		return m.Err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Searches = append(m.Searches, &SearchHistory{
		ID:        uuid.New(),
		UserID:    userID,
		Query:     query,
		CreatedAt: time.Now(),
	})
	return nil
}
