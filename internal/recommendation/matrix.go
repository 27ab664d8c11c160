package recommendation

import (
	"github.com/dustin/marketplace-backend/internal/features"
	"github.com/dustin/marketplace-backend/internal/profile"
	"github.com/google/uuid"
)

// DefaultPurchaseCredit is the signal of a purchase the user never rated
const DefaultPurchaseCredit = 3.0

// InteractionMatrix is a dense users × agents signal table. Rows follow the
// user order it was built with, columns follow the catalog order. It is
// immutable once built.
type InteractionMatrix struct {
	users []uuid.UUID
	rows  [][]float64
	index map[uuid.UUID]int
	cols  int
}

// BuildInteractionMatrix fills one row per user. A cell holds the user's
// explicit rating, else purchaseCredit when the agent was purchased, else 0.
// Users without a profile get an all-zero row.
func BuildInteractionMatrix(users []uuid.UUID, c *features.Catalog, profiles map[uuid.UUID]*profile.UserProfile, purchaseCredit float64) *InteractionMatrix {
	m := &InteractionMatrix{
		users: make([]uuid.UUID, 0, len(users)),
		rows:  make([][]float64, 0, len(users)),
		index: make(map[uuid.UUID]int, len(users)),
		cols:  c.Len(),
	}

	for _, userID := range users {
		if _, dup := m.index[userID]; dup {
			continue
		}
		row := make([]float64, m.cols)
		if p, ok := profiles[userID]; ok && p != nil {
			for _, agentID := range p.Behavior.PurchasedAgents {
				if col, ok := c.Index(agentID); ok {
					row[col] = purchaseCredit
				}
			}
			for _, r := range p.Behavior.RatingHistory {
				if col, ok := c.Index(r.AgentID); ok {
					row[col] = float64(r.Rating)
				}
			}
		}
		m.index[userID] = len(m.rows)
		m.users = append(m.users, userID)
		m.rows = append(m.rows, row)
	}
	return m
}

// Users returns the row order
func (m *InteractionMatrix) Users() []uuid.UUID {
	return m.users
}

// Rows returns the number of users
func (m *InteractionMatrix) Rows() int {
	return len(m.rows)
}

// Cols returns the number of agents
func (m *InteractionMatrix) Cols() int {
	return m.cols
}

// Row returns a user's signals. The slice must not be modified.
func (m *InteractionMatrix) Row(userID uuid.UUID) ([]float64, bool) {
	i, ok := m.index[userID]
	if !ok {
		return nil, false
	}
	return m.rows[i], true
}

// At returns the signal of row i, column j
func (m *InteractionMatrix) At(i, j int) float64 {
	return m.rows[i][j]
}
