package recommendation

import (
	"context"

	"github.com/dustin/marketplace-backend/internal/embedding"
	"github.com/dustin/marketplace-backend/internal/scoring"
	"github.com/google/uuid"
)

// DefaultNeighbors is the number of similar users consulted
const DefaultNeighbors = 10

// CollaborativeEngine recommends agents liked by the users whose
// interaction rows are most similar to the requester's
type CollaborativeEngine struct {
	neighbors int
}

// NewCollaborativeEngine creates a user-based collaborative filter
func NewCollaborativeEngine(neighbors int) *CollaborativeEngine {
	if neighbors <= 0 {
		neighbors = DefaultNeighbors
	}
	return &CollaborativeEngine{neighbors: neighbors}
}

func (e *CollaborativeEngine) Name() string {
	return TypeCollaborative
}

type neighbor struct {
	row        int
	similarity float64
}

// nearest returns up to K rows with positive cosine similarity to the
// user's row, most similar first. Ties keep matrix order.
func (e *CollaborativeEngine) nearest(m *InteractionMatrix, userID uuid.UUID) []neighbor {
	target, ok := m.Row(userID)
	if !ok {
		return nil
	}

	var out []neighbor
	for i, other := range m.Users() {
		if other == userID {
			continue
		}
		sim := embedding.Cosine(target, m.rows[i])
		if sim > 0 {
			out = append(out, neighbor{row: i, similarity: sim})
		}
	}

	scoring.StableSortDesc(out, func(n neighbor) float64 { return n.similarity })
	if len(out) > e.neighbors {
		out = out[:e.neighbors]
	}
	return out
}

// Recommend accumulates neighbor signal × similarity over every agent the
// requester has no signal for and, when a profile is given, has not
// purchased since the snapshot was built. An unknown user or one without
// similar users gets no results.
func (e *CollaborativeEngine) Recommend(ctx context.Context, req *Request) ([]*Result, error) {
	snap := req.Snapshot
	if snap == nil || snap.Matrix == nil || req.Limit <= 0 {
		return []*Result{}, nil
	}
	m := snap.Matrix

	target, ok := m.Row(req.UserID)
	if !ok {
		return []*Result{}, nil
	}
	neighbors := e.nearest(m, req.UserID)
	if len(neighbors) == 0 {
		return []*Result{}, nil
	}

	scores := make([]float64, m.Cols())
	for _, n := range neighbors {
		for col, signal := range m.rows[n.row] {
			if target[col] == 0 && signal > 0 {
				scores[col] += signal * n.similarity
			}
		}
	}

	results := make([]*Result, 0)
	for col, score := range scores {
		if score <= 0 {
			continue
		}
		agentID := snap.Catalog.At(col).ID
		if req.Profile != nil && req.Profile.HasPurchased(agentID) {
			continue
		}
		results = append(results, &Result{
			AgentID: agentID,
			Score:   score,
			Reason:  "Users with similar preferences also liked this",
			Type:    TypeCollaborative,
		})
	}

	scoring.StableSortDesc(results, func(r *Result) float64 { return r.Score })
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}
