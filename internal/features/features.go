// Package features turns catalog listings into the read-only feature
// records the ranking engine scores against.
package features

import (
	"strings"
	"time"

	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/embedding"
	"github.com/dustin/marketplace-backend/internal/scoring"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
)

// AgentFeatures is a derived snapshot of one listing. It is never mutated
// after extraction; a catalog change produces a new record.
type AgentFeatures struct {
	ID              uuid.UUID
	Name            string
	Description     string
	Category        string
	Price           float64
	Rating          float64
	ReviewCount     int
	TotalSales      int
	Verified        bool
	Featured        bool
	Tags            []string
	Features        []string
	CreatedAt       time.Time
	PopularityScore float64
	QualityScore    float64
	TextEmbedding   []float64
}

// Candidate returns the scoring input for this listing
func (f *AgentFeatures) Candidate() scoring.Candidate {
	return scoring.Candidate{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Tags:        f.Tags,
		Price:       f.Price,
		Rating:      f.Rating,
		ReviewCount: f.ReviewCount,
		TotalSales:  f.TotalSales,
		Verified:    f.Verified,
		Featured:    f.Featured,
	}
}

// Extractor builds feature records with a fixed embedder and weights table
type Extractor struct {
	embedder embedding.Embedder
	weights  scoring.Weights
	logger   *logger.Logger
}

// NewExtractor creates a feature extractor
func NewExtractor(embedder embedding.Embedder, weights scoring.Weights, log *logger.Logger) *Extractor {
	return &Extractor{
		embedder: embedder,
		weights:  weights,
		logger:   log.WithComponent("feature-extractor"),
	}
}

// EmbeddingText is the text an agent's embedding is computed from
func EmbeddingText(agent *catalog.Agent) string {
	return strings.ToLower(agent.Name + " " + agent.Description + " " + agent.Category)
}

// Extract derives the feature record of one agent. Embedding failures
// degrade to the zero vector.
func (e *Extractor) Extract(agent *catalog.Agent) *AgentFeatures {
	vector, err := e.embedder.Embed(EmbeddingText(agent))
	if err != nil {
		e.logger.Warn("Failed to embed agent " + agent.ID.String() + ": " + err.Error())
		vector = nil
	}
	return e.build(agent, vector)
}

// ExtractCatalog derives features for every agent, preserving input order.
// Embedders that support batching are called once for the whole catalog.
func (e *Extractor) ExtractCatalog(agents []*catalog.Agent) *Catalog {
	records := make([]*AgentFeatures, 0, len(agents))

	if batcher, ok := e.embedder.(embedding.BatchEmbedder); ok && len(agents) > 0 {
		texts := make([]string, len(agents))
		for i, a := range agents {
			texts[i] = EmbeddingText(a)
		}
		vectors, err := batcher.EmbedBatch(texts)
		if err == nil {
			for i, a := range agents {
				records = append(records, e.build(a, vectors[i]))
			}
			return NewCatalog(records)
		}
		e.logger.Warn("Batch embedding failed, embedding agents one by one: " + err.Error())
	}

	for _, a := range agents {
		records = append(records, e.Extract(a))
	}
	return NewCatalog(records)
}

func (e *Extractor) build(agent *catalog.Agent, vector []float64) *AgentFeatures {
	if len(vector) != e.embedder.Dimension() {
		vector = make([]float64, e.embedder.Dimension())
	}

	return &AgentFeatures{
		ID:              agent.ID,
		Name:            agent.Name,
		Description:     agent.Description,
		Category:        agent.Category,
		Price:           agent.Price,
		Rating:          agent.Rating,
		ReviewCount:     agent.ReviewCount,
		TotalSales:      agent.TotalSales,
		Verified:        agent.Verified,
		Featured:        agent.Featured,
		Tags:            agent.TagList(),
		Features:        agent.FeatureList(),
		CreatedAt:       agent.CreatedAt,
		PopularityScore: scoring.Popularity(agent.TotalSales, agent.ReviewCount, agent.Rating, e.weights),
		QualityScore:    scoring.Quality(agent.Rating, agent.ReviewCount, agent.Verified, agent.Featured, e.weights),
		TextEmbedding:   vector,
	}
}
