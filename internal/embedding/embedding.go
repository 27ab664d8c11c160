// Package embedding turns listing text into fixed-length vectors that the
// ranking engine compares with cosine similarity.
package embedding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/marketplace-backend/config"
)

// DefaultDimension is the vector length used when none is configured
const DefaultDimension = 100

// Embedder maps text to a vector of a fixed, agreed length. Any
// implementation can replace another as long as Dimension matches.
type Embedder interface {
	Embed(text string) ([]float64, error)
	Dimension() int
}

// BatchEmbedder is implemented by embedders that can embed many texts in one
// call. Results are in input order.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(texts []string) ([][]float64, error)
}

// NewFromConfig returns the remote client when a service URL is configured
// and the in-process hashing embedder otherwise.
func NewFromConfig(cfg *config.EmbeddingConfig) (Embedder, error) {
	dimension := DefaultDimension
	if cfg != nil && cfg.Dimension != "" {
		d, err := strconv.Atoi(cfg.Dimension)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid embedding dimension '%s'", cfg.Dimension)
		}
		dimension = d
	}

	if cfg == nil || strings.TrimSpace(cfg.ServiceURL) == "" {
		return NewHashingEmbedder(dimension), nil
	}

	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding timeout '%s': %v", cfg.Timeout, err)
		}
		timeout = d
	}

	return NewClient(cfg.ServiceURL, dimension, timeout), nil
}
