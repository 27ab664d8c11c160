package embedding

import (
	"strings"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"github.com/cespare/xxhash/v2"
)

// HashingEmbedder is a bag of hashed Porter stems: every stem increments
// one of N buckets chosen by xxHash64, and the counts are L2-normalized.
// It is deterministic and needs no model, but carries no semantics beyond
// shared word stems.
type HashingEmbedder struct {
	dimension int
}

// NewHashingEmbedder creates a hashing embedder with the given bucket count
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashingEmbedder{dimension: dimension}
}

func (h *HashingEmbedder) Dimension() int {
	return h.dimension
}

func (h *HashingEmbedder) Embed(text string) ([]float64, error) {
	vector := make([]float64, h.dimension)
	for _, token := range Tokenize(text) {
		stem := porterstemmer.StemString(token)
		if stem == "" {
			continue
		}
		vector[xxhash.Sum64String(stem)%uint64(h.dimension)]++
	}
	return Normalize(vector), nil
}

// Tokenize lower-cases text and splits it on anything that is not a letter
// or digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
