// Package semantic provides sentence-embedding support for the symptom
// analysis service: an embedding provider abstraction, a bounded cache and
// the cosine ranking primitives.
package semantic

import (
	"context"
	"math"
)

// Embedder is the opaque embedding capability. Implementations must be
// safe for concurrent use.
type Embedder interface {
	// Embed returns the vector for a text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Available reports whether the backing model can currently serve
	// requests. Checked once at startup to select between the semantic
	// and keyword analysis strategies.
	Available(ctx context.Context) bool
}

// Cosine computes the cosine similarity of two vectors. Mismatched or
// zero-length vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
