package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/hyperjump/kokoro/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. Each word is
// hashed into a bucket, so texts sharing words get similar vectors and the same
// text always gets the same embedding.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 768
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a unit-length bag-of-words embedding. Text with no words yields a zero vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ServiceError{Provider: "mock", Err: err}
	}
	emb := make([]float32, e.dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := HashString(w)
		dims := uint32(e.dimensions)
		sign := float32(1)
		if (h/dims)%2 == 1 {
			sign = -1
		}
		emb[h%dims] += sign
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// Model returns "mock".
func (e *MockEmbedder) Model() string {
	return "mock"
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// HashString returns a 32-bit hash of s. It stays unsigned so bucket indexes
// are non-negative on every platform.
func HashString(s string) uint32 {
	var h uint32
	for _, c := range s {
		h = 31*h + uint32(c)
	}
	return h
}
