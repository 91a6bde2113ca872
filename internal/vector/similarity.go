package vector

import "github.com/hyperjump/kokoro/pkg/utils"

// Cosine returns the cosine similarity of a and b in [-1, 1] and whether it is
// defined. It is undefined when the lengths differ, a vector is empty, or either
// vector has zero magnitude.
func Cosine(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	return cosineWithNorms(a, b, utils.Magnitude(a), utils.Magnitude(b))
}

func cosineWithNorms(a, b []float32, normA, normB float64) (float64, bool) {
	if normA == 0 || normB == 0 {
		return 0, false
	}
	score := utils.Dot(a, b) / (normA * normB)
	// Rounding can push identical vectors slightly past the bounds.
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score, true
}
