package insights

import "math"

// CosineSimilarity computes the cosine similarity of two vectors.
// Returns 0 if either vector is empty, the lengths differ, or either norm is
// zero. A context whose embedding failed to generate must never crash
// ranking, only score as irrelevant.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
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
