// Package matcher computes cosine similarity over L2-normalized speaker
// embeddings. Because both sides of every comparison are unit vectors,
// similarity reduces to a plain dot product.
package matcher

import "gonum.org/v1/gonum/floats"

// Similarity returns the dot product of a and b, clamped to [-1, 1].
func Similarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	fa := make([]float64, n)
	fb := make([]float64, n)
	for i := 0; i < n; i++ {
		fa[i] = float64(a[i])
		fb[i] = float64(b[i])
	}
	s := floats.Dot(fa, fb)
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return s
}

// Candidate is one entry scanned by BestMatch.
type Candidate struct {
	ID        string
	Embedding []float32
}

// BestMatch scans candidates and returns the index, id, and score of the
// highest-scoring entry, ties broken by first occurrence. On an empty
// candidate list returns (-1, "", 0).
func BestMatch(query []float32, candidates []Candidate) (int, string, float64) {
	bestIdx := -1
	bestScore := 0.0
	bestID := ""
	for i, c := range candidates {
		s := Similarity(query, c.Embedding)
		if bestIdx == -1 || s > bestScore {
			bestIdx = i
			bestScore = s
			bestID = c.ID
		}
	}
	return bestIdx, bestID, bestScore
}
