package matcher

import "testing"

func unit(v []float32) []float32 {
	var n float64
	for _, x := range v {
		n += float64(x) * float64(x)
	}
	n = sqrt(n)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

func sqrt(x float64) float64 {
	if x == 0 {
		return 0
	}
	z := x
	for i := 0; i < 50; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

func TestSimilaritySelfIsOne(t *testing.T) {
	v := unit([]float32{1, 2, 3, 4})
	s := Similarity(v, v)
	if abs(s-1) > 1e-5 {
		t.Fatalf("expected ~1, got %v", s)
	}
}

func TestSimilarityOrthogonalIsZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	s := Similarity(a, b)
	if abs(s) > 1e-5 {
		t.Fatalf("expected ~0, got %v", s)
	}
}

func TestSimilarityOppositeIsMinusOne(t *testing.T) {
	v := unit([]float32{1, 2, 3})
	neg := make([]float32, len(v))
	for i, x := range v {
		neg[i] = -x
	}
	s := Similarity(v, neg)
	if abs(s+1) > 1e-5 {
		t.Fatalf("expected ~-1, got %v", s)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestBestMatchEmpty(t *testing.T) {
	idx, id, score := BestMatch([]float32{1, 0}, nil)
	if idx != -1 || id != "" || score != 0 {
		t.Fatalf("expected (-1, \"\", 0), got (%d, %q, %v)", idx, id, score)
	}
}

func TestBestMatchPicksHighest(t *testing.T) {
	query := []float32{1, 0}
	cands := []Candidate{
		{ID: "a", Embedding: []float32{0, 1}},
		{ID: "b", Embedding: []float32{1, 0}},
		{ID: "c", Embedding: []float32{0.7071, 0.7071}},
	}
	idx, id, score := BestMatch(query, cands)
	if id != "b" || idx != 1 {
		t.Fatalf("expected b at index 1, got %q at %d", id, idx)
	}
	if abs(score-1) > 1e-3 {
		t.Fatalf("expected score ~1, got %v", score)
	}
}
