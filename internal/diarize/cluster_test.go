package diarize

import "testing"

func unit(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := sumSq
	if norm <= 0 {
		return v
	}
	n := sqrtApprox(norm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

func sqrtApprox(x float64) float64 {
	z := x
	for i := 0; i < 50; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

func TestAgglomerateIdenticalEmbeddingsOneCluster(t *testing.T) {
	v := unit([]float32{1, 2, 3, 4})
	embeddings := [][]float32{v, v, v, v}
	labels := agglomerate(embeddings, DefaultThreshold, 0)
	first := labels[0]
	for _, l := range labels {
		if l != first {
			t.Errorf("expected all identical embeddings in one cluster, got labels %v", labels)
			break
		}
	}
}

func TestAgglomerateOrthogonalEmbeddingsSeparateClusters(t *testing.T) {
	a := unit([]float32{1, 0, 0, 0})
	b := unit([]float32{0, 1, 0, 0})
	embeddings := [][]float32{a, b}
	labels := agglomerate(embeddings, DefaultThreshold, 0)
	if labels[0] == labels[1] {
		t.Errorf("expected orthogonal embeddings in separate clusters, got labels %v", labels)
	}
}

func TestAgglomerateMaxClustersForcesMerge(t *testing.T) {
	a := unit([]float32{1, 0, 0, 0})
	b := unit([]float32{0, 1, 0, 0})
	c := unit([]float32{0, 0, 1, 0})
	embeddings := [][]float32{a, b, c}
	labels := agglomerate(embeddings, 0.01, 1)
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected max_clusters=1 to force a single cluster, got labels %v", labels)
	}
}

func TestAgglomerateLabelsCompacted(t *testing.T) {
	a := unit([]float32{1, 0, 0, 0})
	b := unit([]float32{0, 1, 0, 0})
	embeddings := [][]float32{a, b}
	labels := agglomerate(embeddings, DefaultThreshold, 0)
	for _, l := range labels {
		if l < 0 || l >= len(embeddings) {
			t.Errorf("label out of compacted range: %d", l)
		}
	}
}
