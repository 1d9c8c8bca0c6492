package diarize

import "testing"

func TestSpeakerLabelFormat(t *testing.T) {
	if got := speakerLabel(0); got != "SPEAKER_0" {
		t.Errorf("got %q, want SPEAKER_0", got)
	}
	if got := speakerLabel(12); got != "SPEAKER_12" {
		t.Errorf("got %q, want SPEAKER_12", got)
	}
}

func TestClusterCentroidsAreUnitNorm(t *testing.T) {
	a := unit([]float32{1, 0, 0, 0})
	b := unit([]float32{0.9, 0.1, 0, 0})
	centroids := clusterCentroids([][]float32{a, b}, []int{0, 0})
	c := centroids[0]
	var sumSq float64
	for _, v := range c {
		sumSq += float64(v) * float64(v)
	}
	if sumSq < 0.99 || sumSq > 1.01 {
		t.Errorf("expected unit-norm centroid, got sumSq=%v", sumSq)
	}
}

func TestClusterCentroidsSeparateLabels(t *testing.T) {
	a := unit([]float32{1, 0, 0, 0})
	b := unit([]float32{0, 1, 0, 0})
	centroids := clusterCentroids([][]float32{a, b}, []int{0, 1})
	if len(centroids) != 2 {
		t.Errorf("expected 2 centroids, got %d", len(centroids))
	}
}
