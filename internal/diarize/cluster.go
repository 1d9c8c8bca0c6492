package diarize

import "math"

// cluster tracks one agglomerative average-linkage cluster: its current
// L2-normalized mean embedding, point count, and which original point
// indices it has absorbed.
type cluster struct {
	active bool
	mean   []float32
	count  int
	points []int
}

// DefaultThreshold is the cosine-distance merge threshold (spec.md §4.8).
const DefaultThreshold = 0.45

// agglomerate runs average-linkage clustering over cosine distance
// d(u,v) = 1 - u.v on L2-normalized embeddings. maxClusters = 0 means
// unlimited. Returns a label per input point, compacted to 0..K-1, in
// input order.
func agglomerate(embeddings [][]float32, threshold float64, maxClusters int) []int {
	n := len(embeddings)
	if n == 0 {
		return nil
	}
	clusters := make([]*cluster, n)
	for i, e := range embeddings {
		clusters[i] = &cluster{active: true, mean: append([]float32(nil), e...), count: 1, points: []int{i}}
	}

	for {
		activeCount := 0
		for _, c := range clusters {
			if c.active {
				activeCount++
			}
		}
		if activeCount <= 1 {
			break
		}

		bestI, bestJ := -1, -1
		bestDist := 2.0
		for i := 0; i < len(clusters); i++ {
			if !clusters[i].active {
				continue
			}
			for j := i + 1; j < len(clusters); j++ {
				if !clusters[j].active {
					continue
				}
				d := cosineDistance(clusters[i].mean, clusters[j].mean)
				if d < bestDist {
					bestDist = d
					bestI, bestJ = i, j
				}
			}
		}
		if bestI == -1 {
			break
		}

		overCap := maxClusters > 0 && activeCount > maxClusters
		if bestDist > threshold && !overCap {
			break
		}

		mergeInto(clusters[bestI], clusters[bestJ])
		clusters[bestJ].active = false
	}

	return compactLabels(clusters, n)
}

func mergeInto(a, b *cluster) {
	total := a.count + b.count
	merged := make([]float32, len(a.mean))
	for i := range merged {
		merged[i] = (a.mean[i]*float32(a.count) + b.mean[i]*float32(b.count)) / float32(total)
	}
	a.mean = l2NormalizeInPlace(merged)
	a.count = total
	a.points = append(a.points, b.points...)
}

func compactLabels(clusters []*cluster, n int) []int {
	labels := make([]int, n)
	nextLabel := 0
	for _, c := range clusters {
		if !c.active {
			continue
		}
		for _, p := range c.points {
			labels[p] = nextLabel
		}
		nextLabel++
	}
	return labels
}

func cosineDistance(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot
}

func l2NormalizeInPlace(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq <= 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	if norm < 1e-10 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
