package dsp

import "math"

// Stability combines jitter (F0 frame-to-frame variation) and shimmer
// (RMS frame-to-frame variation) into one 0-1 score.
func Stability(pitch PitchSummary, rmsFrames []float64) float64 {
	jitter := jitterOf(pitch)
	shimmer := shimmerOf(rmsFrames)
	jitterScore := math.Max(0, 1-math.Min(1, 10*jitter))
	shimmerScore := math.Max(0, 1-math.Min(1, 5*shimmer))
	return 0.5 * (jitterScore + shimmerScore)
}

// jitterOf computes (sum|F0[i]-F0[i-1]|) / ((N-1)*meanF0) over voiced
// frames only.
func jitterOf(pitch PitchSummary) float64 {
	var voiced []float64
	for _, f := range pitch.Frames {
		if f.F0 > 0 {
			voiced = append(voiced, f.F0)
		}
	}
	if len(voiced) < 2 {
		return 0
	}
	var diffSum, mean float64
	for i, v := range voiced {
		mean += v
		if i > 0 {
			diffSum += math.Abs(v - voiced[i-1])
		}
	}
	mean /= float64(len(voiced))
	if mean <= 0 {
		return 0
	}
	return diffSum / (float64(len(voiced)-1) * mean)
}

// shimmerOf computes the same formula over RMS frames.
func shimmerOf(rmsFrames []float64) float64 {
	if len(rmsFrames) < 2 {
		return 0
	}
	var diffSum, mean float64
	for i, v := range rmsFrames {
		mean += v
		if i > 0 {
			diffSum += math.Abs(v - rmsFrames[i-1])
		}
	}
	mean /= float64(len(rmsFrames))
	if mean <= 0 {
		return 0
	}
	return diffSum / (float64(len(rmsFrames)-1) * mean)
}
