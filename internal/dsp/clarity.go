package dsp

import (
	"math"

	"github.com/cortexswarm/voiceprint-go/internal/fbank"
)

// Clarity computes the normalized spectral centroid of the mean log-mel
// spectrum across frames: convert to linear, take the energy-weighted
// centroid bin, normalize by 0.6*numBins.
func Clarity(mat *fbank.Matrix) float64 {
	if mat == nil || mat.NumFrames == 0 {
		return 0
	}
	meanLog := make([]float64, mat.NumBins)
	for f := 0; f < mat.NumFrames; f++ {
		row := mat.Row(f)
		for b := 0; b < mat.NumBins; b++ {
			meanLog[b] += row[b]
		}
	}
	for b := range meanLog {
		meanLog[b] /= float64(mat.NumFrames)
	}

	linear := make([]float64, mat.NumBins)
	var total float64
	for b, lv := range meanLog {
		linear[b] = expClamped(lv)
		total += linear[b]
	}
	if total <= 0 {
		return 0
	}

	var centroid float64
	for b, v := range linear {
		centroid += float64(b) * v
	}
	centroid /= total

	norm := centroid / (0.6 * float64(mat.NumBins))
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	return norm
}

func expClamped(x float64) float64 {
	if x > 50 {
		x = 50
	}
	if x < -50 {
		x = -50
	}
	return math.Exp(x)
}
