package dsp

import (
	"math"

	"github.com/cortexswarm/voiceprint-go/internal/fbank"
)

// highBandBins is the top ~15 mel bins used for breathiness.
const highBandBins = 15

// midBandLow, midBandHigh bound the 1-4kHz-ish mid band (bins 40-64 of
// 80) used for resonance.
const (
	midBandLow  = 40
	midBandHigh = 64
)

// Breathiness is the frame-to-frame absolute-difference ratio in the
// top mel bins, clamped to [0,1].
func Breathiness(mat *fbank.Matrix) float64 {
	if mat == nil || mat.NumFrames < 2 {
		return 0
	}
	lowBin := mat.NumBins - highBandBins
	if lowBin < 0 {
		lowBin = 0
	}

	var diffSum, magSum float64
	for f := 1; f < mat.NumFrames; f++ {
		prev := mat.Row(f - 1)
		cur := mat.Row(f)
		for b := lowBin; b < mat.NumBins; b++ {
			diffSum += math.Abs(cur[b] - prev[b])
			magSum += math.Abs(cur[b]) + math.Abs(prev[b])
		}
	}
	if magSum <= 0 {
		return 0
	}
	ratio := diffSum / magSum
	return clamp01(ratio)
}

// Resonance is the mid-band (1-4kHz-ish) energy fraction of total linear
// energy, scaled and clamped to [0,1].
func Resonance(mat *fbank.Matrix) float64 {
	if mat == nil || mat.NumFrames == 0 {
		return 0
	}
	hi := midBandHigh
	if hi > mat.NumBins {
		hi = mat.NumBins
	}
	lo := midBandLow
	if lo > hi {
		lo = hi
	}

	var midEnergy, totalEnergy float64
	for f := 0; f < mat.NumFrames; f++ {
		row := mat.Row(f)
		for b := 0; b < mat.NumBins; b++ {
			lin := expClamped(row[b])
			totalEnergy += lin
			if b >= lo && b < hi {
				midEnergy += lin
			}
		}
	}
	if totalEnergy <= 0 {
		return 0
	}
	return clamp01(midEnergy / totalEnergy * float64(mat.NumBins) / float64(hi-lo))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
