// Package dsp implements the deterministic acoustic kernels: YIN pitch,
// BS.1770-4 loudness, SNR, HNR, clarity, speaking rate, jitter/shimmer
// stability, and breathiness/resonance — all specified against 16kHz
// mono float32 input.
package dsp

import "math"

const (
	SampleRate   = 16000
	hopSamples10ms = 160 // 10ms hop
)

// PitchFrame is one YIN estimate.
type PitchFrame struct {
	F0      float64 // Hz, 0 if unvoiced
	Voicing float64 // 1 - cmndf at the chosen lag
}

// PitchSummary aggregates per-frame YIN estimates.
type PitchSummary struct {
	MeanF0        float64
	StdF0         float64 // over voiced frames only
	VoicedFraction float64
	Frames        []PitchFrame
}

// YINConfig holds pitch search bounds.
type YINConfig struct {
	MinF0       float64
	MaxF0       float64
	CMNDFThresh float64
}

// DefaultYINConfig matches spec.md §4.10: 60-600Hz, threshold 0.15,
// fallback 0.35 on global-minimum miss.
func DefaultYINConfig() YINConfig {
	return YINConfig{MinF0: 60, MaxF0: 600, CMNDFThresh: 0.15}
}

// AnalyzePitch runs YIN over samples in 10ms hops, each frame's analysis
// window sized to 2x the max period needed to resolve MinF0.
func AnalyzePitch(samples []float32, cfg YINConfig) PitchSummary {
	maxPeriod := int(SampleRate / cfg.MinF0)
	minPeriod := int(SampleRate / cfg.MaxF0)
	if minPeriod < 1 {
		minPeriod = 1
	}
	frameLen := 2 * maxPeriod
	if frameLen > len(samples) {
		frameLen = len(samples)
	}
	if frameLen < 2*minPeriod {
		return PitchSummary{}
	}

	var frames []PitchFrame
	for start := 0; start+frameLen <= len(samples); start += hopSamples10ms {
		f0, voicing := yinFrame(samples[start:start+frameLen], minPeriod, maxPeriod, cfg.CMNDFThresh)
		frames = append(frames, PitchFrame{F0: f0, Voicing: voicing})
	}

	var sumF0, sumSqF0, voicedCount float64
	for _, f := range frames {
		if f.F0 > 0 {
			sumF0 += f.F0
			sumSqF0 += f.F0 * f.F0
			voicedCount++
		}
	}
	var mean, std float64
	if voicedCount > 0 {
		mean = sumF0 / voicedCount
		variance := sumSqF0/voicedCount - mean*mean
		if variance < 0 {
			variance = 0
		}
		std = math.Sqrt(variance)
	}
	voicedFraction := 0.0
	if len(frames) > 0 {
		voicedFraction = voicedCount / float64(len(frames))
	}
	return PitchSummary{MeanF0: mean, StdF0: std, VoicedFraction: voicedFraction, Frames: frames}
}

// yinFrame runs YIN's difference function + CMNDF search over one frame.
func yinFrame(frame []float32, minPeriod, maxPeriod int, thresh float64) (f0, voicing float64) {
	n := len(frame)
	limit := maxPeriod
	if limit > n/2 {
		limit = n / 2
	}
	if limit < minPeriod {
		return 0, 0
	}

	d := make([]float64, limit+1)
	for tau := 1; tau <= limit; tau++ {
		var sum float64
		for i := 0; i < n-tau; i++ {
			diff := float64(frame[i]) - float64(frame[i+tau])
			sum += diff * diff
		}
		d[tau] = sum
	}

	cmndf := make([]float64, limit+1)
	cmndf[0] = 1
	runningSum := 0.0
	for tau := 1; tau <= limit; tau++ {
		runningSum += d[tau]
		if runningSum == 0 {
			cmndf[tau] = 1
		} else {
			cmndf[tau] = d[tau] * float64(tau) / runningSum
		}
	}

	chosen := -1
	for tau := minPeriod; tau <= limit; tau++ {
		if cmndf[tau] < thresh {
			// follow the dip below threshold down to its local minimum
			for tau < limit && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			chosen = tau
			break
		}
	}
	if chosen == -1 {
		// fallback: global minimum in range, accept if < 0.35
		bestTau := -1
		bestVal := math.Inf(1)
		for tau := minPeriod; tau <= limit; tau++ {
			if cmndf[tau] < bestVal {
				bestVal = cmndf[tau]
				bestTau = tau
			}
		}
		if bestTau != -1 && bestVal < 0.35 {
			chosen = bestTau
		}
	}
	if chosen == -1 {
		return 0, 0
	}
	voicing = 1 - cmndf[chosen]
	if voicing < 0 {
		voicing = 0
	}
	return float64(SampleRate) / float64(chosen), voicing
}
