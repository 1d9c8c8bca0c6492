package dsp

import "math"

// EnergySummary holds frame-level RMS energy statistics over
// non-overlapping 10ms frames, shared by several downstream analyzers
// (SNR fallback, speaking rate, stability).
type EnergySummary struct {
	MeanRMS float64
	StdRMS  float64
	Frames  []float64
}

// energyFrameSamples is 10ms at 16kHz, with no overlap between frames.
const energyFrameSamples = 160

// FrameRMS computes per-frame RMS energy over non-overlapping 10ms frames.
func FrameRMS(samples []float32) []float64 {
	if len(samples) < energyFrameSamples {
		return nil
	}
	var frames []float64
	for start := 0; start+energyFrameSamples <= len(samples); start += energyFrameSamples {
		var sumSq float64
		for i := start; i < start+energyFrameSamples; i++ {
			sumSq += float64(samples[i]) * float64(samples[i])
		}
		frames = append(frames, math.Sqrt(sumSq/float64(energyFrameSamples)))
	}
	return frames
}

// AnalyzeEnergy summarizes RMS energy across the whole signal.
func AnalyzeEnergy(samples []float32) EnergySummary {
	frames := FrameRMS(samples)
	if len(frames) == 0 {
		return EnergySummary{}
	}
	var sum, sumSq float64
	for _, f := range frames {
		sum += f
		sumSq += f * f
	}
	mean := sum / float64(len(frames))
	variance := sumSq/float64(len(frames)) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return EnergySummary{MeanRMS: mean, StdRMS: math.Sqrt(variance), Frames: frames}
}
