package dsp

import "math"

// biquad is a Direct-Form-I IIR section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// kWeightingFilters returns the BS.1770-4 high-shelf then ~100Hz
// high-pass cascade, coefficients for 16kHz input (spec.md §4.10 states
// the coefficients are only valid at 16kHz; condition audio first).
func kWeightingFilters() (*biquad, *biquad) {
	// Stage 1: high-shelf (head/ear model), ITU-R BS.1770-4 coefficients
	// for 16kHz input.
	shelf := &biquad{
		b0: 1.5303, b1: -2.6906, b2: 1.1983,
		a1: -1.6636, a2: 0.7134,
	}
	// Stage 2: ~100Hz high-pass (RLB weighting), 16kHz coefficients.
	hp := &biquad{
		b0: 0.9961, b1: -1.9922, b2: 0.9961,
		a1: -1.9921, a2: 0.9924,
	}
	return shelf, hp
}

// LUFSFloor is the sentinel loudness returned when no block survives
// gating or the signal is effectively silent.
const LUFSFloor = -70.0

// absoluteGateLUFS is the BS.1770-4 absolute gate in LUFS-equivalent.
const absoluteGateLUFS = -70.0

// Loudness computes integrated loudness in LUFS per spec.md §4.10:
// K-weight, 400ms blocks / 100ms hop mean-square, absolute gate at -70
// LUFS-equivalent, relative gate at (mean of above-gate blocks)-10dB.
func Loudness(samples []float32) float64 {
	if len(samples) == 0 {
		return LUFSFloor
	}
	shelf, hp := kWeightingFilters()
	weighted := make([]float64, len(samples))
	for i, s := range samples {
		weighted[i] = hp.process(shelf.process(float64(s)))
	}

	blockLen := 400 * SampleRate / 1000
	hopLen := 100 * SampleRate / 1000
	if len(weighted) < blockLen {
		blockLen = len(weighted)
	}
	if blockLen == 0 {
		return LUFSFloor
	}

	var blocks []float64
	for start := 0; start+blockLen <= len(weighted); start += hopLen {
		var sumSq float64
		for i := start; i < start+blockLen; i++ {
			sumSq += weighted[i] * weighted[i]
		}
		ms := sumSq / float64(blockLen)
		blocks = append(blocks, ms)
	}
	if len(blocks) == 0 {
		return LUFSFloor
	}

	absThreshMS := msFromLUFS(absoluteGateLUFS)
	var gated []float64
	for _, ms := range blocks {
		if ms >= absThreshMS {
			gated = append(gated, ms)
		}
	}
	if len(gated) == 0 {
		return LUFSFloor
	}

	var meanAbsGated float64
	for _, ms := range gated {
		meanAbsGated += ms
	}
	meanAbsGated /= float64(len(gated))
	relThreshMS := meanAbsGated * math.Pow(10, -1.0)

	var relGated []float64
	for _, ms := range gated {
		if ms >= relThreshMS {
			relGated = append(relGated, ms)
		}
	}
	if len(relGated) == 0 {
		return LUFSFloor
	}

	var meanFinal float64
	for _, ms := range relGated {
		meanFinal += ms
	}
	meanFinal /= float64(len(relGated))

	l := 10*math.Log10(meanFinal) - 0.691
	if l < LUFSFloor {
		l = LUFSFloor
	}
	return l
}

func msFromLUFS(lufs float64) float64 {
	return math.Pow(10, (lufs+0.691)/10)
}
