package dsp

import (
	"math"
	"sort"
)

// SNR computes signal-to-noise ratio in dB from separate speech and noise
// PCM: 20*log10(speechRMS/noiseRMS), with a 1e-12 floor on the noise RMS.
func SNR(speechPCM, noisePCM []float32) float64 {
	s := rms(speechPCM)
	n := rms(noisePCM)
	if n < 1e-12 {
		n = 1e-12
	}
	return 20 * math.Log10(s/n)
}

// SNRFallback estimates SNR from speechPCM alone when no separate noise
// signal is available: sort 10ms frame energies, mean of the bottom 20%
// is the noise estimate, overall mean is the signal estimate.
func SNRFallback(speechPCM []float32) float64 {
	frames := FrameRMS(speechPCM)
	if len(frames) == 0 {
		return 0
	}
	energies := make([]float64, len(frames))
	var meanAll float64
	for i, f := range frames {
		energies[i] = f * f
		meanAll += energies[i]
	}
	meanAll /= float64(len(energies))

	sorted := append([]float64(nil), energies...)
	sort.Float64s(sorted)
	bottomN := len(sorted) / 5
	if bottomN < 1 {
		bottomN = 1
	}
	var noiseMean float64
	for i := 0; i < bottomN; i++ {
		noiseMean += sorted[i]
	}
	noiseMean /= float64(bottomN)
	if noiseMean < 1e-12 {
		noiseMean = 1e-12
	}
	return 10 * math.Log10(meanAll/noiseMean)
}

func rms(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range x {
		sumSq += float64(v) * float64(v)
	}
	return math.Sqrt(sumSq / float64(len(x)))
}
