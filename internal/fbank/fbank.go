// Package fbank computes an 80-bin Kaldi-compatible log-mel filterbank
// with per-utterance CMVN, the feature the speaker model and every
// optional neural analyzer consume.
package fbank

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// SampleRate this extractor is specified against.
	SampleRate = 16000
	// FrameLengthSamples is 25ms at 16kHz.
	FrameLengthSamples = 400
	// FrameShiftSamples is 10ms at 16kHz.
	FrameShiftSamples = 160
	// NumBins is the number of mel filters.
	NumBins = 80
	// LowFreqHz is the low edge of the mel filterbank.
	LowFreqHz = 20.0
	// cmvnEpsilon floors the per-bin std during CMVN.
	cmvnEpsilon = 1e-10
)

// Matrix is a row-major [NumFrames][NumBins] filterbank, flattened.
type Matrix struct {
	Data      []float64
	NumFrames int
	NumBins   int
}

func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.NumBins : (i+1)*m.NumBins]
}

// Compute frames samples (16kHz mono float32), applies DC removal and a
// Hamming window, a real FFT power spectrum, projects onto NumBins mel
// triangles with low edge LowFreqHz and high edge at Nyquist, takes the
// natural log, then applies per-bin CMVN with an epsilon floor. Input
// shorter than one frame yields an empty matrix, not an error.
func Compute(samples []float32) *Matrix {
	numFrames := 0
	if len(samples) >= FrameLengthSamples {
		numFrames = 1 + (len(samples)-FrameLengthSamples)/FrameShiftSamples
	}
	if numFrames <= 0 {
		return &Matrix{NumBins: NumBins}
	}

	window := hammingWindow(FrameLengthSamples)
	nBins := FrameLengthSamples/2 + 1
	filters := melFilterbank(NumBins, nBins, SampleRate, LowFreqHz, SampleRate/2)

	data := make([]float64, numFrames*NumBins)
	frameBuf := make([]float64, FrameLengthSamples)

	for t := 0; t < numFrames; t++ {
		offset := t * FrameShiftSamples
		var mean float64
		for i := 0; i < FrameLengthSamples; i++ {
			frameBuf[i] = float64(samples[offset+i])
			mean += frameBuf[i]
		}
		mean /= float64(FrameLengthSamples)
		for i := 0; i < FrameLengthSamples; i++ {
			frameBuf[i] = (frameBuf[i] - mean) * window[i]
		}

		spectrum := fft.FFTReal(frameBuf)
		power := make([]float64, nBins)
		for k := 0; k < nBins; k++ {
			re := real(spectrum[k])
			im := imag(spectrum[k])
			power[k] = re*re + im*im
		}

		row := data[t*NumBins : (t+1)*NumBins]
		for m := 0; m < NumBins; m++ {
			var v float64
			filterRow := filters[m*nBins : (m+1)*nBins]
			for k := 0; k < nBins; k++ {
				v += filterRow[k] * power[k]
			}
			if v < 1e-10 {
				v = 1e-10
			}
			row[m] = math.Log(v)
		}
	}

	applyCMVN(data, numFrames, NumBins)
	return &Matrix{Data: data, NumFrames: numFrames, NumBins: NumBins}
}

func applyCMVN(data []float64, numFrames, numBins int) {
	if numFrames == 0 {
		return
	}
	mean := make([]float64, numBins)
	for t := 0; t < numFrames; t++ {
		row := data[t*numBins : (t+1)*numBins]
		for b := 0; b < numBins; b++ {
			mean[b] += row[b]
		}
	}
	for b := 0; b < numBins; b++ {
		mean[b] /= float64(numFrames)
	}
	variance := make([]float64, numBins)
	for t := 0; t < numFrames; t++ {
		row := data[t*numBins : (t+1)*numBins]
		for b := 0; b < numBins; b++ {
			d := row[b] - mean[b]
			variance[b] += d * d
		}
	}
	std := make([]float64, numBins)
	for b := 0; b < numBins; b++ {
		std[b] = math.Sqrt(variance[b]/float64(numFrames)) + cmvnEpsilon
	}
	for t := 0; t < numFrames; t++ {
		row := data[t*numBins : (t+1)*numBins]
		for b := 0; b < numBins; b++ {
			row[b] = (row[b] - mean[b]) / std[b]
		}
	}
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds nMels triangular filters over nBins FFT power bins
// covering [lowFreq, highFreq] at the given sampleRate.
func melFilterbank(nMels, nBins int, sampleRate float64, lowFreq, highFreq float64) []float64 {
	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)
	melPoints := make([]float64, nMels+2)
	for i := range melPoints {
		melPoints[i] = lowMel + (highMel-lowMel)*float64(i)/float64(nMels+1)
	}
	hzPoints := make([]float64, nMels+2)
	for i, m := range melPoints {
		hzPoints[i] = melToHz(m)
	}
	binFreq := make([]float64, nBins)
	for k := 0; k < nBins; k++ {
		binFreq[k] = float64(k) * sampleRate / float64(2*(nBins-1))
	}
	filters := make([]float64, nMels*nBins)
	for m := 0; m < nMels; m++ {
		left, center, right := hzPoints[m], hzPoints[m+1], hzPoints[m+2]
		for k := 0; k < nBins; k++ {
			f := binFreq[k]
			var v float64
			if f >= left && f <= center && center > left {
				v = (f - left) / (center - left)
			} else if f > center && f <= right && right > center {
				v = (right - f) / (right - center)
			}
			filters[m*nBins+k] = v
		}
	}
	return filters
}

// ComputePadded computes FBank on samples then zero-pads (in frame units)
// or truncates to exactly targetFrames rows, used for the Whisper-style
// 80x3000 input the language analyzer needs.
func ComputePadded(samples []float32, targetFrames int) *Matrix {
	m := Compute(samples)
	out := &Matrix{Data: make([]float64, targetFrames*m.NumBins), NumFrames: targetFrames, NumBins: m.NumBins}
	n := m.NumFrames
	if n > targetFrames {
		n = targetFrames
	}
	copy(out.Data, m.Data[:n*m.NumBins])
	return out
}
