package fbank

import (
	"math"
	"testing"
)

func TestComputeShortInputEmpty(t *testing.T) {
	m := Compute(make([]float32, 10))
	if m.NumFrames != 0 {
		t.Fatalf("expected 0 frames for short input, got %d", m.NumFrames)
	}
}

func TestComputeNoNaNInf(t *testing.T) {
	n := SampleRate * 2
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * 200 * float64(i) / SampleRate))
	}
	m := Compute(samples)
	if m.NumFrames == 0 {
		t.Fatal("expected frames for 2s input")
	}
	for _, v := range m.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("found NaN/Inf in fbank output: %v", v)
		}
	}
}

func TestCMVNZeroMeanUnitStd(t *testing.T) {
	n := SampleRate * 2
	samples := make([]float32, n)
	// Amplitude-modulated tone: every bin's log energy varies across
	// frames. A steady tone leaves per-bin variance near zero, which the
	// epsilon-floored CMVN cannot scale to unit std.
	for i := range samples {
		env := 0.6 + 0.3*math.Sin(2*math.Pi*3*float64(i)/SampleRate)
		samples[i] = float32(env * math.Sin(2*math.Pi*150*float64(i)/SampleRate))
	}
	m := Compute(samples)
	for b := 0; b < m.NumBins; b++ {
		var mean, varSum float64
		for t := 0; t < m.NumFrames; t++ {
			mean += m.Row(t)[b]
		}
		mean /= float64(m.NumFrames)
		for t := 0; t < m.NumFrames; t++ {
			d := m.Row(t)[b] - mean
			varSum += d * d
		}
		std := math.Sqrt(varSum / float64(m.NumFrames))
		if math.Abs(mean) > 1e-6 {
			t.Errorf("bin %d: mean %v not ~0", b, mean)
		}
		if math.Abs(std-1) > 1e-6 {
			t.Errorf("bin %d: std %v not ~1", b, std)
		}
	}
}

func TestComputePaddedExactFrames(t *testing.T) {
	n := SampleRate / 2
	samples := make([]float32, n)
	m := ComputePadded(samples, 3000)
	if m.NumFrames != 3000 {
		t.Fatalf("expected 3000 frames, got %d", m.NumFrames)
	}
}
