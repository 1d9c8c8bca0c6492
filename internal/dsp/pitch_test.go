package dsp

import (
	"math"
	"testing"
)

func sineWave(freq float64, seconds float64) []float32 {
	n := int(seconds * SampleRate)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

func TestAnalyzePitchSineWithinTolerance(t *testing.T) {
	for _, f0 := range []float64{110, 220, 330, 440} {
		samples := sineWave(f0, 2.0)
		summary := AnalyzePitch(samples, DefaultYINConfig())
		if math.Abs(summary.MeanF0-f0) > 40 {
			t.Errorf("f0=%v: mean f0 got %v, want within 40Hz", f0, summary.MeanF0)
		}
		if summary.VoicedFraction < 0.5 {
			t.Errorf("f0=%v: voiced fraction got %v, want >= 0.5", f0, summary.VoicedFraction)
		}
	}
}

func TestAnalyzePitchSilenceUnvoiced(t *testing.T) {
	samples := make([]float32, 2*SampleRate)
	summary := AnalyzePitch(samples, DefaultYINConfig())
	if summary.VoicedFraction > 0.1 {
		t.Errorf("silence: voiced fraction got %v, want near 0", summary.VoicedFraction)
	}
}

func TestAnalyzePitchTooShortReturnsZeroValue(t *testing.T) {
	summary := AnalyzePitch(make([]float32, 10), DefaultYINConfig())
	if summary.MeanF0 != 0 || len(summary.Frames) != 0 {
		t.Errorf("expected zero-value summary for too-short input, got %+v", summary)
	}
}
