package dsp

import "testing"

func TestHNRPureToneIsHigh(t *testing.T) {
	samples := sineWave(200, 0.5)
	hnr := HNR(samples, 200)
	if hnr < 15 {
		t.Errorf("pure tone: expected high HNR, got %v", hnr)
	}
}

func TestHNROutOfRangeF0ReturnsDefault(t *testing.T) {
	samples := sineWave(200, 0.5)
	if got := HNR(samples, 10); got != DefaultHNR {
		t.Errorf("f0 below range: got %v, want default %v", got, DefaultHNR)
	}
	if got := HNR(samples, 1000); got != DefaultHNR {
		t.Errorf("f0 above range: got %v, want default %v", got, DefaultHNR)
	}
}
