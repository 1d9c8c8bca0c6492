package dsp

import "testing"

func TestStabilitySteadyToneIsHigh(t *testing.T) {
	samples := sineWave(220, 2.0)
	pitch := AnalyzePitch(samples, DefaultYINConfig())
	rmsFrames := FrameRMS(samples)
	got := Stability(pitch, rmsFrames)
	if got < 0.8 {
		t.Errorf("steady tone: expected high stability, got %v", got)
	}
}

func TestStabilityNoVoicedFramesIsMax(t *testing.T) {
	pitch := PitchSummary{}
	got := Stability(pitch, nil)
	if got != 1 {
		t.Errorf("no data: expected stability 1 (no variation measured), got %v", got)
	}
}
