package vad

import "testing"

func TestMergeAdjacent(t *testing.T) {
	segs := []Segment{
		{StartSample: 0, EndSample: 1000, Confidence: 0.8},
		{StartSample: 1500, EndSample: 2000, Confidence: 0.6}, // gap 500 < 4800, merges
		{StartSample: 20000, EndSample: 21000, Confidence: 0.9},
	}
	out := mergeAdjacent(segs)
	if len(out) != 2 {
		t.Fatalf("expected 2 merged segments, got %d", len(out))
	}
	if out[0].EndSample != 2000 {
		t.Errorf("expected merged end 2000, got %d", out[0].EndSample)
	}
	if out[0].Confidence != 0.7 {
		t.Errorf("expected averaged confidence 0.7, got %v", out[0].Confidence)
	}
}

func TestFilterSilenceAndNoiseComplement(t *testing.T) {
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = float32(i)
	}
	segs := []Segment{{StartSample: 10, EndSample: 20}, {StartSample: 50, EndSample: 60}}
	speech := FilterSilence(samples, segs)
	if len(speech) != 20 {
		t.Fatalf("expected 20 speech samples, got %d", len(speech))
	}
	noise := NoiseComplement(samples, segs)
	if len(noise) != 80 {
		t.Fatalf("expected 80 noise samples, got %d", len(noise))
	}
}

func TestSpeechDuration(t *testing.T) {
	segs := []Segment{{StartSample: 0, EndSample: 16000}, {StartSample: 16000, EndSample: 24000}}
	d := SpeechDuration(segs, 16000)
	if d != 1.5 {
		t.Fatalf("expected 1.5s, got %v", d)
	}
}
