package dsp

import "testing"

func TestLoudnessSilenceIsFloor(t *testing.T) {
	samples := make([]float32, 2*SampleRate)
	l := Loudness(samples)
	if l != LUFSFloor {
		t.Errorf("silence: got %v, want floor %v", l, LUFSFloor)
	}
}

func TestLoudnessFullScaleSineAboveFloor(t *testing.T) {
	samples := sineWave(440, 2.0)
	for i := range samples {
		samples[i] *= 2 // push toward full scale
	}
	l := Loudness(samples)
	if l <= LUFSFloor {
		t.Errorf("full-scale sine: got %v, want > floor %v", l, LUFSFloor)
	}
}

func TestLoudnessLouderSignalScoresHigher(t *testing.T) {
	quiet := sineWave(440, 2.0)
	loud := make([]float32, len(quiet))
	for i, s := range quiet {
		loud[i] = s * 4
	}
	lq := Loudness(quiet)
	ll := Loudness(loud)
	if ll <= lq {
		t.Errorf("expected louder signal to score higher: quiet=%v loud=%v", lq, ll)
	}
}

func TestLoudnessEmptyIsFloor(t *testing.T) {
	if l := Loudness(nil); l != LUFSFloor {
		t.Errorf("empty: got %v, want floor %v", l, LUFSFloor)
	}
}
