package dsp

import (
	"testing"

	"github.com/cortexswarm/voiceprint-go/internal/fbank"
)

func TestBreathinessAndResonanceInRange(t *testing.T) {
	samples := sineWave(300, 1.0)
	mat := fbank.Compute(samples)
	b := Breathiness(mat)
	r := Resonance(mat)
	if b < 0 || b > 1 {
		t.Errorf("breathiness out of [0,1]: got %v", b)
	}
	if r < 0 || r > 1 {
		t.Errorf("resonance out of [0,1]: got %v", r)
	}
}

func TestBreathinessEmptyIsZero(t *testing.T) {
	if got := Breathiness(&fbank.Matrix{}); got != 0 {
		t.Errorf("empty matrix: got %v, want 0", got)
	}
}
