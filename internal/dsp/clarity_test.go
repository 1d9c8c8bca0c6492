package dsp

import (
	"testing"

	"github.com/cortexswarm/voiceprint-go/internal/fbank"
)

func TestClarityEmptyMatrixIsZero(t *testing.T) {
	if got := Clarity(&fbank.Matrix{}); got != 0 {
		t.Errorf("empty matrix: got %v, want 0", got)
	}
	if got := Clarity(nil); got != 0 {
		t.Errorf("nil matrix: got %v, want 0", got)
	}
}

func TestClarityInRange(t *testing.T) {
	samples := sineWave(300, 1.0)
	mat := fbank.Compute(samples)
	got := Clarity(mat)
	if got < 0 || got > 1 {
		t.Errorf("clarity out of [0,1]: got %v", got)
	}
}
