package analyzer

import "testing"

func TestPleasantnessScoresInRange(t *testing.T) {
	vf := VoiceFeatures{
		MeanF0: 180, F0Variability: 10, VoicedFraction: 0.8,
		SpeakingRate: 3.5, Stability: 0.7, Breathiness: 0.2,
		Resonance: 0.6, MeanRMS: 0.05, StdRMS: 0.01,
	}
	q := QualityResult{Clarity: 0.6, MOS: 3.5, SNR: 20}
	res := computePleasantness(vf, q, true, 0.4)
	for _, v := range []float64{res.Magnetism, res.Warmth, res.Authority, res.Clarity, res.Overall} {
		if v < 0 || v > 100 {
			t.Errorf("pleasantness sub-score out of [0,100]: %v", v)
		}
	}
}

func TestPleasantnessZeroInputsInRange(t *testing.T) {
	res := computePleasantness(VoiceFeatures{}, QualityResult{}, false, 0)
	if res.Overall < 0 || res.Overall > 100 {
		t.Errorf("overall out of [0,100]: %v", res.Overall)
	}
}
