package analyzer

import "testing"

func TestVoiceStateFatigueHighWhenAllSignalsWeak(t *testing.T) {
	vf := VoiceFeatures{MeanF0: 80, SpeakingRate: 1.5, MeanRMS: 0.01, Stability: 0.2}
	res := computeVoiceState(vf, QualityResult{HNR: 15}, false, 0)
	if res.FatigueLevel != "high" {
		t.Errorf("expected high fatigue, got %s (score %v)", res.FatigueLevel, res.FatigueScore)
	}
}

func TestVoiceStateHealthHoarse(t *testing.T) {
	vf := VoiceFeatures{Breathiness: 0.8}
	res := computeVoiceState(vf, QualityResult{HNR: 2}, false, 0)
	if res.HealthStatus != "hoarse" {
		t.Errorf("expected hoarse, got %s", res.HealthStatus)
	}
}

func TestVoiceStateHealthNormal(t *testing.T) {
	vf := VoiceFeatures{Breathiness: 0.1, Resonance: 0.1, F0Variability: 10}
	res := computeVoiceState(vf, QualityResult{HNR: 20}, false, 0)
	if res.HealthStatus != "normal" {
		t.Errorf("expected normal, got %s", res.HealthStatus)
	}
}

func TestVoiceStateStressHighArousal(t *testing.T) {
	vf := VoiceFeatures{MeanF0: 230, F0Variability: 50, SpeakingRate: 7}
	res := computeVoiceState(vf, QualityResult{}, true, 0.9)
	if res.StressLevel != "high" {
		t.Errorf("expected high stress, got %s (score %v)", res.StressLevel, res.StressScore)
	}
}

func TestVoiceStateStressLowWhenCalm(t *testing.T) {
	vf := VoiceFeatures{MeanF0: 150, F0Variability: 5, SpeakingRate: 3}
	res := computeVoiceState(vf, QualityResult{}, false, 0)
	if res.StressLevel != "low" {
		t.Errorf("expected low stress, got %s", res.StressLevel)
	}
}
