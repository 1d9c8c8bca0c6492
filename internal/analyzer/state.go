package analyzer

// computeVoiceState implements the rule-based fatigue/health/stress
// classification of spec.md §4.9 exactly. hasEmotion/arousal feed the
// stress rule only when emotion was actually computed.
func computeVoiceState(vf VoiceFeatures, q QualityResult, hasEmotion bool, arousal float64) VoiceStateResult {
	var fatigue float64
	if vf.MeanF0 > 0 && vf.MeanF0 < 100 {
		fatigue += 0.25
	}
	if vf.SpeakingRate < 2.5 {
		fatigue += 0.25
	}
	if vf.MeanRMS < 0.02 {
		fatigue += 0.25
	}
	if vf.Stability < 0.4 {
		fatigue += 0.25
	}
	fatigueLevel := "normal"
	switch {
	case fatigue > 0.7:
		fatigueLevel = "high"
	case fatigue > 0.35:
		fatigueLevel = "moderate"
	}

	healthStatus := "normal"
	switch {
	case vf.Breathiness > 0.7 && q.HNR < 5:
		healthStatus = "hoarse"
	case vf.Breathiness > 0.65:
		healthStatus = "breathy"
	case vf.Resonance > 0.75 && vf.F0Variability < 20:
		healthStatus = "nasal"
	}
	healthScore := clamp01Local(0.5*(1-vf.Breathiness) + 0.5*clamp01Local((q.HNR+5)/30))

	var stress float64
	if vf.MeanF0 > 220 && vf.F0Variability > 40 {
		stress += 0.3
	}
	if vf.SpeakingRate > 6 {
		stress += 0.25
	}
	if hasEmotion && absFloat(arousal) > 0.5 {
		stress += 0.25
	}
	if vf.StdRMS > 0.1 {
		stress += 0.2
	}
	stressLevel := "low"
	switch {
	case stress > 0.65:
		stressLevel = "high"
	case stress > 0.30:
		stressLevel = "medium"
	}

	return VoiceStateResult{
		FatigueLevel: fatigueLevel,
		FatigueScore: fatigue,
		HealthStatus: healthStatus,
		HealthScore:  healthScore,
		StressLevel:  stressLevel,
		StressScore:  stress,
	}
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
