package voiceprint

import "github.com/cortexswarm/voiceprint-go/internal/analyzer"

// FeatureFlags is the analyze bitmask, values fixed by spec.md §6.
type FeatureFlags uint32

const (
	Gender       FeatureFlags = 0x001
	Age          FeatureFlags = 0x002
	Emotion      FeatureFlags = 0x004
	AntiSpoof    FeatureFlags = 0x008
	Quality      FeatureFlags = 0x010
	VoiceFeats   FeatureFlags = 0x020
	Pleasantness FeatureFlags = 0x040
	VoiceState   FeatureFlags = 0x080
	Language     FeatureFlags = 0x100
	All          FeatureFlags = 0x1FF
)

func toAnalyzerFeature(f FeatureFlags) analyzer.Feature { return analyzer.Feature(f) }

// GenderAgeScores holds softmax class scores keyed by class name.
type GenderAgeScores struct {
	Gender map[string]float64
	Age    map[string]float64
	AgeYears float64
}

// EmotionResult holds softmax emotion-class scores plus valence/arousal.
type EmotionResult struct {
	Scores   map[string]float64
	TopClass string
	Valence  float64
	Arousal  float64
}

// AntiSpoofResult reports liveness.
type AntiSpoofResult struct {
	GenuineScore float64
	SpoofScore   float64
	IsGenuine    bool
}

// QualityResult bundles quality metrics.
type QualityResult struct {
	SNR        float64
	LUFS       float64
	HNR        float64
	Clarity    float64
	NoiseLevel float64
	MOS        float64
}

// VoiceFeatures bundles the DSP voice-feature metrics.
type VoiceFeatures struct {
	MeanF0         float64
	F0Variability  float64
	VoicedFraction float64
	SpeakingRate   float64
	Stability      float64
	Breathiness    float64
	Resonance      float64
	MeanRMS        float64
	StdRMS         float64
}

// PleasantnessResult holds the four sub-scores plus overall, all 0-100.
type PleasantnessResult struct {
	Magnetism float64
	Warmth    float64
	Authority float64
	Clarity   float64
	Overall   float64
}

// VoiceStateResult holds the rule-based fatigue/health/stress classification.
type VoiceStateResult struct {
	FatigueLevel string
	FatigueScore float64
	HealthStatus string
	HealthScore  float64
	StressLevel  string
	StressScore  float64
}

// LanguageResult holds the identified language code and confidence.
type LanguageResult struct {
	Code       string
	Confidence float64
}

// AnalysisResult is the full analyze output. FeaturesComputed names
// which sub-results are valid; unset sub-results hold zero values.
type AnalysisResult struct {
	FeaturesComputed FeatureFlags
	GenderAge        GenderAgeScores
	Emotion          EmotionResult
	AntiSpoof        AntiSpoofResult
	Quality          QualityResult
	VoiceFeatures    VoiceFeatures
	Pleasantness     PleasantnessResult
	VoiceState       VoiceStateResult
	Language         LanguageResult
}

func fromAnalyzerResult(r analyzer.Result) AnalysisResult {
	return AnalysisResult{
		FeaturesComputed: FeatureFlags(r.FeaturesComputed),
		GenderAge: GenderAgeScores{
			Gender: r.Gender.Scores, Age: r.Age.Scores, AgeYears: r.Age.Years,
		},
		Emotion: EmotionResult{
			Scores: r.Emotion.Scores, TopClass: r.Emotion.TopClass,
			Valence: r.Emotion.Valence, Arousal: r.Emotion.Arousal,
		},
		AntiSpoof: AntiSpoofResult{
			GenuineScore: r.AntiSpoof.GenuineScore, SpoofScore: r.AntiSpoof.SpoofScore,
			IsGenuine: r.AntiSpoof.IsGenuine,
		},
		Quality: QualityResult{
			SNR: r.Quality.SNR, LUFS: r.Quality.LUFS, HNR: r.Quality.HNR,
			Clarity: r.Quality.Clarity, NoiseLevel: r.Quality.NoiseLevel, MOS: r.Quality.MOS,
		},
		VoiceFeatures: VoiceFeatures{
			MeanF0: r.VoiceFeatures.MeanF0, F0Variability: r.VoiceFeatures.F0Variability,
			VoicedFraction: r.VoiceFeatures.VoicedFraction, SpeakingRate: r.VoiceFeatures.SpeakingRate,
			Stability: r.VoiceFeatures.Stability, Breathiness: r.VoiceFeatures.Breathiness,
			Resonance: r.VoiceFeatures.Resonance, MeanRMS: r.VoiceFeatures.MeanRMS, StdRMS: r.VoiceFeatures.StdRMS,
		},
		Pleasantness: PleasantnessResult{
			Magnetism: r.Pleasantness.Magnetism, Warmth: r.Pleasantness.Warmth,
			Authority: r.Pleasantness.Authority, Clarity: r.Pleasantness.Clarity, Overall: r.Pleasantness.Overall,
		},
		VoiceState: VoiceStateResult{
			FatigueLevel: r.VoiceState.FatigueLevel, FatigueScore: r.VoiceState.FatigueScore,
			HealthStatus: r.VoiceState.HealthStatus, HealthScore: r.VoiceState.HealthScore,
			StressLevel: r.VoiceState.StressLevel, StressScore: r.VoiceState.StressScore,
		},
		Language: LanguageResult{Code: r.Language.Code, Confidence: r.Language.Confidence},
	}
}

// DiarizationSegment is one diarized output span.
type DiarizationSegment struct {
	StartSec         float64
	EndSec           float64
	ClusterLabel     string
	MatchedSpeakerID string
	Confidence       float64
}

// SpeakerProfile is the public view of an enrolled speaker.
type SpeakerProfile struct {
	ID          string
	EnrollCount int
}
