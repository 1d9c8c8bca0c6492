package analyzer

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cortexswarm/voiceprint-go/internal/dsp"
	"github.com/cortexswarm/voiceprint-go/internal/fbank"
	"github.com/cortexswarm/voiceprint-go/internal/neural"
	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
	"github.com/cortexswarm/voiceprint-go/internal/vad"
)

// ModelFiles names the optional model files the analyzer looks for
// under model_dir at Init, one per optional feature flag.
var ModelFiles = map[Feature]string{
	Gender | Age: "gender_age.onnx",
	Emotion:      "emotion.onnx",
	AntiSpoof:    "antispoof.onnx",
	Quality:      "dnsmos.onnx",
	Language:     "language.onnx",
}

// Analyzer is the voice-analysis orchestrator: it owns the optional
// neural models and dispatches DSP + neural sub-analyses per analyze
// call, running VAD once and sharing one FBank matrix across the
// FBank-based steps except language ID, which computes its own
// zero-padded FBank.
type Analyzer struct {
	detect *vad.Detector

	genderAge *neural.GenderAge
	emotion   *neural.Emotion
	antiSpoof *neural.AntiSpoof
	dnsmos    *neural.DNSMOS
	language  *neural.Language

	loaded Feature
	log    *slog.Logger
}

// Init borrows the session's already-loaded VAD detector and loads each
// optional model named in ModelFiles whose flag is requested,
// downgrading silently (per spec.md §4.9/§7) when a file is absent.
// DSP-only flags are always available once core init succeeds.
func Init(detector *vad.Detector, modelDir string, requested Feature, log *slog.Logger) (*Analyzer, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &Analyzer{detect: detector, log: log}

	if requested.Has(Gender) || requested.Has(Age) {
		if m, ok := tryLoadModel(modelDir, "gender_age.onnx", neural.GenderAgeContract(0), log); ok {
			a.genderAge = neural.NewGenderAge(m)
			a.loaded |= Gender | Age
		}
	}
	if requested.Has(Emotion) {
		if m, ok := tryLoadModel(modelDir, "emotion.onnx", neural.EmotionContract(0), log); ok {
			a.emotion = neural.NewEmotion(m)
			a.loaded |= Emotion
		}
	}
	if requested.Has(AntiSpoof) {
		if m, ok := tryLoadModel(modelDir, "antispoof.onnx", neural.AntiSpoofContract(), log); ok {
			a.antiSpoof = neural.NewAntiSpoof(m)
			a.loaded |= AntiSpoof
		}
	}
	if requested.Has(Quality) {
		if m, ok := tryLoadModel(modelDir, "dnsmos.onnx", neural.DNSMOSContract(), log); ok {
			a.dnsmos = neural.NewDNSMOS(m)
		}
		a.loaded |= Quality // DSP-only quality metrics are always available.
	}
	if requested.Has(Language) {
		if m, ok := tryLoadModel(modelDir, "language.onnx", neural.LanguageContract(len(neural.LanguageTable)), log); ok {
			a.language = neural.NewLanguage(m)
			a.loaded |= Language
		}
	}
	// DSP-only flags are always available once core init succeeds.
	a.loaded |= VoiceFeats | Pleasantness | VoiceState

	return a, nil
}

func tryLoadModel(modelDir, filename string, contract onnxmodel.Contract, log *slog.Logger) (*onnxmodel.Model, bool) {
	path := filepath.Join(modelDir, filename)
	if _, err := os.Stat(path); err != nil {
		log.Warn("analyzer: optional model file absent, downgrading feature", "path", path)
		return nil, false
	}
	m, err := onnxmodel.Load(path, contract, 0)
	if err != nil {
		log.Warn("analyzer: optional model failed to load, downgrading feature", "path", path, "error", err)
		return nil, false
	}
	return m, true
}

// LoadedFeatures reports which flags survived Init.
func (a *Analyzer) LoadedFeatures() Feature { return a.loaded }

// Analyze runs the step 1-4 dispatch of spec.md §4.9 over 16kHz mono
// samples, computing only the flags in requested that also survived
// Init. Per-sub-step inference failures downgrade that bit rather than
// aborting the call.
func (a *Analyzer) Analyze(samples []float32, requested Feature) Result {
	active := requested & a.loaded
	res := Result{}

	segs := a.detect.Detect(samples)
	speechPCM := samples
	var noisePCM []float32
	if len(segs) > 0 {
		speechPCM = vad.FilterSilence(samples, segs)
		noisePCM = vad.NoiseComplement(samples, segs)
	}

	needsFBank := active.Has(Gender) || active.Has(Age) || active.Has(Emotion) ||
		active.Has(Quality) || active.Has(Language)
	var mat *fbank.Matrix
	if needsFBank {
		mat = fbank.Compute(speechPCM)
	}

	pitch := dsp.AnalyzePitch(speechPCM, dsp.DefaultYINConfig())
	rmsFrames := dsp.FrameRMS(speechPCM)
	energy := dsp.AnalyzeEnergy(speechPCM)

	if active.Has(Gender) || active.Has(Age) {
		if gaRes, ok := a.computeGenderAge(mat); ok {
			res.Gender = GenderResult{Scores: gaRes.GenderScores}
			res.Age = AgeResult{Scores: gaRes.AgeScores, Years: gaRes.AgeYears}
			if active.Has(Gender) {
				res.FeaturesComputed |= Gender
			}
			if active.Has(Age) {
				res.FeaturesComputed |= Age
			}
		}
	}

	var hasEmotion bool
	var arousal, valence float64
	if active.Has(Emotion) {
		if emRes, ok := a.computeEmotion(mat); ok {
			res.Emotion = EmotionResult{
				Scores: emRes.Scores, TopClass: emRes.TopClass,
				Valence: emRes.Valence, Arousal: emRes.Arousal,
			}
			res.FeaturesComputed |= Emotion
			hasEmotion = true
			arousal = emRes.Arousal
			valence = emRes.Valence
		}
	}

	if active.Has(AntiSpoof) {
		if asRes, ok := a.computeAntiSpoof(speechPCM); ok {
			res.AntiSpoof = asRes
			res.FeaturesComputed |= AntiSpoof
		}
	}

	var quality QualityResult
	if active.Has(Quality) {
		quality = a.computeQuality(speechPCM, noisePCM, mat, pitch)
		res.Quality = quality
		res.FeaturesComputed |= Quality
	}

	var vf VoiceFeatures
	if active.Has(VoiceFeats) || active.Has(Pleasantness) || active.Has(VoiceState) {
		vf = computeVoiceFeatures(speechPCM, pitch, rmsFrames, energy, mat)
	}
	if active.Has(VoiceFeats) {
		res.VoiceFeatures = vf
		res.FeaturesComputed |= VoiceFeats
	}

	if active.Has(Pleasantness) {
		res.Pleasantness = computePleasantness(vf, quality, hasEmotion, valence)
		res.FeaturesComputed |= Pleasantness
	}

	if active.Has(VoiceState) {
		res.VoiceState = computeVoiceState(vf, quality, hasEmotion, arousal)
		res.FeaturesComputed |= VoiceState
	}

	if active.Has(Language) {
		if langRes, ok := a.computeLanguage(speechPCM); ok {
			res.Language = langRes
			res.FeaturesComputed |= Language
		}
	}

	return res
}

func computeVoiceFeatures(speechPCM []float32, pitch dsp.PitchSummary, rmsFrames []float64, energy dsp.EnergySummary, mat *fbank.Matrix) VoiceFeatures {
	melMat := mat
	if melMat == nil {
		melMat = fbank.Compute(speechPCM)
	}
	return VoiceFeatures{
		MeanF0:         pitch.MeanF0,
		F0Variability:  pitch.StdF0,
		VoicedFraction: pitch.VoicedFraction,
		SpeakingRate:   dsp.SpeakingRate(speechPCM),
		Stability:      dsp.Stability(pitch, rmsFrames),
		Breathiness:    dsp.Breathiness(melMat),
		Resonance:      dsp.Resonance(melMat),
		MeanRMS:        energy.MeanRMS,
		StdRMS:         energy.StdRMS,
	}
}
