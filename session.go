package voiceprint

import (
	"errors"
	"log/slog"

	"github.com/cortexswarm/voiceprint-go/internal/analyzer"
	"github.com/cortexswarm/voiceprint-go/internal/audio"
	"github.com/cortexswarm/voiceprint-go/internal/diarize"
	"github.com/cortexswarm/voiceprint-go/internal/embed"
	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
	"github.com/cortexswarm/voiceprint-go/internal/store"
	"github.com/cortexswarm/voiceprint-go/internal/vad"
)

// DefaultSpeakerDim is the speaker embedding dimension. Open binds the
// speaker model's output as [1, DefaultSpeakerDim]; the dimension is not
// read from the model file.
const DefaultSpeakerDim = embed.DefaultDim

// Session is the core entry point: it owns the neural runtime
// environment, the VAD and speaker models, the speaker store, and the
// optional analyzer models, and exposes enroll/identify/verify/analyze/
// diarize as synchronous calls. Safe for concurrent use except Close.
type Session struct {
	cfg Config
	log *slog.Logger

	speakerModel *onnxmodel.Model
	detector     *vad.Detector
	pipeline     *embed.Pipeline
	speakerStore *store.Store
	diarizer     *diarize.Diarizer
	analyzer     *analyzer.Analyzer

	closed bool
}

// Open validates cfg, initializes the shared ONNX environment, loads
// the required speaker and VAD models, opens the speaker store, and
// loads any optional analyzer models requested via featureFlags
// (absent optional files downgrade silently per spec.md §7).
func Open(cfg Config, featureFlags FeatureFlags, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, newErr(InvalidParam, "invalid config", err)
	}

	libPath := cfg.ONNXSharedLibraryPath
	if libPath == "" {
		libPath = onnxmodel.ResolveBundledLibrary()
	}
	if libPath != "" {
		onnxmodel.SetSharedLibraryPath(libPath)
	}
	if err := onnxmodel.InitEnvironment(); err != nil {
		return nil, newErr(ModelLoad, "neural runtime init failed", err)
	}

	speakerContract := onnxmodel.Contract{
		Inputs:  []onnxmodel.TensorSpec{{Name: "input", Shape: []int64{1, 0, 80}}},
		Outputs: []onnxmodel.TensorSpec{{Name: "output", Shape: []int64{1, DefaultSpeakerDim}}},
	}
	speakerModel, err := onnxmodel.Load(cfg.SpeakerModelPath, speakerContract, cfg.IntraOpThreads)
	if err != nil {
		return nil, newErr(ModelLoad, "speaker model load failed", err)
	}

	detector, err := vad.Load(cfg.VADModelPath)
	if err != nil {
		_ = speakerModel.Destroy()
		return nil, newErr(ModelLoad, "vad model load failed", err)
	}

	pipeline := embed.New(speakerModel, detector, DefaultSpeakerDim)

	speakerStore, err := store.Open(cfg.DBPath, pipeline, log)
	if err != nil {
		_ = speakerModel.Destroy()
		_ = detector.Destroy()
		return nil, newErr(DbError, "speaker store open failed", err)
	}
	if cfg.IdentifyThreshold > 0 {
		speakerStore.SetThreshold(cfg.IdentifyThreshold)
	}

	diarizer := diarize.New(detector, pipeline)

	requested := toAnalyzerFeature(featureFlags)
	a, err := analyzer.Init(detector, cfg.AnalyzerModelDir, requested, log)
	if err != nil {
		_ = speakerModel.Destroy()
		_ = detector.Destroy()
		_ = speakerStore.Close()
		return nil, newErr(ModelLoad, "analyzer init failed", err)
	}

	return &Session{
		cfg: cfg, log: log,
		speakerModel: speakerModel, detector: detector,
		pipeline: pipeline, speakerStore: speakerStore,
		diarizer: diarizer, analyzer: a,
	}, nil
}

// Enroll embeds audio and merges it into id's profile.
func (s *Session) Enroll(id string, samples []float32, sampleRate int) error {
	if s.closed {
		return newErr(NotInit, "session is closed", nil)
	}
	if id == "" || len(samples) == 0 {
		return newErr(InvalidParam, "id and samples are required", nil)
	}
	if err := s.speakerStore.Enroll(id, samples, sampleRate); err != nil {
		return translateStoreErr(err)
	}
	return nil
}

// Identify runs 1:N identification. When no candidate clears the store's
// threshold it returns an *Error of Kind NoMatch together with the best
// score; the returned id is then empty.
func (s *Session) Identify(samples []float32, sampleRate int) (string, float64, error) {
	if s.closed {
		return "", 0, newErr(NotInit, "session is closed", nil)
	}
	if len(samples) == 0 {
		return "", 0, newErr(InvalidParam, "samples are required", nil)
	}
	id, score, ok, err := s.speakerStore.Identify(samples, sampleRate)
	if err != nil {
		return "", 0, translateStoreErr(err)
	}
	if !ok {
		return "", score, newErr(NoMatch, "no candidate at or above threshold", nil)
	}
	return id, score, nil
}

// VerifyResult is Verify's outcome. Score is what callers should act
// on; RawScore is always the unmodified similarity, even when Score has
// been zeroed by a liveness gate, so the gate's effect is never silently
// unrecoverable.
type VerifyResult struct {
	Score    float64
	RawScore float64
	IsLive   bool
	Checked  bool
}

// Verify compares samples against id's stored profile. It always
// reports RawScore on success; Score is RawScore unless
// Config.GateVerifyOnLiveness is set and the anti-spoof check (when
// available) judges the input spoofed, in which case Score is zeroed.
func (s *Session) Verify(id string, samples []float32, sampleRate int) (VerifyResult, error) {
	if s.closed {
		return VerifyResult{}, newErr(NotInit, "session is closed", nil)
	}
	if id == "" || len(samples) == 0 {
		return VerifyResult{}, newErr(InvalidParam, "id and samples are required", nil)
	}
	score, err := s.speakerStore.Verify(id, samples, sampleRate)
	if err != nil {
		return VerifyResult{}, translateStoreErr(err)
	}
	res := VerifyResult{Score: score, RawScore: score, IsLive: true}
	if s.cfg.GateVerifyOnLiveness && s.analyzer != nil {
		if live, checked := s.checkLiveness(samples, sampleRate); checked {
			res.Checked = true
			res.IsLive = live
			if !live {
				res.Score = 0
			}
		}
	}
	return res, nil
}

func (s *Session) checkLiveness(samples []float32, sampleRate int) (live bool, checked bool) {
	conditioned, err := conditionFor(sampleRate, samples)
	if err != nil {
		return true, false
	}
	res := s.analyzer.Analyze(conditioned, analyzer.AntiSpoof)
	if res.FeaturesComputed&analyzer.AntiSpoof == 0 {
		return true, false
	}
	return res.AntiSpoof.IsGenuine, true
}

// Remove deletes id's profile.
func (s *Session) Remove(id string) error {
	if s.closed {
		return newErr(NotInit, "session is closed", nil)
	}
	if err := s.speakerStore.Remove(id); err != nil {
		return translateStoreErr(err)
	}
	return nil
}

// Count returns the number of enrolled speakers.
func (s *Session) Count() int {
	if s.closed {
		return 0
	}
	return s.speakerStore.Count()
}

// Profiles returns a snapshot of enrolled speaker ids and enroll counts.
func (s *Session) Profiles() []SpeakerProfile {
	if s.closed {
		return nil
	}
	stored := s.speakerStore.Profiles()
	out := make([]SpeakerProfile, len(stored))
	for i, p := range stored {
		out[i] = SpeakerProfile{ID: p.ID, EnrollCount: p.EnrollCount}
	}
	return out
}

// Analyze runs the requested analysis feature flags over samples.
func (s *Session) Analyze(samples []float32, sampleRate int, flags FeatureFlags) (AnalysisResult, error) {
	if s.closed {
		return AnalysisResult{}, newErr(NotInit, "session is closed", nil)
	}
	if len(samples) == 0 {
		return AnalysisResult{}, newErr(InvalidParam, "samples are required", nil)
	}
	conditioned, err := conditionFor(sampleRate, samples)
	if err != nil {
		return AnalysisResult{}, newErr(AudioInvalid, "condition audio", err)
	}
	res := s.analyzer.Analyze(conditioned, toAnalyzerFeature(flags))
	return fromAnalyzerResult(res), nil
}

// Diarize runs VAD -> per-segment embedding -> clustering, optionally
// matching cluster centroids against the speaker store.
func (s *Session) Diarize(samples []float32, sampleRate int, maxOut, maxClusters int, matchAgainstStore bool) ([]DiarizationSegment, error) {
	if s.closed {
		return nil, newErr(NotInit, "session is closed", nil)
	}
	if len(samples) == 0 {
		return nil, newErr(InvalidParam, "samples are required", nil)
	}
	conditioned, err := conditionFor(sampleRate, samples)
	if err != nil {
		return nil, newErr(AudioInvalid, "condition audio", err)
	}
	threshold := s.cfg.DiarizeThreshold
	if threshold <= 0 {
		threshold = diarize.DefaultThreshold
	}
	if maxOut <= 0 {
		maxOut = len(conditioned) // effectively unlimited
	}

	var lookup diarize.SpeakerLookup
	if matchAgainstStore {
		lookup = s.speakerStore
	}
	segs, err := s.diarizer.Diarize(conditioned, maxOut, maxClusters, threshold, lookup)
	if err != nil {
		return nil, newErr(DiarizeFailed, "diarize failed", err)
	}

	out := make([]DiarizationSegment, len(segs))
	for i, seg := range segs {
		out[i] = DiarizationSegment{
			StartSec: seg.StartSec, EndSec: seg.EndSec,
			ClusterLabel: seg.SpeakerLabel, MatchedSpeakerID: seg.MatchedSpeakerID,
			Confidence: seg.Confidence,
		}
	}
	return out, nil
}

// Close releases the speaker store, the VAD, and the speaker model.
// The session must not be used after Close.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.speakerStore.Close(); err != nil {
		s.log.Warn("session: store close failed", "error", err)
	}
	if err := s.detector.Destroy(); err != nil {
		s.log.Warn("session: vad destroy failed", "error", err)
	}
	if err := s.speakerModel.Destroy(); err != nil {
		s.log.Warn("session: speaker model destroy failed", "error", err)
	}
	return nil
}

func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrSpeakerExists):
		return newErr(SpeakerExists, err.Error(), err)
	case errors.Is(err, store.ErrSpeakerNotFound):
		return newErr(SpeakerNotFound, err.Error(), err)
	case errors.Is(err, store.ErrInvalidID):
		return newErr(InvalidParam, err.Error(), err)
	case errors.Is(err, embed.ErrTooShort):
		return newErr(AudioTooShort, err.Error(), err)
	case errors.Is(err, audio.ErrEmpty), errors.Is(err, audio.ErrInvalidSampleRate):
		return newErr(AudioInvalid, err.Error(), err)
	default:
		return newErr(DbError, err.Error(), err)
	}
}

func conditionFor(sampleRate int, samples []float32) ([]float32, error) {
	return audio.Condition(samples, sampleRate)
}
