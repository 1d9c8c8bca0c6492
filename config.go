package voiceprint

import (
	"errors"
	"os"
)

// Config holds session configuration. All required fields must be set;
// there are no silent defaults for model paths.
type Config struct {
	// SpeakerModelPath is the speaker embedding model (required).
	SpeakerModelPath string
	// VADModelPath is the Silero VAD model (required).
	VADModelPath string
	// DBPath is the SQLite speaker-store file path (required).
	DBPath string

	// AnalyzerModelDir is the directory searched for the optional
	// analyzer models (gender_age.onnx, emotion.onnx, antispoof.onnx,
	// dnsmos.onnx, language.onnx). A missing directory or a missing
	// individual file downgrades the corresponding feature flag at Open
	// rather than failing it.
	AnalyzerModelDir string

	// IdentifyThreshold is the 1:N acceptance cosine threshold, default
	// store.DefaultThreshold if zero.
	IdentifyThreshold float64

	// DiarizeThreshold is the agglomerative-clustering merge threshold,
	// default diarize.DefaultThreshold if zero.
	DiarizeThreshold float64

	// GateVerifyOnLiveness controls whether Verify clamps its returned
	// score to 0 when an anti-spoof check (if available) judges the
	// input spoofed. Spec.md §9 leaves this toggle advisory; off by
	// default to preserve the raw similarity score.
	GateVerifyOnLiveness bool

	// ONNXSharedLibraryPath optionally overrides the onnxruntime shared
	// library search path.
	ONNXSharedLibraryPath string

	// IntraOpThreads bounds per-session CPU thread use; 0 leaves the
	// runtime default.
	IntraOpThreads int
}

// Validate checks Config and returns an error on invalid or missing
// required values. Optional model paths are not validated here: Init
// resolves their absence into a downgraded feature flag instead.
func (cfg Config) Validate() error {
	if cfg.SpeakerModelPath == "" {
		return errors.New("config: SpeakerModelPath is required")
	}
	if cfg.VADModelPath == "" {
		return errors.New("config: VADModelPath is required")
	}
	if cfg.DBPath == "" {
		return errors.New("config: DBPath is required")
	}
	if cfg.IdentifyThreshold < 0 || cfg.IdentifyThreshold > 1 {
		return errors.New("config: IdentifyThreshold must be in [0,1]")
	}
	if cfg.DiarizeThreshold < 0 || cfg.DiarizeThreshold > 1 {
		return errors.New("config: DiarizeThreshold must be in [0,1]")
	}
	if err := requireModelFile("SpeakerModelPath", cfg.SpeakerModelPath); err != nil {
		return err
	}
	if err := requireModelFile("VADModelPath", cfg.VADModelPath); err != nil {
		return err
	}
	return nil
}

func requireModelFile(field, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New("config: " + field + " file not found: " + path)
		}
		return err
	}
	return nil
}
