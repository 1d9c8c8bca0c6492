package neural

import (
	"fmt"

	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
)

// LanguageFrames, LanguageBins fix the [1,80,3000] Whisper-style
// zero-padded log-mel input spec.md §4.9/§6 requires.
const (
	LanguageFrames = 3000
	LanguageBins   = 80
)

func LanguageContract(numLanguages int) onnxmodel.Contract {
	return onnxmodel.Contract{
		Inputs:  []onnxmodel.TensorSpec{{Name: "input", Shape: []int64{1, LanguageBins, LanguageFrames}}},
		Outputs: []onnxmodel.TensorSpec{{Name: "output", Shape: []int64{1, int64(numLanguages)}}},
	}
}

type LanguageResult struct {
	Code       string
	Confidence float64
}

type Language struct {
	model *onnxmodel.Model
}

func NewLanguage(model *onnxmodel.Model) *Language { return &Language{model: model} }

func (l *Language) Available() bool { return l != nil && l.model != nil }

func (l *Language) Analyze(input []float32) (LanguageResult, error) {
	if !l.Available() {
		return LanguageResult{}, fmt.Errorf("neural: language model not available")
	}
	out, err := l.model.Run(input)
	if err != nil {
		return LanguageResult{}, fmt.Errorf("neural: language inference: %w", err)
	}
	if len(out) == 0 {
		return LanguageResult{}, fmt.Errorf("neural: language output empty")
	}

	probs := softmax(out)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	code := "unknown"
	if best < len(LanguageTable) {
		code = LanguageTable[best]
	}
	return LanguageResult{Code: code, Confidence: probs[best]}, nil
}
