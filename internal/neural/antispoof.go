package neural

import (
	"fmt"

	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
)

// AntiSpoofSamples is the fixed raw-waveform input length the anti-spoof
// model expects (4.0375s at 16kHz), per spec.md §6.
const AntiSpoofSamples = 64600

// AntiSpoofContract: raw PCM in, {spoof, bonafide} logits out.
func AntiSpoofContract() onnxmodel.Contract {
	return onnxmodel.Contract{
		Inputs:  []onnxmodel.TensorSpec{{Name: "input", Shape: []int64{1, AntiSpoofSamples}}},
		Outputs: []onnxmodel.TensorSpec{{Name: "output", Shape: []int64{1, 2}}},
	}
}

// AntiSpoofResult holds the bonafide/spoof softmax scores. IsLive is
// true when the bonafide score is at least 0.5.
type AntiSpoofResult struct {
	BonafideScore float64
	SpoofScore    float64
	IsLive        bool
}

type AntiSpoof struct {
	model *onnxmodel.Model
}

func NewAntiSpoof(model *onnxmodel.Model) *AntiSpoof { return &AntiSpoof{model: model} }

func (a *AntiSpoof) Available() bool { return a != nil && a.model != nil }

// Analyze pads/truncates raw waveform samples to AntiSpoofSamples.
func (a *AntiSpoof) Analyze(samples []float32) (AntiSpoofResult, error) {
	if !a.Available() {
		return AntiSpoofResult{}, fmt.Errorf("neural: anti-spoof model not available")
	}
	input := make([]float32, AntiSpoofSamples)
	n := len(samples)
	if n > AntiSpoofSamples {
		n = AntiSpoofSamples
	}
	copy(input, samples[:n])

	out, err := a.model.Run(input)
	if err != nil {
		return AntiSpoofResult{}, fmt.Errorf("neural: anti-spoof inference: %w", err)
	}
	if len(out) < 2 {
		return AntiSpoofResult{}, fmt.Errorf("neural: anti-spoof output too short: %d", len(out))
	}

	scores := softmax(out[:2])
	return AntiSpoofResult{
		BonafideScore: scores[1],
		SpoofScore:    scores[0],
		IsLive:        scores[1] >= 0.5,
	}, nil
}
