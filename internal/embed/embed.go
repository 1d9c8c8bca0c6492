// Package embed turns conditioned audio into an L2-normalized speaker
// embedding: condition -> VAD-filter -> FBank -> speaker model -> L2
// normalize, per the pipeline every enroll/identify/verify/diarize call
// shares.
package embed

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/cortexswarm/voiceprint-go/internal/audio"
	"github.com/cortexswarm/voiceprint-go/internal/fbank"
	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
	"github.com/cortexswarm/voiceprint-go/internal/vad"
)

// MinSpeechSeconds is the minimum speech duration required to embed.
const MinSpeechSeconds = 1.5

var ErrTooShort = errors.New("embed: insufficient speech duration")

// DefaultDim is used when the speaker model reports an unknown rank-1
// output shape at load time.
const DefaultDim = 192

// Pipeline holds the shared speaker model and VAD used to produce
// embeddings. Dim is fixed for the process lifetime once determined.
type Pipeline struct {
	speaker *onnxmodel.Model
	detect  *vad.Detector
	dim     int
}

// New builds a pipeline from an already-loaded speaker model and VAD
// detector, plus the model's reported output dimension (0 if unknown,
// in which case DefaultDim is used).
func New(speaker *onnxmodel.Model, detector *vad.Detector, dim int) *Pipeline {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Pipeline{speaker: speaker, detect: detector, dim: dim}
}

func (p *Pipeline) Dim() int { return p.dim }

// Embed runs the six-step pipeline on samples declared at sampleRate.
func (p *Pipeline) Embed(samples []float32, sampleRate int) ([]float32, error) {
	conditioned, err := audio.Condition(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("embed: condition: %w", err)
	}
	return p.EmbedConditioned(conditioned)
}

// EmbedConditioned runs steps 2-6 on audio already at 16kHz mono.
func (p *Pipeline) EmbedConditioned(conditioned []float32) ([]float32, error) {
	speechPCM := conditioned
	if p.detect != nil {
		segs := p.detect.Detect(conditioned)
		if len(segs) > 0 {
			speechPCM = vad.FilterSilence(conditioned, segs)
		}
		// empty segs: best-effort fallback, keep full audio.
	}

	duration := float64(len(speechPCM)) / float64(vad.SampleRate)
	if duration < MinSpeechSeconds {
		return nil, ErrTooShort
	}

	mat := fbank.Compute(speechPCM)
	if mat.NumFrames == 0 {
		return nil, ErrTooShort
	}

	input := make([]float32, mat.NumFrames*mat.NumBins)
	for i, v := range mat.Data {
		input[i] = float32(v)
	}

	out, err := p.speaker.Run(input)
	if err != nil {
		return nil, fmt.Errorf("embed: inference: %w", err)
	}

	return l2Normalize(out), nil
}

func l2Normalize(v []float32) []float32 {
	fv := make([]float64, len(v))
	for i, x := range v {
		fv[i] = float64(x)
	}
	norm := floats.Norm(fv, 2)
	out := make([]float32, len(v))
	if norm < 1e-10 {
		copy(out, v)
		return out
	}
	for i, x := range fv {
		out[i] = float32(x / norm)
	}
	return out
}
