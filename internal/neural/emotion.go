package neural

import (
	"fmt"
	"math"

	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
)

// EmotionClasses mirrors the 8 base emotion classes, in output order.
var EmotionClasses = []string{
	"neutral", "happy", "sad", "angry", "fear", "disgust", "surprise", "calm",
}

// emotionVA is the fixed per-class valence/arousal fallback table used
// when the model does not provide its own valence/arousal outputs.
var emotionVA = map[string][2]float64{
	"neutral":  {0.0, 0.0},
	"happy":    {0.8, 0.5},
	"sad":      {-0.6, -0.4},
	"angry":    {-0.5, 0.7},
	"fear":     {-0.7, 0.6},
	"disgust":  {-0.6, 0.3},
	"surprise": {0.4, 0.7},
	"calm":     {0.3, -0.5},
}

// EmotionContract: 8 emotion class logits, optional 9th/10th valence/arousal.
func EmotionContract(timeFrames int) onnxmodel.Contract {
	return onnxmodel.Contract{
		Inputs:  []onnxmodel.TensorSpec{{Name: "input", Shape: []int64{1, int64(timeFrames), 80}}},
		Outputs: []onnxmodel.TensorSpec{{Name: "output", Shape: []int64{1, 10}}},
	}
}

// EmotionResult holds softmax-normalized class scores (sum to 1 within
// tolerance), the argmax class, and valence/arousal in [-1,1].
type EmotionResult struct {
	Scores   map[string]float64
	TopClass string
	Valence  float64
	Arousal  float64
	HasVA    bool
}

type Emotion struct {
	model *onnxmodel.Model
}

func NewEmotion(model *onnxmodel.Model) *Emotion { return &Emotion{model: model} }

func (e *Emotion) Available() bool { return e != nil && e.model != nil }

func (e *Emotion) Analyze(fbankInput []float32) (EmotionResult, error) {
	if !e.Available() {
		return EmotionResult{}, fmt.Errorf("neural: emotion model not available")
	}
	out, err := e.model.Run(fbankInput)
	if err != nil {
		return EmotionResult{}, fmt.Errorf("neural: emotion inference: %w", err)
	}
	if len(out) < 8 {
		return EmotionResult{}, fmt.Errorf("neural: emotion output too short: %d", len(out))
	}

	classCount := len(EmotionClasses)
	if classCount > len(out) {
		classCount = len(out)
	}
	scores := softmax(out[:classCount])

	res := EmotionResult{Scores: make(map[string]float64, classCount)}
	top := 0
	for i := 0; i < classCount; i++ {
		res.Scores[EmotionClasses[i]] = scores[i]
		if scores[i] > scores[top] {
			top = i
		}
	}
	res.TopClass = EmotionClasses[top]

	if len(out) >= 10 {
		res.Valence = math.Tanh(float64(out[8]))
		res.Arousal = math.Tanh(float64(out[9]))
		res.HasVA = true
	} else if va, ok := emotionVA[res.TopClass]; ok {
		res.Valence, res.Arousal = va[0], va[1]
	}
	return res, nil
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
