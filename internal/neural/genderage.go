// Package neural wraps the optional analyzer models: gender/age,
// emotion, anti-spoof, DNSMOS quality, and language id. Each is a thin
// onnxmodel.Contract plus the post-processing spec.md §6's tensor table
// implies. Any of these may be absent; callers probe Available() and
// downgrade the corresponding feature bit rather than failing analyze.
package neural

import (
	"fmt"
	"math"

	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
)

// GenderAgeContract describes the model's fixed-size output layout: 3
// gender class scores + 4 age-group scores, with an optional 8th scalar
// giving a direct age regression in years.
func GenderAgeContract(timeFrames int) onnxmodel.Contract {
	return onnxmodel.Contract{
		Inputs:  []onnxmodel.TensorSpec{{Name: "input", Shape: []int64{1, int64(timeFrames), 80}}},
		Outputs: []onnxmodel.TensorSpec{{Name: "output", Shape: []int64{1, 8}}},
	}
}

// GenderClasses are the 3 gender-score output classes, in output order.
var GenderClasses = []string{"male", "female", "other"}

// AgeGroups are the 4 age-group output classes, in output order, with
// the midpoint (years) used when no regressed-age output is present.
var AgeGroups = []string{"child", "teen", "adult", "elder"}

var ageGroupMidpoints = map[string]float64{
	"child": 8, "teen": 15, "adult": 35, "elder": 68,
}

// GenderAgeResult is softmax-normalized gender and age-group scores,
// plus an age-in-years estimate: the model's own regression output when
// present, else the age-score-weighted mean of the midpoint table.
type GenderAgeResult struct {
	GenderScores map[string]float64
	AgeScores    map[string]float64
	AgeYears     float64
	HasRegressed bool
}

// GenderAge wraps a loaded gender/age model.
type GenderAge struct {
	model *onnxmodel.Model
}

func NewGenderAge(model *onnxmodel.Model) *GenderAge { return &GenderAge{model: model} }

func (g *GenderAge) Available() bool { return g != nil && g.model != nil }

func (g *GenderAge) Analyze(fbankInput []float32) (GenderAgeResult, error) {
	if !g.Available() {
		return GenderAgeResult{}, fmt.Errorf("neural: gender/age model not available")
	}
	out, err := g.model.Run(fbankInput)
	if err != nil {
		return GenderAgeResult{}, fmt.Errorf("neural: gender/age inference: %w", err)
	}
	if len(out) < 7 {
		return GenderAgeResult{}, fmt.Errorf("neural: gender/age output too short: %d", len(out))
	}

	genderCount := len(GenderClasses)
	gender := softmax(out[0:genderCount])

	ageCount := len(AgeGroups)
	if genderCount+ageCount > len(out) {
		ageCount = len(out) - genderCount
	}
	age := softmax(out[genderCount : genderCount+ageCount])

	res := GenderAgeResult{
		GenderScores: make(map[string]float64, genderCount),
		AgeScores:    make(map[string]float64, ageCount),
	}
	for i := 0; i < genderCount; i++ {
		res.GenderScores[GenderClasses[i]] = gender[i]
	}
	for i := 0; i < ageCount; i++ {
		res.AgeScores[AgeGroups[i]] = age[i]
	}

	if len(out) >= genderCount+ageCount+1 {
		res.AgeYears = clampFloat(float64(out[genderCount+ageCount]), 0, 100)
		res.HasRegressed = true
	} else {
		for i := 0; i < ageCount; i++ {
			res.AgeYears += age[i] * ageGroupMidpoints[AgeGroups[i]]
		}
	}
	return res, nil
}

func softmax(x []float32) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	maxV := float64(x[0])
	for _, v := range x {
		if float64(v) > maxV {
			maxV = float64(v)
		}
	}
	var sum float64
	for i, v := range x {
		e := math.Exp(float64(v) - maxV)
		out[i] = e
		sum += e
	}
	if sum <= 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
