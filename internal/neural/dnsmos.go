package neural

import (
	"fmt"

	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
)

// DNSMOSFrames, DNSMOSBins fix the [1,80,512] input spec.md §6 requires.
const (
	DNSMOSFrames = 512
	DNSMOSBins   = 80
)

// DNSMOSContract: log-mel in, {SIG, BAK, OVR} MOS-like scores out.
func DNSMOSContract() onnxmodel.Contract {
	return onnxmodel.Contract{
		Inputs:  []onnxmodel.TensorSpec{{Name: "input", Shape: []int64{1, DNSMOSBins, DNSMOSFrames}}},
		Outputs: []onnxmodel.TensorSpec{{Name: "output", Shape: []int64{1, 3}}},
	}
}

type DNSMOS struct {
	model *onnxmodel.Model
}

func NewDNSMOS(model *onnxmodel.Model) *DNSMOS { return &DNSMOS{model: model} }

func (d *DNSMOS) Available() bool { return d != nil && d.model != nil }

// MOS returns the overall (OVR, index 2) score clamped to [1,5].
func (d *DNSMOS) MOS(input []float32) (float64, error) {
	if !d.Available() {
		return 0, fmt.Errorf("neural: dnsmos model not available")
	}
	out, err := d.model.Run(input)
	if err != nil {
		return 0, fmt.Errorf("neural: dnsmos inference: %w", err)
	}
	if len(out) < 3 {
		return 0, fmt.Errorf("neural: dnsmos output too short: %d", len(out))
	}
	mos := float64(out[2])
	if mos < 1 {
		mos = 1
	}
	if mos > 5 {
		mos = 5
	}
	return mos, nil
}

// EstimateMOS is the SNR/HNR-based fallback spec.md §4.9 specifies when
// DNSMOS is unavailable: MOS = 1 + 3.5*(0.6*snrScore + 0.4*hnrScore),
// each sub-score linearly mapped to [0,1] over a typical range.
func EstimateMOS(snrDB, hnrDB float64) float64 {
	snrScore := clampFloat((snrDB+10)/50, 0, 1)
	hnrScore := clampFloat(hnrDB/30, 0, 1)
	return 1 + 3.5*(0.6*snrScore+0.4*hnrScore)
}
