package analyzer

import (
	"github.com/cortexswarm/voiceprint-go/internal/dsp"
	"github.com/cortexswarm/voiceprint-go/internal/fbank"
	"github.com/cortexswarm/voiceprint-go/internal/neural"
)

func matToFloat32(mat *fbank.Matrix) []float32 {
	if mat == nil {
		return nil
	}
	out := make([]float32, len(mat.Data))
	for i, v := range mat.Data {
		out[i] = float32(v)
	}
	return out
}

func (a *Analyzer) computeGenderAge(mat *fbank.Matrix) (neural.GenderAgeResult, bool) {
	if a.genderAge == nil || mat == nil || mat.NumFrames == 0 {
		return neural.GenderAgeResult{}, false
	}
	res, err := a.genderAge.Analyze(matToFloat32(mat))
	if err != nil {
		a.log.Warn("analyzer: gender/age inference failed", "error", err)
		return neural.GenderAgeResult{}, false
	}
	return res, true
}

func (a *Analyzer) computeEmotion(mat *fbank.Matrix) (neural.EmotionResult, bool) {
	if a.emotion == nil || mat == nil || mat.NumFrames == 0 {
		return neural.EmotionResult{}, false
	}
	res, err := a.emotion.Analyze(matToFloat32(mat))
	if err != nil {
		a.log.Warn("analyzer: emotion inference failed", "error", err)
		return neural.EmotionResult{}, false
	}
	return res, true
}

func (a *Analyzer) computeAntiSpoof(speechPCM []float32) (AntiSpoofResult, bool) {
	if a.antiSpoof == nil {
		return AntiSpoofResult{}, false
	}
	res, err := a.antiSpoof.Analyze(speechPCM)
	if err != nil {
		a.log.Warn("analyzer: anti-spoof inference failed", "error", err)
		return AntiSpoofResult{}, false
	}
	return AntiSpoofResult{
		GenuineScore: res.BonafideScore,
		SpoofScore:   res.SpoofScore,
		IsGenuine:    res.IsLive,
	}, true
}

// computeQuality implements spec.md §4.9 step 3's Quality dispatch.
func (a *Analyzer) computeQuality(speechPCM, noisePCM []float32, mat *fbank.Matrix, pitch dsp.PitchSummary) QualityResult {
	var snr float64
	if len(noisePCM) > 0 {
		snr = dsp.SNR(speechPCM, noisePCM)
	} else {
		snr = dsp.SNRFallback(speechPCM)
	}

	lufs := dsp.Loudness(speechPCM)

	f0 := pitch.MeanF0
	hnr := dsp.DefaultHNR
	if f0 > 0 {
		hnr = dsp.HNR(speechPCM, f0)
	}

	clarityMat := mat
	if clarityMat == nil {
		clarityMat = fbank.Compute(speechPCM)
	}
	clarity := dsp.Clarity(clarityMat)

	snrClamped := snr
	if snrClamped < -10 {
		snrClamped = -10
	}
	if snrClamped > 40 {
		snrClamped = 40
	}
	noiseLevel := 1 - (snrClamped+10)/50
	if noiseLevel < 0 {
		noiseLevel = 0
	}
	if noiseLevel > 1 {
		noiseLevel = 1
	}

	mos := neural.EstimateMOS(snr, hnr)
	if a.dnsmos != nil {
		dnsmosInput := dnsmosLikeReshape(clarityMat, neural.DNSMOSBins, neural.DNSMOSFrames)
		if m, err := a.dnsmos.MOS(dnsmosInput); err == nil {
			mos = m
		} else {
			a.log.Warn("analyzer: dnsmos inference failed, using estimate", "error", err)
		}
	}

	return QualityResult{
		SNR:        snr,
		LUFS:       lufs,
		HNR:        hnr,
		Clarity:    clarity,
		NoiseLevel: noiseLevel,
		MOS:        mos,
	}
}

func (a *Analyzer) computeLanguage(speechPCM []float32) (LanguageResult, bool) {
	if a.language == nil {
		return LanguageResult{}, false
	}
	mat := fbank.ComputePadded(speechPCM, neural.LanguageFrames)
	input := dnsmosLikeReshape(mat, neural.LanguageBins, neural.LanguageFrames)
	res, err := a.language.Analyze(input)
	if err != nil {
		a.log.Warn("analyzer: language inference failed", "error", err)
		return LanguageResult{}, false
	}
	return LanguageResult{Code: res.Code, Confidence: res.Confidence}, true
}

// dnsmosLikeReshape reshapes a [frames][bins] log-mel matrix into
// bin-major [bins*frames] order, the layout Whisper-style [1,80,T]
// tensors expect.
func dnsmosLikeReshape(mat *fbank.Matrix, bins, frames int) []float32 {
	out := make([]float32, bins*frames)
	if mat == nil {
		return out
	}
	n := mat.NumFrames
	if n > frames {
		n = frames
	}
	for f := 0; f < n; f++ {
		row := mat.Row(f)
		for b := 0; b < bins && b < mat.NumBins; b++ {
			out[b*frames+f] = float32(row[b])
		}
	}
	return out
}
