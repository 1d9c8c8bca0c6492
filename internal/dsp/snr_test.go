package dsp

import "testing"

func TestSNRHighForLoudSpeechQuietNoise(t *testing.T) {
	speech := sineWave(200, 1.0)
	noise := make([]float32, SampleRate)
	for i := range noise {
		noise[i] = 0.0001
	}
	snr := SNR(speech, noise)
	if snr < 20 {
		t.Errorf("expected high SNR for loud speech/quiet noise, got %v", snr)
	}
}

func TestSNRFallbackConstantSignalIsLow(t *testing.T) {
	samples := make([]float32, SampleRate)
	for i := range samples {
		samples[i] = 0.1
	}
	snr := SNRFallback(samples)
	if snr > 5 {
		t.Errorf("expected near-zero SNR for constant-energy signal, got %v", snr)
	}
}
