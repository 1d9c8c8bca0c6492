// Package audio conditions arbitrary PCM or WAV input into the buffer
// contract the rest of the engine assumes: 16 kHz, mono, float32 in
// approximately [-1, 1].
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	wav "github.com/youpy/go-wav"
	riff "github.com/youpy/go-riff"
)

// TargetSampleRate is the sample rate every downstream component assumes.
const TargetSampleRate = 16000

var (
	// ErrUnsupportedFormat is returned for WAV format codes/bit depths this
	// package does not decode.
	ErrUnsupportedFormat = errors.New("audio: unsupported WAV format")
	// ErrEmpty is returned when the input buffer has zero samples.
	ErrEmpty = errors.New("audio: empty input")
	// ErrInvalidSampleRate is returned when sampleRate is not positive.
	ErrInvalidSampleRate = errors.New("audio: invalid sample rate")
)

// Condition takes a float32 buffer declared at sampleRate and returns a
// 16 kHz mono buffer. If sampleRate already equals TargetSampleRate the
// input is copied through unchanged; no clamping is applied.
func Condition(samples []float32, sampleRate int) ([]float32, error) {
	if len(samples) == 0 {
		return nil, ErrEmpty
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if sampleRate == TargetSampleRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}
	return Resample(samples, sampleRate, TargetSampleRate), nil
}

// Resample performs linear interpolation from srcRate to dstRate per the
// contract: src_pos = i/ratio, y[i] = x[idx]*(1-frac) + x[idx+1]*frac,
// clamped at the end of the buffer. Output length is ceil(len(x)*ratio).
func Resample(x []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate {
		out := make([]float32, len(x))
		copy(out, x)
		return out
	}
	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(math.Ceil(float64(len(x)) * ratio))
	out := make([]float32, outLen)
	last := len(x) - 1
	for i := 0; i < outLen; i++ {
		srcPos := float64(i) / ratio
		idx := int(math.Floor(srcPos))
		frac := srcPos - float64(idx)
		if idx >= last {
			out[i] = x[last]
			continue
		}
		out[i] = x[idx]*float32(1-frac) + x[idx+1]*float32(frac)
	}
	return out
}

// LoadWAVFile parses a RIFF/WAVE file and returns 16 kHz mono float32
// samples. Supports PCM 8/16-bit and IEEE float32; stereo is averaged;
// more than two channels takes channel 0; chunks other than fmt/data are
// skipped by the underlying reader.
func LoadWAVFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("audio: file not found: %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

// DecodeWAV decodes a RIFF/WAVE stream into conditioned 16 kHz mono float32.
func DecodeWAV(r io.Reader) ([]float32, error) {
	rr, ok := r.(riff.RIFFReader)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		rr = bytes.NewReader(data)
	}
	reader := wav.NewReader(rr)
	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("audio: WAV format: %w", err)
	}

	numChannels := int(format.NumChannels)
	if numChannels < 1 {
		return nil, ErrUnsupportedFormat
	}
	bits := format.BitsPerSample
	audioFormat := format.AudioFormat
	// AudioFormat 1 = PCM (8/16-bit handled below via FloatValue), 3 = IEEE float.
	if audioFormat != 1 && audioFormat != 3 {
		return nil, ErrUnsupportedFormat
	}
	if audioFormat == 1 && bits != 8 && bits != 16 {
		return nil, ErrUnsupportedFormat
	}
	if audioFormat == 3 && bits != 32 {
		return nil, ErrUnsupportedFormat
	}

	var out []float32
	for {
		samples, err := reader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("audio: reading WAV samples: %w", err)
		}
		for _, s := range samples {
			var v float64
			if numChannels == 1 {
				v = reader.FloatValue(s, 0)
			} else {
				// channels > 2 take channel 0 only; stereo averages 0 and 1.
				if numChannels == 2 {
					v = (reader.FloatValue(s, 0) + reader.FloatValue(s, 1)) / 2
				} else {
					v = reader.FloatValue(s, 0)
				}
			}
			out = append(out, float32(v))
		}
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return Condition(out, int(format.SampleRate))
}

// WriteWAV writes 16-bit PCM mono samples at sampleRate, clamped to
// [-1, 1] and rounded to the nearest step of 1/32768 (capped at 32767)
// before quantizing, using the same go-wav writer the teacher's WAV
// example uses to persist segments.
func WriteWAV(w io.Writer, samples []float32, sampleRate int) error {
	wavSamples := make([]wav.Sample, len(samples))
	for i, v := range samples {
		if v < -1 {
			v = -1
		}
		if v > 1 {
			v = 1
		}
		q := math.Round(float64(v) * 32768)
		if q > 32767 {
			q = 32767
		}
		wavSamples[i] = wav.Sample{Values: [2]int{int(q), 0}}
	}
	writer := wav.NewWriter(w, uint32(len(wavSamples)), 1, uint32(sampleRate), 16)
	return writer.WriteSamples(wavSamples)
}
