// Package vad wraps Silero VAD (a stateful streaming ONNX detector) and
// implements the Idle/InSpeech segmentation state machine spec'd against
// it. Directly generalizes the teacher's silero_vad.go (tensor plumbing)
// and segment.go (pre-speech buffering), extended to emit the complete
// ordered, merged segment list a non-streaming Detect call needs instead
// of the teacher's single-open-segment turn detector.
package vad

import (
	"errors"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/cortexswarm/voiceprint-go/internal/onnxmodel"
)

const (
	SampleRate        = 16000
	WindowSamples     = 512 // 32ms at 16kHz
	contextSamples    = 64
	inputSamples      = contextSamples + WindowSamples // 576
	stateSize         = 2 * 1 * 128
	Threshold         = 0.5
	minSilenceSamples = 4800 // 300ms
	minSpeechSamples  = 4000 // 250ms
)

var ErrNotLoaded = errors.New("vad: model not loaded")

// Segment is a speech span within an audio buffer.
type Segment struct {
	StartSample int
	EndSample   int
	Confidence  float64
}

// Detector wraps one Silero VAD session. Detect calls are serialized by
// an internal mutex, so one Detector can be shared across goroutines.
type Detector struct {
	mu sync.Mutex

	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	state    *ort.Tensor[float32]
	sr       *ort.Tensor[int64]
	output   *ort.Tensor[float32]
	stateOut *ort.Tensor[float32]

	context [contextSamples]float32

	lastError error
}

// Load opens the Silero VAD ONNX model at path.
func Load(path string) (*Detector, error) {
	if err := onnxmodel.InitEnvironment(); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, inputSamples), make([]float32, inputSamples))
	if err != nil {
		return nil, err
	}
	stateTensor, err := ort.NewTensor(ort.NewShape(2, 1, 128), make([]float32, stateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, err
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{SampleRate})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, err
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, err
	}
	stateOutTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, 128))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}

	sess, err := ort.NewAdvancedSession(path,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateOutTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateOutTensor.Destroy()
		return nil, err
	}

	return &Detector{
		session:  sess,
		input:    inputTensor,
		state:    stateTensor,
		sr:       srTensor,
		output:   outputTensor,
		stateOut: stateOutTensor,
	}, nil
}

func (d *Detector) Destroy() error {
	if d == nil || d.session == nil {
		return nil
	}
	return d.session.Destroy()
}

// LastError returns the detail behind the most recent Detect failure.
func (d *Detector) LastError() error {
	return d.lastError
}

func (d *Detector) resetState() {
	for i := range d.context {
		d.context[i] = 0
	}
	d.state.ZeroContents()
}

// step runs one 512-sample window through the model and returns the
// speech probability, updating held state.
func (d *Detector) step(window []float32) (float64, error) {
	data := d.input.GetData()
	copy(data[:contextSamples], d.context[:])
	copy(data[contextSamples:], window)
	for i := 0; i < contextSamples; i++ {
		d.context[i] = data[inputSamples-contextSamples+i]
	}
	if err := d.session.Run(); err != nil {
		return 0, err
	}
	prob := float64(d.output.GetData()[0])
	copy(d.state.GetData(), d.stateOut.GetData())
	return prob, nil
}

// Detect runs the full Idle/InSpeech state machine over samples (any
// length, need not be a multiple of WindowSamples — a trailing partial
// window is zero-padded) and returns the merged, ordered segment list.
// On model failure, returns an empty list and records LastError, per the
// "no speech found, not fatal" recovery policy.
func (d *Detector) Detect(samples []float32) []Segment {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastError = nil

	if d.session == nil {
		d.lastError = ErrNotLoaded
		return nil
	}
	d.resetState()

	type state int
	const (
		idle state = iota
		inSpeech
	)

	st := idle
	var segStart int
	var silenceCount int
	var probSum float64
	var probCount int
	var raw []Segment

	nWindows := (len(samples) + WindowSamples - 1) / WindowSamples
	window := make([]float32, WindowSamples)

	closeSegment := func(endSample int) {
		if endSample-segStart >= minSpeechSamples {
			conf := 0.0
			if probCount > 0 {
				conf = probSum / float64(probCount)
			}
			raw = append(raw, Segment{StartSample: segStart, EndSample: endSample, Confidence: conf})
		}
		st = idle
		silenceCount = 0
		probSum = 0
		probCount = 0
	}

	for w := 0; w < nWindows; w++ {
		start := w * WindowSamples
		end := start + WindowSamples
		if end > len(samples) {
			for i := range window {
				window[i] = 0
			}
			copy(window, samples[start:])
		} else {
			copy(window, samples[start:end])
		}

		prob, err := d.step(window)
		if err != nil {
			d.lastError = err
			return nil
		}
		isSpeech := prob >= Threshold

		switch st {
		case idle:
			if isSpeech {
				st = inSpeech
				segStart = start
				silenceCount = 0
				probSum = prob
				probCount = 1
			}
		case inSpeech:
			if isSpeech {
				silenceCount = 0
				probSum += prob
				probCount++
			} else {
				silenceCount += WindowSamples
				if silenceCount >= minSilenceSamples {
					closeSegment(start + WindowSamples - silenceCount)
				}
			}
		}
	}
	if st == inSpeech {
		closeSegment(len(samples))
	}

	return mergeAdjacent(raw)
}

// mergeAdjacent merges segments whose gap is < minSilenceSamples,
// averaging confidences, handling double-transitions from noisy frames.
func mergeAdjacent(segs []Segment) []Segment {
	if len(segs) == 0 {
		return segs
	}
	out := make([]Segment, 0, len(segs))
	cur := segs[0]
	for i := 1; i < len(segs); i++ {
		next := segs[i]
		if next.StartSample-cur.EndSample < minSilenceSamples {
			cur.EndSample = next.EndSample
			cur.Confidence = (cur.Confidence + next.Confidence) / 2
		} else {
			out = append(out, cur)
			cur = next
		}
	}
	out = append(out, cur)
	return out
}

// FilterSilence concatenates the samples covered by segs, in order.
func FilterSilence(samples []float32, segs []Segment) []float32 {
	var out []float32
	for _, s := range segs {
		out = append(out, samples[s.StartSample:s.EndSample]...)
	}
	return out
}

// SpeechDuration sums (end-start)/sr over segs.
func SpeechDuration(segs []Segment, sampleRate int) float64 {
	var total float64
	for _, s := range segs {
		total += float64(s.EndSample-s.StartSample) / float64(sampleRate)
	}
	return total
}

// NoiseComplement returns the samples outside segs, concatenated in
// order — the orchestrator's "noise_pcm".
func NoiseComplement(samples []float32, segs []Segment) []float32 {
	var out []float32
	pos := 0
	for _, s := range segs {
		if s.StartSample > pos {
			out = append(out, samples[pos:s.StartSample]...)
		}
		if s.EndSample > pos {
			pos = s.EndSample
		}
	}
	if pos < len(samples) {
		out = append(out, samples[pos:]...)
	}
	return out
}
