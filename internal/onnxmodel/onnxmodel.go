// Package onnxmodel wraps github.com/yalue/onnxruntime_go behind a single
// concrete type parameterized by its tensor contract, per the design note
// that there is no true polymorphism here — every neural model in this
// engine is "the same wrapper with different tensor contracts". Grounded
// on the teacher's newSileroVAD/newSmartTurn constructors, generalized
// so each contract is data instead of a bespoke hand-written constructor.
//
// Unlike the teacher's fixed-shape models (Silero's 512-sample window,
// smart-turn's fixed 8s mel grid), several contracts here take a
// variable time-frame count ([1,T,80] for speaker/gender-age/emotion/
// language). A DynamicAdvancedSession is used instead of a fixed-tensor
// AdvancedSession so each Run can bind a freshly shaped input tensor.
package onnxmodel

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	envOnce sync.Once
	envErr  error
)

// InitEnvironment initializes the process-wide ONNX runtime environment
// exactly once, however many times it is called. The teacher calls
// ort.InitializeEnvironment unconditionally from New; this module may be
// opened and closed repeatedly within a test process, so the guard is a
// sync.Once rather than a single unconditional call.
func InitEnvironment() error {
	envOnce.Do(func() {
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// SetSharedLibraryPath forwards to the runtime; callers must invoke before
// the first InitEnvironment call if the default library search path does
// not find libonnxruntime.
func SetSharedLibraryPath(path string) {
	ort.SetSharedLibraryPath(path)
}

// TensorSpec is one named input or output of a model.
type TensorSpec struct {
	Name string
	// Shape uses the ONNX convention: a non-positive entry is a dynamic
	// dimension. For inputs it is resolved per Run call from the actual
	// data length; for element-count purposes elsewhere it is treated
	// as 1, per spec.
	Shape []int64
}

// Contract describes a model's single input and single output tensor
// shape. Models with multiple inputs (VAD's state/sr) are not expressed
// through this type; they manage their own session directly.
type Contract struct {
	Inputs  []TensorSpec
	Outputs []TensorSpec
}

func elementCount(shape []int64) int {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			d = 1
		}
		n *= int(d)
	}
	return n
}

func shapeOf(dims []int64) ort.Shape {
	return ort.NewShape(dims...)
}

// resolvedInputShape substitutes the first non-positive (dynamic)
// dimension with the actual element count implied by dataLen, holding
// all other declared dims fixed. Used when a contract's input has a
// variable time-frame dimension (e.g. [1,T,80]).
func resolvedInputShape(declared []int64, dataLen int) []int64 {
	fixed := 1
	dynIdx := -1
	for i, d := range declared {
		if d <= 0 {
			dynIdx = i
			continue
		}
		fixed *= int(d)
	}
	out := append([]int64(nil), declared...)
	if dynIdx >= 0 && fixed > 0 {
		out[dynIdx] = int64(dataLen / fixed)
	}
	return out
}

// Model is a loaded ONNX session bound to a fixed Contract, with a
// fresh input tensor built per Run call (its shape may vary) and a
// reused output tensor (the output shape is fixed for every model this
// wraps). A per-model mutex serializes access, since unlike the teacher
// (one session, one caller) this module's analyzers may be invoked from
// multiple goroutines against a shared Analyzer.
type Model struct {
	mu       sync.Mutex
	session  *ort.DynamicAdvancedSession
	contract Contract
	output   *ort.Tensor[float32]
}

// Load opens path with threads intra-op threads and builds a dynamic
// session bound to the contract's input/output names. Fails with a
// wrapped error the caller should translate to ModelLoad.
func Load(path string, contract Contract, threads int) (*Model, error) {
	if err := InitEnvironment(); err != nil {
		return nil, fmt.Errorf("onnxmodel: environment: %w", err)
	}
	if len(contract.Inputs) != 1 || len(contract.Outputs) != 1 {
		return nil, fmt.Errorf("onnxmodel: contract must have exactly one input and one output")
	}

	outSpec := contract.Outputs[0]
	output, err := ort.NewEmptyTensor[float32](shapeOf(outSpec.Shape))
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: alloc output %s: %w", outSpec.Name, err)
	}

	var opts *ort.SessionOptions
	if threads > 0 {
		o, err := ort.NewSessionOptions()
		if err == nil {
			_ = o.SetIntraOpNumThreads(threads)
			opts = o
		}
	}

	sess, err := ort.NewDynamicAdvancedSession(path,
		[]string{contract.Inputs[0].Name}, []string{outSpec.Name}, opts)
	if err != nil {
		_ = output.Destroy()
		return nil, fmt.Errorf("onnxmodel: load %s: %w", path, err)
	}

	return &Model{session: sess, contract: contract, output: output}, nil
}

// Run builds a fresh input tensor sized to input's length (resolving
// the contract's dynamic time-frame dimension, if any), executes the
// session, and returns a copy of the output tensor's data.
func (m *Model) Run(input []float32) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shape := resolvedInputShape(m.contract.Inputs[0].Shape, len(input))
	inTensor, err := ort.NewTensor(shapeOf(shape), input)
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: alloc input: %w", err)
	}
	defer inTensor.Destroy()

	if err := m.session.Run([]ort.Value{inTensor}, []ort.Value{m.output}); err != nil {
		return nil, fmt.Errorf("onnxmodel: inference: %w", err)
	}
	src := m.output.GetData()
	out := make([]float32, len(src))
	copy(out, src)
	return out, nil
}

func (m *Model) Destroy() error {
	_ = m.output.Destroy()
	return m.session.Destroy()
}
