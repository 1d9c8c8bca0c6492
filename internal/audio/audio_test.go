package audio

import (
	"bytes"
	"math"
	"testing"
)

func TestResampleIdentity(t *testing.T) {
	x := []float32{0.1, 0.2, -0.3, 0.4, 0.5}
	y := Resample(x, 16000, 16000)
	if len(y) != len(x) {
		t.Fatalf("length changed: got %d want %d", len(y), len(x))
	}
	for i := range x {
		if y[i] != x[i] {
			t.Errorf("sample %d: got %v want %v", i, y[i], x[i])
		}
	}
}

func TestResample8kTo16kDoublesLength(t *testing.T) {
	n := 8000
	x := make([]float32, n)
	for i := range x {
		x[i] = 0.5
	}
	y := Resample(x, 8000, 16000)
	if diff := math.Abs(float64(len(y) - 2*n)); diff > 10 {
		t.Fatalf("expected ~%d samples, got %d", 2*n, len(y))
	}
	for i, v := range y {
		if math.Abs(float64(v-0.5)) > 0.01 {
			t.Errorf("sample %d: got %v want ~0.5", i, v)
		}
	}
}

func TestWAVRoundTrip(t *testing.T) {
	n := 1000
	x := make([]float32, n)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * float64(i) / 50))
	}
	var buf bytes.Buffer
	if err := WriteWAV(&buf, x, 16000); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	out, err := DecodeWAV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if len(out) != n {
		t.Fatalf("length mismatch: got %d want %d", len(out), n)
	}
	const q = 1.0 / 32768
	for i := range x {
		if math.Abs(float64(out[i]-x[i])) > q+1e-6 {
			t.Errorf("sample %d: got %v want %v", i, out[i], x[i])
		}
	}
}

func TestConditionEmpty(t *testing.T) {
	if _, err := Condition(nil, 16000); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
