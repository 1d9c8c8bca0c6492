package store

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func unitVec(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "speakers.db")
	s, err := Open(path, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestEnrollTwiceSameAudioKeepsEmbeddingAndCount2(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	e := unitVec([]float32{1, 2, 3, 4})
	if err := s.EnrollEmbedding("alice", e); err != nil {
		t.Fatalf("enroll 1: %v", err)
	}
	if err := s.EnrollEmbedding("alice", e); err != nil {
		t.Fatalf("enroll 2: %v", err)
	}
	s.mu.RLock()
	p := s.profiles["alice"]
	s.mu.RUnlock()
	if p.EnrollCount != 2 {
		t.Fatalf("expected enroll count 2, got %d", p.EnrollCount)
	}
	for i := range e {
		if math.Abs(float64(p.Embedding[i]-e[i])) > 1e-5 {
			t.Errorf("bin %d: got %v want ~%v", i, p.Embedding[i], e[i])
		}
	}
}

func TestEnrollRemoveCountUnchanged(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	before := s.Count()
	e := unitVec([]float32{1, 0, 0})
	if err := s.EnrollEmbedding("bob", e); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if err := s.Remove("bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Count() != before {
		t.Fatalf("count changed: got %d want %d", s.Count(), before)
	}
	if _, err := s.VerifyEmbedding("bob", e); err != ErrSpeakerNotFound {
		t.Fatalf("expected ErrSpeakerNotFound, got %v", err)
	}
}

func TestRemoveMissingIsSpeakerNotFound(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()
	if err := s.Remove("nobody"); err != ErrSpeakerNotFound {
		t.Fatalf("expected ErrSpeakerNotFound, got %v", err)
	}
}

func TestColdRestartPreservesProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "speakers.db")

	s1, err := Open(path, nil, nil)
	if err != nil {
		t.Fatalf("open 1: %v", err)
	}
	e := unitVec([]float32{0.5, 0.5, 0.5, 0.5})
	if err := s1.EnrollEmbedding("carol", e); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path, nil, nil)
	if err != nil {
		t.Fatalf("open 2: %v", err)
	}
	defer s2.Close()
	if s2.Count() != 1 {
		t.Fatalf("expected 1 profile after restart, got %d", s2.Count())
	}
	score, err := s2.VerifyEmbedding("carol", e)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if score < 0.99 {
		t.Fatalf("expected score >= 0.99 after restart, got %v", score)
	}
}

func TestConcurrentReadersSingleWriterNoTornReads(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	e := unitVec([]float32{1, 1, 0, 0})
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				id, score, ok, err := s.IdentifyEmbedding(e)
				if err != nil {
					t.Errorf("identify: %v", err)
					return
				}
				if id == "dave" {
					if !ok || score < 0.99 {
						t.Errorf("torn read: id=dave but ok=%v score=%v", ok, score)
						return
					}
				} else if id != "" {
					t.Errorf("unexpected id %q", id)
					return
				}
			}
		}()
	}
	if err := s.EnrollEmbedding("dave", e); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	close(done)
	wg.Wait()
}

func TestOpenCreatesDBFile(t *testing.T) {
	s, path := openTestStore(t)
	defer s.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected db file to exist: %v", err)
	}
}
