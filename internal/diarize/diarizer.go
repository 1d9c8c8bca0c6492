// Package diarize implements VAD -> per-segment embedding ->
// agglomerative average-linkage clustering, matching each resulting
// cluster centroid against a speaker store when one is supplied.
package diarize

import (
	"strconv"

	"github.com/cortexswarm/voiceprint-go/internal/embed"
	"github.com/cortexswarm/voiceprint-go/internal/vad"
)

// MinSegmentSeconds is the minimum VAD segment duration to embed
// individually (spec.md §4.8 step 2).
const MinSegmentSeconds = 0.5

// Segment is one diarized output span.
type Segment struct {
	StartSec         float64
	EndSec           float64
	SpeakerLabel     string
	MatchedSpeakerID string
	Confidence       float64
}

// SpeakerLookup is the non-owning store reference the diarizer borrows
// for the duration of a single Diarize call, per spec.md §9's
// "borrowed reference, not shared ownership" note.
type SpeakerLookup interface {
	IdentifyEmbedding(e []float32) (string, float64, bool, error)
}

// Diarizer holds the shared VAD detector and embedding pipeline.
type Diarizer struct {
	detect   *vad.Detector
	pipeline *embed.Pipeline
}

func New(detector *vad.Detector, pipeline *embed.Pipeline) *Diarizer {
	return &Diarizer{detect: detector, pipeline: pipeline}
}

// Diarize runs the full pipeline over 16kHz mono samples, emitting at
// most maxOut segments in input order. maxClusters = 0 means unlimited;
// lookup may be nil to skip centroid-to-speaker matching.
func (d *Diarizer) Diarize(samples []float32, maxOut, maxClusters int, threshold float64, lookup SpeakerLookup) ([]Segment, error) {
	segs := d.detect.Detect(samples)

	type candidate struct {
		seg       vad.Segment
		embedding []float32
	}
	var cands []candidate
	for _, s := range segs {
		durationSec := float64(s.EndSample-s.StartSample) / float64(vad.SampleRate)
		if durationSec < MinSegmentSeconds {
			continue
		}
		slice := samples[s.StartSample:s.EndSample]
		e, err := d.pipeline.EmbedConditioned(slice)
		if err != nil {
			continue
		}
		cands = append(cands, candidate{seg: s, embedding: e})
	}
	if len(cands) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(cands))
	for i, c := range cands {
		embeddings[i] = c.embedding
	}
	labels := agglomerate(embeddings, threshold, maxClusters)

	centroids := clusterCentroids(embeddings, labels)
	matchedByLabel := make(map[int]string)
	if lookup != nil {
		for label, centroid := range centroids {
			id, _, ok, err := lookup.IdentifyEmbedding(centroid)
			if err == nil && ok {
				matchedByLabel[label] = id
			}
		}
	}

	out := make([]Segment, 0, len(cands))
	for i, c := range cands {
		if len(out) >= maxOut {
			break
		}
		label := labels[i]
		out = append(out, Segment{
			StartSec:         float64(c.seg.StartSample) / float64(vad.SampleRate),
			EndSec:           float64(c.seg.EndSample) / float64(vad.SampleRate),
			SpeakerLabel:     speakerLabel(label),
			MatchedSpeakerID: matchedByLabel[label],
			Confidence:       c.seg.Confidence,
		})
	}
	return out, nil
}

func clusterCentroids(embeddings [][]float32, labels []int) map[int][]float32 {
	sums := make(map[int][]float32)
	counts := make(map[int]int)
	for i, label := range labels {
		if _, ok := sums[label]; !ok {
			sums[label] = make([]float32, len(embeddings[i]))
		}
		for j, v := range embeddings[i] {
			sums[label][j] += v
		}
		counts[label]++
	}
	out := make(map[int][]float32, len(sums))
	for label, sum := range sums {
		mean := make([]float32, len(sum))
		for j, v := range sum {
			mean[j] = v / float32(counts[label])
		}
		out[label] = l2NormalizeInPlace(mean)
	}
	return out
}

func speakerLabel(k int) string {
	return "SPEAKER_" + strconv.Itoa(k)
}
