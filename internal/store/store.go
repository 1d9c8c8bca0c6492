// Package store implements the speaker store: an in-memory map
// write-through to a persistent GORM/SQLite table, with incremental
// mean updating and reader/writer lock discipline. Grounded on
// xiaozhi-server-go/internal/domain/auth/store's memoryStore/sqliteStore
// pair (RWMutex read path, transactional write path) and
// internal/platform/storage/configstore.go's GORM Open/AutoMigrate/WAL
// lifecycle.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cortexswarm/voiceprint-go/internal/embed"
	"github.com/cortexswarm/voiceprint-go/internal/matcher"
)

var (
	ErrSpeakerExists   = errors.New("store: speaker already exists")
	ErrSpeakerNotFound = errors.New("store: speaker not found")
	ErrInvalidID       = errors.New("store: speaker id must be non-empty")
)

// DefaultThreshold is the cosine score at/above which identify accepts.
const DefaultThreshold = 0.30

// Profile is a speaker record: normalized mean embedding + enroll count.
type Profile struct {
	ID          string
	Embedding   []float32
	EnrollCount int
}

// speakerRow is the GORM model for the persistent table, columns exactly
// per spec: speaker_id PK, embedding BLOB, embedding_dim, enroll_count,
// created_at, updated_at.
type speakerRow struct {
	SpeakerID    string `gorm:"primaryKey;column:speaker_id"`
	Embedding    []byte `gorm:"column:embedding"`
	EmbeddingDim int    `gorm:"column:embedding_dim"`
	EnrollCount  int    `gorm:"column:enroll_count"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (speakerRow) TableName() string { return "speaker_profiles" }

// Store is the speaker store. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	profiles  map[string]*Profile
	db        *gorm.DB
	threshold float64
	pipeline  *embed.Pipeline
	log       *slog.Logger
}

// Open opens (creating if absent) a SQLite-backed speaker store at
// dbPath, sets WAL mode and a 5s busy timeout (spec.md §5), migrates the
// schema, and loads all rows into the in-memory map. Rows whose declared
// dim disagrees with len(BLOB)/4 are skipped with a warning rather than
// aborting startup.
func Open(dbPath string, pipeline *embed.Pipeline, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: underlying db: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("store: set WAL: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("store: set busy_timeout: %w", err)
	}
	if err := db.AutoMigrate(&speakerRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	s := &Store{
		profiles:  make(map[string]*Profile),
		db:        db,
		threshold: DefaultThreshold,
		pipeline:  pipeline,
		log:       log,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var rows []speakerRow
	if err := s.db.Find(&rows).Error; err != nil {
		return fmt.Errorf("store: load rows: %w", err)
	}
	for _, r := range rows {
		if r.EmbeddingDim <= 0 || len(r.Embedding)/4 != r.EmbeddingDim {
			s.log.Warn("store: skipping row with inconsistent embedding dim",
				"speaker_id", r.SpeakerID, "declared_dim", r.EmbeddingDim, "blob_len", len(r.Embedding))
			continue
		}
		s.profiles[r.SpeakerID] = &Profile{
			ID:          r.SpeakerID,
			Embedding:   bytesToFloat32(r.Embedding),
			EnrollCount: r.EnrollCount,
		}
	}
	return nil
}

// SetThreshold sets the identify acceptance threshold, clamped to [0,1].
func (s *Store) SetThreshold(t float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	s.mu.Lock()
	s.threshold = t
	s.mu.Unlock()
}

func (s *Store) Threshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// Count returns the number of enrolled speakers.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Enroll embeds audio and merges it into id's profile (incremental mean,
// per spec.md §4.7 step 3), creating the profile if absent. The
// embedding step runs outside any lock; only the map/table update is
// serialized by the write lock.
func (s *Store) Enroll(id string, audio []float32, sampleRate int) error {
	if id == "" {
		return ErrInvalidID
	}
	e, err := s.pipeline.Embed(audio, sampleRate)
	if err != nil {
		return err
	}
	return s.enrollEmbedding(id, e)
}

// EnrollEmbedding merges an already-computed embedding into id's profile,
// bypassing the audio pipeline. Exposed for callers (and tests) that
// already have an embedding, and for diarizer-style centroid bootstrap.
func (s *Store) EnrollEmbedding(id string, e []float32) error {
	if id == "" {
		return ErrInvalidID
	}
	return s.enrollEmbedding(id, e)
}

// IdentifyEmbedding runs the 1:N scan against an already-computed query
// embedding, bypassing the audio pipeline.
func (s *Store) IdentifyEmbedding(e []float32) (string, float64, bool, error) {
	return s.identifyEmbedding(e)
}

// VerifyEmbedding compares an already-computed query embedding against
// id's stored profile, bypassing the audio pipeline.
func (s *Store) VerifyEmbedding(id string, e []float32) (float64, error) {
	s.mu.RLock()
	p, ok := s.profiles[id]
	s.mu.RUnlock()
	if !ok {
		return 0, ErrSpeakerNotFound
	}
	return matcher.Similarity(e, p.Embedding), nil
}

func (s *Store) enrollEmbedding(id string, e []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[id]
	if !ok {
		p := &Profile{ID: id, Embedding: e, EnrollCount: 1}
		if err := s.persist(p); err != nil {
			return err
		}
		s.profiles[id] = p
		return nil
	}

	merged := incrementalMean(existing.Embedding, existing.EnrollCount, e)
	p := &Profile{ID: id, Embedding: merged, EnrollCount: existing.EnrollCount + 1}
	if err := s.persist(p); err != nil {
		return err
	}
	s.profiles[id] = p
	return nil
}

// incrementalMean computes L2-normalize((mean*n + e) / (n+1)).
func incrementalMean(mean []float32, n int, e []float32) []float32 {
	out := make([]float32, len(mean))
	for i := range mean {
		out[i] = (mean[i]*float32(n) + e[i]) / float32(n+1)
	}
	var sumSq float64
	for _, v := range out {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm < 1e-10 {
		return out
	}
	for i, v := range out {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func (s *Store) persist(p *Profile) error {
	row := speakerRow{
		SpeakerID:    p.ID,
		Embedding:    float32ToBytes(p.Embedding),
		EmbeddingDim: len(p.Embedding),
		EnrollCount:  p.EnrollCount,
		UpdatedAt:    time.Now(),
	}
	var existing speakerRow
	err := s.db.Where("speaker_id = ?", p.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row.CreatedAt = time.Now()
		if err := s.db.Create(&row).Error; err != nil {
			return fmt.Errorf("store: create row: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: lookup row: %w", err)
	}
	row.CreatedAt = existing.CreatedAt
	if err := s.db.Model(&speakerRow{}).Where("speaker_id = ?", p.ID).Updates(&row).Error; err != nil {
		return fmt.Errorf("store: update row: %w", err)
	}
	return nil
}

// Identify computes the best match over all profiles under a read lock.
// Returns (id, score, true) if score >= threshold, else (bestID,
// bestScore, false) — caller maps the false case to NoMatch.
func (s *Store) Identify(queryAudio []float32, sampleRate int) (string, float64, bool, error) {
	e, err := s.pipeline.Embed(queryAudio, sampleRate)
	if err != nil {
		return "", 0, false, err
	}
	return s.identifyEmbedding(e)
}

func (s *Store) identifyEmbedding(e []float32) (string, float64, bool, error) {
	s.mu.RLock()
	cands := make([]matcher.Candidate, 0, len(s.profiles))
	for id, p := range s.profiles {
		cands = append(cands, matcher.Candidate{ID: id, Embedding: p.Embedding})
	}
	threshold := s.threshold
	s.mu.RUnlock()

	_, id, score := matcher.BestMatch(e, cands)
	if id == "" {
		return "", 0, false, nil
	}
	return id, score, score >= threshold, nil
}

// Verify looks up id, copies its embedding out, releases the lock, then
// embeds the query and returns similarity. Always reports a score, even
// below threshold; SpeakerNotFound if id is absent.
func (s *Store) Verify(id string, queryAudio []float32, sampleRate int) (float64, error) {
	s.mu.RLock()
	p, ok := s.profiles[id]
	var ref []float32
	if ok {
		ref = make([]float32, len(p.Embedding))
		copy(ref, p.Embedding)
	}
	s.mu.RUnlock()
	if !ok {
		return 0, ErrSpeakerNotFound
	}

	e, err := s.pipeline.Embed(queryAudio, sampleRate)
	if err != nil {
		return 0, err
	}
	return matcher.Similarity(e, ref), nil
}

// Remove deletes id from the map then the persistent table.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return ErrSpeakerNotFound
	}
	if err := s.db.Where("speaker_id = ?", id).Delete(&speakerRow{}).Error; err != nil {
		return fmt.Errorf("store: delete row: %w", err)
	}
	delete(s.profiles, id)
	return nil
}

// Profiles returns a snapshot of all profiles (used by Session.Profiles).
func (s *Store) Profiles() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := make([]float32, len(p.Embedding))
		copy(cp, p.Embedding)
		out = append(out, Profile{ID: p.ID, Embedding: cp, EnrollCount: p.EnrollCount})
	}
	return out
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func float32ToBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToFloat32(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
