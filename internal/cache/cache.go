// Package cache persists the active study session to a key-value backend
// so it can be resumed later. Writes are best-effort: failures are logged
// and never returned to the caller.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/answers"
	"github.com/abhisek/studyloop/internal/quiz"
)

const (
	// SessionKey holds the serialized snapshot.
	SessionKey = "studyloop_session"
	// TimeKey holds the write time in Unix milliseconds.
	TimeKey = "studyloop_session_time"

	// DefaultTTL is how long a snapshot stays restorable.
	DefaultTTL = 24 * time.Hour
)

// Storage is an opaque key-value store with no transactional guarantees.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Snapshot is the persisted session tuple.
type Snapshot struct {
	CurrentSession quiz.Session    `json:"currentSession"`
	Questions      []quiz.Question `json:"questions"`
	Concepts       []string        `json:"concepts"`
	AnswerRecords  []answers.Entry `json:"answerRecords"`
	Timestamp      int64           `json:"timestamp"`
}

// Synchronizer saves and restores snapshots.
type Synchronizer struct {
	storage Storage
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

func WithTTL(ttl time.Duration) Option {
	return func(s *Synchronizer) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Synchronizer) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Synchronizer over storage.
func New(storage Storage, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		storage: storage,
		ttl:     DefaultTTL,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the full snapshot plus a write timestamp. It always writes
// the complete tuple, so repeated saves are idempotent.
func (s *Synchronizer) Save(ctx context.Context, snap Snapshot) {
	ts := s.now().UnixMilli()
	snap.Timestamp = ts

	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn("encode session snapshot", zap.String("session_id", snap.CurrentSession.ID), zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, SessionKey, string(data)); err != nil {
		s.log.Warn("save session snapshot", zap.String("key", SessionKey), zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, TimeKey, strconv.FormatInt(ts, 10)); err != nil {
		s.log.Warn("save session timestamp", zap.String("key", TimeKey), zap.Error(err))
	}
}

// Load returns the stored snapshot. It reports false when nothing is
// stored, when the stored data cannot be read, or when the snapshot is older
// than the TTL; stale snapshots are also removed.
func (s *Synchronizer) Load(ctx context.Context) (*Snapshot, bool) {
	rawTime, ok, err := s.storage.Get(ctx, TimeKey)
	if err != nil {
		s.log.Warn("read session timestamp", zap.String("key", TimeKey), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	ms, err := strconv.ParseInt(rawTime, 10, 64)
	if err != nil {
		s.log.Warn("parse session timestamp", zap.String("value", rawTime), zap.Error(err))
		return nil, false
	}

	age := s.now().Sub(time.UnixMilli(ms))
	if age > s.ttl {
		s.log.Info("discarding stale session snapshot", zap.Duration("age", age))
		s.Clear(ctx)
		return nil, false
	}

	raw, ok, err := s.storage.Get(ctx, SessionKey)
	if err != nil {
		s.log.Warn("read session snapshot", zap.String("key", SessionKey), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn("decode session snapshot", zap.Error(err))
		return nil, false
	}
	if snap.CurrentSession.ID == "" {
		s.log.Warn("session snapshot has no session id")
		return nil, false
	}
	return &snap, true
}

// Clear removes both keys.
func (s *Synchronizer) Clear(ctx context.Context) {
	for _, key := range []string{SessionKey, TimeKey} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.log.Warn("remove cache key", zap.String("key", key), zap.Error(err))
		}
	}
}
