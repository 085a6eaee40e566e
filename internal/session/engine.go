// Package session owns the lifecycle of a study session: creating it from
// generated questions, answering and grading, review mode, metrics and
// persistence.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/answers"
	"github.com/abhisek/studyloop/internal/cache"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/quiz"
)

// Phase is the session-level state.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseGenerating
	PhaseActive
	PhaseReviewing
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseGenerating:
		return "generating"
	case PhaseActive:
		return "active"
	case PhaseReviewing:
		return "reviewing"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// outer is the full session kept aside while a review sub-session is shown.
type outer struct {
	set      *quiz.Set
	session  quiz.Session
	concepts []string
	concept  string
	status   StatusFilter
}

// Engine is the session state machine. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	set      *quiz.Set
	session  *quiz.Session
	concepts []string
	answers  *answers.Store
	saved    *outer

	concept string
	status  StatusFilter

	// generating is the single-flight flag. It stays set across the
	// network call while mu is released.
	generating bool
	moreSeq    int

	generator      questiongen.Generator
	genOpts        questiongen.Options
	alwaysFallback bool
	cache          *cache.Synchronizer
	now            func() time.Time
	log            *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache persists every change through syncer.
func WithCache(syncer *cache.Synchronizer) Option {
	return func(e *Engine) { e.cache = syncer }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithGenerateOptions sets the options sent with every generation request.
func WithGenerateOptions(opts questiongen.Options) Option {
	return func(e *Engine) { e.genOpts = opts }
}

// WithAlwaysFallback makes every failed initial generation fall back to
// mock questions, including definitive service errors.
func WithAlwaysFallback(v bool) Option {
	return func(e *Engine) { e.alwaysFallback = v }
}

// New creates an engine in the empty phase. A nil generator serves mock
// questions only.
func New(generator questiongen.Generator, opts ...Option) *Engine {
	if generator == nil {
		generator = questiongen.MockGenerator{}
	}
	e := &Engine{
		generator: generator,
		genOpts:   questiongen.DefaultOptions(),
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	// The hook runs inside store calls, which only happen with e.mu held.
	e.answers = answers.NewStore(
		answers.WithClock(e.now),
		answers.WithOnChange(e.persistLocked),
	)
	return e
}

// Phase reports the current state.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phaseLocked()
}

func (e *Engine) phaseLocked() Phase {
	switch {
	case e.generating:
		return PhaseGenerating
	case e.saved != nil:
		return PhaseReviewing
	case e.session != nil:
		return PhaseActive
	}
	return PhaseEmpty
}

// Generating reports whether a generation request is pending.
func (e *Engine) Generating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generating
}

// Session returns the current session, which is the review sub-session
// while reviewing.
func (e *Engine) Session() (quiz.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return quiz.Session{}, false
	}
	return *e.session, true
}

// Questions returns every question of the current set in order.
func (e *Engine) Questions() []quiz.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set.All()
}

// Concepts returns the concept tags of the current session.
func (e *Engine) Concepts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.concepts))
	copy(out, e.concepts)
	return out
}

// StartSession replaces the current session with questions and clears all
// answer records.
func (e *Engine) StartSession(questions []quiz.Question, concepts []string, meta quiz.Session) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generating {
		return ErrGenerationInProgress
	}
	return e.startLocked(questions, concepts, meta)
}

func (e *Engine) startLocked(questions []quiz.Question, concepts []string, meta quiz.Session) error {
	set, err := quiz.NewSet(questions)
	if err != nil {
		return err
	}
	e.set = set
	e.session = &meta
	e.concepts = mergeConcepts(concepts, set.Concepts())
	e.saved = nil
	e.concept, e.status = "", StatusAll
	e.moreSeq = 0
	e.answers.Reset()

	e.log.Info("session started",
		zap.String("session", meta.ID),
		zap.Int("questions", set.Len()),
		zap.Bool("mock", meta.IsMock),
	)
	e.persistLocked()
	return nil
}

// NewSession discards the in-memory session. The cached snapshot is left
// alone until it is overwritten or expires.
func (e *Engine) NewSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generating {
		return ErrGenerationInProgress
	}
	e.set, e.session, e.concepts, e.saved = nil, nil, nil, nil
	e.concept, e.status = "", StatusAll
	e.moreSeq = 0
	e.answers.Reset()
	return nil
}

// Restore loads the cached snapshot, if any is fresh. It reports whether a
// session was restored.
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generating {
		return false, ErrGenerationInProgress
	}
	if e.cache == nil {
		return false, nil
	}

	snap, ok := e.cache.Load(ctx)
	if !ok {
		return false, nil
	}
	set, err := quiz.NewSet(snap.Questions)
	if err != nil {
		e.log.Warn("discarding cached session", zap.Error(err))
		return false, nil
	}

	meta := snap.CurrentSession
	e.set = set
	e.session = &meta
	e.concepts = mergeConcepts(snap.Concepts, set.Concepts())
	e.saved = nil
	e.concept, e.status = "", StatusAll
	e.moreSeq = 0
	e.answers.Load(snap.AnswerRecords, func(id string) bool {
		_, ok := set.Find(id)
		return ok
	})

	e.log.Info("session restored",
		zap.String("session", meta.ID),
		zap.Int("questions", set.Len()),
		zap.Int("answers", e.answers.Len()),
	)
	return true, nil
}

// ClearCache removes the persisted snapshot.
func (e *Engine) ClearCache(ctx context.Context) {
	if e.cache == nil {
		return
	}
	e.cache.Clear(ctx)
}

// Snapshot returns the persistable state of the full session. While
// reviewing this is the outer session, not the review subset.
func (e *Engine) Snapshot() (cache.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() (cache.Snapshot, bool) {
	set, sess, concepts := e.set, e.session, e.concepts
	if e.saved != nil {
		set, sess, concepts = e.saved.set, &e.saved.session, e.saved.concepts
	}
	if sess == nil {
		return cache.Snapshot{}, false
	}
	c := make([]string, len(concepts))
	copy(c, concepts)
	return cache.Snapshot{
		CurrentSession: *sess,
		Questions:      set.All(),
		Concepts:       c,
		AnswerRecords:  e.answers.Entries(),
	}, true
}

// persistLocked writes the current snapshot. Failures are logged by the
// synchronizer and never reach the caller.
func (e *Engine) persistLocked() {
	if e.cache == nil {
		return
	}
	snap, ok := e.snapshotLocked()
	if !ok {
		return
	}
	e.cache.Save(context.Background(), snap)
}

func mergeConcepts(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, c := range list {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
