package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/quiz"
)

// sampleSize is how many existing questions accompany a generate-more request.
const sampleSize = 3

// maxMockSeeds bounds the search for an unused id seed for fallback questions.
const maxMockSeeds = 100

// MoreResult describes a RequestMoreQuestions outcome.
type MoreResult struct {
	Added int
	// Mock is set when the generator failed and local questions were added.
	Mock bool
}

// beginGeneration claims the single-flight flag.
func (e *Engine) beginGeneration() error {
	if e.generating {
		return ErrGenerationInProgress
	}
	if e.saved != nil {
		return ErrReviewActive
	}
	e.generating = true
	return nil
}

func (e *Engine) endGeneration() {
	e.mu.Lock()
	e.generating = false
	e.mu.Unlock()
}

// RequestGeneration generates a question set from text and starts a new
// session with it. Connectivity failures fall back to mock questions;
// definitive service errors are returned and leave the prior session in
// place.
func (e *Engine) RequestGeneration(ctx context.Context, text string) (quiz.Session, error) {
	e.mu.Lock()
	if err := e.beginGeneration(); err != nil {
		e.mu.Unlock()
		return quiz.Session{}, err
	}
	opts := e.genOpts
	e.mu.Unlock()
	defer e.endGeneration()

	now := e.now()
	meta := quiz.Session{
		ID:          quiz.NewSessionID(now),
		GeneratedAt: now,
		FileHash:    quiz.ContentHash(text),
	}

	res, err := e.generator.Generate(ctx, questiongen.GenerateInput{
		Text:      text,
		SessionID: meta.ID,
		Options:   opts,
	})
	if err != nil {
		if !e.shouldFallback(err) {
			e.log.Error("question generation failed", zap.String("session", meta.ID), zap.Error(err))
			return quiz.Session{}, err
		}
		e.log.Warn("question service unavailable, using mock questions",
			zap.String("session", meta.ID), zap.Error(err))
		res = questiongen.Mock(text, meta.ID)
	}
	meta.IsMock = res.Mock

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(res.Questions, res.Concepts, meta); err != nil {
		// Duplicate ids from the generator; mock ids are unique by construction.
		e.log.Warn("generated questions rejected, using mock questions", zap.Error(err))
		res = questiongen.Mock(text, meta.ID)
		meta.IsMock = true
		if err := e.startLocked(res.Questions, res.Concepts, meta); err != nil {
			return quiz.Session{}, err
		}
	}
	return meta, nil
}

func (e *Engine) shouldFallback(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return e.alwaysFallback || questiongen.IsConnectivity(err)
}

// RequestMoreQuestions appends generated questions to the current session.
// An empty reply adds nothing. Any generator failure appends mock questions
// instead, so the only errors are state errors.
func (e *Engine) RequestMoreQuestions(ctx context.Context) (MoreResult, error) {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return MoreResult{}, ErrNoActiveSession
	}
	if err := e.beginGeneration(); err != nil {
		e.mu.Unlock()
		return MoreResult{}, err
	}
	all := e.set.All()
	if len(all) > sampleSize {
		all = all[:sampleSize]
	}
	sessionID := e.session.ID
	e.moreSeq++
	input := questiongen.MoreInput{
		SessionID: sessionID,
		Concepts:  append([]string(nil), e.concepts...),
		Existing:  all,
		Seed:      fmt.Sprintf("%s_more%d", sessionID, e.moreSeq),
	}
	e.mu.Unlock()
	defer e.endGeneration()

	qs, err := e.generator.GenerateMore(ctx, input)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err == nil {
		if len(qs) == 0 {
			e.log.Info("no additional questions generated", zap.String("session", sessionID))
			return MoreResult{}, nil
		}
		if err = e.set.Append(qs); err == nil {
			e.finishMoreLocked()
			return MoreResult{Added: len(qs)}, nil
		}
	}
	e.log.Warn("more questions failed, adding mock questions", zap.String("session", sessionID), zap.Error(err))

	for range maxMockSeeds {
		seed := fmt.Sprintf("%s_more%d", sessionID, e.moreSeq)
		mock := questiongen.Mock("", seed).Questions
		if e.set.Append(mock) == nil {
			e.finishMoreLocked()
			return MoreResult{Added: len(mock), Mock: true}, nil
		}
		e.moreSeq++
	}
	return MoreResult{}, fmt.Errorf("no free id seed for mock questions in session %s", sessionID)
}

func (e *Engine) finishMoreLocked() {
	e.concepts = mergeConcepts(e.concepts, e.set.Concepts())
	e.persistLocked()
}
