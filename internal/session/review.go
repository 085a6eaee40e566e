package session

import (
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/quiz"
)

// EnterReviewMode narrows the session to the questions answered
// incorrectly. The full session is kept aside for ExitReviewMode.
func (e *Engine) EnterReviewMode() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phaseLocked() {
	case PhaseEmpty:
		return ErrNoActiveSession
	case PhaseGenerating:
		return ErrGenerationInProgress
	case PhaseReviewing:
		return ErrReviewActive
	}

	var ids []string
	for _, q := range e.set.All() {
		if r, ok := e.answers.Get(q.ID); ok && r.Incorrect() {
			ids = append(ids, q.ID)
		}
	}
	if len(ids) == 0 {
		return ErrNoIncorrectAnswers
	}

	e.saved = &outer{
		set:      e.set,
		session:  *e.session,
		concepts: e.concepts,
		concept:  e.concept,
		status:   e.status,
	}

	review := quiz.Session{
		ID:                    e.session.ID + "_review",
		GeneratedAt:           e.now(),
		FileHash:              e.session.FileHash,
		IsMock:                e.session.IsMock,
		IsReview:              true,
		OriginalQuestionCount: e.set.Len(),
		IncorrectCount:        len(ids),
	}
	e.set = e.set.Subset(ids)
	e.session = &review
	e.concepts = e.set.Concepts()
	e.concept, e.status = "", StatusAll

	e.log.Info("review started", zap.String("session", e.saved.session.ID), zap.Int("incorrect", len(ids)))
	return nil
}

// ExitReviewMode restores the full session exactly as it was.
func (e *Engine) ExitReviewMode() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saved == nil {
		return ErrNotReviewing
	}

	s := e.saved
	e.set = s.set
	e.session = &s.session
	e.concepts = s.concepts
	e.concept, e.status = s.concept, s.status
	e.saved = nil
	return nil
}
