package session

import (
	"github.com/abhisek/studyloop/internal/answers"
	"github.com/abhisek/studyloop/internal/quiz"
)

// Answer returns the record for questionID.
func (e *Engine) Answer(questionID string) (answers.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answers.Get(questionID)
}

// SelectOption records a multiple-choice selection without grading it.
func (e *Engine) SelectOption(questionID string, optionIndex int) (answers.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.questionLocked(questionID)
	if err != nil {
		return answers.Record{}, err
	}
	return e.answers.UpsertSelection(q, optionIndex)
}

// CheckAnswer grades the current selection of a multiple-choice question.
func (e *Engine) CheckAnswer(questionID string) (answers.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.questionLocked(questionID)
	if err != nil {
		return answers.Record{}, err
	}
	return e.answers.Grade(q)
}

// SubmitShortAnswer stores a free-text answer. It is never auto-graded.
func (e *Engine) SubmitShortAnswer(questionID, text string) (answers.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.questionLocked(questionID)
	if err != nil {
		return answers.Record{}, err
	}
	return e.answers.SubmitFreeText(q, text)
}

// ViewAnswer marks the answer of questionID as revealed.
func (e *Engine) ViewAnswer(questionID string) (answers.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.questionLocked(questionID); err != nil {
		return answers.Record{}, err
	}
	return e.answers.MarkViewed(questionID), nil
}

func (e *Engine) questionLocked(id string) (quiz.Question, error) {
	if e.session == nil {
		return quiz.Question{}, ErrNoActiveSession
	}
	q, ok := e.set.Find(id)
	if !ok {
		return quiz.Question{}, ErrUnknownQuestion
	}
	return q, nil
}
