package session

import "errors"

var (
	// ErrNoActiveSession is returned by operations that need a session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrGenerationInProgress is returned while a generation request is pending.
	ErrGenerationInProgress = errors.New("question generation already in progress")

	// ErrNoIncorrectAnswers is returned by EnterReviewMode when nothing was answered wrong.
	ErrNoIncorrectAnswers = errors.New("no incorrect answers to review")

	// ErrNotReviewing is returned by ExitReviewMode outside review mode.
	ErrNotReviewing = errors.New("not in review mode")

	// ErrReviewActive is returned by operations that need the full session.
	ErrReviewActive = errors.New("exit review mode first")

	// ErrUnknownQuestion is returned for ids that are not in the current question set.
	ErrUnknownQuestion = errors.New("unknown question")
)
