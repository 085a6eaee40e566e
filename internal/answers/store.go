package answers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/studyloop/internal/quiz"
)

var (
	// ErrAlreadyGraded is returned when a question that is already answered
	// would be graded or re-selected again.
	ErrAlreadyGraded = errors.New("answer already checked")

	// ErrNoSelection is returned by Grade when no option was chosen.
	ErrNoSelection = errors.New("please select an answer first")

	// ErrEmptyAnswer is returned when a free-text answer is blank.
	ErrEmptyAnswer = errors.New("please write an answer first")

	// ErrInvalidOption is returned for an out-of-range option index.
	ErrInvalidOption = errors.New("invalid option")

	// ErrWrongType is returned when an operation does not apply to the
	// question's type, e.g. selecting an option on a short-answer question.
	ErrWrongType = errors.New("operation does not apply to this question type")
)

// Store keeps one Record per question. It is not safe for concurrent use;
// the session engine serializes access.
type Store struct {
	records  map[string]*Record
	order    []string
	now      func() time.Time
	onChange func()
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOnChange registers a hook invoked after every successful mutation.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]*Record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the record for questionID.
func (s *Store) Get(questionID string) (Record, bool) {
	r, ok := s.records[questionID]
	if !ok {
		return Record{}, false
	}
	return r.clone(), true
}

// UpsertSelection records the chosen option without grading it.
func (s *Store) UpsertSelection(q quiz.Question, optionIndex int) (Record, error) {
	if !q.IsMultipleChoice() {
		return Record{}, ErrWrongType
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidOption, optionIndex)
	}

	r := s.ensure(q.ID)
	if r.Answered {
		return r.clone(), ErrAlreadyGraded
	}
	idx := optionIndex
	r.SelectedIndex = &idx
	r.Timestamp = s.now()

	s.changed()
	return r.clone(), nil
}

// Grade freezes correctness for a multiple-choice question. It succeeds at
// most once per question.
func (s *Store) Grade(q quiz.Question) (Record, error) {
	if !q.IsMultipleChoice() {
		return Record{}, ErrWrongType
	}
	r, ok := s.records[q.ID]
	if !ok || r.SelectedIndex == nil {
		return Record{}, ErrNoSelection
	}
	if r.Answered {
		return r.clone(), ErrAlreadyGraded
	}

	idx := *r.SelectedIndex
	r.Correct = idx >= 0 && idx < len(q.Options) && q.Options[idx] == q.CorrectAnswer
	r.Answered = true
	checked := s.now()
	r.CheckedAt = &checked

	s.changed()
	return r.clone(), nil
}

// SubmitFreeText stores a short-answer response and marks it answered.
// Short answers are self-graded, so Correct is always false.
func (s *Store) SubmitFreeText(q quiz.Question, text string) (Record, error) {
	if q.IsMultipleChoice() {
		return Record{}, ErrWrongType
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Record{}, ErrEmptyAnswer
	}

	r := s.ensure(q.ID)
	now := s.now()
	r.FreeTextAnswer = text
	r.Answered = true
	r.Correct = false
	r.Timestamp = now
	r.CheckedAt = &now

	s.changed()
	return r.clone(), nil
}

// MarkViewed records that the correct answer was revealed. It does not
// touch Answered.
func (s *Store) MarkViewed(questionID string) Record {
	r := s.ensure(questionID)
	r.ViewedAnswer = true

	s.changed()
	return r.clone()
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Entries returns all records in creation order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{QuestionID: id, Record: s.records[id].clone()})
	}
	return out
}

// Load replaces the store contents. Entries rejected by keep are dropped;
// a nil keep accepts all. It does not fire the change hook.
func (s *Store) Load(entries []Entry, keep func(questionID string) bool) {
	s.records = make(map[string]*Record, len(entries))
	s.order = s.order[:0]
	for _, e := range entries {
		if keep != nil && !keep(e.QuestionID) {
			continue
		}
		if _, dup := s.records[e.QuestionID]; dup {
			continue
		}
		r := e.Record.clone()
		r.QuestionID = e.QuestionID
		s.records[e.QuestionID] = &r
		s.order = append(s.order, e.QuestionID)
	}
}

// Reset drops every record.
func (s *Store) Reset() {
	s.records = make(map[string]*Record)
	s.order = nil
}

func (s *Store) ensure(questionID string) *Record {
	if r, ok := s.records[questionID]; ok {
		return r
	}
	r := &Record{QuestionID: questionID, Timestamp: s.now()}
	s.records[questionID] = r
	s.order = append(s.order, questionID)
	return r
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
