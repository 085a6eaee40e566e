package session

import (
	"fmt"

	"github.com/abhisek/studyloop/internal/quiz"
)

// AllConcepts is the concept filter value that shows every concept.
const AllConcepts = "All"

// StatusFilter narrows visible questions by answer state.
type StatusFilter int

const (
	StatusAll StatusFilter = iota
	StatusUnanswered
	StatusCorrect
	StatusIncorrect
)

var statusNames = []string{"all", "unanswered", "correct", "incorrect"}

func (f StatusFilter) String() string {
	if int(f) < len(statusNames) {
		return statusNames[f]
	}
	return fmt.Sprintf("status(%d)", int(f))
}

// ParseStatusFilter parses the String form of a StatusFilter.
func ParseStatusFilter(s string) (StatusFilter, error) {
	for i, name := range statusNames {
		if name == s {
			return StatusFilter(i), nil
		}
	}
	return StatusAll, fmt.Errorf("unknown status filter %q", s)
}

// Next cycles through the filters in display order.
func (f StatusFilter) Next() StatusFilter {
	return StatusFilter((int(f) + 1) % len(statusNames))
}

// SetConceptFilter restricts Visible to one concept. An empty string or
// AllConcepts clears the filter.
func (e *Engine) SetConceptFilter(concept string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if concept == AllConcepts {
		concept = ""
	}
	e.concept = concept
}

// ConceptFilter returns the active concept filter, AllConcepts when unset.
func (e *Engine) ConceptFilter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.concept == "" {
		return AllConcepts
	}
	return e.concept
}

func (e *Engine) SetStatusFilter(f StatusFilter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = f
}

func (e *Engine) StatusFilter() StatusFilter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Visible returns the questions passing both filters, in set order. The
// question set itself is never modified.
func (e *Engine) Visible() []quiz.Question {
	e.mu.Lock()
	defer e.mu.Unlock()

	qs := e.set.All()
	if e.concept != "" {
		qs = e.set.FilterByConcept(e.concept)
	}
	if e.status == StatusAll {
		return qs
	}

	out := qs[:0]
	for _, q := range qs {
		r, ok := e.answers.Get(q.ID)
		answered := ok && r.Answered
		switch e.status {
		case StatusUnanswered:
			if !answered {
				out = append(out, q)
			}
		case StatusCorrect:
			if answered && r.Correct {
				out = append(out, q)
			}
		case StatusIncorrect:
			if r.Incorrect() {
				out = append(out, q)
			}
		}
	}
	return out
}
