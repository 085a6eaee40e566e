package quiz

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateQuestion is returned by Append when an incoming question
// reuses an ID already present in the set.
var ErrDuplicateQuestion = errors.New("duplicate question id")

// Set is an ordered collection of questions with a concept index kept in
// first-seen order. The zero value is an empty set.
type Set struct {
	questions []Question
	index     map[string]int
	concepts  []string
}

// NewSet builds a set from qs. Duplicate IDs are rejected.
func NewSet(qs []Question) (*Set, error) {
	s := &Set{}
	if err := s.Append(qs); err != nil {
		return nil, err
	}
	return s, nil
}

// All returns a copy of the questions in order.
func (s *Set) All() []Question {
	if s == nil {
		return nil
	}
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Len returns the number of questions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.questions)
}

// Find looks up a question by ID.
func (s *Set) Find(id string) (Question, bool) {
	if s == nil {
		return Question{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// Concepts returns the distinct concepts in insertion order.
func (s *Set) Concepts() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.concepts))
	copy(out, s.concepts)
	return out
}

// FilterByConcept returns the subsequence tagged with concept.
func (s *Set) FilterByConcept(concept string) []Question {
	var out []Question
	for _, q := range s.All() {
		if q.Concept == concept {
			out = append(out, q)
		}
	}
	return out
}

// FilterByIDs returns the questions whose IDs appear in ids, preserving
// the set's order rather than the order of ids. Unknown IDs are ignored.
func (s *Set) FilterByIDs(ids []string) []Question {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []Question
	for _, q := range s.All() {
		if _, ok := want[q.ID]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Append adds questions to the end of the set. If any incoming ID collides
// with an existing one (or with another incoming question) the set is left
// unmodified and ErrDuplicateQuestion is returned.
func (s *Set) Append(qs []Question) error {
	seen := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		if _, ok := s.index[q.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
	}

	if s.index == nil {
		s.index = make(map[string]int, len(qs))
	}
	for _, q := range qs {
		s.index[q.ID] = len(s.questions)
		s.questions = append(s.questions, q)
		if !slices.Contains(s.concepts, q.Concept) {
			s.concepts = append(s.concepts, q.Concept)
		}
	}
	return nil
}

// Subset returns a new set holding the questions with the given IDs, in
// this set's order.
func (s *Set) Subset(ids []string) *Set {
	sub := &Set{}
	// IDs come from this set, so Append cannot collide.
	_ = sub.Append(s.FilterByIDs(ids))
	return sub
}
