package answers

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the mutable per-question interaction state. It is created on the
// first interaction with a question and mutated in place afterwards.
type Record struct {
	QuestionID     string     `json:"questionId"`
	SelectedIndex  *int       `json:"selectedIndex,omitempty"`
	FreeTextAnswer string     `json:"freeTextAnswer,omitempty"`
	Answered       bool       `json:"answered"`
	Correct        bool       `json:"correct"`
	ViewedAnswer   bool       `json:"viewedAnswer"`
	Timestamp      time.Time  `json:"timestamp"`
	CheckedAt      *time.Time `json:"checkedAt,omitempty"`
}

// HasSelection reports whether an option has been chosen.
func (r Record) HasSelection() bool {
	return r.SelectedIndex != nil
}

// Incorrect reports whether the record was answered and not marked correct.
// Short answers always count here since they are never auto-graded.
func (r Record) Incorrect() bool {
	return r.Answered && !r.Correct
}

func (r Record) clone() Record {
	if r.SelectedIndex != nil {
		v := *r.SelectedIndex
		r.SelectedIndex = &v
	}
	if r.CheckedAt != nil {
		v := *r.CheckedAt
		r.CheckedAt = &v
	}
	return r
}

// Entry is a (question ID, record) pair. It encodes as a two-element JSON
// array so snapshots keep the [id, record] layout.
type Entry struct {
	QuestionID string
	Record     Record
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.QuestionID, e.Record})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("answer entry: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.QuestionID); err != nil {
		return fmt.Errorf("answer entry id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Record); err != nil {
		return fmt.Errorf("answer entry record: %w", err)
	}
	if e.Record.QuestionID == "" {
		e.Record.QuestionID = e.QuestionID
	}
	return nil
}
