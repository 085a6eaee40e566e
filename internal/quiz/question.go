package quiz

import "fmt"

// QuestionType distinguishes auto-graded from self-graded questions.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
)

// Difficulty is an optional hint attached by the generator.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// DefaultConcept is assigned to questions that arrive without a concept tag.
const DefaultConcept = "General"

// Question is a single generated question. Questions are treated as
// immutable once they enter a Set.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Difficulty    Difficulty   `json:"difficulty,omitempty"`
	Concept       string       `json:"concept"`
}

// IsMultipleChoice reports whether the question is auto-graded.
func (q Question) IsMultipleChoice() bool {
	return q.Type == MultipleChoice
}

// CorrectIndex returns the index of the option whose text equals
// CorrectAnswer, or -1 when no option matches.
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

// Normalize fills defaults on questions received from a generator:
// a missing concept becomes DefaultConcept, a missing ID is derived
// from the session ID and position, and a missing or unknown type is
// inferred from whether the question has options.
func Normalize(sessionID string, qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		if q.Concept == "" {
			q.Concept = DefaultConcept
		}
		if q.ID == "" {
			q.ID = fmt.Sprintf("%s_q%d", sessionID, i)
		}
		if q.Type != MultipleChoice && q.Type != ShortAnswer {
			if len(q.Options) > 0 {
				q.Type = MultipleChoice
			} else {
				q.Type = ShortAnswer
			}
		}
		out[i] = q
	}
	return out
}
