package questiongen

import (
	"context"

	"github.com/abhisek/studyloop/internal/quiz"
)

const tracerName = "github.com/abhisek/studyloop/internal/questiongen"

// Generator produces study questions from document text.
type Generator interface {
	// Generate produces the initial question set for a document.
	Generate(ctx context.Context, input GenerateInput) (*Result, error)

	// GenerateMore produces additional questions for an existing session.
	// An empty result with a nil error means the service had nothing to add.
	GenerateMore(ctx context.Context, input MoreInput) ([]quiz.Question, error)
}

// Options tunes a generation request.
type Options struct {
	NumQuestions  int      `json:"num_questions"`
	QuestionTypes []string `json:"question_types"`
	Difficulty    string   `json:"difficulty"`
}

// DefaultOptions matches what the hosted service expects when nothing is configured.
func DefaultOptions() Options {
	return Options{
		NumQuestions:  10,
		QuestionTypes: []string{string(quiz.MultipleChoice), string(quiz.ShortAnswer)},
		Difficulty:    "mixed",
	}
}

// GenerateInput is the document and session a question set is generated for.
type GenerateInput struct {
	Text      string
	SessionID string
	Options   Options
}

// MoreInput describes a request for additional questions.
type MoreInput struct {
	SessionID string
	Concepts  []string
	// Existing gives the generator a sample of what was already asked.
	Existing []quiz.Question
	// Seed prefixes ids the generator has to assign itself. It must differ
	// between calls for the same session.
	Seed string
}

func (in MoreInput) idPrefix() string {
	if in.Seed != "" {
		return in.Seed
	}
	return in.SessionID
}

// Result is a generated question set.
type Result struct {
	Questions []quiz.Question
	Concepts  []string
	// Mock is set when the questions were synthesized locally.
	Mock bool
}
