package questiongen

import (
	"fmt"
	"slices"

	"github.com/abhisek/studyloop/internal/quiz"
)

// checkQuestion rejects questions the answer store could not grade.
func checkQuestion(q quiz.Question) error {
	if q.Question == "" {
		return fmt.Errorf("question text is empty")
	}
	switch q.Type {
	case quiz.MultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("multiple choice question %q needs at least 2 options", q.Question)
		}
		if !slices.Contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("correct answer of %q is not one of its options", q.Question)
		}
	case quiz.ShortAnswer:
		if len(q.Options) > 0 {
			return fmt.Errorf("short answer question %q has options", q.Question)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}
