package questiongen

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/abhisek/studyloop/internal/quiz"
)

// minTerms is how many distinct content terms a document needs before the
// terminology question is added.
const minTerms = 3

var stopwords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "also": true,
	"been": true, "before": true, "being": true, "below": true, "between": true,
	"both": true, "could": true, "does": true, "doing": true, "down": true,
	"during": true, "each": true, "from": true, "further": true, "have": true,
	"having": true, "here": true, "into": true, "just": true, "more": true,
	"most": true, "much": true, "must": true, "only": true, "other": true,
	"over": true, "same": true, "should": true, "some": true, "such": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "under": true, "until": true, "upon": true, "very": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "within": true, "would": true,
	"your": true, "because": true, "many": true, "like": true, "used": true,
}

// Mock builds a deterministic question set from text. It never fails and
// is used whenever the question service cannot be reached.
func Mock(text, sessionID string) *Result {
	qs := []quiz.Question{
		{
			Type:     quiz.MultipleChoice,
			Question: "What is the main topic discussed in the text?",
			Options: []string{
				"General overview of the subject",
				"Detailed technical analysis",
				"Historical context",
				"Future implications",
			},
			CorrectAnswer: "General overview of the subject",
			Explanation:   "The text provides a general introduction to the topic.",
			Difficulty:    quiz.Easy,
			Concept:       "Main Topic",
		},
		{
			Type:          quiz.ShortAnswer,
			Question:      "Summarize the key point of the text in one sentence.",
			CorrectAnswer: "The text discusses important concepts that form the foundation of the subject.",
			Explanation:   "This summary captures the essential information presented.",
			Difficulty:    quiz.Medium,
			Concept:       "Summary",
		},
		{
			Type:     quiz.MultipleChoice,
			Question: "Which of the following is NOT mentioned in the text?",
			Options: []string{
				"Basic principles",
				"Practical applications",
				"Mathematical formulas",
				"Key terminology",
			},
			CorrectAnswer: "Mathematical formulas",
			Explanation:   "The text focuses on concepts rather than mathematical details.",
			Difficulty:    quiz.Medium,
			Concept:       "Content Coverage",
		},
	}

	if terms := ContentTerms(text); len(terms) >= minTerms {
		qs = append(qs, quiz.Question{
			Type:     quiz.MultipleChoice,
			Question: fmt.Sprintf("What does the term %q refer to in this context?", terms[0]),
			Options: []string{
				"A fundamental concept",
				"A technical specification",
				"An example application",
				"A common misconception",
			},
			CorrectAnswer: "A fundamental concept",
			Explanation:   fmt.Sprintf("%q is presented as a key concept in the text.", terms[0]),
			Difficulty:    quiz.Hard,
			Concept:       "Terminology",
		})
	}

	concepts := make([]string, 0, len(qs))
	for i := range qs {
		qs[i].ID = fmt.Sprintf("%s_mock_%d", sessionID, i+1)
		concepts = append(concepts, qs[i].Concept)
	}
	return &Result{Questions: qs, Concepts: concepts, Mock: true}
}

// ContentTerms returns the distinct content words of text, most frequent
// first. Ties keep the order of first occurrence.
func ContentTerms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if len([]rune(w)) <= 3 || stopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

// MockGenerator serves Mock results. It backs the offline "mock" setting.
type MockGenerator struct{}

func (MockGenerator) Generate(_ context.Context, input GenerateInput) (*Result, error) {
	return Mock(input.Text, input.SessionID), nil
}

func (MockGenerator) GenerateMore(_ context.Context, input MoreInput) ([]quiz.Question, error) {
	return Mock("", input.idPrefix()).Questions, nil
}
