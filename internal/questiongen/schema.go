package questiongen

import "github.com/abhisek/studyloop/internal/llm"

var questionItem = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type": map[string]any{
			"type": "string",
			"enum": []any{"multiple_choice", "short_answer"},
		},
		"question": map[string]any{
			"type":        "string",
			"description": "The question text, self-contained and answerable from the document",
		},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Exactly 4 options for multiple_choice. Empty array for short_answer.",
		},
		"correct_answer": map[string]any{
			"type":        "string",
			"description": "For multiple_choice: the exact text of the correct option. For short_answer: a model answer.",
		},
		"explanation": map[string]any{
			"type":        "string",
			"description": "Why the answer is correct, citing the document",
		},
		"difficulty": map[string]any{
			"type": "string",
			"enum": []any{"easy", "medium", "hard"},
		},
		"concept": map[string]any{
			"type":        "string",
			"description": "The concept this question tests; must be one of the listed concepts",
		},
	},
	"required":             []any{"type", "question", "options", "correct_answer", "explanation", "difficulty", "concept"},
	"additionalProperties": false,
}

// QuizSchema is the structured output for an initial question set.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "Study questions generated from a document, grouped by concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concepts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The key concepts covered by the document, 3 to 8 short labels",
			},
			"questions": map[string]any{
				"type":  "array",
				"items": questionItem,
			},
		},
		"required":             []any{"concepts", "questions"},
		"additionalProperties": false,
	},
}

// MoreSchema is the structured output for follow-up questions.
var MoreSchema = &llm.Schema{
	Name:        "more-questions",
	Description: "Additional study questions that do not repeat existing ones",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": questionItem,
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
