package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyloop/internal/quiz"
)

const systemPrompt = `You are a study assistant that writes practice questions from a student's notes.

Rules:
- Every question must be answerable from the document alone.
- Identify the key concepts first, then tag every question with exactly one of them.
- For "multiple_choice", give exactly 4 options with exactly one correct. correct_answer must be the exact text of that option. Distractors should be plausible misreadings of the document.
- For "short_answer", leave options empty and give a concise model answer in correct_answer.
- The explanation should say why the answer is right and point to the relevant part of the document.
- Do not repeat a question from the "already asked" list.`

// maxDocumentChars bounds how much of the document goes into the prompt.
const maxDocumentChars = 24000

func buildGenerateMessage(input GenerateInput) string {
	opts := input.Options
	var b strings.Builder

	fmt.Fprintf(&b, "Number of questions: %d\n", opts.NumQuestions)
	fmt.Fprintf(&b, "Question types: %s\n", strings.Join(opts.QuestionTypes, ", "))
	fmt.Fprintf(&b, "Difficulty: %s\n", opts.Difficulty)

	text := input.Text
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}
	b.WriteString("\nDocument:\n")
	b.WriteString(text)
	return b.String()
}

func buildMoreMessage(input MoreInput, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Number of questions: %d\n", count)
	fmt.Fprintf(&b, "Concepts: %s\n", strings.Join(input.Concepts, ", "))

	b.WriteString("\nAlready asked:\n")
	b.WriteString(formatExisting(input.Existing))
	return b.String()
}

func formatExisting(qs []quiz.Question) string {
	if len(qs) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, q := range qs {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, q.Concept, q.Question)
	}
	return strings.TrimRight(b.String(), "\n")
}
