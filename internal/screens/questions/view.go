package questions

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/answers"
	"github.com/abhisek/studyloop/internal/quiz"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/layout"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	sess, ok := s.engine.Session()
	if !ok {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n  No active session. Press Esc to upload a document.")
	}

	var b strings.Builder
	pad := lipgloss.NewStyle().PaddingLeft(2)
	inner := width - 6

	if sess.IsReview {
		b.WriteString(pad.Render(theme.ReviewBanner.Render(fmt.Sprintf(
			"REVIEW  %d incorrect of %d questions", sess.IncorrectCount, sess.OriginalQuestionCount))))
		b.WriteString("\n")
	} else if sess.IsMock {
		b.WriteString(pad.Render(theme.Warning.Render("Sample questions: the question service was unavailable.")))
		b.WriteString("\n")
	}

	visible := s.engine.Visible()
	pos := s.position(visible)
	b.WriteString(pad.Render(theme.Muted.Render(fmt.Sprintf(
		"Topic: %s   Status: %s   Question %d of %d",
		s.engine.ConceptFilter(), s.engine.StatusFilter(), pos+1, len(visible)))))
	b.WriteString("\n")

	p, acc := s.engine.Progress(), s.engine.Accuracy()
	b.WriteString(pad.Render(components.NewScoreBar(p.Answered, acc.Correct, p.Total, min(inner, 60)).View()))
	b.WriteString("\n\n")

	q, hasQ := s.current()
	if !hasQ {
		b.WriteString(pad.Render(theme.Hint.Render("No questions match the current filters. Press t or f to change them.")))
	} else {
		b.WriteString(s.renderQuestion(q, inner, height))
	}

	if s.loading {
		b.WriteString("\n\n")
		b.WriteString(pad.Render(s.spinner.View() + " Generating more questions..."))
	}
	if s.message != "" {
		style := theme.Tag
		if s.isError {
			style = theme.ErrorText
		}
		b.WriteString("\n\n")
		b.WriteString(pad.Render(style.Render(s.message)))
	}
	return b.String()
}

func (s *QuizScreen) renderQuestion(q quiz.Question, width, height int) string {
	rec, _ := s.engine.Answer(q.ID)

	var body strings.Builder
	meta := theme.Tag.Render(q.Concept)
	if q.Difficulty != "" {
		meta += theme.Muted.Render("  " + string(q.Difficulty))
	}
	meta += theme.Muted.Render("  " + typeLabel(q))
	body.WriteString(meta)
	body.WriteString("\n\n")
	body.WriteString(theme.Question.Width(width - 4).Render(q.Question))
	body.WriteString("\n\n")

	if q.IsMultipleChoice() {
		body.WriteString(s.choice.View())
		if rec.Answered {
			body.WriteString("\n")
			body.WriteString(gradeLine(rec))
		}
	} else {
		body.WriteString(s.renderShortAnswer(rec))
	}

	if rec.Answered || rec.ViewedAnswer {
		body.WriteString("\n\n")
		body.WriteString(renderAnswer(q, width-4, layout.IsCompactHeight(height)))
	}

	return theme.Card.Width(width).Render(body.String())
}

func (s *QuizScreen) renderShortAnswer(rec answers.Record) string {
	if s.typing {
		return s.input.View()
	}
	if rec.Answered {
		return theme.Body.Render("Your answer: ") + theme.Muted.Render(rec.FreeTextAnswer)
	}
	return theme.Hint.Render("Press Enter to write your answer.")
}

func gradeLine(rec answers.Record) string {
	if rec.Correct {
		return theme.Correct.Render("Correct!")
	}
	return theme.Incorrect.Render("Not quite.")
}

func renderAnswer(q quiz.Question, width int, compact bool) string {
	text := theme.Body.Bold(true).Render("Answer: ") + theme.Body.Render(q.CorrectAnswer)
	if q.Explanation != "" && !compact {
		text += "\n" + theme.Muted.Width(width).Render(q.Explanation)
	}
	return theme.Answer.Render(text)
}

func typeLabel(q quiz.Question) string {
	if q.IsMultipleChoice() {
		return "multiple choice"
	}
	return "short answer"
}
