package questions

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/quiz"
	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/ui/components"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestScreen(t *testing.T, opts ...Option) (*QuizScreen, *session.Engine) {
	t.Helper()
	engine := session.New(nil, session.WithClock(func() time.Time { return testNow }))
	questions := []quiz.Question{
		{ID: "q1", Type: quiz.MultipleChoice, Question: "Where does photosynthesis happen?",
			Options: []string{"Mitochondria", "Chloroplasts", "Nucleus"}, CorrectAnswer: "Chloroplasts",
			Explanation: "Chloroplasts hold chlorophyll.", Concept: "Light"},
		{ID: "q2", Type: quiz.ShortAnswer, Question: "Define glucose.", CorrectAnswer: "A sugar.", Concept: "Energy"},
		{ID: "q3", Type: quiz.MultipleChoice, Question: "What is ATP?",
			Options: []string{"Energy carrier", "Protein"}, CorrectAnswer: "Energy carrier", Concept: "Energy"},
	}
	require.NoError(t, engine.StartSession(questions, []string{"Light", "Energy"}, quiz.Session{ID: "s1", GeneratedAt: testNow}))
	return New(engine, append([]Option{WithClock(func() time.Time { return testNow })}, opts...)...), engine
}

func press(s *QuizScreen, r rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	return cmd
}

func pressKey(s *QuizScreen, code rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// feed delivers every message produced by cmd back to the screen.
func feed(s *QuizScreen, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		s.Update(msg)
	}
}

func TestSelectAndCheckOption(t *testing.T) {
	s, engine := newTestScreen(t)

	feed(s, press(s, '2'))
	rec, ok := engine.Answer("q1")
	require.True(t, ok)
	require.NotNil(t, rec.SelectedIndex)
	assert.Equal(t, 1, *rec.SelectedIndex)
	assert.False(t, rec.Answered)

	pressKey(s, tea.KeyEnter)
	rec, _ = engine.Answer("q1")
	assert.True(t, rec.Answered)
	assert.True(t, rec.Correct)
	assert.Equal(t, "1/3 answered  100% correct", s.Status())

	view := s.View(100, 40)
	assert.Contains(t, view, "Correct!")
	assert.Contains(t, view, "Chloroplasts hold chlorophyll.")

	// Checked answers cannot change.
	feed(s, press(s, '1'))
	rec, _ = engine.Answer("q1")
	assert.Equal(t, 1, *rec.SelectedIndex)
}

func TestCheckWithoutSelection(t *testing.T) {
	s, _ := newTestScreen(t)

	pressKey(s, tea.KeyEnter)
	assert.Equal(t, "Select an option first.", s.message)
	assert.True(t, s.isError)
}

func TestLetterKeysSelectOptions(t *testing.T) {
	s, engine := newTestScreen(t)

	feed(s, press(s, 'c'))
	rec, _ := engine.Answer("q1")
	require.NotNil(t, rec.SelectedIndex)
	assert.Equal(t, 2, *rec.SelectedIndex)
}

func TestShortAnswerFlow(t *testing.T) {
	s, engine := newTestScreen(t)

	pressKey(s, tea.KeyRight)
	q, ok := s.current()
	require.True(t, ok)
	require.Equal(t, "q2", q.ID)

	pressKey(s, tea.KeyEnter)
	require.True(t, s.CapturingInput())

	// Blank submissions are rejected and keep the input open.
	pressKey(s, tea.KeyEnter)
	assert.Equal(t, "Write an answer first.", s.message)
	assert.True(t, s.CapturingInput())

	for _, r := range "a sugar" {
		press(s, r)
	}
	pressKey(s, tea.KeyEnter)

	assert.False(t, s.CapturingInput())
	rec, ok := engine.Answer("q2")
	require.True(t, ok)
	assert.True(t, rec.Answered)
	assert.False(t, rec.Correct, "short answers are never auto-graded")
	assert.Equal(t, "a sugar", rec.FreeTextAnswer)
	assert.Contains(t, s.View(100, 40), "Answer: ")
}

func TestEscLeavesTyping(t *testing.T) {
	s, engine := newTestScreen(t)
	pressKey(s, tea.KeyRight)
	pressKey(s, tea.KeyEnter)
	press(s, 'x')

	pressKey(s, tea.KeyEscape)
	assert.False(t, s.CapturingInput())
	_, ok := engine.Answer("q2")
	assert.False(t, ok, "typing alone does not create a record")
	assert.Equal(t, session.PhaseActive, engine.Phase(), "'x' while typing must not start a new session")
}

func TestViewAnswerRevealsWithoutGrading(t *testing.T) {
	s, engine := newTestScreen(t)

	press(s, 'v')
	rec, ok := engine.Answer("q1")
	require.True(t, ok)
	assert.True(t, rec.ViewedAnswer)
	assert.False(t, rec.Answered)
	assert.True(t, s.choice.Revealed)
	assert.Contains(t, s.View(100, 40), "Answer: ")
}

func TestNavigationClamps(t *testing.T) {
	s, _ := newTestScreen(t)

	pressKey(s, tea.KeyLeft)
	q, _ := s.current()
	assert.Equal(t, "q1", q.ID)

	for range 5 {
		press(s, 'n')
	}
	q, _ = s.current()
	assert.Equal(t, "q3", q.ID)

	press(s, 'p')
	q, _ = s.current()
	assert.Equal(t, "q2", q.ID)
}

func TestConceptAndStatusFilters(t *testing.T) {
	s, engine := newTestScreen(t)

	press(s, 't')
	assert.Equal(t, "Light", engine.ConceptFilter())
	assert.Len(t, engine.Visible(), 1)

	press(s, 't')
	assert.Equal(t, "Energy", engine.ConceptFilter())
	q, _ := s.current()
	assert.Equal(t, "q2", q.ID, "cursor moves onto a visible question")

	press(s, 't')
	assert.Equal(t, session.AllConcepts, engine.ConceptFilter())

	press(s, 'f')
	assert.Equal(t, session.StatusUnanswered, engine.StatusFilter())
	assert.Len(t, engine.Questions(), 3, "filters never change the set")

	press(s, 'f')
	press(s, 'f')
	assert.Equal(t, session.StatusIncorrect, engine.StatusFilter())
	assert.Contains(t, s.View(100, 40), "No questions match")
}

func TestReviewToggle(t *testing.T) {
	s, engine := newTestScreen(t)

	press(s, 'r')
	assert.Equal(t, "No incorrect answers to review yet.", s.message)

	feed(s, press(s, '1'))
	pressKey(s, tea.KeyEnter)

	press(s, 'r')
	require.Equal(t, session.PhaseReviewing, engine.Phase())
	assert.Equal(t, "Review", s.Title())
	assert.Contains(t, s.View(100, 40), "REVIEW  1 incorrect of 3 questions")

	// more questions are refused while reviewing
	feed(s, press(s, 'm'))
	assert.Equal(t, "Exit review mode first (r).", s.message)

	press(s, 'r')
	assert.Equal(t, session.PhaseActive, engine.Phase())
	assert.Len(t, engine.Questions(), 3)
}

func TestMoreQuestions(t *testing.T) {
	s, engine := newTestScreen(t)

	feed(s, press(s, 'm'))
	assert.False(t, s.loading)
	assert.Len(t, engine.Questions(), 6)
	assert.Equal(t, "Added 3 questions.", s.message)
}

type emptyMoreGenerator struct{ questiongen.MockGenerator }

func (emptyMoreGenerator) GenerateMore(context.Context, questiongen.MoreInput) ([]quiz.Question, error) {
	return nil, nil
}

func TestMoreQuestionsEmptyReply(t *testing.T) {
	engine := session.New(emptyMoreGenerator{}, session.WithClock(func() time.Time { return testNow }))
	q := quiz.Question{ID: "q1", Type: quiz.ShortAnswer, Question: "Define glucose.", CorrectAnswer: "A sugar.", Concept: "Energy"}
	require.NoError(t, engine.StartSession([]quiz.Question{q}, nil, quiz.Session{ID: "s1", GeneratedAt: testNow}))
	s := New(engine, WithClock(func() time.Time { return testNow }))

	feed(s, press(s, 'm'))
	assert.Len(t, engine.Questions(), 1)
	assert.Equal(t, "No additional questions generated.", s.message)
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestScreen(t, WithExportDir(dir))

	feed(s, press(s, '2'))
	pressKey(s, tea.KeyEnter)
	press(s, 'e')

	path := filepath.Join(dir, "studyloop_export_s1.json")
	assert.Equal(t, "Exported to "+path, s.message)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"version": "1.0"`))
	assert.True(t, strings.Contains(string(data), `"accuracy": 100`))
}

func TestNewSessionPopsScreen(t *testing.T) {
	s, engine := newTestScreen(t)

	msgs := collect(press(s, 'x'))
	require.Len(t, msgs, 1)
	assert.IsType(t, router.PopScreenMsg{}, msgs[0])
	assert.Equal(t, session.PhaseEmpty, engine.Phase())
	assert.Contains(t, s.View(100, 40), "No active session")
}

func TestOptionChosenIgnoredForShortAnswer(t *testing.T) {
	s, engine := newTestScreen(t)
	pressKey(s, tea.KeyRight)

	s.Update(components.OptionChosenMsg{Index: 0})
	_, ok := engine.Answer("q2")
	assert.False(t, ok)
	assert.NotEmpty(t, s.message)
}
