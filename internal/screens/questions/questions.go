// Package questions is the question screen: answer, check, filter, review and
// export the current session.
package questions

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyloop/internal/answers"
	"github.com/abhisek/studyloop/internal/quiz"
	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/screen"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/layout"
)

// moreDoneMsg carries the outcome of a more-questions request.
type moreDoneMsg struct {
	Result session.MoreResult
	Err    error
}

// QuizScreen shows one question at a time from the visible list.
type QuizScreen struct {
	engine    *session.Engine
	exportDir string
	now       func() time.Time

	currentID string
	choice    components.MultiChoice
	input     components.TextInput
	typing    bool
	spinner   spinner.Model
	loading   bool

	message string
	isError bool
}

var (
	_ screen.Screen          = (*QuizScreen)(nil)
	_ screen.KeyHintProvider = (*QuizScreen)(nil)
	_ screen.StatusProvider  = (*QuizScreen)(nil)
	_ screen.InputCapturer   = (*QuizScreen)(nil)
)

type Option func(*QuizScreen)

// WithExportDir sets where exports are written. Defaults to the working
// directory.
func WithExportDir(dir string) Option {
	return func(s *QuizScreen) { s.exportDir = dir }
}

func WithClock(now func() time.Time) Option {
	return func(s *QuizScreen) { s.now = now }
}

// New creates the quiz screen over engine.
func New(engine *session.Engine, opts ...Option) *QuizScreen {
	s := &QuizScreen{
		engine:  engine,
		now:     time.Now,
		input:   components.NewTextInput("Type your answer...", 0),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.input.Blur()
	s.sync()
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	if sess, ok := s.engine.Session(); ok && sess.IsReview {
		return "Review"
	}
	return "Quiz"
}

// Status is shown in the header: answered count and accuracy.
func (s *QuizScreen) Status() string {
	p := s.engine.Progress()
	a := s.engine.Accuracy()
	return fmt.Sprintf("%d/%d answered  %d%% correct", p.Answered, p.Total, a.Percent)
}

func (s *QuizScreen) CapturingInput() bool {
	return s.typing
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.typing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "←→", Description: "Prev/Next"},
	}
	if q, ok := s.current(); ok && q.IsMultipleChoice() {
		hints = append(hints, layout.KeyHint{Key: "1-4", Description: "Select"}, layout.KeyHint{Key: "Enter", Description: "Check"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Answer"})
	}
	return append(hints,
		layout.KeyHint{Key: "v", Description: "Show"},
		layout.KeyHint{Key: "t/f", Description: "Filter"},
		layout.KeyHint{Key: "r", Description: "Review"},
		layout.KeyHint{Key: "m", Description: "More"},
		layout.KeyHint{Key: "e", Description: "Export"},
		layout.KeyHint{Key: "x", Description: "New"},
	)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.OptionChosenMsg:
		s.selectOption(msg.Index)
		return s, nil

	case moreDoneMsg:
		return s.handleMoreDone(msg)

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.typing {
			return s.handleTypingKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.typing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	s.message = ""
	q, hasQ := s.current()

	switch msg.String() {
	case "right", "n", "tab":
		s.move(1)
		return s, nil
	case "left", "p", "shift+tab":
		s.move(-1)
		return s, nil
	case "enter":
		if !hasQ {
			return s, nil
		}
		if q.IsMultipleChoice() {
			_, err := s.engine.CheckAnswer(q.ID)
			s.report(err, "")
			s.sync()
			return s, nil
		}
		s.typing = true
		return s, s.input.Focus()
	case "v":
		if hasQ {
			_, err := s.engine.ViewAnswer(q.ID)
			s.report(err, "")
			s.sync()
		}
		return s, nil
	case "t":
		s.cycleConcept()
		return s, nil
	case "f":
		s.engine.SetStatusFilter(s.engine.StatusFilter().Next())
		s.sync()
		return s, nil
	case "r":
		s.toggleReview()
		return s, nil
	case "m":
		return s, s.requestMore()
	case "e":
		s.export()
		return s, nil
	case "x":
		if err := s.engine.NewSession(); err != nil {
			s.report(err, "")
			return s, nil
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if hasQ && q.IsMultipleChoice() {
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleTypingKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.typing = false
		s.input.Blur()
		return s, nil
	case "enter":
		q, ok := s.current()
		if !ok {
			s.typing = false
			return s, nil
		}
		_, err := s.engine.SubmitShortAnswer(q.ID, s.input.Value())
		if err != nil {
			s.report(err, "")
			return s, nil
		}
		s.typing = false
		s.input.Blur()
		s.report(nil, "Answer saved. Compare it with the model answer below.")
		s.sync()
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuizScreen) selectOption(idx int) {
	q, ok := s.current()
	if !ok {
		return
	}
	_, err := s.engine.SelectOption(q.ID, idx)
	s.report(err, "")
	s.sync()
}

func (s *QuizScreen) cycleConcept() {
	concepts := append([]string{session.AllConcepts}, s.engine.Concepts()...)
	cur := s.engine.ConceptFilter()
	next := concepts[0]
	for i, c := range concepts {
		if c == cur {
			next = concepts[(i+1)%len(concepts)]
			break
		}
	}
	s.engine.SetConceptFilter(next)
	s.sync()
}

func (s *QuizScreen) toggleReview() {
	var err error
	if s.engine.Phase() == session.PhaseReviewing {
		err = s.engine.ExitReviewMode()
	} else {
		err = s.engine.EnterReviewMode()
	}
	s.currentID = ""
	s.report(err, "")
	s.sync()
}

func (s *QuizScreen) requestMore() tea.Cmd {
	s.loading = true
	run := func() tea.Msg {
		res, err := s.engine.RequestMoreQuestions(context.Background())
		return moreDoneMsg{Result: res, Err: err}
	}
	return tea.Batch(run, s.spinner.Tick)
}

func (s *QuizScreen) handleMoreDone(msg moreDoneMsg) (screen.Screen, tea.Cmd) {
	s.loading = s.engine.Generating()
	switch {
	case msg.Err != nil:
		s.report(msg.Err, "")
	case msg.Result.Added == 0:
		s.report(nil, "No additional questions generated.")
	case msg.Result.Mock:
		s.report(nil, fmt.Sprintf("Added %d sample questions (question service unavailable).", msg.Result.Added))
	default:
		s.report(nil, fmt.Sprintf("Added %d questions.", msg.Result.Added))
	}
	s.sync()
	return s, nil
}

func (s *QuizScreen) export() {
	x, err := s.engine.Export(s.now())
	if err != nil {
		s.report(err, "")
		return
	}
	path := filepath.Join(s.exportDir, session.ExportFileName(x.Session.ID))
	if err := x.WriteFile(path); err != nil {
		s.report(err, "")
		return
	}
	s.report(nil, "Exported to "+path)
}

func (s *QuizScreen) report(err error, notice string) {
	if err != nil {
		s.message = errorText(err)
		s.isError = true
		return
	}
	s.message = notice
	s.isError = false
}

func errorText(err error) string {
	switch {
	case errors.Is(err, answers.ErrNoSelection):
		return "Select an option first."
	case errors.Is(err, answers.ErrAlreadyGraded):
		return "This answer was already checked."
	case errors.Is(err, answers.ErrEmptyAnswer):
		return "Write an answer first."
	case errors.Is(err, session.ErrNoIncorrectAnswers):
		return "No incorrect answers to review yet."
	case errors.Is(err, session.ErrReviewActive):
		return "Exit review mode first (r)."
	case errors.Is(err, session.ErrGenerationInProgress):
		return "Questions are still being generated."
	}
	return err.Error()
}

// current returns the question under the cursor.
func (s *QuizScreen) current() (quiz.Question, bool) {
	for _, q := range s.engine.Visible() {
		if q.ID == s.currentID {
			return q, true
		}
	}
	return quiz.Question{}, false
}

// position returns the cursor index within visible, or -1.
func (s *QuizScreen) position(visible []quiz.Question) int {
	for i, q := range visible {
		if q.ID == s.currentID {
			return i
		}
	}
	return -1
}

func (s *QuizScreen) move(delta int) {
	visible := s.engine.Visible()
	if len(visible) == 0 {
		return
	}
	i := s.position(visible) + delta
	i = min(max(i, 0), len(visible)-1)
	s.currentID = visible[i].ID
	s.typing = false
	s.input.Reset()
	s.sync()
}

// sync keeps the cursor on a visible question and rebuilds the option
// component from the answer record.
func (s *QuizScreen) sync() {
	visible := s.engine.Visible()
	if len(visible) == 0 {
		s.currentID = ""
		s.choice = components.MultiChoice{}
		return
	}
	if s.position(visible) < 0 {
		s.currentID = visible[0].ID
	}

	q, _ := s.current()
	if !q.IsMultipleChoice() {
		s.choice = components.MultiChoice{}
		return
	}

	cursor := s.choice.Cursor
	if len(s.choice.Options) != len(q.Options) {
		cursor = 0
	}
	s.choice = components.NewMultiChoice(q.Options, q.CorrectIndex())
	s.choice.Cursor = cursor
	if r, ok := s.engine.Answer(q.ID); ok {
		if r.SelectedIndex != nil {
			s.choice.Chosen = *r.SelectedIndex
			s.choice.Cursor = *r.SelectedIndex
		}
		s.choice.Graded = r.Answered
		s.choice.Revealed = r.ViewedAnswer
	}
}
