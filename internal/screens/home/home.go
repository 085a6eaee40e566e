// Package home is the start screen: upload a document or resume the last
// session.
package home

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/screen"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/upload"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/layout"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

// Uploader runs the upload flow for a file path.
type Uploader interface {
	Run(ctx context.Context, path string) (*upload.Result, error)
}

type mode int

const (
	modeMenu mode = iota
	modePath
	modeBusy
)

const (
	itemUpload = iota
	itemResume
	itemQuit
)

// uploadDoneMsg carries the outcome of an upload.
type uploadDoneMsg struct {
	Result *upload.Result
	Err    error
}

type stageMsg upload.Stage

// HomeScreen is the main menu.
type HomeScreen struct {
	engine   *session.Engine
	uploader Uploader
	quiz     func() screen.Screen

	menu    components.Menu
	input   components.TextInput
	spinner spinner.Model
	mode    mode
	stage   upload.Stage
	errMsg  string
	notice  string

	stages  <-chan upload.Stage
	waiting bool
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
	_ screen.InputCapturer   = (*HomeScreen)(nil)
	_ screen.Resumer         = (*HomeScreen)(nil)
)

type Option func(*HomeScreen)

// WithStages makes the busy view follow upload progress reported on ch.
func WithStages(ch <-chan upload.Stage) Option {
	return func(h *HomeScreen) { h.stages = ch }
}

// WithPath pre-fills the file path and starts the upload on Init.
func WithPath(path string) Option {
	return func(h *HomeScreen) {
		h.input.SetValue(path)
		h.mode = modePath
	}
}

// New creates the home screen. quiz builds the quiz screen shown once a
// session exists.
func New(engine *session.Engine, uploader Uploader, quiz func() screen.Screen, opts ...Option) *HomeScreen {
	h := &HomeScreen{
		engine:   engine,
		uploader: uploader,
		quiz:     quiz,
		input:    components.NewTextInput("path/to/notes.pdf", 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	h.menu = components.NewMenu([]components.MenuItem{
		itemUpload: {Label: "Upload a document", Shortcut: "u", Action: h.openPath},
		itemResume: {Label: "Resume session", Shortcut: "r", Action: h.resume},
		itemQuit:   {Label: "Quit", Shortcut: "q", Action: func() tea.Cmd { return tea.Quit }},
	})
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.mode == modePath && h.input.Value() != "" {
		return h.startUpload()
	}
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// CapturingInput keeps Esc inside the screen while a path is being typed.
func (h *HomeScreen) CapturingInput() bool {
	return h.mode != modeMenu
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	switch h.mode {
	case modePath:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Upload"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeBusy:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadDoneMsg:
		return h.handleUploadDone(msg)

	case stageMsg:
		h.waiting = false
		h.stage = upload.Stage(msg)
		if h.mode == modeBusy {
			return h, h.waitStage()
		}
		return h, nil

	case spinner.TickMsg:
		if h.mode != modeBusy {
			return h, nil
		}
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(msg)
		return h, cmd

	case tea.KeyMsg:
		return h.handleKey(msg)
	}

	if h.mode == modePath {
		var cmd tea.Cmd
		h.input, cmd = h.input.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch h.mode {
	case modeBusy:
		return h, nil

	case modePath:
		switch msg.String() {
		case "esc":
			h.mode = modeMenu
			h.input.Reset()
			return h, nil
		case "enter":
			if h.input.Value() == "" {
				h.errMsg = "Enter the path of a PDF or text file."
				return h, nil
			}
			return h, h.startUpload()
		}
		var cmd tea.Cmd
		h.input, cmd = h.input.Update(msg)
		return h, cmd
	}

	h.menu.SetDisabled(itemResume, !h.hasSession())
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) openPath() tea.Cmd {
	h.mode = modePath
	h.errMsg = ""
	return h.input.Init()
}

func (h *HomeScreen) resume() tea.Cmd {
	if !h.hasSession() {
		return nil
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: h.quiz()} }
}

// Resume runs when the quiz screen is closed.
func (h *HomeScreen) Resume() tea.Cmd {
	h.mode = modeMenu
	h.errMsg = ""
	h.notice = ""
	h.menu.SetDisabled(itemResume, !h.hasSession())
	if !h.hasSession() {
		h.notice = "Session closed. Upload a document to start a new one."
	}
	return nil
}

func (h *HomeScreen) hasSession() bool {
	return h.engine.Phase() != session.PhaseEmpty
}

func (h *HomeScreen) startUpload() tea.Cmd {
	path := expandHome(h.input.Value())
	h.mode = modeBusy
	h.errMsg = ""
	h.notice = ""
	h.stage = upload.StageValidating

	run := func() tea.Msg {
		res, err := h.uploader.Run(context.Background(), path)
		return uploadDoneMsg{Result: res, Err: err}
	}
	return tea.Batch(run, h.spinner.Tick, h.waitStage())
}

// waitStage reads the next progress report. At most one read is pending.
func (h *HomeScreen) waitStage() tea.Cmd {
	if h.stages == nil || h.waiting {
		return nil
	}
	h.waiting = true
	ch := h.stages
	return func() tea.Msg { return stageMsg(<-ch) }
}

func (h *HomeScreen) handleUploadDone(msg uploadDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		h.mode = modePath
		h.errMsg = errorText(msg.Err)
		return h, nil
	}

	h.mode = modeMenu
	h.input.Reset()
	h.menu.SetDisabled(itemResume, false)
	return h, func() tea.Msg { return router.PushScreenMsg{Screen: h.quiz()} }
}

func errorText(err error) string {
	if errors.Is(err, session.ErrGenerationInProgress) {
		return "A generation is already in progress."
	}
	return err.Error()
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("StudyLoop"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Turn your notes into practice questions"))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().PaddingLeft(4)

	switch h.mode {
	case modeBusy:
		b.WriteString(body.Render(fmt.Sprintf("%s %s", h.spinner.View(), stageLabel(h.stage))))
	case modePath:
		b.WriteString(body.Render(theme.Body.Render("File to upload (.pdf or .txt):")))
		b.WriteString("\n")
		b.WriteString(body.Render(h.input.View()))
	default:
		h.menu.SetDisabled(itemResume, !h.hasSession())
		b.WriteString(body.Render(h.menu.View()))
		if s, ok := h.engine.Session(); ok {
			b.WriteString("\n")
			b.WriteString(body.Render(theme.Hint.Render(fmt.Sprintf("Last session: %d questions", len(h.engine.Questions())))))
			if s.IsMock {
				b.WriteString(body.Render(theme.Hint.Render(" (sample)")))
			}
		}
	}

	if h.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(body.Render(theme.ErrorText.Render(h.errMsg)))
	}
	if h.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(body.Render(theme.Warning.Render(h.notice)))
	}
	return b.String()
}

func stageLabel(s upload.Stage) string {
	switch s {
	case upload.StageExtracting:
		return "Extracting text..."
	case upload.StageGenerating:
		return "Generating questions..."
	}
	return "Checking file..."
}
