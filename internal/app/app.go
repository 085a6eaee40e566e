package app

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/screen"
	"github.com/abhisek/studyloop/internal/screens/home"
	"github.com/abhisek/studyloop/internal/screens/questions"
	"github.com/abhisek/studyloop/internal/ui/layout"
)

// Options control how the TUI starts.
type Options struct {
	// Path, when set, is uploaded immediately.
	Path string
	// ExportDir is where the quiz screen writes exports.
	ExportDir string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
	start  tea.Cmd
}

// newAppModel restores the last session and builds the home screen. With
// a restored session and no file to upload, the quiz opens directly.
func newAppModel(ctx context.Context, deps *Deps, opts Options) AppModel {
	quizScreen := func() screen.Screen {
		return questions.New(deps.Engine, questions.WithExportDir(opts.ExportDir))
	}

	restored, err := deps.Engine.Restore(ctx)
	if err != nil {
		deps.Log.Warn("restore session failed", zap.Error(err))
	}

	homeOpts := []home.Option{home.WithStages(deps.Stages)}
	if opts.Path != "" {
		homeOpts = append(homeOpts, home.WithPath(opts.Path))
	}
	homeScreen := home.New(deps.Engine, deps.Uploader, quizScreen, homeOpts...)

	m := AppModel{router: router.New(homeScreen)}
	switch {
	case opts.Path != "":
		m.start = homeScreen.Init()
	case restored:
		m.start = func() tea.Msg { return router.PushScreenMsg{Screen: quizScreen()} }
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.start
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	var hints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}
	if m.router.Depth() > 1 {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, deps *Deps, opts Options) error {
	p := tea.NewProgram(newAppModel(ctx, deps, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		deps.Log.Error("program exited with error", zap.Error(err))
		return err
	}
	return nil
}
