package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyloop/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status string on
// the right of the header, such as quiz progress.
type StatusProvider interface {
	Status() string
}

// InputCapturer is implemented by screens that sometimes need every key,
// including Esc, for a focused text field.
type InputCapturer interface {
	CapturingInput() bool
}

// Resumer is notified when the screen becomes active again because the
// screen above it was popped.
type Resumer interface {
	Resume() tea.Cmd
}
