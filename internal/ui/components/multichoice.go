package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// OptionChosenMsg is emitted when the user picks an option by cursor or by
// its number/letter.
type OptionChosenMsg struct {
	Index int
}

// MultiChoice renders the options of a multiple-choice question. Grading
// state is supplied by the caller; the component only tracks the cursor.
type MultiChoice struct {
	Options      []string
	Cursor       int
	Chosen       int // -1 when nothing is selected
	CorrectIndex int // -1 when unknown
	Graded       bool
	Revealed     bool
}

// NewMultiChoice creates a multiple-choice component with nothing chosen.
func NewMultiChoice(options []string, correctIndex int) MultiChoice {
	return MultiChoice{
		Options:      options,
		Chosen:       -1,
		CorrectIndex: correctIndex,
	}
}

// Update moves the cursor and emits OptionChosenMsg for space, 1-9 and a-d.
// Once graded the component ignores input.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Graded {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
		return m, nil
	case "space", " ":
		return m, choose(m.Cursor)
	}

	if idx, ok := optionIndex(key, len(m.Options)); ok {
		m.Cursor = idx
		return m, choose(idx)
	}
	return m, nil
}

func choose(idx int) tea.Cmd {
	return func() tea.Msg { return OptionChosenMsg{Index: idx} }
}

// optionIndex maps "1".."9" and "a".."d" to an option index. Other letters
// are left for screen commands.
func optionIndex(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var idx int
	switch {
	case c >= '1' && c <= '9':
		idx = int(c - '1')
	case c >= 'a' && c <= 'd':
		idx = int(c - 'a')
	default:
		return 0, false
	}
	if idx >= n {
		return 0, false
	}
	return idx, true
}

// View renders the options with selection and grading marks.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Graded {
			prefix = "▸ "
		}
		mark := "( )"
		if i == m.Chosen {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%c) %s %s", prefix, 'A'+rune(i), mark, opt)

		showAnswer := m.Graded || m.Revealed
		var style lipgloss.Style
		switch {
		case showAnswer && i == m.CorrectIndex:
			style = theme.Correct
			line += "  ✓"
		case m.Graded && i == m.Chosen:
			style = theme.Incorrect
			line += "  ✗"
		case m.Graded:
			style = theme.Muted
		case i == m.Cursor:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
