package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Below this height the answer panel drops its explanation.
	CompactHeightThreshold = 30

	// border + horizontal padding of the header and footer bars
	barChrome = 4
)

// KeyHint is a key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := theme.Title.Render("Terminal too small") + "\n\n" +
		theme.Body.Render(fmt.Sprintf("StudyLoop needs at least %d x %d.", MinWidth, MinHeight)) + "\n" +
		theme.Hint.Render(fmt.Sprintf("Current: %d x %d", width, height))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
}

// RenderHeader renders the top bar: brand and screen title on the left,
// status on the right. The status is dropped when it does not fit.
func RenderHeader(title, status string, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  StudyLoop")
	if title != "" {
		left += theme.Muted.Render(" · ") + lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	}
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	inner := max(width-barChrome, 0)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	content := left
	if status != "" && gap >= 1 {
		content += strings.Repeat(" ", gap) + right
	}
	return bar(content, width)
}

// RenderFooter renders as many key hints as fit on one line.
func RenderFooter(hints []KeyHint, width int) string {
	const sep = "   "
	inner := max(width-barChrome, 0)

	line := " "
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) + " " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		next := line + sep + part
		if line == " " {
			next = line + " " + part
		}
		if lipgloss.Width(next) > inner {
			break
		}
		line = next
	}
	return bar(line, width)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderFrame stacks header, content and footer; content fills the
// remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
