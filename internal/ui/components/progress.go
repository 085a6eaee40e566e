package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// ScoreBar shows answered questions split into correct and incorrect
// segments, followed by "answered/total".
type ScoreBar struct {
	Answered int
	Correct  int
	Total    int
	Width    int
}

func NewScoreBar(answered, correct, total, width int) ScoreBar {
	return ScoreBar{Answered: answered, Correct: correct, Total: total, Width: width}
}

func (b ScoreBar) View() string {
	total := max(b.Total, 0)
	answered := min(max(b.Answered, 0), total)
	correct := min(max(b.Correct, 0), answered)

	suffix := fmt.Sprintf("  %d/%d", answered, total)
	barWidth := max(b.Width-len(suffix), 4)

	var good, bad int
	if total > 0 {
		good = barWidth * correct / total
		bad = barWidth*answered/total - good
	}
	rest := barWidth - good - bad

	return lipgloss.NewStyle().Background(theme.Success).Render(strings.Repeat(" ", good)) +
		lipgloss.NewStyle().Background(theme.Error).Render(strings.Repeat(" ", bad)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", rest)) +
		theme.Muted.Render(suffix)
}
