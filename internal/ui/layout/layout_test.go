package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestRenderHeaderContent(t *testing.T) {
	h := RenderHeader("Quiz", "3/10 answered  67%", 100)
	for _, want := range []string{"StudyLoop", "Quiz", "3/10 answered"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderFrameOrder(t *testing.T) {
	header := RenderHeader("Home", "", 80)
	footer := RenderFooter([]KeyHint{{Key: "Enter", Description: "Select"}}, 80)
	frame := RenderFrame(header, "body", footer, 80, 24)

	hi := strings.Index(frame, "StudyLoop")
	bi := strings.Index(frame, "body")
	fi := strings.Index(frame, "Select")
	if hi < 0 || bi < 0 || fi < 0 || !(hi < bi && bi < fi) {
		t.Errorf("frame order header=%d body=%d footer=%d", hi, bi, fi)
	}
	if lipgloss.Height(frame) < lipgloss.Height(header)+lipgloss.Height(footer) {
		t.Error("frame shorter than header and footer")
	}
}

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{79, 24, true},
		{80, 23, true},
		{120, 40, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRenderHeaderDropsStatusWhenNarrow(t *testing.T) {
	status := strings.Repeat("x", 90)
	h := RenderHeader("Quiz", status, 80)
	if strings.Contains(h, status) {
		t.Error("status rendered although it cannot fit")
	}
	if !strings.Contains(h, "Quiz") {
		t.Error("title missing")
	}
}

func TestRenderFooterFitsWidth(t *testing.T) {
	var hints []KeyHint
	for range 20 {
		hints = append(hints, KeyHint{Key: "Enter", Description: "Check answer"})
	}
	f := RenderFooter(hints, 80)
	if n := strings.Count(f, "Check answer"); n == 0 || n == 20 {
		t.Errorf("footer shows %d hints, want some but not all", n)
	}
}

func TestRenderMinSizeMessage(t *testing.T) {
	msg := RenderMinSizeMessage(60, 20)
	if !strings.Contains(msg, "Terminal too small") || !strings.Contains(msg, "Current: 60 x 20") {
		t.Errorf("unexpected message:\n%s", msg)
	}
}
