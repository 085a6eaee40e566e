package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyloop/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "Home"}
	r := New(s1)

	s2 := &stubScreen{title: "Quiz"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "Quiz" {
		t.Errorf("expected active 'Quiz', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "Home"}
	r := New(s1)

	s2 := &stubScreen{title: "Quiz"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "Home" {
		t.Errorf("expected active 'Home', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "Home"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

// resumable records Resume calls, like the home screen refreshing its
// menu when the quiz is closed.
type resumable struct {
	stubScreen
	resumed int
}

type refreshedMsg struct{}

func (s *resumable) Resume() tea.Cmd {
	s.resumed++
	return func() tea.Msg { return refreshedMsg{} }
}

func TestPopResumesScreenBelow(t *testing.T) {
	home := &resumable{stubScreen: stubScreen{title: "Home"}}
	r := New(home)
	r.Push(&stubScreen{title: "Quiz"})

	cmd := r.Update(PopScreenMsg{})
	if home.resumed != 1 {
		t.Fatalf("Resume called %d times, want 1", home.resumed)
	}
	if cmd == nil {
		t.Fatal("expected the Resume command to be returned")
	}
	if _, ok := cmd().(refreshedMsg); !ok {
		t.Error("unexpected command result")
	}

	// Popping the bottom screen does not resume it again.
	if cmd := r.Pop(); cmd != nil || home.resumed != 1 {
		t.Errorf("pop at bottom: cmd=%v resumed=%d", cmd, home.resumed)
	}
}

func TestPushScreenMsgForwardsInit(t *testing.T) {
	r := New(&stubScreen{title: "Home"})
	quiz := &stubScreen{title: "Quiz"}
	r.Update(PushScreenMsg{Screen: quiz})

	if r.Depth() != 2 || !quiz.initRan {
		t.Errorf("depth=%d initRan=%v", r.Depth(), quiz.initRan)
	}
	if got := r.View(80, 24); got != "Quiz" {
		t.Errorf("View = %q, want active screen", got)
	}
}
