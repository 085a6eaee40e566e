package session

import "math"

// Progress counts answered questions in the current set.
type Progress struct {
	Answered   int
	Total      int
	Percentage int
}

// Accuracy counts correct answers among answered questions.
type Accuracy struct {
	Answered int
	Correct  int
	Percent  int
}

// Progress reports how much of the current set has been answered.
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	answered, _, total := e.countLocked()
	pct := percent(answered, total)
	// 100 is reserved for a fully answered set.
	if pct == 100 && answered < total {
		pct = 99
	}
	return Progress{Answered: answered, Total: total, Percentage: pct}
}

// Accuracy reports the share of answered questions that were correct.
func (e *Engine) Accuracy() Accuracy {
	e.mu.Lock()
	defer e.mu.Unlock()
	answered, correct, _ := e.countLocked()
	return Accuracy{Answered: answered, Correct: correct, Percent: percent(correct, answered)}
}

func (e *Engine) countLocked() (answered, correct, total int) {
	for _, q := range e.set.All() {
		total++
		r, ok := e.answers.Get(q.ID)
		if !ok || !r.Answered {
			continue
		}
		answered++
		if r.Correct {
			correct++
		}
	}
	return answered, correct, total
}

// percent rounds part/whole to a whole percentage; 0 when whole is 0.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
