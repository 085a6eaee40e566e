package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/studyloop/internal/answers"
	"github.com/abhisek/studyloop/internal/quiz"
)

// ExportVersion is the format version written into exports.
const ExportVersion = "1.0"

// Export is the downloadable record of a study session.
type Export struct {
	Session       quiz.Session    `json:"session"`
	Questions     []quiz.Question `json:"questions"`
	AnswerRecords []answers.Entry `json:"answerRecords"`
	Summary       ExportSummary   `json:"summary"`
	ExportedAt    time.Time       `json:"exportedAt"`
	Version       string          `json:"version"`
}

// ExportSummary totals the exported answers. Accuracy is a percentage of
// answered questions.
type ExportSummary struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	Accuracy int `json:"accuracy"`
}

// Export builds the export artifact for the full session, including while
// reviewing.
func (e *Engine) Export(now time.Time) (*Export, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := e.snapshotLocked()
	if !ok {
		return nil, ErrNoActiveSession
	}

	var sum ExportSummary
	sum.Total = len(snap.Questions)
	for _, q := range snap.Questions {
		r, ok := e.answers.Get(q.ID)
		if !ok || !r.Answered {
			continue
		}
		sum.Answered++
		if r.Correct {
			sum.Correct++
		}
	}
	sum.Accuracy = percent(sum.Correct, sum.Answered)

	return &Export{
		Session:       snap.CurrentSession,
		Questions:     snap.Questions,
		AnswerRecords: snap.AnswerRecords,
		Summary:       sum,
		ExportedAt:    now,
		Version:       ExportVersion,
	}, nil
}

// ExportFileName is the default file name for a session export.
func ExportFileName(sessionID string) string {
	return fmt.Sprintf("studyloop_export_%s.json", sessionID)
}

// WriteFile writes the export as indented JSON.
func (x *Export) WriteFile(path string) error {
	data, err := json.MarshalIndent(x, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
