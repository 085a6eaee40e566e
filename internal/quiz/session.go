package quiz

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session identifies one generation run.
type Session struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	FileHash    string    `json:"file_hash"`
	IsMock      bool      `json:"is_mock"`
	IsReview    bool      `json:"is_review"`

	// Set only on review sub-sessions.
	OriginalQuestionCount int `json:"original_question_count,omitempty"`
	IncorrectCount        int `json:"incorrect_count,omitempty"`
}

// NewSessionID returns an opaque, unique session token.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}

// ContentHash fingerprints document text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
