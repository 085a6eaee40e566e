package extract

import "fmt"

// ValidationError rejects a file before any extraction work is done.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

// ExtractionError means a valid file could not be turned into text.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
