package extract

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind is a supported document type.
type Kind int

const (
	KindText Kind = iota
	KindPDF
)

func (k Kind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "text"
}

// Limits bounds what an upload may contain.
type Limits struct {
	MaxBytes    int64
	MinChars    int
	MaxPDFPages int
}

func DefaultLimits() Limits {
	return Limits{
		MaxBytes:    5 << 20,
		MinChars:    50,
		MaxPDFPages: 20,
	}
}

// Validate checks type, size and emptiness of the file at path without
// reading more than its first 512 bytes.
func Validate(path string, limits Limits) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, &ValidationError{Field: "path", Msg: fmt.Sprintf("Cannot read file: %v", err)}
	}
	if info.IsDir() {
		return 0, &ValidationError{Field: "path", Msg: fmt.Sprintf("%s is a directory", path)}
	}

	kind, ok := kindFromName(path)
	if !ok {
		kind, ok = sniff(path)
	}
	if !ok {
		return 0, &ValidationError{Field: "type", Msg: "Please upload PDF or text files only. Supported formats: .pdf, .txt"}
	}

	if limits.MaxBytes > 0 && info.Size() > limits.MaxBytes {
		return 0, &ValidationError{
			Field: "size",
			Msg: fmt.Sprintf("File size must be less than %dMB. Current: %.2fMB",
				limits.MaxBytes>>20, float64(info.Size())/(1<<20)),
		}
	}
	if info.Size() == 0 {
		return 0, &ValidationError{Field: "size", Msg: "File is empty. Please upload a valid file."}
	}
	return kind, nil
}

func kindFromName(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindPDF, true
	case ".txt":
		return KindText, true
	}
	return 0, false
}

func sniff(path string) (Kind, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, false
	}
	if n == 0 {
		return 0, false
	}

	contentType := http.DetectContentType(head[:n])
	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		return KindPDF, true
	case strings.HasPrefix(contentType, "text/plain"):
		return KindText, true
	}
	return 0, false
}
