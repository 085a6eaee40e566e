// Package extract validates uploaded documents and turns them into plain
// text. PDFs go through poppler's pdfinfo and pdftotext.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Document is extracted text plus what is known about its source.
type Document struct {
	Path string
	Kind Kind
	Text string
	// Pages is the PDF page count, 0 for text or when pdfinfo is unavailable.
	Pages int
	// Truncated is set when only the first MaxPDFPages pages were read.
	Truncated bool
}

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Extractor reads documents within Limits.
type Extractor struct {
	limits    Limits
	pdfinfo   string
	pdftotext string
	timeout   time.Duration
	run       Runner
	log       *zap.Logger
}

type Option func(*Extractor)

// WithRunner replaces command execution.
func WithRunner(run Runner) Option {
	return func(x *Extractor) { x.run = run }
}

func WithLogger(log *zap.Logger) Option {
	return func(x *Extractor) {
		if log != nil {
			x.log = log
		}
	}
}

// WithTools overrides the poppler binary names or paths.
func WithTools(pdfinfo, pdftotext string) Option {
	return func(x *Extractor) {
		x.pdfinfo, x.pdftotext = pdfinfo, pdftotext
	}
}

func New(limits Limits, opts ...Option) *Extractor {
	x := &Extractor{
		limits:    limits,
		pdfinfo:   "pdfinfo",
		pdftotext: "pdftotext",
		timeout:   60 * time.Second,
		run:       execRunner,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Limits returns the limits the extractor enforces.
func (x *Extractor) Limits() Limits {
	return x.limits
}

// Extract validates path and returns its text.
func (x *Extractor) Extract(ctx context.Context, path string) (*Document, error) {
	kind, err := Validate(path, x.limits)
	if err != nil {
		return nil, err
	}
	if kind == KindPDF {
		return x.extractPDF(ctx, path)
	}
	return x.extractText(path)
}

func (x *Extractor) extractText(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	if !utf8.Valid(raw) {
		return nil, &ExtractionError{Path: path, Err: errors.New("file is not valid UTF-8 text")}
	}

	text := strings.TrimSpace(string(raw))
	if utf8.RuneCountInString(text) < x.limits.MinChars {
		return nil, &ValidationError{
			Field: "text",
			Msg:   fmt.Sprintf("Text too short. Please upload a document with at least %d characters.", x.limits.MinChars),
		}
	}
	return &Document{Path: path, Kind: KindText, Text: text}, nil
}

func (x *Extractor) extractPDF(ctx context.Context, path string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	doc := &Document{Path: path, Kind: KindPDF}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := x.run(gctx, x.pdfinfo, path)
		if err != nil {
			// Page count is informational only.
			x.log.Debug("pdfinfo failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		doc.Pages = parsePages(string(out))
		return nil
	})
	g.Go(func() error {
		args := []string{"-enc", "UTF-8", "-q"}
		if x.limits.MaxPDFPages > 0 {
			args = append(args, "-l", strconv.Itoa(x.limits.MaxPDFPages))
		}
		args = append(args, path, "-")
		out, err := x.run(gctx, x.pdftotext, args...)
		if err != nil {
			return fmt.Errorf("Failed to parse PDF: %w", err)
		}
		doc.Text = strings.TrimSpace(string(out))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	if doc.Text == "" {
		return nil, &ExtractionError{
			Path: path,
			Err:  errors.New("No readable text found in PDF. The PDF might be scanned or image-based."),
		}
	}
	doc.Truncated = x.limits.MaxPDFPages > 0 && doc.Pages > x.limits.MaxPDFPages

	x.log.Info("pdf extracted",
		zap.String("path", path),
		zap.Int("pages", doc.Pages),
		zap.Int("chars", utf8.RuneCountInString(doc.Text)),
		zap.Bool("truncated", doc.Truncated),
	)
	return doc, nil
}

func parsePages(out string) int {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		fields := strings.Fields(line)
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found in PATH (install poppler-utils): %w", name, err)
	}
	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w; stderr=%s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
