// Package upload runs the document upload flow: validate, extract, generate.
package upload

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/extract"
	"github.com/abhisek/studyloop/internal/quiz"
	"github.com/abhisek/studyloop/internal/session"
)

// Stage names a step of the upload flow for progress reporting.
type Stage string

const (
	StageValidating Stage = "validating"
	StageExtracting Stage = "extracting"
	StageGenerating Stage = "generating"
)

// Result is a completed upload.
type Result struct {
	Session  quiz.Session
	Document *extract.Document
}

// Service wires the extractor to the session engine.
type Service struct {
	engine    *session.Engine
	extractor *extract.Extractor
	log       *zap.Logger
	onStage   func(Stage)
}

type Option func(*Service)

// WithProgress registers a callback invoked as each stage starts.
func WithProgress(fn func(Stage)) Option {
	return func(s *Service) { s.onStage = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func New(engine *session.Engine, extractor *extract.Extractor, opts ...Option) *Service {
	s := &Service{engine: engine, extractor: extractor, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run uploads the document at path and starts a session from it. Nothing
// is read while another generation is pending, and validation failures
// return before any network call.
func (s *Service) Run(ctx context.Context, path string) (*Result, error) {
	if s.engine.Generating() {
		return nil, session.ErrGenerationInProgress
	}

	s.stage(StageValidating)
	if _, err := extract.Validate(path, s.extractor.Limits()); err != nil {
		s.log.Info("upload rejected", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	s.stage(StageExtracting)
	doc, err := s.extractor.Extract(ctx, path)
	if err != nil {
		s.log.Info("extraction failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	s.stage(StageGenerating)
	sess, err := s.engine.RequestGeneration(ctx, doc.Text)
	if err != nil {
		return nil, err
	}

	s.log.Info("upload complete",
		zap.String("path", path),
		zap.String("kind", doc.Kind.String()),
		zap.String("session", sess.ID),
		zap.Bool("mock", sess.IsMock),
	)
	return &Result{Session: sess, Document: doc}, nil
}

func (s *Service) stage(st Stage) {
	if s.onStage != nil {
		s.onStage(st)
	}
}
