package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/quiz"
)

// LLMConfig controls the behavior of the LLMGenerator.
type LLMConfig struct {
	// MaxTokens is the token budget for one response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// MoreCount is how many questions a generate-more request asks for.
	MoreCount int
}

// DefaultLLMConfig returns recommended defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		MaxTokens:   4096,
		Temperature: 0.7,
		MoreCount:   5,
	}
}

// LLMGenerator implements Generator by prompting an LLM provider directly.
type LLMGenerator struct {
	provider llm.Provider
	config   LLMConfig
	log      *zap.Logger
}

// NewLLMGenerator creates a generator over provider.
func NewLLMGenerator(provider llm.Provider, cfg LLMConfig, log *zap.Logger) *LLMGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMGenerator{provider: provider, config: cfg, log: log}
}

type quizOutput struct {
	Concepts  []string        `json:"concepts"`
	Questions []quiz.Question `json:"questions"`
}

func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "questiongen.llm generate")
	defer span.End()
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)

	var out quizOutput
	if err := g.call(ctx, QuizSchema, buildGenerateMessage(input), &out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(out.Questions) == 0 {
		return nil, &ServiceError{Kind: KindEmptyResponse}
	}

	qs, err := checked(input.SessionID, out.Questions)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("questions", len(qs)))
	return &Result{Questions: qs, Concepts: mergeConcepts(out.Concepts, qs)}, nil
}

func (g *LLMGenerator) GenerateMore(ctx context.Context, input MoreInput) ([]quiz.Question, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "questiongen.llm generate-more")
	defer span.End()
	ctx = llm.WithPurpose(ctx, llm.PurposeMoreQuestions)

	var out struct {
		Questions []quiz.Question `json:"questions"`
	}
	if err := g.call(ctx, MoreSchema, buildMoreMessage(input, g.config.MoreCount), &out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(out.Questions) == 0 {
		return nil, nil
	}
	return checked(input.idPrefix(), out.Questions)
}

func (g *LLMGenerator) call(ctx context.Context, schema *llm.Schema, userMsg string, out any) error {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		g.log.Warn("llm generation failed", zap.String("schema", schema.Name), zap.Error(err))
		return classifyLLMError(err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return &ServiceError{Kind: KindInvalidResponse, Body: string(resp.Content), Err: err}
	}
	return nil
}

// checked normalizes qs and rejects the batch if any question is unusable.
func checked(sessionID string, qs []quiz.Question) ([]quiz.Question, error) {
	qs = quiz.Normalize(sessionID, qs)
	for _, q := range qs {
		if err := checkQuestion(q); err != nil {
			return nil, &ServiceError{Kind: KindInvalidResponse, Err: err}
		}
	}
	return qs, nil
}

// classifyLLMError maps provider errors onto the generator taxonomy so the
// session engine treats both backends alike.
func classifyLLMError(err error) error {
	var rateLimit *llm.ErrRateLimit
	if errors.As(err, &rateLimit) {
		return &ServiceError{Kind: KindRateLimited, Status: 429, Err: err}
	}
	var rejected *llm.ErrRequestRejected
	if errors.As(err, &rejected) {
		return &ServiceError{Kind: KindAPIError, Status: rejected.Status, Body: rejected.Error(), Err: err}
	}
	var unavailable *llm.ErrProviderUnavailable
	if errors.As(err, &unavailable) {
		return &ConnectivityError{Err: err}
	}
	var invalid *llm.ErrInvalidResponse
	var maxTokens *llm.ErrMaxTokensExceeded
	if errors.As(err, &invalid) || errors.As(err, &maxTokens) {
		return &ServiceError{Kind: KindInvalidResponse, Err: err}
	}
	if IsConnectivity(err) {
		return &ConnectivityError{Err: err}
	}
	return fmt.Errorf("llm generation: %w", err)
}
