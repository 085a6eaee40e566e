package questiongen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/quiz"
)

const (
	DefaultGenerateTimeout = 60 * time.Second
	DefaultMoreTimeout     = 30 * time.Second

	// existingSample is how many existing questions accompany a
	// generate-more request.
	existingSample = 3
)

// HTTPConfig configures the remote question service client.
type HTTPConfig struct {
	Endpoint        string
	GenerateTimeout time.Duration
	MoreTimeout     time.Duration
}

// HTTPClient talks to the hosted question generation service.
type HTTPClient struct {
	endpoint        string
	generateTimeout time.Duration
	moreTimeout     time.Duration
	client          *http.Client
	log             *zap.Logger
}

// NewHTTPClient returns a client for cfg.Endpoint. A nil httpClient uses
// http.DefaultClient.
func NewHTTPClient(cfg HTTPConfig, httpClient *http.Client, log *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = DefaultGenerateTimeout
	}
	if cfg.MoreTimeout <= 0 {
		cfg.MoreTimeout = DefaultMoreTimeout
	}
	return &HTTPClient{
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		generateTimeout: cfg.GenerateTimeout,
		moreTimeout:     cfg.MoreTimeout,
		client:          httpClient,
		log:             log,
	}
}

type generateRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	// Options is a JSON document encoded as a string.
	Options string `json:"options"`
}

type generateResponse struct {
	Questions []quiz.Question `json:"questions"`
	Concepts  []string        `json:"concepts"`
}

type moreRequest struct {
	SessionID         string   `json:"session_id"`
	Concepts          []string `json:"concepts"`
	ExistingQuestions string   `json:"existing_questions"`
}

type moreResponse struct {
	Questions []quiz.Question `json:"questions"`
}

func (c *HTTPClient) Generate(ctx context.Context, input GenerateInput) (*Result, error) {
	opts, err := json.Marshal(input.Options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	body := generateRequest{Text: input.Text, SessionID: input.SessionID, Options: string(opts)}

	var resp generateResponse
	if err := c.post(ctx, "/api/generate", c.generateTimeout, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Questions) == 0 {
		return nil, &ServiceError{Kind: KindEmptyResponse, Status: http.StatusOK}
	}

	qs := quiz.Normalize(input.SessionID, resp.Questions)
	return &Result{Questions: qs, Concepts: mergeConcepts(resp.Concepts, qs)}, nil
}

func (c *HTTPClient) GenerateMore(ctx context.Context, input MoreInput) ([]quiz.Question, error) {
	sample := input.Existing
	if len(sample) > existingSample {
		sample = sample[:existingSample]
	}
	existing, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("encode existing questions: %w", err)
	}
	body := moreRequest{SessionID: input.SessionID, Concepts: input.Concepts, ExistingQuestions: string(existing)}
	if body.Concepts == nil {
		body.Concepts = []string{}
	}

	var resp moreResponse
	if err := c.post(ctx, "/api/generate-more", c.moreTimeout, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Questions) == 0 {
		return nil, nil
	}
	return quiz.Normalize(input.idPrefix(), resp.Questions), nil
}

func (c *HTTPClient) post(ctx context.Context, path string, timeout time.Duration, in, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "questiongen.http "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreachable")
		c.log.Warn("question service unreachable", zap.String("path", path), zap.Error(err))
		return &ConnectivityError{Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return &ConnectivityError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.log.Debug("question service response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := statusError(resp.StatusCode, raw)
		span.SetStatus(codes.Error, string(serr.Kind))
		c.log.Error("question service error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(serr.Kind)),
		)
		return serr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		span.SetStatus(codes.Error, string(KindInvalidResponse))
		return &ServiceError{Kind: KindInvalidResponse, Status: resp.StatusCode, Body: string(raw), Err: err}
	}
	return nil
}

// mergeConcepts keeps the service's concept list and appends any concept
// referenced by a question that the list is missing.
func mergeConcepts(concepts []string, qs []quiz.Question) []string {
	seen := make(map[string]bool, len(concepts))
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, q := range qs {
		if !seen[q.Concept] {
			seen[q.Concept] = true
			out = append(out, q.Concept)
		}
	}
	return out
}
