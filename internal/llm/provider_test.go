package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[]}`), Usage: Usage{InputTokens: 12}},
		MockResponse{Content: json.RawMessage(`{"concepts":["Cells"]}`)},
	)

	first, err := mock.Generate(context.Background(), Request{System: "quiz"})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if string(first.Content) != `{"questions":[]}` || first.Usage.InputTokens != 12 {
		t.Errorf("first = %s %+v", first.Content, first.Usage)
	}
	second, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if string(second.Content) != `{"concepts":["Cells"]}` {
		t.Errorf("second = %s", second.Content)
	}
	if mock.CallCount() != 2 || mock.Calls[0].System != "quiz" {
		t.Errorf("calls = %+v", mock.Calls)
	}
}

func TestMockProvider_EmptyQueueIsUnavailable(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %T %v, want ErrProviderUnavailable", err, err)
	}
}

func TestMockProvider_CancelledContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("PurposeFrom(empty) = %q", p)
	}
	ctx = WithPurpose(ctx, PurposeMoreQuestions)
	if p := PurposeFrom(ctx); p != PurposeMoreQuestions {
		t.Fatalf("PurposeFrom = %q, want %q", p, PurposeMoreQuestions)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(DefaultConfig()); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	cfg, ok := DiscoverConfig(DefaultConfig())
	if !ok || cfg.Provider != "openai" || cfg.OpenAI.APIKey != "o-key" {
		t.Fatalf("DiscoverConfig = %+v, %v; want openai first", cfg, ok)
	}
	if cfg.Retry.MaxAttempts != DefaultConfig().Retry.MaxAttempts {
		t.Error("base config should be preserved")
	}
}

func TestClassifyStatus(t *testing.T) {
	base := errors.New("boom")

	var rl *ErrRateLimit
	if !errors.As(classifyStatus(http.StatusTooManyRequests, base), &rl) {
		t.Error("429 should be ErrRateLimit")
	}
	var rej *ErrRequestRejected
	if err := classifyStatus(http.StatusUnauthorized, base); !errors.As(err, &rej) || rej.Status != 401 {
		t.Errorf("401 = %v, want ErrRequestRejected", err)
	}
	var unavail *ErrProviderUnavailable
	for _, status := range []int{0, 500, 503} {
		if !errors.As(classifyStatus(status, base), &unavail) {
			t.Errorf("status %d should be ErrProviderUnavailable", status)
		}
	}
}

func TestNewProvider_MockAndValidation(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("mock provider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "openai"}, nil, nil); err == nil {
		t.Fatal("expected validation error for missing key")
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q, want pass-through", p.ModelID())
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
