package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var okContent = json.RawMessage(`{"questions":[],"concepts":[]}`)

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection refused")}}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "first attempt succeeds",
			responses: []MockResponse{{Content: okContent}},
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			responses: []MockResponse{down(), {Content: okContent}},
			wantCalls: 2,
		},
		{
			name:      "all attempts fail",
			responses: []MockResponse{down(), down(), down(), {Content: okContent}},
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name:      "max tokens not retried",
			responses: []MockResponse{{Err: &ErrMaxTokensExceeded{}}, {Content: okContent}},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "rejected request not retried",
			responses: []MockResponse{{Err: &ErrRequestRejected{Status: 401, Err: errors.New("bad key")}}, {Content: okContent}},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "invalid response retried once",
			responses: []MockResponse{
				{Err: &ErrInvalidResponse{Err: errors.New("missing concepts")}},
				{Err: &ErrInvalidResponse{Err: errors.New("missing concepts")}},
				{Content: okContent},
			},
			wantErr:   true,
			wantCalls: 2,
		},
		{
			name:      "rate limit honours retry-after",
			responses: []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, {Content: okContent}},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_CancelledContextStops(t *testing.T) {
	mock := NewMockProvider(down(), down(), MockResponse{Content: okContent})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := WithRetry(mock, fastRetry(), nil).Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: okContent})
	if _, err := WithRetry(mock, RetryConfig{}, nil).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	for attempt := range 4 {
		wait := r.backoff(attempt, errors.New("x"))
		if wait > 2400*time.Millisecond {
			t.Errorf("attempt %d wait = %s, exceeds cap plus jitter", attempt, wait)
		}
	}
}

func TestRetryLogsEachRetry(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := NewMockProvider(down(), down(), MockResponse{Content: okContent})

	ctx := WithPurpose(context.Background(), PurposeMoreQuestions)
	if _, err := WithRetry(mock, fastRetry(), zap.New(core)).Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("retrying LLM request").All()
	if len(entries) != 2 {
		t.Fatalf("got %d retry logs, want 2", len(entries))
	}
	if got := entries[0].ContextMap()["purpose"]; got != PurposeMoreQuestions {
		t.Errorf("purpose = %v", got)
	}
}
