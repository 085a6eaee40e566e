package tracing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/abhisek/studyloop/internal/questiongen"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitRequiresSink(t *testing.T) {
	_, err := Init(context.Background(), nil, Config{Enabled: true})
	assert.Error(t, err)
}

func TestRemoteGenerationIsTraced(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	shutdown, err := Init(context.Background(), nil, Config{Environment: "test"}, WithExporter(exp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	var traceparent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		json.NewEncoder(w).Encode(map[string]any{
			"questions": []map[string]any{
				{"id": "q1", "type": "short_answer", "question": "Q", "correct_answer": "A", "concept": "C"},
			},
		})
	}))
	defer server.Close()

	client := questiongen.NewHTTPClient(questiongen.HTTPConfig{Endpoint: server.URL}, server.Client(), nil)
	_, err = client.Generate(context.Background(), questiongen.GenerateInput{
		Text:      "some text",
		SessionID: "s1",
		Options:   questiongen.DefaultOptions(),
	})
	require.NoError(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "questiongen.http /api/generate", spans[0].Name)
	assert.NotEmpty(t, traceparent, "trace context should propagate to the service")
	assert.True(t, strings.Contains(traceparent, spans[0].SpanContext.TraceID().String()))
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestInitFileExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "spans.json")
	shutdown, err := Init(context.Background(), nil, Config{Enabled: true, File: path})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "unit-of-work")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Name":"unit-of-work"`)
}
