package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/studyloop/internal/llm"
)

func mockResponse(v any) llm.MockResponse {
	b, _ := json.Marshal(v)
	return llm.MockResponse{Content: b}
}

var validQuiz = map[string]any{
	"concepts": []string{"Cells", "Energy"},
	"questions": []map[string]any{
		{
			"type": "multiple_choice", "question": "Where is ATP made?",
			"options": []string{"Mitochondria", "Nucleus", "Ribosome", "Golgi"}, "correct_answer": "Mitochondria",
			"explanation": "Section 2.", "difficulty": "easy", "concept": "Energy",
		},
		{
			"type": "short_answer", "question": "Define a cell.", "options": []string{},
			"correct_answer": "The basic unit of life.", "explanation": "Intro.", "difficulty": "medium", "concept": "Cells",
		},
	},
}

func TestLLMGeneratorGenerate(t *testing.T) {
	provider := llm.NewMockProvider(mockResponse(validQuiz))
	g := NewLLMGenerator(provider, DefaultLLMConfig(), nil)

	res, err := g.Generate(context.Background(), GenerateInput{Text: "Cells make ATP.", SessionID: "s1", Options: DefaultOptions()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(res.Questions))
	}
	if res.Questions[0].ID != "s1_q0" || res.Questions[1].ID != "s1_q1" {
		t.Errorf("ids = %q, %q", res.Questions[0].ID, res.Questions[1].ID)
	}
	if len(res.Concepts) != 2 || res.Concepts[0] != "Cells" {
		t.Errorf("concepts = %v", res.Concepts)
	}

	req := provider.Calls[0]
	if req.Schema != QuizSchema {
		t.Errorf("schema = %v, want quiz schema", req.Schema.Name)
	}
	if !strings.Contains(req.Messages[0].Content, "Cells make ATP.") {
		t.Errorf("prompt does not include the document: %q", req.Messages[0].Content)
	}
}

func TestLLMGeneratorRejectsUngradableQuestion(t *testing.T) {
	bad := map[string]any{
		"concepts": []string{"Cells"},
		"questions": []map[string]any{{
			"type": "multiple_choice", "question": "Pick", "options": []string{"a", "b"},
			"correct_answer": "c", "explanation": "", "difficulty": "easy", "concept": "Cells",
		}},
	}
	g := NewLLMGenerator(llm.NewMockProvider(mockResponse(bad)), DefaultLLMConfig(), nil)

	_, err := g.Generate(context.Background(), GenerateInput{SessionID: "s"})
	var serr *ServiceError
	if !errors.As(err, &serr) || serr.Kind != KindInvalidResponse {
		t.Fatalf("err = %T %v, want invalid_response", err, err)
	}
}

func TestLLMGeneratorErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		connectivity bool
		kind         ErrorKind
	}{
		{"unavailable", &llm.ErrProviderUnavailable{}, true, ""},
		{"rate limit", &llm.ErrRateLimit{}, false, KindRateLimited},
		{"rejected", &llm.ErrRequestRejected{Status: 401, Err: errors.New("bad key")}, false, KindAPIError},
		{"invalid", &llm.ErrInvalidResponse{Err: errors.New("schema")}, false, KindInvalidResponse},
		{"truncated", &llm.ErrMaxTokensExceeded{}, false, KindInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewLLMGenerator(llm.NewMockProvider(llm.MockResponse{Err: tt.err}), DefaultLLMConfig(), nil)
			_, err := g.Generate(context.Background(), GenerateInput{SessionID: "s"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := IsConnectivity(err); got != tt.connectivity {
				t.Errorf("IsConnectivity = %v, want %v (%v)", got, tt.connectivity, err)
			}
			if tt.kind != "" {
				var serr *ServiceError
				if !errors.As(err, &serr) || serr.Kind != tt.kind {
					t.Errorf("err = %v, want kind %s", err, tt.kind)
				}
			}
		})
	}
}

func TestLLMGeneratorMore(t *testing.T) {
	more := map[string]any{
		"questions": []map[string]any{{
			"type": "short_answer", "question": "What is glycolysis?", "options": []string{},
			"correct_answer": "Glucose breakdown.", "explanation": "", "difficulty": "hard", "concept": "Energy",
		}},
	}
	provider := llm.NewMockProvider(mockResponse(more))
	g := NewLLMGenerator(provider, DefaultLLMConfig(), nil)

	qs, err := g.GenerateMore(context.Background(), MoreInput{SessionID: "s1", Seed: "s1_more1", Concepts: []string{"Energy"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 || qs[0].ID != "s1_more1_q0" {
		t.Errorf("questions = %+v", qs)
	}
	if provider.Calls[0].Schema != MoreSchema {
		t.Error("generate-more should use the more-questions schema")
	}
	if !strings.Contains(provider.Calls[0].Messages[0].Content, "Already asked:\nNone") {
		t.Errorf("prompt = %q", provider.Calls[0].Messages[0].Content)
	}
}

func TestLLMGeneratorTagsPurpose(t *testing.T) {
	rec := &purposeRecorder{}
	g := NewLLMGenerator(rec, DefaultLLMConfig(), nil)
	g.Generate(context.Background(), GenerateInput{SessionID: "s"})
	g.GenerateMore(context.Background(), MoreInput{SessionID: "s"})

	want := []string{llm.PurposeQuestions, llm.PurposeMoreQuestions}
	if len(rec.purposes) != 2 || rec.purposes[0] != want[0] || rec.purposes[1] != want[1] {
		t.Errorf("purposes = %v, want %v", rec.purposes, want)
	}
}

type purposeRecorder struct {
	purposes []string
}

func (p *purposeRecorder) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.purposes = append(p.purposes, llm.PurposeFrom(ctx))
	return nil, &llm.ErrProviderUnavailable{}
}

func (p *purposeRecorder) ModelID() string { return "recorder" }
