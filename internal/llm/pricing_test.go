package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  float64 // input price; 0 means unknown
	}{
		{"claude-haiku-4-5", 1},
		{"claude-haiku-4-5-20251001", 1},
		{"anthropic/claude-haiku-4-5", 1},
		{"gpt-4o-2024-08-06", 2.5},
		{"openai/gpt-4o-mini", 0.15},
		{"claude-3-5-haiku-latest", 0.8},
		{"GEMINI-2.5-FLASH", 0.3},
		{"mock", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			c := LookupCost(tt.model)
			if tt.want == 0 {
				if c != nil {
					t.Errorf("LookupCost(%q) = %+v, want nil", tt.model, c)
				}
				return
			}
			if c == nil || c.InputPerMTok != tt.want {
				t.Errorf("LookupCost(%q) = %+v, want input %v", tt.model, c, tt.want)
			}
		})
	}
}

func TestModelCost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	got := c.Cost(2000, 1000)
	if math.Abs(got-0.007) > 1e-9 {
		t.Errorf("Cost = %v, want 0.007", got)
	}
}
