package ai

import (
	"testing"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced json block",
			input: "Here you go:\n```json\n{\"prediction\": \"BUY\"}\n```",
			want:  `{"prediction": "BUY"}`,
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "bare json with surrounding prose",
			input: "Sure! {\"a\": 1} Hope that helps.",
			want:  `{"a": 1}`,
		},
		{
			name:  "unterminated fence",
			input: "```json\n{\"a\": 1}",
			want:  "",
		},
		{
			name:  "no json at all",
			input: "I cannot answer that.",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateInsight(t *testing.T) {
	valid := func() *domain.Insight {
		return &domain.Insight{
			Prediction: domain.PredictionBuy,
			Confidence: 80,
			StopLoss:   "$24,800",
			TakeProfit: "$26,200",
		}
	}

	if err := validateInsight(valid()); err != nil {
		t.Fatalf("valid insight rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.Insight)
	}{
		{"unknown prediction", func(i *domain.Insight) { i.Prediction = "LONG" }},
		{"confidence too high", func(i *domain.Insight) { i.Confidence = 101 }},
		{"negative shadow score", func(i *domain.Insight) { i.ShadowScore = -1 }},
		{"missing stop loss", func(i *domain.Insight) { i.StopLoss = "" }},
		{"missing take profit", func(i *domain.Insight) { i.TakeProfit = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insight := valid()
			tt.mutate(insight)
			if err := validateInsight(insight); err == nil {
				t.Errorf("invalid insight accepted")
			}
		})
	}
}

func TestNarrowHistory(t *testing.T) {
	t.Run("maps roles to chat api", func(t *testing.T) {
		history := []ChatTurn{
			{Role: RoleUser, Content: "status?"},
			{Role: RoleModel, Content: "all systems nominal"},
		}
		messages, err := NarrowHistory(history)
		if err != nil {
			t.Fatalf("NarrowHistory failed: %v", err)
		}
		if len(messages) != 2 {
			t.Fatalf("got %d messages, want 2", len(messages))
		}
		if messages[0].Role != "user" || messages[1].Role != "assistant" {
			t.Errorf("roles = %s/%s, want user/assistant", messages[0].Role, messages[1].Role)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		if _, err := NarrowHistory([]ChatTurn{{Role: "system", Content: "x"}}); err == nil {
			t.Error("unknown role accepted")
		}
	})

	t.Run("empty content rejected", func(t *testing.T) {
		if _, err := NarrowHistory([]ChatTurn{{Role: RoleUser}}); err == nil {
			t.Error("empty content accepted")
		}
	})
}
