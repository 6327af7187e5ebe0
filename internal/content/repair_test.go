package content

import (
	"testing"

	"github.com/brightpath/brightpath-backend/internal/types"
)

func TestRepairAnswerKey_ConsistentPayloadUnchanged(t *testing.T) {
	payload := map[string]any{
		"question":      "2+2?",
		"options":       []any{"3", "4"},
		"correctAnswer": "4",
	}
	repaired, outcome := RepairAnswerKey(payload)
	if outcome.Changed {
		t.Fatalf("expected no change, got %+v", outcome)
	}
	if repaired["correctAnswer"] != "4" {
		t.Fatalf("payload mutated: %v", repaired["correctAnswer"])
	}
}

func TestRepairAnswerKey_PrefersFlaggedOption(t *testing.T) {
	payload := map[string]any{
		"question": "q",
		"options": []any{
			map[string]any{"text": "alpha"},
			map[string]any{"text": "beta", "correct": true},
		},
		"correctAnswer": "gamma",
	}
	_, outcome := RepairAnswerKey(payload)
	if !outcome.Changed || outcome.Strategy != StrategyFlaggedOption {
		t.Fatalf("expected flagged_option repair, got %+v", outcome)
	}
	if outcome.NewValue != "beta" {
		t.Fatalf("expected beta, got %q", outcome.NewValue)
	}
}

func TestRepairAnswerKey_FuzzyMatchesCaseAndPunctuation(t *testing.T) {
	payload := map[string]any{
		"question":      "q",
		"options":       []any{"The mitochondria", "The nucleus"},
		"correctAnswer": "the mitochondria.",
	}
	repaired, outcome := RepairAnswerKey(payload)
	if !outcome.Changed || outcome.Strategy != StrategyFuzzyMatch {
		t.Fatalf("expected fuzzy_match repair, got %+v", outcome)
	}
	if repaired["correctAnswer"] != "The mitochondria" {
		t.Fatalf("expected canonical option, got %v", repaired["correctAnswer"])
	}
}

func TestRepairAnswerKey_FallsBackToFirstOption(t *testing.T) {
	payload := map[string]any{
		"question":      "q",
		"options":       []any{"red", "blue"},
		"correctAnswer": "elephant",
	}
	_, outcome := RepairAnswerKey(payload)
	if !outcome.Changed || outcome.Strategy != StrategyFirstOption {
		t.Fatalf("expected first_option repair, got %+v", outcome)
	}
	if outcome.NewValue != "red" {
		t.Fatalf("expected first option, got %q", outcome.NewValue)
	}
}

func TestRepairAnswerKey_RunningTwiceIsHarmless(t *testing.T) {
	payload := map[string]any{
		"question":      "q",
		"options":       []any{"red", "blue"},
		"correctAnswer": "elephant",
	}
	once, first := RepairAnswerKey(payload)
	if !first.Changed {
		t.Fatalf("expected first pass to repair")
	}
	_, second := RepairAnswerKey(once)
	if second.Changed {
		t.Fatalf("expected second pass to be a no-op, got %+v", second)
	}
}

func TestNormalizeBlockShape_UnwrapsStringContent(t *testing.T) {
	raw := map[string]any{
		"id":      "b1",
		"type":    "multiple-choice",
		"content": `{"question":"q","options":["a","b"],"correctAnswer":"a"}`,
	}
	block, changed, ok := NormalizeBlockShape(raw)
	if !ok || !changed {
		t.Fatalf("expected normalized block, ok=%v changed=%v", ok, changed)
	}
	if block.Content["question"] != "q" {
		t.Fatalf("content not decoded: %+v", block.Content)
	}
}

func TestNormalizeBlockShape_InfersMissingType(t *testing.T) {
	raw := map[string]any{
		"id": "b2",
		"content": map[string]any{
			"question":      "q",
			"options":       []any{"a", "b"},
			"correctAnswer": "a",
		},
	}
	block, changed, ok := NormalizeBlockShape(raw)
	if !ok || !changed {
		t.Fatalf("expected inferred type, ok=%v changed=%v", ok, changed)
	}
	if block.Type != types.BlockTypeMultipleChoice {
		t.Fatalf("expected multiple-choice, got %q", block.Type)
	}
}

func TestNormalizeBlockShape_RejectsGarbage(t *testing.T) {
	if _, _, ok := NormalizeBlockShape(map[string]any{"content": "not json"}); ok {
		t.Fatalf("expected rejection of undecodable content")
	}
	if _, _, ok := NormalizeBlockShape(map[string]any{"content": map[string]any{"weird": true}}); ok {
		t.Fatalf("expected rejection when type cannot be inferred")
	}
}
