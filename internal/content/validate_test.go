package content

import (
	"strings"
	"testing"

	"github.com/brightpath/brightpath-backend/internal/types"
)

func mcPayload() map[string]any {
	return map[string]any{
		"question":      "2+2?",
		"options":       []any{"3", "4", "5"},
		"correctAnswer": "4",
	}
}

func TestValidate_MultipleChoice_Accepts(t *testing.T) {
	res := Validate(types.BlockTypeMultipleChoice, mcPayload())
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if res.Block == nil || res.Block.Content["correctAnswer"] != "4" {
		t.Fatalf("expected narrowed block with correctAnswer=4, got %+v", res.Block)
	}
}

func TestValidate_MultipleChoice_RejectsAnswerNotInOptions(t *testing.T) {
	payload := mcPayload()
	payload["correctAnswer"] = "6"
	res := Validate(types.BlockTypeMultipleChoice, payload)
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	found := false
	for _, fe := range res.Errors {
		if fe.Path == "content.correctAnswer" && strings.Contains(fe.Message, "not one of the options") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected correctAnswer membership error, got %v", res.Errors)
	}
}

func TestValidate_MultipleChoice_RejectsSingleOption(t *testing.T) {
	payload := map[string]any{
		"question":      "q",
		"options":       []any{"only"},
		"correctAnswer": "only",
	}
	res := Validate(types.BlockTypeMultipleChoice, payload)
	if res.Valid {
		t.Fatalf("expected invalid with fewer than 2 options")
	}
}

func TestValidate_MultipleChoice_FlaggedObjectOptionsFillMissingAnswer(t *testing.T) {
	payload := map[string]any{
		"question": "pick",
		"options": []any{
			map[string]any{"text": "a"},
			map[string]any{"text": "b", "correct": true},
		},
	}
	res := Validate(types.BlockTypeMultipleChoice, payload)
	if !res.Valid {
		t.Fatalf("expected valid, got %v", res.Errors)
	}
	if res.Block.Content["correctAnswer"] != "b" {
		t.Fatalf("expected flagged option promoted to correctAnswer, got %v", res.Block.Content["correctAnswer"])
	}
}

func TestValidate_UnknownTypeRejected(t *testing.T) {
	res := Validate("matching", map[string]any{"question": "q"})
	if res.Valid {
		t.Fatalf("expected unknown type to be rejected")
	}
	if len(res.Errors) != 1 || res.Errors[0].Path != "type" {
		t.Fatalf("expected single type error, got %v", res.Errors)
	}
}

func TestValidate_Ordering_RejectsNonPermutation(t *testing.T) {
	payload := map[string]any{
		"instruction":  "order these",
		"items":        []any{"a", "b", "c"},
		"correctOrder": []any{float64(0), float64(0), float64(2)},
	}
	res := Validate(types.BlockTypeOrdering, payload)
	if res.Valid {
		t.Fatalf("expected invalid for duplicate indices")
	}
}

func TestValidate_Ordering_Accepts(t *testing.T) {
	payload := map[string]any{
		"instruction":  "order these",
		"items":        []any{"a", "b", "c"},
		"correctOrder": []any{float64(2), float64(0), float64(1)},
	}
	res := Validate(types.BlockTypeOrdering, payload)
	if !res.Valid {
		t.Fatalf("expected valid, got %v", res.Errors)
	}
}

func TestValidate_Categorization_RejectsUnknownCategory(t *testing.T) {
	payload := map[string]any{
		"instruction": "sort",
		"categories":  []any{"fruit", "vegetable"},
		"items": []any{
			map[string]any{"text": "apple", "category": "fruit"},
			map[string]any{"text": "granite", "category": "mineral"},
		},
	}
	res := Validate(types.BlockTypeCategorization, payload)
	if res.Valid {
		t.Fatalf("expected invalid for unknown category")
	}
	if !strings.Contains(res.Errors[0].Path, "items[1]") {
		t.Fatalf("expected error pointing at items[1], got %v", res.Errors)
	}
}

func TestValidate_OpenQuestion_RequiresQuestion(t *testing.T) {
	res := Validate(types.BlockTypeOpenQuestion, map[string]any{"question": "  "})
	if res.Valid {
		t.Fatalf("expected invalid for blank question")
	}
}

func TestValidateUnit_PrefixesBlockIndex(t *testing.T) {
	blocks := []types.ActivityBlock{
		{Type: types.BlockTypeMultipleChoice, Content: mcPayload()},
		{Type: types.BlockTypeMultipleChoice, Content: map[string]any{
			"question":      "q",
			"options":       []any{"x", "y"},
			"correctAnswer": "z",
		}},
	}
	res := ValidateUnit(blocks)
	if res.Valid {
		t.Fatalf("expected unit invalid")
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("expected 1 accepted block, got %d", len(res.Blocks))
	}
	if !strings.HasPrefix(res.Errors[0].Path, "activityBlocks[1].") {
		t.Fatalf("expected index-prefixed path, got %q", res.Errors[0].Path)
	}
}
