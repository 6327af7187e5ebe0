package capabilities

import (
	"testing"
)

func TestValidateParams_UnknownCapabilityPassesThrough(t *testing.T) {
	r := NewRegistry()
	params := map[string]any{"anything": "goes", "count": float64(7)}
	out, errs := r.ValidateParams("summarize-notes", params)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(out) != 2 || out["anything"] != "goes" {
		t.Fatalf("expected input returned unchanged, got %v", out)
	}
}

func TestValidateParams_WorksheetRejectsMissingTopic(t *testing.T) {
	r := NewRegistry()
	_, errs := r.ValidateParams(CapabilityWorksheet, map[string]any{
		"grade": "5",
	})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Path != "topic" || errs[0].Message != "is required" {
		t.Fatalf("expected topic/is required, got %+v", errs[0])
	}
}

func TestValidateParams_WorksheetAccepts(t *testing.T) {
	r := NewRegistry()
	out, errs := r.ValidateParams(CapabilityWorksheet, map[string]any{
		"topic":         "fractions",
		"grade":         "5",
		"questionCount": float64(10),
		"difficulty":    "medium",
	})
	if len(errs) != 0 {
		t.Fatalf("expected valid, got %v", errs)
	}
	if out["topic"] != "fractions" {
		t.Fatalf("expected typed params back, got %v", out)
	}
}

func TestValidateParams_QuizRejectsUnknownBlockType(t *testing.T) {
	r := NewRegistry()
	_, errs := r.ValidateParams(CapabilityQuiz, map[string]any{
		"topic":      "algebra",
		"blockTypes": []any{"multiple-choice", "true-false"},
	})
	if len(errs) == 0 {
		t.Fatalf("expected blockTypes error")
	}
}

func TestValidateParams_RangeBounds(t *testing.T) {
	r := NewRegistry()
	_, errs := r.ValidateParams(CapabilityLessonPlan, map[string]any{
		"topic":           "geometry",
		"grade":           "7",
		"durationMinutes": float64(2),
	})
	if len(errs) != 1 || errs[0].Path != "durationMinutes" {
		t.Fatalf("expected durationMinutes bound error, got %v", errs)
	}
}

func TestValidateParams_NonDecodableBag(t *testing.T) {
	r := NewRegistry()
	_, errs := r.ValidateParams(CapabilityExplanation, map[string]any{
		"concept": []any{"not", "a", "string"},
	})
	if len(errs) == 0 {
		t.Fatalf("expected decode error")
	}
}
