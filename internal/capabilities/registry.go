package capabilities

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Capability names with registered parameter schemas.
const (
	CapabilityWorksheet   = "worksheet"
	CapabilityLessonPlan  = "lesson-plan"
	CapabilityQuiz        = "quiz"
	CapabilityExplanation = "explanation"
)

type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type WorksheetParams struct {
	Topic         string   `json:"topic" validate:"required"`
	Grade         string   `json:"grade" validate:"required"`
	QuestionCount int      `json:"questionCount" validate:"omitempty,min=1,max=50"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Focus         []string `json:"focus" validate:"omitempty,dive,min=1"`
}

type LessonPlanParams struct {
	Topic           string   `json:"topic" validate:"required"`
	Grade           string   `json:"grade" validate:"required"`
	DurationMinutes int      `json:"durationMinutes" validate:"omitempty,min=5,max=240"`
	Objectives      []string `json:"objectives" validate:"omitempty,dive,min=1"`
}

type QuizParams struct {
	Topic         string   `json:"topic" validate:"required"`
	QuestionCount int      `json:"questionCount" validate:"omitempty,min=1,max=30"`
	BlockTypes    []string `json:"blockTypes" validate:"omitempty,dive,oneof=multiple-choice open-question ordering categorization"`
}

type ExplanationParams struct {
	Concept  string `json:"concept" validate:"required"`
	Audience string `json:"audience"`
	Tone     string `json:"tone" validate:"omitempty,oneof=formal casual playful"`
}

// Registry maps capability identifiers to parameter prototypes. Unknown
// capabilities pass their input through unchanged: the permissive default is
// deliberate, so a new capability can ship before its schema does.
type Registry struct {
	validate *validator.Validate
	schemas  map[string]func() any
}

func NewRegistry() *Registry {
	v := validator.New()
	// report json field names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	r := &Registry{
		validate: v,
		schemas:  make(map[string]func() any),
	}
	r.Register(CapabilityWorksheet, func() any { return &WorksheetParams{} })
	r.Register(CapabilityLessonPlan, func() any { return &LessonPlanParams{} })
	r.Register(CapabilityQuiz, func() any { return &QuizParams{} })
	r.Register(CapabilityExplanation, func() any { return &ExplanationParams{} })
	return r
}

func (r *Registry) Register(capability string, prototype func() any) {
	r.schemas[strings.TrimSpace(capability)] = prototype
}

func (r *Registry) Known(capability string) bool {
	_, ok := r.schemas[strings.TrimSpace(capability)]
	return ok
}

// ValidateParams validates a loosely-typed parameter bag against the schema
// registered for capability. On success the typed, normalized parameters come
// back as a map; on failure the flattened field errors do. Capabilities
// without a registered schema return the input unchanged.
func (r *Registry) ValidateParams(capability string, params map[string]any) (map[string]any, []FieldError) {
	prototype, ok := r.schemas[strings.TrimSpace(capability)]
	if !ok {
		return params, nil
	}

	target := prototype()
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, []FieldError{{Path: "", Message: fmt.Sprintf("parameters are not encodable: %v", err)}}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, []FieldError{{Path: "", Message: fmt.Sprintf("parameters do not match the %s schema: %v", capability, err)}}
	}

	if err := r.validate.Struct(target); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, []FieldError{{Path: "", Message: err.Error()}}
		}
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{
				Path:    fieldPath(fe),
				Message: fieldMessage(fe),
			})
		}
		return nil, out
	}

	normalized, err := json.Marshal(target)
	if err != nil {
		return nil, []FieldError{{Path: "", Message: err.Error()}}
	}
	var typed map[string]any
	if err := json.Unmarshal(normalized, &typed); err != nil {
		return nil, []FieldError{{Path: "", Message: err.Error()}}
	}
	return typed, nil
}

// fieldPath trims the struct type prefix from the validator namespace, so
// "WorksheetParams.topic" reports as "topic".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
