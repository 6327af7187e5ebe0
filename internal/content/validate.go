package content

import (
	"fmt"
	"strings"

	"github.com/brightpath/brightpath-backend/internal/types"
)

// FieldError is one human-readable validation failure, addressed by the
// JSON path of the offending field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of validating a single activity block. Valid results
// carry the narrowed block with normalized content; invalid results carry
// the full failure list. Content problems are never Go errors.
type Result struct {
	Valid  bool                 `json:"valid"`
	Block  *types.ActivityBlock `json:"block,omitempty"`
	Errors []FieldError         `json:"errors,omitempty"`
}

func invalid(errs ...FieldError) Result {
	return Result{Valid: false, Errors: errs}
}

// Validate checks an untyped content payload against the shape expected for
// blockType and returns either the validated block or the failure list.
func Validate(blockType string, payload map[string]any) Result {
	block := types.ActivityBlock{
		Type:    strings.TrimSpace(blockType),
		Content: payload,
	}
	return ValidateBlock(block)
}

// ValidateBlock validates a full block record, dispatching on the type
// discriminator. Unknown types are rejected rather than passed through:
// a block the player cannot render must not reach storage.
func ValidateBlock(block types.ActivityBlock) Result {
	if block.Content == nil {
		return invalid(FieldError{Path: "content", Message: "content is required"})
	}
	switch strings.TrimSpace(block.Type) {
	case types.BlockTypeMultipleChoice:
		return validateMultipleChoice(block)
	case types.BlockTypeOpenQuestion:
		return validateOpenQuestion(block)
	case types.BlockTypeOrdering:
		return validateOrdering(block)
	case types.BlockTypeCategorization:
		return validateCategorization(block)
	case "":
		return invalid(FieldError{Path: "type", Message: "type is required"})
	default:
		return invalid(FieldError{Path: "type", Message: fmt.Sprintf("unknown block type %q", block.Type)})
	}
}

// UnitResult aggregates per-block results for a whole learning unit.
type UnitResult struct {
	Valid  bool                  `json:"valid"`
	Blocks []types.ActivityBlock `json:"blocks,omitempty"`
	Errors []FieldError          `json:"errors,omitempty"`
}

// ValidateUnit validates every block of a unit, prefixing failure paths with
// the block index so callers can point at the exact offender.
func ValidateUnit(blocks []types.ActivityBlock) UnitResult {
	out := UnitResult{Valid: true}
	for i, b := range blocks {
		res := ValidateBlock(b)
		if res.Valid {
			out.Blocks = append(out.Blocks, *res.Block)
			continue
		}
		out.Valid = false
		for _, fe := range res.Errors {
			out.Errors = append(out.Errors, FieldError{
				Path:    fmt.Sprintf("activityBlocks[%d].%s", i, fe.Path),
				Message: fe.Message,
			})
		}
	}
	return out
}

func validateMultipleChoice(block types.ActivityBlock) Result {
	var errs []FieldError

	question := strings.TrimSpace(stringFromAny(block.Content["question"]))
	if question == "" {
		errs = append(errs, FieldError{Path: "content.question", Message: "question is required"})
	}

	options, flaggedIdx, optErrs := normalizeOptions(block.Content["options"])
	errs = append(errs, optErrs...)
	if len(optErrs) == 0 && len(options) < 2 {
		errs = append(errs, FieldError{Path: "content.options", Message: "at least 2 options are required"})
	}

	correct := strings.TrimSpace(stringFromAny(block.Content["correctAnswer"]))
	if correct == "" && flaggedIdx >= 0 {
		correct = options[flaggedIdx]
	}
	if correct == "" {
		errs = append(errs, FieldError{Path: "content.correctAnswer", Message: "correctAnswer is required"})
	} else if len(options) > 0 && !containsString(options, correct) {
		errs = append(errs, FieldError{
			Path:    "content.correctAnswer",
			Message: fmt.Sprintf("correctAnswer %q is not one of the options", correct),
		})
	}

	if len(errs) > 0 {
		return invalid(errs...)
	}

	content := map[string]any{
		"question":      question,
		"options":       toAnySlice(options),
		"correctAnswer": correct,
	}
	if expl := strings.TrimSpace(stringFromAny(block.Content["explanation"])); expl != "" {
		content["explanation"] = expl
	}
	return Result{Valid: true, Block: narrowed(block, content)}
}

func validateOpenQuestion(block types.ActivityBlock) Result {
	question := strings.TrimSpace(stringFromAny(block.Content["question"]))
	if question == "" {
		return invalid(FieldError{Path: "content.question", Message: "question is required"})
	}
	content := map[string]any{"question": question}
	if sa := strings.TrimSpace(stringFromAny(block.Content["sampleAnswer"])); sa != "" {
		content["sampleAnswer"] = sa
	}
	if hints := stringSliceFromAny(block.Content["evaluationHints"]); len(hints) > 0 {
		content["evaluationHints"] = toAnySlice(hints)
	}
	return Result{Valid: true, Block: narrowed(block, content)}
}

func validateOrdering(block types.ActivityBlock) Result {
	var errs []FieldError

	instruction := strings.TrimSpace(stringFromAny(block.Content["instruction"]))
	if instruction == "" {
		errs = append(errs, FieldError{Path: "content.instruction", Message: "instruction is required"})
	}

	items := stringSliceFromAny(block.Content["items"])
	if len(items) < 2 {
		errs = append(errs, FieldError{Path: "content.items", Message: "at least 2 items are required"})
	}

	order, ok := intSliceFromAny(block.Content["correctOrder"])
	if !ok {
		errs = append(errs, FieldError{Path: "content.correctOrder", Message: "correctOrder must be an array of item indices"})
	} else if len(items) >= 2 && !isPermutation(order, len(items)) {
		errs = append(errs, FieldError{
			Path:    "content.correctOrder",
			Message: fmt.Sprintf("correctOrder must be a permutation of indices 0..%d", len(items)-1),
		})
	}

	if len(errs) > 0 {
		return invalid(errs...)
	}
	content := map[string]any{
		"instruction":  instruction,
		"items":        toAnySlice(items),
		"correctOrder": intsToAnySlice(order),
	}
	return Result{Valid: true, Block: narrowed(block, content)}
}

func validateCategorization(block types.ActivityBlock) Result {
	var errs []FieldError

	instruction := strings.TrimSpace(stringFromAny(block.Content["instruction"]))
	if instruction == "" {
		errs = append(errs, FieldError{Path: "content.instruction", Message: "instruction is required"})
	}

	categories := stringSliceFromAny(block.Content["categories"])
	if len(categories) < 2 {
		errs = append(errs, FieldError{Path: "content.categories", Message: "at least 2 categories are required"})
	}

	rawItems, _ := block.Content["items"].([]any)
	if len(rawItems) == 0 {
		errs = append(errs, FieldError{Path: "content.items", Message: "at least 1 item is required"})
	}
	items := make([]map[string]any, 0, len(rawItems))
	for i, raw := range rawItems {
		m, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, FieldError{Path: fmt.Sprintf("content.items[%d]", i), Message: "item must be an object with text and category"})
			continue
		}
		text := strings.TrimSpace(stringFromAny(m["text"]))
		cat := strings.TrimSpace(stringFromAny(m["category"]))
		if text == "" {
			errs = append(errs, FieldError{Path: fmt.Sprintf("content.items[%d].text", i), Message: "text is required"})
			continue
		}
		if len(categories) >= 2 && !containsString(categories, cat) {
			errs = append(errs, FieldError{
				Path:    fmt.Sprintf("content.items[%d].category", i),
				Message: fmt.Sprintf("category %q is not one of the categories", cat),
			})
			continue
		}
		items = append(items, map[string]any{"text": text, "category": cat})
	}

	if len(errs) > 0 {
		return invalid(errs...)
	}
	content := map[string]any{
		"instruction": instruction,
		"categories":  toAnySlice(categories),
		"items":       mapsToAnySlice(items),
	}
	return Result{Valid: true, Block: narrowed(block, content)}
}

func narrowed(block types.ActivityBlock, content map[string]any) *types.ActivityBlock {
	return &types.ActivityBlock{
		ID:       block.ID,
		Type:     strings.TrimSpace(block.Type),
		Content:  content,
		Metadata: block.Metadata,
	}
}

// normalizeOptions accepts both the plain string form and the object form
// {text, correct}. It returns the flattened option texts and the index of
// an explicitly flagged correct option (-1 when absent).
func normalizeOptions(v any) ([]string, int, []FieldError) {
	raw, ok := v.([]any)
	if !ok {
		return nil, -1, []FieldError{{Path: "content.options", Message: "options must be an array"}}
	}
	var errs []FieldError
	options := make([]string, 0, len(raw))
	flagged := -1
	for i, item := range raw {
		switch o := item.(type) {
		case string:
			text := strings.TrimSpace(o)
			if text == "" {
				errs = append(errs, FieldError{Path: fmt.Sprintf("content.options[%d]", i), Message: "option must not be empty"})
				continue
			}
			options = append(options, text)
		case map[string]any:
			text := strings.TrimSpace(stringFromAny(o["text"]))
			if text == "" {
				errs = append(errs, FieldError{Path: fmt.Sprintf("content.options[%d].text", i), Message: "option text must not be empty"})
				continue
			}
			if b, ok := o["correct"].(bool); ok && b && flagged < 0 {
				flagged = len(options)
			}
			options = append(options, text)
		default:
			errs = append(errs, FieldError{Path: fmt.Sprintf("content.options[%d]", i), Message: "option must be a string or an object"})
		}
	}
	return options, flagged, errs
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func stringFromAny(v any) string {
	s, _ := v.(string)
	return s
}

func stringSliceFromAny(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s := strings.TrimSpace(stringFromAny(item))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func intSliceFromAny(v any) ([]int, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			if n != float64(int(n)) {
				return nil, false
			}
			out = append(out, int(n))
		case int:
			out = append(out, n)
		default:
			return nil, false
		}
	}
	return out, true
}

func toAnySlice(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

func intsToAnySlice(list []int) []any {
	out := make([]any, len(list))
	for i, n := range list {
		out[i] = n
	}
	return out
}

func mapsToAnySlice(list []map[string]any) []any {
	out := make([]any, len(list))
	for i, m := range list {
		out[i] = m
	}
	return out
}
