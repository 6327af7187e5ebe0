package content

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/brightpath/brightpath-backend/internal/types"
)

// Repair strategies, in preference order.
const (
	StrategyFlaggedOption = "flagged_option"
	StrategyFuzzyMatch    = "fuzzy_match"
	StrategyFirstOption   = "first_option"
)

// fuzzy matches below this score are not trusted; the repair falls through
// to the first-option last resort.
const fuzzyAcceptThreshold = 0.5

type RepairOutcome struct {
	Changed  bool   `json:"changed"`
	Strategy string `json:"strategy,omitempty"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// RepairAnswerKey fixes a multiple-choice content payload whose
// correctAnswer does not reference an existing option. Preference order:
// an option explicitly flagged correct, then the closest fuzzy match to the
// stated answer, then the first option. Already-consistent payloads come
// back unchanged, so running a repair twice is harmless.
func RepairAnswerKey(content map[string]any) (map[string]any, RepairOutcome) {
	options, flaggedIdx, errs := normalizeOptions(content["options"])
	if len(errs) > 0 || len(options) == 0 {
		return content, RepairOutcome{}
	}

	stated := strings.TrimSpace(stringFromAny(content["correctAnswer"]))
	if containsString(options, stated) {
		return content, RepairOutcome{}
	}

	var replacement, strategy string
	switch {
	case flaggedIdx >= 0:
		replacement = options[flaggedIdx]
		strategy = StrategyFlaggedOption
	default:
		if best, score := closestOption(stated, options); score >= fuzzyAcceptThreshold {
			replacement = best
			strategy = StrategyFuzzyMatch
		} else {
			replacement = options[0]
			strategy = StrategyFirstOption
		}
	}

	repaired := make(map[string]any, len(content))
	for k, v := range content {
		repaired[k] = v
	}
	repaired["correctAnswer"] = replacement
	return repaired, RepairOutcome{
		Changed:  true,
		Strategy: strategy,
		OldValue: stated,
		NewValue: replacement,
	}
}

// closestOption scores every option against the stated answer and returns
// the best one. Scoring: normalized equality, else containment either way,
// else token overlap.
func closestOption(stated string, options []string) (string, float64) {
	normStated := normalizeAnswer(stated)
	best, bestScore := "", 0.0
	for _, opt := range options {
		score := matchScore(normStated, normalizeAnswer(opt))
		if score > bestScore {
			best, bestScore = opt, score
		}
	}
	return best, bestScore
}

func matchScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if len(a) >= 3 && len(b) >= 3 && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return 0.9
	}
	return tokenOverlap(a, b)
}

func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for tok := range setA {
		if setB[tok] {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func tokenSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, tok := range strings.Fields(s) {
		out[tok] = true
	}
	return out
}

var answerPunctRE = regexp.MustCompile(`[.,;:!?'"()\[\]]+`)

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = answerPunctRE.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeBlockShape coerces a historically malformed raw block record into
// the current contract: content stored as a JSON string is unwrapped, a
// missing type discriminator is inferred from the content fields. Returns
// ok=false when the record cannot be made sense of.
func NormalizeBlockShape(raw map[string]any) (types.ActivityBlock, bool, bool) {
	changed := false

	block := types.ActivityBlock{
		ID:   strings.TrimSpace(stringFromAny(raw["id"])),
		Type: strings.TrimSpace(stringFromAny(raw["type"])),
	}
	if md, ok := raw["metadata"].(map[string]any); ok {
		block.Metadata = md
	}

	switch c := raw["content"].(type) {
	case map[string]any:
		block.Content = c
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(c), &decoded); err != nil || decoded == nil {
			return types.ActivityBlock{}, false, false
		}
		block.Content = decoded
		changed = true
	default:
		return types.ActivityBlock{}, false, false
	}

	if block.Type == "" {
		inferred := inferBlockType(block.Content)
		if inferred == "" {
			return types.ActivityBlock{}, false, false
		}
		block.Type = inferred
		changed = true
	}

	return block, changed, true
}

func inferBlockType(content map[string]any) string {
	_, hasOptions := content["options"]
	_, hasCorrect := content["correctAnswer"]
	_, hasItems := content["items"]
	_, hasOrder := content["correctOrder"]
	_, hasCategories := content["categories"]
	_, hasQuestion := content["question"]

	switch {
	case hasOptions && hasCorrect:
		return types.BlockTypeMultipleChoice
	case hasItems && hasOrder:
		return types.BlockTypeOrdering
	case hasCategories && hasItems:
		return types.BlockTypeCategorization
	case hasQuestion:
		return types.BlockTypeOpenQuestion
	default:
		return ""
	}
}
