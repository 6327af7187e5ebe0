package types

// Pure JSON contract for activity-block content. Not a DB model.

const (
	BlockTypeMultipleChoice = "multiple-choice"
	BlockTypeOpenQuestion   = "open-question"
	BlockTypeOrdering       = "ordering"
	BlockTypeCategorization = "categorization"
)

// ActivityBlock is one discrete interaction inside a learning unit.
// Content is the tagged union selected by Type.
type ActivityBlock struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"` // multiple-choice|open-question|ordering|categorization
	Content  map[string]any `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type MultipleChoiceContent struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

type OpenQuestionContent struct {
	Question        string   `json:"question"`
	SampleAnswer    string   `json:"sampleAnswer,omitempty"`
	EvaluationHints []string `json:"evaluationHints,omitempty"`
}

type OrderingContent struct {
	Instruction  string   `json:"instruction"`
	Items        []string `json:"items"`
	CorrectOrder []int    `json:"correctOrder"` // permutation of item indices
}

type CategorizationContent struct {
	Instruction string               `json:"instruction"`
	Categories  []string             `json:"categories"`
	Items       []CategorizationItem `json:"items"`
}

type CategorizationItem struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}
