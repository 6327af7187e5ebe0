package player

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/types"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewManager(log)
}

func mcBlock(question, correct string, options ...string) types.ActivityBlock {
	opts := make([]any, len(options))
	for i, o := range options {
		opts[i] = o
	}
	return types.ActivityBlock{
		ID:   uuid.NewString(),
		Type: types.BlockTypeMultipleChoice,
		Content: map[string]any{
			"question":      question,
			"options":       opts,
			"correctAnswer": correct,
		},
	}
}

func TestPlayer_CorrectAnswerRevealsNext(t *testing.T) {
	m := testManager(t)
	s, err := m.Start(uuid.New(), uuid.New(), []types.ActivityBlock{
		mcBlock("2+2?", "4", "3", "4", "5"),
		mcBlock("3+3?", "6", "5", "6"),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Phase != PhaseViewing || s.BlockIndex != 0 {
		t.Fatalf("expected viewing(0), got %s(%d)", s.Phase, s.BlockIndex)
	}

	s, err = m.Submit(s.ID, Answer{Option: "4"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if s.Phase != PhaseAnswered || !s.LastFeedback.Correct {
		t.Fatalf("expected answered(correct), got %s %+v", s.Phase, s.LastFeedback)
	}
	if !strings.Contains(s.LastFeedback.Message, "Correct") {
		t.Fatalf("expected feedback containing Correct, got %q", s.LastFeedback.Message)
	}
	if !s.CanAdvance() {
		t.Fatalf("expected next action available")
	}

	s, err = m.Advance(s.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Phase != PhaseViewing || s.BlockIndex != 1 {
		t.Fatalf("expected viewing(1), got %s(%d)", s.Phase, s.BlockIndex)
	}
}

func TestPlayer_IncorrectAnswerLocksAdvance(t *testing.T) {
	m := testManager(t)
	s, _ := m.Start(uuid.New(), uuid.New(), []types.ActivityBlock{
		mcBlock("2+2?", "4", "3", "4", "5"),
	})

	s, err := m.Submit(s.ID, Answer{Option: "3"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if s.LastFeedback.Correct {
		t.Fatalf("expected incorrect")
	}
	if !strings.Contains(s.LastFeedback.Message, "Incorrect") {
		t.Fatalf("expected feedback containing Incorrect, got %q", s.LastFeedback.Message)
	}
	if s.CanAdvance() {
		t.Fatalf("expected next action withheld")
	}

	if _, err := m.Advance(s.ID); err != ErrAdvanceLocked {
		t.Fatalf("expected ErrAdvanceLocked, got %v", err)
	}

	// resubmission allowed
	s, err = m.Submit(s.ID, Answer{Option: "4"})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !s.LastFeedback.Correct {
		t.Fatalf("expected correct after resubmission")
	}
}

func TestPlayer_CompletionAfterLastBlock(t *testing.T) {
	m := testManager(t)
	var completed []uuid.UUID
	m.OnComplete = func(s Session) { completed = append(completed, s.ID) }

	s, _ := m.Start(uuid.New(), uuid.New(), []types.ActivityBlock{
		mcBlock("2+2?", "4", "3", "4"),
	})
	s, _ = m.Submit(s.ID, Answer{Option: "4"})
	s, err := m.Advance(s.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Phase != PhaseCompleted || s.CompletedAt == nil {
		t.Fatalf("expected completed session, got %s", s.Phase)
	}
	if len(completed) != 1 || completed[0] != s.ID {
		t.Fatalf("expected completion callback once, got %v", completed)
	}

	if _, err := m.Submit(s.ID, Answer{Option: "4"}); err != ErrSessionCompleted {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
}

func TestPlayer_SubmitAfterCorrectRejected(t *testing.T) {
	m := testManager(t)
	s, _ := m.Start(uuid.New(), uuid.New(), []types.ActivityBlock{
		mcBlock("q1", "a", "a", "b"),
		mcBlock("q2", "b", "a", "b"),
	})
	s, _ = m.Submit(s.ID, Answer{Option: "a"})
	if _, err := m.Submit(s.ID, Answer{Option: "b"}); err != ErrAlreadyCorrect {
		t.Fatalf("expected ErrAlreadyCorrect, got %v", err)
	}
}

func TestPlayer_StartDropsInvalidBlocks(t *testing.T) {
	m := testManager(t)
	s, err := m.Start(uuid.New(), uuid.New(), []types.ActivityBlock{
		mcBlock("ok", "a", "a", "b"),
		{Type: types.BlockTypeMultipleChoice, Content: map[string]any{
			"question":      "broken",
			"options":       []any{"x", "y"},
			"correctAnswer": "z",
		}},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(s.Blocks) != 1 {
		t.Fatalf("expected invalid block dropped, got %d blocks", len(s.Blocks))
	}
}

func TestPlayer_StartWithNoValidBlocksFails(t *testing.T) {
	m := testManager(t)
	if _, err := m.Start(uuid.New(), uuid.New(), nil); err != ErrNoBlocks {
		t.Fatalf("expected ErrNoBlocks, got %v", err)
	}
}

func TestPlayer_OrderingAndCategorizationScoring(t *testing.T) {
	m := testManager(t)
	blocks := []types.ActivityBlock{
		{
			ID:   "ord",
			Type: types.BlockTypeOrdering,
			Content: map[string]any{
				"instruction":  "order",
				"items":        []any{"first", "second", "third"},
				"correctOrder": []any{float64(0), float64(1), float64(2)},
			},
		},
		{
			ID:   "cat",
			Type: types.BlockTypeCategorization,
			Content: map[string]any{
				"instruction": "sort",
				"categories":  []any{"fruit", "rock"},
				"items": []any{
					map[string]any{"text": "apple", "category": "fruit"},
					map[string]any{"text": "granite", "category": "rock"},
				},
			},
		},
	}
	s, err := m.Start(uuid.New(), uuid.New(), blocks)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	s, _ = m.Submit(s.ID, Answer{Order: []int{1, 0, 2}})
	if s.LastFeedback.Correct {
		t.Fatalf("expected wrong order rejected")
	}
	s, _ = m.Submit(s.ID, Answer{Order: []int{0, 1, 2}})
	if !s.LastFeedback.Correct {
		t.Fatalf("expected correct order accepted")
	}
	s, _ = m.Advance(s.ID)

	s, _ = m.Submit(s.ID, Answer{Assignments: map[string]string{"apple": "rock", "granite": "rock"}})
	if s.LastFeedback.Correct {
		t.Fatalf("expected wrong assignment rejected")
	}
	s, _ = m.Submit(s.ID, Answer{Assignments: map[string]string{"apple": "fruit", "granite": "rock"}})
	if !s.LastFeedback.Correct {
		t.Fatalf("expected full assignment accepted")
	}
}
