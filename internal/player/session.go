package player

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/brightpath-backend/internal/content"
	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/types"
)

// Session phases. Advance is only legal from an answered-correct session;
// an incorrect answer keeps the learner on the same block.
type Phase string

const (
	PhaseViewing   Phase = "viewing"
	PhaseAnswered  Phase = "answered"
	PhaseCompleted Phase = "completed"
)

var (
	ErrSessionNotFound  = errors.New("player session not found")
	ErrSessionCompleted = errors.New("session already completed")
	ErrAlreadyCorrect   = errors.New("block already answered correctly, advance instead")
	ErrAdvanceLocked    = errors.New("cannot advance before a correct answer")
	ErrNoBlocks         = errors.New("unit has no playable blocks")
)

// Answer carries the learner's submission for the current block. Which
// field applies depends on the block type.
type Answer struct {
	Option      string            `json:"option,omitempty"`
	Order       []int             `json:"order,omitempty"`
	Assignments map[string]string `json:"assignments,omitempty"`
	Text        string            `json:"text,omitempty"`
}

type Feedback struct {
	Correct     bool   `json:"correct"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
}

type Session struct {
	ID           uuid.UUID             `json:"id"`
	UserID       uuid.UUID             `json:"user_id"`
	UnitID       uuid.UUID             `json:"unit_id"`
	Blocks       []types.ActivityBlock `json:"blocks"`
	Phase        Phase                 `json:"phase"`
	BlockIndex   int                   `json:"block_index"`
	LastFeedback *Feedback             `json:"last_feedback,omitempty"`
	StartedAt    time.Time             `json:"started_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
}

func (s *Session) CurrentBlock() *types.ActivityBlock {
	if s.BlockIndex < 0 || s.BlockIndex >= len(s.Blocks) {
		return nil
	}
	return &s.Blocks[s.BlockIndex]
}

// CanAdvance reports whether the "next" action is available.
func (s *Session) CanAdvance() bool {
	return s.Phase == PhaseAnswered && s.LastFeedback != nil && s.LastFeedback.Correct
}

// Manager holds active sessions in memory. Progress does not survive a
// restart; the player is presentation state, not a record of mastery.
type Manager struct {
	mu         sync.RWMutex
	log        *logger.Logger
	sessions   map[uuid.UUID]*Session
	OnComplete func(s Session)
}

func NewManager(log *logger.Logger) *Manager {
	return &Manager{
		log:      log.With("component", "PlayerManager"),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Start validates the unit's blocks and opens a session at the first one.
// Blocks that fail validation never enter a session.
func (m *Manager) Start(userID, unitID uuid.UUID, blocks []types.ActivityBlock) (*Session, error) {
	res := content.ValidateUnit(blocks)
	if len(res.Blocks) == 0 {
		return nil, ErrNoBlocks
	}
	if !res.Valid {
		m.log.Warn("starting session with invalid blocks dropped",
			"unit_id", unitID, "dropped", len(blocks)-len(res.Blocks))
	}

	now := time.Now().UTC()
	s := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		UnitID:     unitID,
		Blocks:     res.Blocks,
		Phase:      PhaseViewing,
		BlockIndex: 0,
		StartedAt:  now,
		UpdatedAt:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return snapshot(s), nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(s), nil
}

// Submit scores an answer against the current block. Resubmission after an
// incorrect answer is allowed; after a correct one the only move is Advance.
func (m *Manager) Submit(id uuid.UUID, answer Answer) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Phase == PhaseCompleted {
		return nil, ErrSessionCompleted
	}
	if s.CanAdvance() {
		return nil, ErrAlreadyCorrect
	}

	block := s.CurrentBlock()
	if block == nil {
		return nil, ErrSessionCompleted
	}

	fb := score(*block, answer)
	s.Phase = PhaseAnswered
	s.LastFeedback = &fb
	s.UpdatedAt = time.Now().UTC()
	return snapshot(s), nil
}

// Advance moves to the next block, or completes the session after the last
// one. Only reachable from answered(correct).
func (m *Manager) Advance(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if s.Phase == PhaseCompleted {
		m.mu.Unlock()
		return nil, ErrSessionCompleted
	}
	if !s.CanAdvance() {
		m.mu.Unlock()
		return nil, ErrAdvanceLocked
	}

	s.LastFeedback = nil
	s.UpdatedAt = time.Now().UTC()
	completed := false
	if s.BlockIndex+1 >= len(s.Blocks) {
		s.Phase = PhaseCompleted
		now := time.Now().UTC()
		s.CompletedAt = &now
		completed = true
	} else {
		s.BlockIndex++
		s.Phase = PhaseViewing
	}
	out := snapshot(s)
	m.mu.Unlock()

	if completed && m.OnComplete != nil {
		m.OnComplete(*out)
	}
	return out, nil
}

func (m *Manager) Close(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func snapshot(s *Session) *Session {
	cp := *s
	if s.LastFeedback != nil {
		fb := *s.LastFeedback
		cp.LastFeedback = &fb
	}
	return &cp
}

func score(block types.ActivityBlock, answer Answer) Feedback {
	switch block.Type {
	case types.BlockTypeMultipleChoice:
		return scoreMultipleChoice(block, answer)
	case types.BlockTypeOrdering:
		return scoreOrdering(block, answer)
	case types.BlockTypeCategorization:
		return scoreCategorization(block, answer)
	case types.BlockTypeOpenQuestion:
		// free-text grading happens upstream; a non-empty answer advances
		if strings.TrimSpace(answer.Text) == "" {
			return Feedback{Correct: false, Message: "Incorrect: write an answer before continuing."}
		}
		return Feedback{Correct: true, Message: "Correct! Answer recorded."}
	default:
		return Feedback{Correct: false, Message: "Incorrect: this block cannot be scored."}
	}
}

func scoreMultipleChoice(block types.ActivityBlock, answer Answer) Feedback {
	correct, _ := block.Content["correctAnswer"].(string)
	if strings.TrimSpace(answer.Option) == correct {
		fb := Feedback{Correct: true, Message: "Correct!"}
		if expl, _ := block.Content["explanation"].(string); expl != "" {
			fb.Explanation = expl
		}
		return fb
	}
	return Feedback{Correct: false, Message: "Incorrect, try again."}
}

func scoreOrdering(block types.ActivityBlock, answer Answer) Feedback {
	want, ok := intSlice(block.Content["correctOrder"])
	if !ok || len(answer.Order) != len(want) {
		return Feedback{Correct: false, Message: "Incorrect, try again."}
	}
	for i := range want {
		if answer.Order[i] != want[i] {
			return Feedback{Correct: false, Message: "Incorrect, try again."}
		}
	}
	return Feedback{Correct: true, Message: "Correct!"}
}

func scoreCategorization(block types.ActivityBlock, answer Answer) Feedback {
	items, _ := block.Content["items"].([]any)
	if len(items) == 0 || len(answer.Assignments) != len(items) {
		return Feedback{Correct: false, Message: "Incorrect, try again."}
	}
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			return Feedback{Correct: false, Message: "Incorrect, try again."}
		}
		text, _ := m["text"].(string)
		category, _ := m["category"].(string)
		if answer.Assignments[text] != category {
			return Feedback{Correct: false, Message: "Incorrect, try again."}
		}
	}
	return Feedback{Correct: true, Message: "Correct!"}
}

func intSlice(v any) ([]int, bool) {
	switch raw := v.(type) {
	case []int:
		return raw, true
	case []any:
		out := make([]int, 0, len(raw))
		for _, item := range raw {
			switch n := item.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}
