package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/capabilities"
	"github.com/brightpath/brightpath-backend/internal/sse"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type fakeUnitRepo struct {
	units   map[uuid.UUID]*types.LearningUnit
	updated map[uuid.UUID][]byte
}

func newFakeUnitRepo(units ...*types.LearningUnit) *fakeUnitRepo {
	f := &fakeUnitRepo{
		units:   map[uuid.UUID]*types.LearningUnit{},
		updated: map[uuid.UUID][]byte{},
	}
	for _, u := range units {
		f.units[u.ID] = u
	}
	return f
}

func (f *fakeUnitRepo) Create(ctx context.Context, tx *gorm.DB, units []*types.LearningUnit) ([]*types.LearningUnit, error) {
	for _, u := range units {
		f.units[u.ID] = u
	}
	return units, nil
}

func (f *fakeUnitRepo) GetByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.LearningUnit, error) {
	var out []*types.LearningUnit
	for _, id := range unitIDs {
		if u, ok := f.units[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUnitRepo) GetByModuleID(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.LearningUnit, error) {
	return nil, nil
}

func (f *fakeUnitRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.LearningUnit, error) {
	return nil, nil
}

func (f *fakeUnitRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.LearningUnit, error) {
	var out []*types.LearningUnit
	for _, u := range f.units {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUnitRepo) UpdateActivityBlocks(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, blocks []byte) error {
	f.updated[unitID] = blocks
	if u, ok := f.units[unitID]; ok {
		u.ActivityBlocks = blocks
	}
	return nil
}

type fakeAIClient struct {
	response map[string]any
	err      error
	calls    int
}

func (f *fakeAIClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newGenerationFixture(t *testing.T, ai *fakeAIClient) (GenerationService, *fakeUnitRepo, uuid.UUID, uuid.UUID) {
	t.Helper()
	log := testLogger(t)
	courseID := uuid.New()
	unit := &types.LearningUnit{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    "Adding fractions",
		Type:     types.UnitTypeAcquisition,
	}
	repo := newFakeUnitRepo(unit)
	svc := NewGenerationService(nil, log, sse.NewSSEHub(log), capabilities.NewRegistry(), ai, repo)
	return svc, repo, courseID, unit.ID
}

func TestGenerateBlocksParamErrorsShortCircuit(t *testing.T) {
	ai := &fakeAIClient{}
	svc, _, courseID, unitID := newGenerationFixture(t, ai)

	result, err := svc.GenerateBlocks(context.Background(), courseID, unitID, capabilities.CapabilityQuiz, map[string]any{})
	if err != nil {
		t.Fatalf("GenerateBlocks: %v", err)
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected param errors for missing topic")
	}
	if ai.calls != 0 {
		t.Fatalf("model called despite invalid params, calls=%d", ai.calls)
	}
}

func TestGenerateBlocksAcceptsValidRejectsInvalid(t *testing.T) {
	ai := &fakeAIClient{response: map[string]any{
		"blocks": []any{
			map[string]any{
				"type": types.BlockTypeMultipleChoice,
				"content": map[string]any{
					"question":      "What is 2+2?",
					"options":       []any{"3", "4", "5"},
					"correctAnswer": "4",
				},
			},
			map[string]any{
				"type": types.BlockTypeMultipleChoice,
				"content": map[string]any{
					"question":      "What is 3+3?",
					"options":       []any{"5", "6"},
					"correctAnswer": "7",
				},
			},
		},
	}}
	svc, repo, courseID, unitID := newGenerationFixture(t, ai)

	result, err := svc.GenerateBlocks(context.Background(), courseID, unitID, capabilities.CapabilityQuiz,
		map[string]any{"topic": "addition"})
	if err != nil {
		t.Fatalf("GenerateBlocks: %v", err)
	}
	if len(result.Accepted) != 1 {
		t.Fatalf("expected 1 accepted block, got %d", len(result.Accepted))
	}
	if len(result.Rejected) == 0 {
		t.Fatalf("expected rejection for correctAnswer outside options")
	}
	if result.Accepted[0].ID == "" {
		t.Fatalf("accepted block missing generated id")
	}

	raw, ok := repo.updated[unitID]
	if !ok {
		t.Fatalf("accepted blocks were not persisted")
	}
	var stored []types.ActivityBlock
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode stored blocks: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored block, got %d", len(stored))
	}
}

func TestGenerateBlocksAppendsToExisting(t *testing.T) {
	ai := &fakeAIClient{response: map[string]any{
		"blocks": []any{
			map[string]any{
				"type":    types.BlockTypeOpenQuestion,
				"content": map[string]any{"question": "Explain borrowing in subtraction."},
			},
		},
	}}
	svc, repo, courseID, unitID := newGenerationFixture(t, ai)

	existing := []types.ActivityBlock{{
		ID:   uuid.NewString(),
		Type: types.BlockTypeOpenQuestion,
		Content: map[string]any{
			"question": "What is a fraction?",
		},
	}}
	raw, _ := json.Marshal(existing)
	repo.units[unitID].ActivityBlocks = raw

	result, err := svc.GenerateBlocks(context.Background(), courseID, unitID, capabilities.CapabilityExplanation,
		map[string]any{"concept": "subtraction"})
	if err != nil {
		t.Fatalf("GenerateBlocks: %v", err)
	}
	if len(result.Accepted) != 1 {
		t.Fatalf("expected 1 accepted block, got %d", len(result.Accepted))
	}

	var stored []types.ActivityBlock
	if err := json.Unmarshal(repo.updated[unitID], &stored); err != nil {
		t.Fatalf("decode stored blocks: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected existing block preserved, got %d stored", len(stored))
	}
}

func TestGenerateBlocksModelFailure(t *testing.T) {
	ai := &fakeAIClient{err: context.DeadlineExceeded}
	svc, repo, courseID, unitID := newGenerationFixture(t, ai)

	_, err := svc.GenerateBlocks(context.Background(), courseID, unitID, capabilities.CapabilityQuiz,
		map[string]any{"topic": "addition"})
	if err == nil {
		t.Fatalf("expected error when model call fails")
	}
	if len(repo.updated) != 0 {
		t.Fatalf("nothing should be persisted on model failure")
	}
}

func TestGenerateBlocksUnknownUnit(t *testing.T) {
	ai := &fakeAIClient{}
	svc, _, courseID, _ := newGenerationFixture(t, ai)

	_, err := svc.GenerateBlocks(context.Background(), courseID, uuid.New(), capabilities.CapabilityQuiz,
		map[string]any{"topic": "addition"})
	if err == nil {
		t.Fatalf("expected error for unknown unit")
	}
}
