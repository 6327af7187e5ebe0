package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/aiclient"
	"github.com/brightpath/brightpath-backend/internal/capabilities"
	"github.com/brightpath/brightpath-backend/internal/content"
	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/repos"
	"github.com/brightpath/brightpath-backend/internal/sse"
	"github.com/brightpath/brightpath-backend/internal/types"
)

// GenerationResult reports one generation run: what the model produced,
// what survived validation, and why the rest did not.
type GenerationResult struct {
	Accepted []types.ActivityBlock     `json:"accepted"`
	Rejected []content.FieldError      `json:"rejected,omitempty"`
	Params   map[string]any            `json:"params,omitempty"`
	Errors   []capabilities.FieldError `json:"param_errors,omitempty"`
}

type GenerationService interface {
	GenerateBlocks(ctx context.Context, courseID, unitID uuid.UUID, capability string, params map[string]any) (*GenerationResult, error)
}

type generationService struct {
	db       *gorm.DB
	log      *logger.Logger
	sseHub   *sse.SSEHub
	registry *capabilities.Registry
	ai       aiclient.Client
	unitRepo repos.LearningUnitRepo
}

func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	sseHub *sse.SSEHub,
	registry *capabilities.Registry,
	ai aiclient.Client,
	unitRepo repos.LearningUnitRepo,
) GenerationService {
	return &generationService{
		db:       db,
		log:      log.With("service", "GenerationService"),
		sseHub:   sseHub,
		registry: registry,
		ai:       ai,
		unitRepo: unitRepo,
	}
}

// blocksSchema is the JSON schema the model must answer with: an object
// holding an array of activity blocks.
var blocksSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"blocks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []any{
							types.BlockTypeMultipleChoice,
							types.BlockTypeOpenQuestion,
							types.BlockTypeOrdering,
							types.BlockTypeCategorization,
						},
					},
					"content": map[string]any{"type": "object"},
				},
				"required":             []any{"type", "content"},
				"additionalProperties": true,
			},
		},
	},
	"required":             []any{"blocks"},
	"additionalProperties": false,
}

const generationSystemPrompt = "You are a curriculum author. Produce activity blocks as strict JSON " +
	"matching the requested schema. Multiple-choice blocks must list at least two options and the " +
	"correctAnswer must repeat one of them verbatim."

func (gs *generationService) GenerateBlocks(ctx context.Context, courseID, unitID uuid.UUID, capability string, params map[string]any) (*GenerationResult, error) {
	channel := sse.CourseChannel(courseID)

	typedParams, paramErrs := gs.registry.ValidateParams(capability, params)
	if len(paramErrs) > 0 {
		return &GenerationResult{Errors: paramErrs}, nil
	}

	units, err := gs.unitRepo.GetByIDs(ctx, nil, []uuid.UUID{unitID})
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if len(units) == 0 || units[0].CourseID != courseID {
		return nil, fmt.Errorf("learning unit not found")
	}
	unit := units[0]

	gs.sseHub.Broadcast(sse.SSEMessage{
		Channel: channel,
		Event:   sse.SSEEventGenerationStarted,
		Data:    map[string]any{"unit_id": unitID.String(), "capability": capability},
	})

	userPrompt, err := buildUserPrompt(capability, typedParams, unit)
	if err != nil {
		return nil, err
	}

	raw, err := gs.ai.GenerateJSON(ctx, generationSystemPrompt, userPrompt, "activity-blocks", blocksSchema)
	if err != nil {
		gs.sseHub.Broadcast(sse.SSEMessage{
			Channel: channel,
			Event:   sse.SSEEventGenerationFailed,
			Data:    map[string]any{"unit_id": unitID.String(), "error": err.Error()},
		})
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	candidates := decodeCandidateBlocks(raw)
	result := &GenerationResult{Params: typedParams}
	for i, cand := range candidates {
		res := content.ValidateBlock(cand)
		if !res.Valid {
			for _, fe := range res.Errors {
				result.Rejected = append(result.Rejected, content.FieldError{
					Path:    fmt.Sprintf("blocks[%d].%s", i, fe.Path),
					Message: fe.Message,
				})
			}
			continue
		}
		block := *res.Block
		if block.ID == "" {
			block.ID = uuid.NewString()
		}
		result.Accepted = append(result.Accepted, block)
	}

	if len(result.Rejected) > 0 {
		gs.log.Warn("generation produced invalid blocks",
			"unit_id", unitID, "rejected", len(result.Rejected), "accepted", len(result.Accepted))
		gs.sseHub.Broadcast(sse.SSEMessage{
			Channel: channel,
			Event:   sse.SSEEventBlocksRejected,
			Data:    map[string]any{"unit_id": unitID.String(), "errors": result.Rejected},
		})
	}
	if len(result.Accepted) == 0 {
		return result, nil
	}

	existing := []types.ActivityBlock{}
	if len(unit.ActivityBlocks) > 0 {
		if err := json.Unmarshal(unit.ActivityBlocks, &existing); err != nil {
			return nil, fmt.Errorf("failed to decode existing blocks: %w", err)
		}
	}
	merged := append(existing, result.Accepted...)
	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blocks: %w", err)
	}
	if err := gs.unitRepo.UpdateActivityBlocks(ctx, nil, unitID, encoded); err != nil {
		return nil, fmt.Errorf("failed to persist blocks: %w", err)
	}

	gs.sseHub.Broadcast(sse.SSEMessage{
		Channel: channel,
		Event:   sse.SSEEventBlocksAccepted,
		Data: map[string]any{
			"unit_id":  unitID.String(),
			"accepted": len(result.Accepted),
			"total":    len(merged),
		},
	})
	return result, nil
}

func buildUserPrompt(capability string, params map[string]any, unit *types.LearningUnit) (string, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}
	return fmt.Sprintf(
		"Capability: %s\nUnit title: %s\nUnit type: %s\nParameters: %s\nGenerate the activity blocks.",
		capability, unit.Title, unit.Type, string(encoded),
	), nil
}

func decodeCandidateBlocks(raw map[string]any) []types.ActivityBlock {
	items, _ := raw["blocks"].([]any)
	out := make([]types.ActivityBlock, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		block := types.ActivityBlock{
			ID:   stringField(m, "id"),
			Type: stringField(m, "type"),
		}
		if c, ok := m["content"].(map[string]any); ok {
			block.Content = c
		}
		if md, ok := m["metadata"].(map[string]any); ok {
			block.Metadata = md
		}
		out = append(out, block)
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
