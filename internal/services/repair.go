package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/content"
	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/repos"
	"github.com/brightpath/brightpath-backend/internal/types"
)

const (
	ScriptRepairAnswerKeys  = "repair_answer_keys"
	ScriptRepairBlockShapes = "repair_block_shapes"
)

type RepairSummary struct {
	Scanned  int  `json:"scanned"`
	Problems int  `json:"problems"`
	Repaired int  `json:"repaired"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed"`
	DryRun   bool `json:"dry_run"`
}

// RepairService backs the one-shot maintenance CLIs. Every run is
// idempotent: a unit already consistent with the invariants comes back
// unchanged, so re-running after a partial failure is safe.
type RepairService interface {
	RepairAnswerKeys(ctx context.Context, dryRun bool, limit int) (*RepairSummary, error)
	RepairBlockShapes(ctx context.Context, dryRun bool, limit int) (*RepairSummary, error)
}

type repairService struct {
	db            *gorm.DB
	log           *logger.Logger
	unitRepo      repos.LearningUnitRepo
	repairLogRepo repos.RepairLogRepo
}

func NewRepairService(db *gorm.DB, log *logger.Logger, unitRepo repos.LearningUnitRepo, repairLogRepo repos.RepairLogRepo) RepairService {
	return &repairService{
		db:            db,
		log:           log.With("service", "RepairService"),
		unitRepo:      unitRepo,
		repairLogRepo: repairLogRepo,
	}
}

// RepairAnswerKeys scans every learning unit for multiple-choice blocks
// whose correctAnswer is not among the options and patches them. Units are
// processed strictly sequentially; a failure on one unit is logged and the
// scan continues.
func (rs *repairService) RepairAnswerKeys(ctx context.Context, dryRun bool, limit int) (*RepairSummary, error) {
	units, err := rs.unitRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning units: %w", err)
	}
	if limit > 0 && len(units) > limit {
		units = units[:limit]
	}

	summary := &RepairSummary{DryRun: dryRun}
	for _, unit := range units {
		summary.Scanned++
		blocks, err := decodeBlocksLoose(unit.ActivityBlocks)
		if err != nil {
			rs.log.Warn("skipping unit with undecodable blocks", "unit_id", unit.ID, "error", err)
			summary.Failed++
			continue
		}

		var logs []*types.RepairLog
		changed := false
		for i := range blocks {
			if blocks[i].Type != types.BlockTypeMultipleChoice || blocks[i].Content == nil {
				continue
			}
			repaired, outcome := content.RepairAnswerKey(blocks[i].Content)
			if !outcome.Changed {
				continue
			}
			summary.Problems++
			rs.log.Info("answer key drift detected",
				"unit_id", unit.ID, "block_id", blocks[i].ID,
				"old", outcome.OldValue, "new", outcome.NewValue, "strategy", outcome.Strategy)
			blocks[i].Content = repaired
			changed = true
			logs = append(logs, &types.RepairLog{
				ID:       uuid.New(),
				Script:   ScriptRepairAnswerKeys,
				TargetID: unit.ID,
				BlockID:  blocks[i].ID,
				Field:    "correctAnswer",
				OldValue: outcome.OldValue,
				NewValue: outcome.NewValue,
				Strategy: outcome.Strategy,
			})
		}

		if !changed {
			continue
		}
		if dryRun {
			summary.Skipped++
			continue
		}
		if err := rs.writeBackBlocks(ctx, unit.ID, blocks, logs); err != nil {
			rs.log.Error("failed to write repaired unit", "unit_id", unit.ID, "error", err)
			summary.Failed++
			continue
		}
		summary.Repaired++
	}
	return summary, nil
}

// RepairBlockShapes normalizes historically malformed block records:
// content persisted as a JSON string and blocks missing their type
// discriminator. Blocks that cannot be normalized are left in place.
func (rs *repairService) RepairBlockShapes(ctx context.Context, dryRun bool, limit int) (*RepairSummary, error) {
	units, err := rs.unitRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning units: %w", err)
	}
	if limit > 0 && len(units) > limit {
		units = units[:limit]
	}

	summary := &RepairSummary{DryRun: dryRun}
	for _, unit := range units {
		summary.Scanned++
		if len(unit.ActivityBlocks) == 0 {
			continue
		}
		var raw []map[string]any
		if err := json.Unmarshal(unit.ActivityBlocks, &raw); err != nil {
			rs.log.Warn("skipping unit with undecodable blocks", "unit_id", unit.ID, "error", err)
			summary.Failed++
			continue
		}

		normalized := make([]types.ActivityBlock, 0, len(raw))
		var logs []*types.RepairLog
		changed := false
		for _, rawBlock := range raw {
			block, blockChanged, ok := content.NormalizeBlockShape(rawBlock)
			if !ok {
				rs.log.Warn("block cannot be normalized, leaving as-is",
					"unit_id", unit.ID, "block", rawBlock["id"])
				summary.Problems++
				summary.Skipped++
				// keep the raw record so nothing is silently dropped
				keep := types.ActivityBlock{
					ID:   stringField(rawBlock, "id"),
					Type: stringField(rawBlock, "type"),
				}
				if c, isMap := rawBlock["content"].(map[string]any); isMap {
					keep.Content = c
				}
				normalized = append(normalized, keep)
				continue
			}
			if blockChanged {
				summary.Problems++
				changed = true
				logs = append(logs, &types.RepairLog{
					ID:       uuid.New(),
					Script:   ScriptRepairBlockShapes,
					TargetID: unit.ID,
					BlockID:  block.ID,
					Field:    "shape",
					NewValue: block.Type,
					Strategy: "normalize_shape",
				})
				rs.log.Info("block shape normalized", "unit_id", unit.ID, "block_id", block.ID, "type", block.Type)
			}
			normalized = append(normalized, block)
		}

		if !changed {
			continue
		}
		if dryRun {
			summary.Skipped++
			continue
		}
		if err := rs.writeBackBlocks(ctx, unit.ID, normalized, logs); err != nil {
			rs.log.Error("failed to write normalized unit", "unit_id", unit.ID, "error", err)
			summary.Failed++
			continue
		}
		summary.Repaired++
	}
	return summary, nil
}

func (rs *repairService) writeBackBlocks(ctx context.Context, unitID uuid.UUID, blocks []types.ActivityBlock, logs []*types.RepairLog) error {
	encoded, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("failed to encode blocks: %w", err)
	}
	return rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rs.unitRepo.UpdateActivityBlocks(ctx, tx, unitID, encoded); err != nil {
			return err
		}
		_, err := rs.repairLogRepo.Create(ctx, tx, logs)
		return err
	})
}

// decodeBlocksLoose tolerates blocks whose content deviates from the
// contract, which is the whole point of a repair pass.
func decodeBlocksLoose(raw []byte) ([]types.ActivityBlock, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var blocks []types.ActivityBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}
