package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/repos"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type UnitService interface {
	ListUnitsForModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.LearningUnit, error)
	GetUnit(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (*types.LearningUnit, error)
	DecodeBlocks(unit *types.LearningUnit) ([]types.ActivityBlock, error)
}

type unitService struct {
	db       *gorm.DB
	log      *logger.Logger
	unitRepo repos.LearningUnitRepo
}

func NewUnitService(db *gorm.DB, log *logger.Logger, unitRepo repos.LearningUnitRepo) UnitService {
	return &unitService{
		db:       db,
		log:      log.With("service", "UnitService"),
		unitRepo: unitRepo,
	}
}

func (us *unitService) ListUnitsForModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.LearningUnit, error) {
	return us.unitRepo.GetByModuleID(ctx, tx, moduleID)
}

func (us *unitService) GetUnit(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (*types.LearningUnit, error) {
	units, err := us.unitRepo.GetByIDs(ctx, tx, []uuid.UUID{unitID})
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("learning unit not found")
	}
	return units[0], nil
}

func (us *unitService) DecodeBlocks(unit *types.LearningUnit) ([]types.ActivityBlock, error) {
	if unit == nil || len(unit.ActivityBlocks) == 0 {
		return nil, nil
	}
	var blocks []types.ActivityBlock
	if err := json.Unmarshal(unit.ActivityBlocks, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode activity blocks: %w", err)
	}
	return blocks, nil
}
