package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type LearningUnitRepo interface {
	Create(ctx context.Context, tx *gorm.DB, units []*types.LearningUnit) ([]*types.LearningUnit, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.LearningUnit, error)
	GetByModuleID(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.LearningUnit, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.LearningUnit, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.LearningUnit, error)
	UpdateActivityBlocks(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, blocks []byte) error
}

type learningUnitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningUnitRepo(db *gorm.DB, baseLog *logger.Logger) LearningUnitRepo {
	return &learningUnitRepo{db: db, log: baseLog.With("repo", "LearningUnitRepo")}
}

func (r *learningUnitRepo) Create(ctx context.Context, tx *gorm.DB, units []*types.LearningUnit) ([]*types.LearningUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(units) == 0 {
		return []*types.LearningUnit{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *learningUnitRepo) GetByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.LearningUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.LearningUnit
	if len(unitIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", unitIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningUnitRepo) GetByModuleID(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.LearningUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.LearningUnit
	if err := transaction.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningUnitRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.LearningUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.LearningUnit
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningUnitRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.LearningUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.LearningUnit
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningUnitRepo) UpdateActivityBlocks(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, blocks []byte) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.LearningUnit{}).
		Where("id = ?", unitID).
		Update("activity_blocks", blocks).Error
}
