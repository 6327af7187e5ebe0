package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type RepairLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.RepairLog) ([]*types.RepairLog, error)
	GetByScript(ctx context.Context, tx *gorm.DB, script string) ([]*types.RepairLog, error)
}

type repairLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepairLogRepo(db *gorm.DB, baseLog *logger.Logger) RepairLogRepo {
	return &repairLogRepo{db: db, log: baseLog.With("repo", "RepairLogRepo")}
}

func (r *repairLogRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.RepairLog) ([]*types.RepairLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.RepairLog{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repairLogRepo) GetByScript(ctx context.Context, tx *gorm.DB, script string) ([]*types.RepairLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.RepairLog
	if err := transaction.WithContext(ctx).
		Where("script = ?", script).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
