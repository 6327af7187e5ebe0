package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type KnowledgeChunkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chunks []*types.KnowledgeChunk) ([]*types.KnowledgeChunk, error)
	GetFiltered(ctx context.Context, tx *gorm.DB, volumeType, grade string) ([]*types.KnowledgeChunk, error)
}

type knowledgeChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeChunkRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeChunkRepo {
	return &knowledgeChunkRepo{db: db, log: baseLog.With("repo", "KnowledgeChunkRepo")}
}

func (r *knowledgeChunkRepo) Create(ctx context.Context, tx *gorm.DB, chunks []*types.KnowledgeChunk) ([]*types.KnowledgeChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(chunks) == 0 {
		return []*types.KnowledgeChunk{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&chunks).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *knowledgeChunkRepo) GetFiltered(ctx context.Context, tx *gorm.DB, volumeType, grade string) ([]*types.KnowledgeChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Model(&types.KnowledgeChunk{})
	if volumeType != "" {
		query = query.Where("volume_type = ?", volumeType)
	}
	if grade != "" {
		query = query.Where("grade = ?", grade)
	}
	var results []*types.KnowledgeChunk
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
