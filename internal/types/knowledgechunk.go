package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// KnowledgeChunk is one searchable slice of reference material
// (the math_knowledge collection).
type KnowledgeChunk struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VolumeType string         `gorm:"column:volume_type;index" json:"volume_type"`
	Grade      string         `gorm:"column:grade;index" json:"grade"`
	Topic      string         `gorm:"column:topic" json:"topic"`
	Content    string         `gorm:"column:content;type:text;not null" json:"content"`
	Keywords   datatypes.JSON `gorm:"column:keywords;type:jsonb" json:"keywords"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (KnowledgeChunk) TableName() string { return "math_knowledge" }
