package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	UnitTypeAcquisition = "acquisition"
	UnitTypePractice    = "practice"
	UnitTypeTest        = "test"
)

// LearningUnit is one playable unit inside a course module. ActivityBlocks
// holds the JSON array of validated blocks; malformed blocks never reach
// this column (content.Validate gates every write).
type LearningUnit struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course         *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	ModuleID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"module_id"`
	Module         *CourseModule  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	Type           string         `gorm:"column:type;not null;default:acquisition" json:"type"`
	Position       int            `gorm:"column:position;not null;default:0" json:"position"`
	ActivityBlocks datatypes.JSON `gorm:"column:activity_blocks;type:jsonb" json:"activity_blocks"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningUnit) TableName() string { return "learning_unit" }
