package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Level       string         `gorm:"column:level" json:"level"`
	Subject     string         `gorm:"column:subject" json:"subject"`
	Syllabus    datatypes.JSON `gorm:"column:syllabus;type:jsonb" json:"syllabus"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

// SyllabusModule is the JSON shape stored inside Course.Syllabus. The
// relational course_module rows mirror it for cheap listing; the syllabus
// document is the authoritative subtree.
type SyllabusModule struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	LearningUnits []SyllabusUnitRef `json:"learningUnits"`
}

type SyllabusUnitRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}
