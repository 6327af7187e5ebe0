package types

import (
	"time"

	"github.com/google/uuid"
)

// RepairLog records one field-level change made by a maintenance script.
type RepairLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Script    string    `gorm:"column:script;not null;index" json:"script"`
	TargetID  uuid.UUID `gorm:"type:uuid;column:target_id;not null;index" json:"target_id"`
	BlockID   string    `gorm:"column:block_id" json:"block_id"`
	Field     string    `gorm:"column:field;not null" json:"field"`
	OldValue  string    `gorm:"column:old_value;type:text" json:"old_value"`
	NewValue  string    `gorm:"column:new_value;type:text" json:"new_value"`
	Strategy  string    `gorm:"column:strategy;not null" json:"strategy"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (RepairLog) TableName() string { return "repair_log" }
