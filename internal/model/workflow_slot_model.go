package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkflowSlot struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkflowId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workflow_slot_name"`
	Name       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_workflow_slot_name"`
	Scope      string    `gorm:"type:varchar(16);not null;default:durable"`
	Value      string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (WorkflowSlot) TableName() string {
	return "workflow_slots"
}
