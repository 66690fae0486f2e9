package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkflowEvent struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkflowId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Page       string         `gorm:"type:varchar(32);not null;index"`
	Type       string         `gorm:"type:varchar(64);not null"`
	Stage      string         `gorm:"type:varchar(32)"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	OccurredAt time.Time      `gorm:"not null;index"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (WorkflowEvent) TableName() string {
	return "workflow_events"
}
