package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type WorkflowSlot struct {
	Id         uuid.UUID
	WorkflowId uuid.UUID
	Name       string
	Scope      string
	Value      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type WorkflowEvent struct {
	Id         uuid.UUID
	WorkflowId uuid.UUID
	Page       string
	Type       string
	Stage      string
	Payload    json.RawMessage
	OccurredAt time.Time
	CreatedAt  time.Time
}
