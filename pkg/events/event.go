package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "STAGE_CONFIRMED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the shape events take after crossing the bus.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Stage event codes.
const (
	StageSourceLoaded     = "STAGE_SOURCE_LOADED"
	StagePreloaded        = "STAGE_PRELOADED"
	StageGenerated        = "STAGE_GENERATED"
	StageGenerationFailed = "STAGE_GENERATION_FAILED"
	StageEdited           = "STAGE_EDITED"
	StageConfirmed        = "STAGE_CONFIRMED"
	StageSaved            = "STAGE_SAVED"
	StageNavigated        = "STAGE_NAVIGATED"
	StageReset            = "STAGE_RESET"
)

// StageEvent records one page action of a workflow.
type StageEvent struct {
	Id         uuid.UUID              `json:"id"`
	WorkflowId uuid.UUID              `json:"workflow_id"`
	Page       string                 `json:"page"`
	Type       string                 `json:"type"`
	Stage      string                 `json:"stage"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func NewStageEvent(workflowId uuid.UUID, page, eventType, stage string, data map[string]interface{}) StageEvent {
	return StageEvent{
		Id:         uuid.New(),
		WorkflowId: workflowId,
		Page:       page,
		Type:       eventType,
		Stage:      stage,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func (e StageEvent) EventType() string {
	return e.Type
}

func (e StageEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":          e.Id.String(),
		"workflow_id": e.WorkflowId.String(),
		"page":        e.Page,
		"stage":       e.Stage,
		"data":        e.Data,
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func (e StageEvent) Timestamp() time.Time {
	return e.OccurredAt
}
