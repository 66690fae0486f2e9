package dto

import (
	"time"

	"copyflow-be/internal/workflow"

	"github.com/google/uuid"
)

// UploadFile is one multipart file as read by a controller.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type StartWorkflowResponse struct {
	WorkflowId uuid.UUID             `json:"workflow_id"`
	Token      string                `json:"token"`
	ExpiresAt  time.Time             `json:"expires_at"`
	Pages      []workflow.PageConfig `json:"pages"`
}

type PageResponse struct {
	View    workflow.View     `json:"view"`
	Session workflow.Snapshot `json:"session"`
	// Preloaded is set when opening the page filled it from a hand-off slot.
	Preloaded bool `json:"preloaded,omitempty"`
}

type GenerateRequest struct {
	Template       string   `json:"template" validate:"omitempty,oneof=modern classic minimal"`
	Language       string   `json:"language"`
	ComparisonType string   `json:"comparison_type" validate:"omitempty,oneof=copy_design semantic brief_copy"`
	Keywords       []string `json:"keywords"`
}

type EditContentRequest struct {
	Content string `json:"content"`
}

type EditContentResponse struct {
	Effect workflow.EditEffect `json:"effect"`
	View   workflow.View       `json:"view"`
}

type SaveCopyResponse struct {
	SavedAt string               `json:"saved_at"`
	Writes  []workflow.SlotWrite `json:"writes"`
}

type NavigateResponse struct {
	NextPage string               `json:"next_page"`
	Writes   []workflow.SlotWrite `json:"writes"`
}

type WorkflowEventResponse struct {
	Id         uuid.UUID      `json:"id"`
	Page       string         `json:"page"`
	Type       string         `json:"type"`
	Stage      string         `json:"stage"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
