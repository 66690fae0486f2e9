package mapper

import (
	"encoding/json"
	"time"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/model"

	"gorm.io/datatypes"
)

type WorkflowSlotMapper struct{}

func NewWorkflowSlotMapper() *WorkflowSlotMapper {
	return &WorkflowSlotMapper{}
}

func (m *WorkflowSlotMapper) ToEntity(s *model.WorkflowSlot) *entity.WorkflowSlot {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.WorkflowSlot{
		Id:         s.Id,
		WorkflowId: s.WorkflowId,
		Name:       s.Name,
		Scope:      s.Scope,
		Value:      s.Value,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *WorkflowSlotMapper) ToModel(s *entity.WorkflowSlot) *model.WorkflowSlot {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.WorkflowSlot{
		Id:         s.Id,
		WorkflowId: s.WorkflowId,
		Name:       s.Name,
		Scope:      s.Scope,
		Value:      s.Value,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *WorkflowSlotMapper) ToEntities(slots []*model.WorkflowSlot) []*entity.WorkflowSlot {
	entities := make([]*entity.WorkflowSlot, len(slots))
	for i, s := range slots {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

type WorkflowEventMapper struct{}

func NewWorkflowEventMapper() *WorkflowEventMapper {
	return &WorkflowEventMapper{}
}

func (m *WorkflowEventMapper) ToEntity(e *model.WorkflowEvent) *entity.WorkflowEvent {
	if e == nil {
		return nil
	}
	return &entity.WorkflowEvent{
		Id:         e.Id,
		WorkflowId: e.WorkflowId,
		Page:       e.Page,
		Type:       e.Type,
		Stage:      e.Stage,
		Payload:    json.RawMessage(e.Payload),
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *WorkflowEventMapper) ToModel(e *entity.WorkflowEvent) *model.WorkflowEvent {
	if e == nil {
		return nil
	}
	return &model.WorkflowEvent{
		Id:         e.Id,
		WorkflowId: e.WorkflowId,
		Page:       e.Page,
		Type:       e.Type,
		Stage:      e.Stage,
		Payload:    datatypes.JSON(e.Payload),
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *WorkflowEventMapper) ToEntities(events []*model.WorkflowEvent) []*entity.WorkflowEvent {
	entities := make([]*entity.WorkflowEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
