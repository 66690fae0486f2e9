package service

import (
	"context"
	"fmt"

	"copyflow-be/internal/dto"
	"copyflow-be/internal/entity"
	"copyflow-be/internal/repository/contract"
	"copyflow-be/internal/workflow"

	"github.com/google/uuid"
)

type ISlotService interface {
	Set(ctx context.Context, workflowId uuid.UUID, scope workflow.Scope, name, value string) (*dto.SlotResponse, error)
	Get(ctx context.Context, workflowId uuid.UUID, name string) (*dto.SlotResponse, bool, error)
	Clear(ctx context.Context, workflowId uuid.UUID, name string) error
	ClearMany(ctx context.Context, workflowId uuid.UUID, names ...string) error
	List(ctx context.Context, workflowId uuid.UUID) ([]*dto.SlotResponse, error)
	// Apply persists the writes returned by a page action.
	Apply(ctx context.Context, workflowId uuid.UUID, writes []workflow.SlotWrite) error
	// Values returns the present slots among names as a name to value map.
	Values(ctx context.Context, workflowId uuid.UUID, names ...string) (map[string]string, error)
}

type slotService struct {
	durable contract.SlotStore
	session contract.SlotStore
}

func NewSlotService(durable, session contract.SlotStore) ISlotService {
	return &slotService{durable: durable, session: session}
}

func (s *slotService) store(scope workflow.Scope) contract.SlotStore {
	if scope == workflow.ScopeSession {
		return s.session
	}
	return s.durable
}

func toSlotResponse(slot *entity.WorkflowSlot) *dto.SlotResponse {
	return &dto.SlotResponse{
		Name:      slot.Name,
		Scope:     slot.Scope,
		Value:     slot.Value,
		CreatedAt: slot.CreatedAt,
		UpdatedAt: slot.UpdatedAt,
	}
}

func (s *slotService) Set(ctx context.Context, workflowId uuid.UUID, scope workflow.Scope, name, value string) (*dto.SlotResponse, error) {
	resolved, err := workflow.ResolveScope(name, scope)
	if err != nil {
		return nil, err
	}

	slot := &entity.WorkflowSlot{
		WorkflowId: workflowId,
		Name:       name,
		Scope:      string(resolved),
		Value:      value,
	}
	if err := s.store(resolved).Put(ctx, slot); err != nil {
		return nil, fmt.Errorf("set slot %s: %w", name, err)
	}
	return toSlotResponse(slot), nil
}

func (s *slotService) Get(ctx context.Context, workflowId uuid.UUID, name string) (*dto.SlotResponse, bool, error) {
	scope, err := workflow.ResolveScope(name, "")
	if err != nil {
		return nil, false, err
	}

	slot, err := s.store(scope).Get(ctx, workflowId, name)
	if err != nil {
		return nil, false, fmt.Errorf("get slot %s: %w", name, err)
	}
	if slot == nil {
		return nil, false, nil
	}
	return toSlotResponse(slot), true, nil
}

func (s *slotService) Clear(ctx context.Context, workflowId uuid.UUID, name string) error {
	return s.ClearMany(ctx, workflowId, name)
}

func (s *slotService) ClearMany(ctx context.Context, workflowId uuid.UUID, names ...string) error {
	var durable, session []string
	for _, name := range names {
		scope, err := workflow.ResolveScope(name, "")
		if err != nil {
			return err
		}
		if scope == workflow.ScopeSession {
			session = append(session, name)
		} else {
			durable = append(durable, name)
		}
	}

	if len(durable) > 0 {
		if err := s.durable.Delete(ctx, workflowId, durable...); err != nil {
			return fmt.Errorf("clear durable slots: %w", err)
		}
	}
	if len(session) > 0 {
		if err := s.session.Delete(ctx, workflowId, session...); err != nil {
			return fmt.Errorf("clear session slots: %w", err)
		}
	}
	return nil
}

func (s *slotService) List(ctx context.Context, workflowId uuid.UUID) ([]*dto.SlotResponse, error) {
	result := make([]*dto.SlotResponse, 0)
	for _, store := range []contract.SlotStore{s.durable, s.session} {
		slots, err := store.List(ctx, workflowId)
		if err != nil {
			return nil, fmt.Errorf("list slots: %w", err)
		}
		for _, slot := range slots {
			result = append(result, toSlotResponse(slot))
		}
	}
	return result, nil
}

// Apply validates every write before storing any. Stores that implement
// contract.SlotBatcher receive their share of the writes in one transaction.
func (s *slotService) Apply(ctx context.Context, workflowId uuid.UUID, writes []workflow.SlotWrite) error {
	byScope := make(map[workflow.Scope][]*entity.WorkflowSlot, 2)
	for _, w := range writes {
		resolved, err := workflow.ResolveScope(w.Slot, w.Scope)
		if err != nil {
			return err
		}
		byScope[resolved] = append(byScope[resolved], &entity.WorkflowSlot{
			WorkflowId: workflowId,
			Name:       w.Slot,
			Scope:      string(resolved),
			Value:      w.Value,
		})
	}

	for _, scope := range []workflow.Scope{workflow.ScopeDurable, workflow.ScopeSession} {
		slots := byScope[scope]
		if len(slots) == 0 {
			continue
		}
		store := s.store(scope)
		if batcher, ok := store.(contract.SlotBatcher); ok {
			if err := batcher.PutAll(ctx, slots); err != nil {
				return fmt.Errorf("apply %s slots: %w", scope, err)
			}
			continue
		}
		for _, slot := range slots {
			if err := store.Put(ctx, slot); err != nil {
				return fmt.Errorf("set slot %s: %w", slot.Name, err)
			}
		}
	}
	return nil
}

func (s *slotService) Values(ctx context.Context, workflowId uuid.UUID, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		slot, found, err := s.Get(ctx, workflowId, name)
		if err != nil {
			return nil, err
		}
		if found {
			values[name] = slot.Value
		}
	}
	return values, nil
}
