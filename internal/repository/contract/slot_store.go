package contract

import (
	"context"

	"copyflow-be/internal/entity"

	"github.com/google/uuid"
)

// SlotStore is the key-value contract every slot backend implements:
// postgres, sqlite, go-cache and redis.
type SlotStore interface {
	// Put creates or replaces a slot. CreatedAt is kept on replace.
	Put(ctx context.Context, slot *entity.WorkflowSlot) error
	// Get returns nil, nil when the slot is absent.
	Get(ctx context.Context, workflowId uuid.UUID, name string) (*entity.WorkflowSlot, error)
	List(ctx context.Context, workflowId uuid.UUID) ([]*entity.WorkflowSlot, error)
	Delete(ctx context.Context, workflowId uuid.UUID, names ...string) error
}

// SlotBatcher is implemented by stores that can write several slots
// atomically.
type SlotBatcher interface {
	PutAll(ctx context.Context, slots []*entity.WorkflowSlot) error
}
