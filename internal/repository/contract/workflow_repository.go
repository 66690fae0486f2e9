package contract

import (
	"context"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/repository/specification"
)

type WorkflowSlotRepository interface {
	SlotStore
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowSlot, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowSlot, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type WorkflowEventRepository interface {
	Create(ctx context.Context, event *entity.WorkflowEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, specs ...specification.Specification) (int64, error)
}
