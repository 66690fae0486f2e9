package implementation

import (
	"context"
	"errors"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/mapper"
	"copyflow-be/internal/model"
	"copyflow-be/internal/repository/contract"
	"copyflow-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkflowSlotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowSlotMapper
}

var _ contract.SlotBatcher = &WorkflowSlotRepositoryImpl{}

func NewWorkflowSlotRepository(db *gorm.DB) contract.WorkflowSlotRepository {
	return &WorkflowSlotRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowSlotMapper(),
	}
}

func (r *WorkflowSlotRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Put upserts on (workflow_id, name).
func (r *WorkflowSlotRepositoryImpl) Put(ctx context.Context, slot *entity.WorkflowSlot) error {
	m := r.mapper.ToModel(slot)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workflow_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "scope", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	stored, err := r.Get(ctx, slot.WorkflowId, slot.Name)
	if err != nil {
		return err
	}
	if stored != nil {
		*slot = *stored
	}
	return nil
}

// PutAll upserts every slot inside one transaction.
func (r *WorkflowSlotRepositoryImpl) PutAll(ctx context.Context, slots []*entity.WorkflowSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &WorkflowSlotRepositoryImpl{db: tx, mapper: r.mapper}
		for _, slot := range slots {
			if err := txRepo.Put(ctx, slot); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *WorkflowSlotRepositoryImpl) Get(ctx context.Context, workflowId uuid.UUID, name string) (*entity.WorkflowSlot, error) {
	return r.FindOne(ctx, specification.ByWorkflowID{WorkflowID: workflowId}, specification.BySlotName{Name: name})
}

func (r *WorkflowSlotRepositoryImpl) List(ctx context.Context, workflowId uuid.UUID) ([]*entity.WorkflowSlot, error) {
	return r.FindAll(ctx,
		specification.ByWorkflowID{WorkflowID: workflowId},
		specification.OrderBy{Field: "name"},
	)
}

func (r *WorkflowSlotRepositoryImpl) Delete(ctx context.Context, workflowId uuid.UUID, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByWorkflowID{WorkflowID: workflowId},
		specification.BySlotNames{Names: names},
	)
	return query.Delete(&model.WorkflowSlot{}).Error
}

func (r *WorkflowSlotRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowSlot, error) {
	var m model.WorkflowSlot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkflowSlotRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowSlot, error) {
	var models []*model.WorkflowSlot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WorkflowSlotRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.WorkflowSlot{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
