package implementation

import (
	"context"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/mapper"
	"copyflow-be/internal/model"
	"copyflow-be/internal/repository/contract"
	"copyflow-be/internal/repository/specification"

	"gorm.io/gorm"
)

type WorkflowEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowEventMapper
}

func NewWorkflowEventRepository(db *gorm.DB) contract.WorkflowEventRepository {
	return &WorkflowEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowEventMapper(),
	}
}

func (r *WorkflowEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkflowEventRepositoryImpl) Create(ctx context.Context, event *entity.WorkflowEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkflowEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowEvent, error) {
	var models []*model.WorkflowEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WorkflowEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.WorkflowEvent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *WorkflowEventRepositoryImpl) Delete(ctx context.Context, specs ...specification.Specification) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	result := query.Delete(&model.WorkflowEvent{})
	return result.RowsAffected, result.Error
}
