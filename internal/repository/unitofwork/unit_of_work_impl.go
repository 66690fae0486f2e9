package unitofwork

import (
	"copyflow-be/internal/repository/contract"
	"copyflow-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type unitOfWork struct {
	db *gorm.DB
}

func newUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) WorkflowSlotRepository() contract.WorkflowSlotRepository {
	return implementation.NewWorkflowSlotRepository(u.db)
}

func (u *unitOfWork) WorkflowEventRepository() contract.WorkflowEventRepository {
	return implementation.NewWorkflowEventRepository(u.db)
}
