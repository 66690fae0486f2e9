package unitofwork

import "copyflow-be/internal/repository/contract"

// UnitOfWork hands out repositories sharing one connection, or one
// transaction when obtained through RepositoryFactory.Transaction.
type UnitOfWork interface {
	WorkflowSlotRepository() contract.WorkflowSlotRepository
	WorkflowEventRepository() contract.WorkflowEventRepository
}
