package unitofwork

import "context"

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork

	// Transaction runs fn against repositories bound to one database
	// transaction. The transaction commits when fn returns nil.
	Transaction(ctx context.Context, fn func(uow UnitOfWork) error) error
}
