package syncs

import "context"

type Repository interface {
	Create(ctx context.Context, r Record) error
	Update(ctx context.Context, r Record) error
	GetByID(ctx context.Context, id string) (Record, error)

	// ListByUser más reciente primero.
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	ListPending(ctx context.Context) ([]Record, error)
}
