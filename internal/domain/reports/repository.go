package reports

import "context"

type Repository interface {
	Create(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	// ListByUser más reciente primero.
	ListByUser(ctx context.Context, userID string) ([]Report, error)
	ListAll(ctx context.Context) ([]Report, error)
}
