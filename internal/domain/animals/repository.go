package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Animal, error)
	ListAll(ctx context.Context) ([]Animal, error)
	ListByOwners(ctx context.Context, ownerUserIDs []string) ([]Animal, error)
	CountByOwners(ctx context.Context, ownerUserIDs []string) (int, error)
}
