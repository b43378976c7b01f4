package accounts

import "context"

type UserFilter struct {
	OrganizationID string
	Role           Role
	Status         UserStatus
	Q              string // busca en username, email y nombre
}

type UserRepository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
}

type OrganizationRepository interface {
	Create(ctx context.Context, o Organization) error
	Update(ctx context.Context, o Organization) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Organization, error)
	List(ctx context.Context) ([]Organization, error)
}
