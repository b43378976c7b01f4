package devices

import "context"

type ListFilter struct {
	UserID   string
	AnimalID string
}

type Repository interface {
	Create(ctx context.Context, d Device) error
	Update(ctx context.Context, d Device) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Device, error)
	GetByCode(ctx context.Context, code string) (Device, error)
	List(ctx context.Context, filter ListFilter) ([]Device, error)
	CountByUser(ctx context.Context, userID string) (total int, paid int, err error)
}
