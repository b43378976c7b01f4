package records

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r MedicalRecord) error
	Update(ctx context.Context, r MedicalRecord) error
	Delete(ctx context.Context, id string) error
	DeleteByAnimal(ctx context.Context, animalID string) (int, error)
	GetByID(ctx context.Context, id string) (MedicalRecord, error)
	ListByAnimal(ctx context.Context, animalID string, filter ListFilter) ([]MedicalRecord, error)
	ListAll(ctx context.Context) ([]MedicalRecord, error)
}

type ListFilter struct {
	Types []RecordType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}
