package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medical record not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	ID           string // opcional
	Type         RecordType
	Date         time.Time
	Title        string
	Description  string
	Veterinarian string
	Clinic       string
	RecordedBy   string
}

func (s *Service) Create(ctx context.Context, animalID string, in CreateInput) (MedicalRecord, error) {
	if strings.TrimSpace(animalID) == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	if !in.Type.Valid() {
		return MedicalRecord{}, ErrInvalidInput
	}
	if in.Date.IsZero() {
		return MedicalRecord{}, ErrInvalidInput
	}

	now := s.now()
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = string(in.Type)
	}

	rec := MedicalRecord{
		ID:           id,
		AnimalID:     animalID,
		Type:         in.Type,
		Date:         in.Date,
		RecordedAt:   now,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Veterinarian: strings.TrimSpace(in.Veterinarian),
		Clinic:       strings.TrimSpace(in.Clinic),
		RecordedBy:   strings.TrimSpace(in.RecordedBy),
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return MedicalRecord{}, err
	}
	return rec, nil
}

type UpdateInput struct {
	Type         *RecordType
	Date         *time.Time
	Title        *string
	Description  *string
	Veterinarian *string
	Clinic       *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (MedicalRecord, error) {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return MedicalRecord{}, err
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return MedicalRecord{}, ErrInvalidInput
		}
		rec.Type = *in.Type
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return MedicalRecord{}, ErrInvalidInput
		}
		rec.Date = *in.Date
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return MedicalRecord{}, ErrInvalidInput
		}
		rec.Title = t
	}
	if in.Description != nil {
		rec.Description = strings.TrimSpace(*in.Description)
	}
	if in.Veterinarian != nil {
		rec.Veterinarian = strings.TrimSpace(*in.Veterinarian)
	}
	if in.Clinic != nil {
		rec.Clinic = strings.TrimSpace(*in.Clinic)
	}
	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return MedicalRecord{}, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (MedicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MedicalRecord{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string, filter ListFilter) ([]MedicalRecord, error) {
	return s.repo.ListByAnimal(ctx, animalID, filter)
}

func (s *Service) ListAll(ctx context.Context) ([]MedicalRecord, error) {
	return s.repo.ListAll(ctx)
}

// PurgeAnimal borra los registros del animal eliminado.
func (s *Service) PurgeAnimal(ctx context.Context, animalID string) error {
	_, err := s.repo.DeleteByAnimal(ctx, animalID)
	return err
}
