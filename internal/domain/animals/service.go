package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("animal not found")
	ErrOwnerNotFound = errors.New("owner user not found")
)

// Owners es lo que animals necesita del módulo de cuentas.
// Se define acá para no importar accounts (accounts ya depende de animals vía interfaces).
type Owners interface {
	HasUser(ctx context.Context, userID string) (bool, error)
	RecountAnimals(ctx context.Context, userID string) error
	MemberIDs(ctx context.Context, organizationID string) ([]string, error)
}

// Cleaner borra datos derivados de un animal eliminado (lecturas, registros, vínculos).
type Cleaner interface {
	PurgeAnimal(ctx context.Context, animalID string) error
}

type Service struct {
	repo     Repository
	owners   Owners
	cleaners []Cleaner
	now      func() time.Time
}

func NewService(repo Repository, owners Owners) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		now:    time.Now,
	}
}

// AddCleaner registra un módulo que debe limpiar sus datos cuando se borra un animal.
func (s *Service) AddCleaner(c Cleaner) {
	if c != nil {
		s.cleaners = append(s.cleaners, c)
	}
}

type CreateInput struct {
	ID          string // opcional (seed/import); si viene vacío se genera
	OwnerUserID string
	Name        string
	Species     string
	Sex         string
	WeightKg    float64
	AgeYears    int
	BirthDate   *time.Time
	DeviceID    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Animal, error) {
	ownerID := strings.TrimSpace(in.OwnerUserID)
	if ownerID == "" || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Animal{}, ErrInvalidInput
	}
	if in.WeightKg < 0 || in.AgeYears < 0 {
		return Animal{}, ErrInvalidInput
	}
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return Animal{}, err
	}

	now := s.now()
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	sex := Sex(strings.ToLower(strings.TrimSpace(in.Sex)))
	if sex == "" {
		sex = SexUnknown
	}

	a := Animal{
		ID:          id,
		OwnerUserID: ownerID,
		Name:        strings.TrimSpace(in.Name),
		Species:     Species(strings.ToLower(strings.TrimSpace(in.Species))),
		Sex:         sex,
		WeightKg:    in.WeightKg,
		AgeYears:    in.AgeYears,
		BirthDate:   in.BirthDate,
		DeviceID:    strings.TrimSpace(in.DeviceID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.AgeYears == 0 && a.BirthDate != nil {
		a.AgeYears = ageFrom(*a.BirthDate, now)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	if err := s.owners.RecountAnimals(ctx, ownerID); err != nil {
		return Animal{}, fmt.Errorf("recount owner aggregates: %w", err)
	}
	return a, nil
}

// PatchBirthDate distingue "no enviado" de "null" (limpiar).
type PatchBirthDate struct {
	Present bool
	Value   *time.Time
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	OwnerUserID *string
	Name        *string
	Species     *string
	Sex         *string
	WeightKg    *float64
	AgeYears    *int
	BirthDate   PatchBirthDate
	DeviceID    *string
	LastSyncAt  *time.Time
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Animal, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	prevOwner := current.OwnerUserID

	if in.OwnerUserID != nil {
		ownerID := strings.TrimSpace(*in.OwnerUserID)
		if ownerID == "" {
			return Animal{}, ErrInvalidInput
		}
		if err := s.ensureOwner(ctx, ownerID); err != nil {
			return Animal{}, err
		}
		current.OwnerUserID = ownerID
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Animal{}, ErrInvalidInput
		}
		current.Name = name
	}
	if in.Species != nil {
		sp := strings.ToLower(strings.TrimSpace(*in.Species))
		if sp == "" {
			return Animal{}, ErrInvalidInput
		}
		current.Species = Species(sp)
	}
	if in.Sex != nil {
		current.Sex = Sex(strings.ToLower(strings.TrimSpace(*in.Sex)))
	}
	if in.WeightKg != nil {
		if *in.WeightKg < 0 {
			return Animal{}, ErrInvalidInput
		}
		current.WeightKg = *in.WeightKg
	}
	if in.AgeYears != nil {
		if *in.AgeYears < 0 {
			return Animal{}, ErrInvalidInput
		}
		current.AgeYears = *in.AgeYears
	}
	if in.BirthDate.Present {
		current.BirthDate = in.BirthDate.Value
	}
	if in.DeviceID != nil {
		current.DeviceID = strings.TrimSpace(*in.DeviceID)
	}
	if in.LastSyncAt != nil {
		t := *in.LastSyncAt
		current.LastSyncAt = &t
	}
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Animal{}, err
	}

	if prevOwner != current.OwnerUserID {
		if err := s.owners.RecountAnimals(ctx, prevOwner); err != nil {
			return Animal{}, fmt.Errorf("recount previous owner aggregates: %w", err)
		}
		if err := s.owners.RecountAnimals(ctx, current.OwnerUserID); err != nil {
			return Animal{}, fmt.Errorf("recount owner aggregates: %w", err)
		}
	}
	return current, nil
}

// Delete borra el animal, limpia datos derivados y recalcula agregados del dueño.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, a); err != nil {
		return err
	}
	if err := s.owners.RecountAnimals(ctx, a.OwnerUserID); err != nil {
		return fmt.Errorf("recount owner aggregates: %w", err)
	}
	return nil
}

// DeleteByOwner se usa al borrar un usuario: sus animales se van con él.
// No recalcula agregados; el llamador (accounts) ya lo hace al final.
func (s *Service) DeleteByOwner(ctx context.Context, ownerUserID string) (int, error) {
	items, err := s.repo.ListByOwners(ctx, []string{ownerUserID})
	if err != nil {
		return 0, err
	}
	for _, a := range items {
		if err := s.remove(ctx, a); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func (s *Service) remove(ctx context.Context, a Animal) error {
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}
	for _, c := range s.cleaners {
		if err := c.PurgeAnimal(ctx, a.ID); err != nil {
			return fmt.Errorf("purge animal %s: %w", a.ID, err)
		}
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Animal, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error) {
	return s.repo.ListByOwners(ctx, []string{ownerUserID})
}

// ListByOrganization resuelve usuarios miembros y luego sus animales.
func (s *Service) ListByOrganization(ctx context.Context, organizationID string) ([]Animal, error) {
	members, err := s.owners.MemberIDs(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []Animal{}, nil
	}
	return s.repo.ListByOwners(ctx, members)
}

func (s *Service) ensureOwner(ctx context.Context, userID string) error {
	ok, err := s.owners.HasUser(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOwnerNotFound
	}
	return nil
}

func ageFrom(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
