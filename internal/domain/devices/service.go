package devices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("device not found")
	ErrCodeTaken      = errors.New("device code already registered")
	ErrOwnerNotFound  = errors.New("owner user not found")
	ErrAnimalNotFound = errors.New("animal not found")
)

// Owners lo implementa accounts.Service.
type Owners interface {
	HasUser(ctx context.Context, userID string) (bool, error)
	RecountDevices(ctx context.Context, userID string) error
}

// AnimalOwner lo implementa animals.Service (OwnerOf).
type AnimalOwner interface {
	OwnerOf(ctx context.Context, animalID string) (string, error)
}

type Service struct {
	repo    Repository
	owners  Owners
	animals AnimalOwner
	now     func() time.Time
}

func NewService(repo Repository, owners Owners, animals AnimalOwner) *Service {
	return &Service{
		repo:    repo,
		owners:  owners,
		animals: animals,
		now:     time.Now,
	}
}

type CreateInput struct {
	ID                 string // opcional
	Code               string
	UserID             string
	AnimalID           string
	IsActivated        bool
	IsPaid             bool
	PaymentType        PaymentType
	BatteryLevel       int
	BluetoothConnected bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Device, error) {
	code := strings.TrimSpace(in.Code)
	userID := strings.TrimSpace(in.UserID)
	if code == "" || userID == "" || !in.PaymentType.Valid() {
		return Device{}, ErrInvalidInput
	}
	if in.BatteryLevel < 0 || in.BatteryLevel > 100 {
		return Device{}, ErrInvalidInput
	}
	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return Device{}, ErrCodeTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Device{}, err
	}
	if err := s.ensureOwner(ctx, userID); err != nil {
		return Device{}, err
	}
	animalID := strings.TrimSpace(in.AnimalID)
	if err := s.ensureAnimal(ctx, animalID); err != nil {
		return Device{}, err
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now()
	d := Device{
		ID:                 id,
		Code:               code,
		UserID:             userID,
		AnimalID:           animalID,
		IsActivated:        in.IsActivated,
		IsPaid:             in.IsPaid,
		PaymentType:        in.PaymentType,
		BatteryLevel:       in.BatteryLevel,
		BluetoothConnected: in.BluetoothConnected,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return Device{}, err
	}
	if err := s.owners.RecountDevices(ctx, userID); err != nil {
		return Device{}, fmt.Errorf("recount device counters: %w", err)
	}
	return d, nil
}

type UpdateInput struct {
	UserID             *string
	AnimalID           *string // "" = desvincular
	IsActivated        *bool
	IsPaid             *bool
	PaymentType        *PaymentType
	BatteryLevel       *int
	BluetoothConnected *bool
	LastSyncAt         *time.Time
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Device, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return Device{}, err
	}
	prevUser := d.UserID

	if in.UserID != nil {
		userID := strings.TrimSpace(*in.UserID)
		if userID == "" {
			return Device{}, ErrInvalidInput
		}
		if err := s.ensureOwner(ctx, userID); err != nil {
			return Device{}, err
		}
		d.UserID = userID
	}
	if in.AnimalID != nil {
		animalID := strings.TrimSpace(*in.AnimalID)
		if err := s.ensureAnimal(ctx, animalID); err != nil {
			return Device{}, err
		}
		d.AnimalID = animalID
	}
	if in.IsActivated != nil {
		d.IsActivated = *in.IsActivated
	}
	if in.IsPaid != nil {
		d.IsPaid = *in.IsPaid
	}
	if in.PaymentType != nil {
		if !in.PaymentType.Valid() {
			return Device{}, ErrInvalidInput
		}
		d.PaymentType = *in.PaymentType
	}
	if in.BatteryLevel != nil {
		if *in.BatteryLevel < 0 || *in.BatteryLevel > 100 {
			return Device{}, ErrInvalidInput
		}
		d.BatteryLevel = *in.BatteryLevel
	}
	if in.BluetoothConnected != nil {
		d.BluetoothConnected = *in.BluetoothConnected
	}
	if in.LastSyncAt != nil {
		t := *in.LastSyncAt
		d.LastSyncAt = &t
	}
	d.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, d); err != nil {
		return Device{}, err
	}

	// is_paid o dueño pueden cambiar los contadores
	users := []string{d.UserID}
	if prevUser != d.UserID {
		users = append(users, prevUser)
	}
	for _, u := range users {
		if err := s.owners.RecountDevices(ctx, u); err != nil {
			return Device{}, fmt.Errorf("recount device counters: %w", err)
		}
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, d.ID); err != nil {
		return err
	}
	if err := s.owners.RecountDevices(ctx, d.UserID); err != nil {
		return fmt.Errorf("recount device counters: %w", err)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Device, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Device{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Device, error) {
	return s.repo.List(ctx, filter)
}

// CountByUser lo consume accounts para los contadores del usuario.
func (s *Service) CountByUser(ctx context.Context, userID string) (int, int, error) {
	return s.repo.CountByUser(ctx, userID)
}

// PurgeAnimal desvincula los dispositivos del animal borrado (el equipo sigue siendo del usuario).
func (s *Service) PurgeAnimal(ctx context.Context, animalID string) error {
	items, err := s.repo.List(ctx, ListFilter{AnimalID: animalID})
	if err != nil {
		return err
	}
	now := s.now()
	for _, d := range items {
		d.AnimalID = ""
		d.UpdatedAt = now
		if err := s.repo.Update(ctx, d); err != nil {
			return err
		}
	}
	return nil
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

func (s *Service) ensureAnimal(ctx context.Context, animalID string) error {
	if animalID == "" || s.animals == nil {
		return nil
	}
	if _, err := s.animals.OwnerOf(ctx, animalID); err != nil {
		return ErrAnimalNotFound
	}
	return nil
}
