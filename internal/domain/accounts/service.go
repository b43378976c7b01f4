package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUsernameTaken        = errors.New("username already taken")
)

// AnimalCounter cuenta animales por dueño. Lo cumple animals.Repository.
type AnimalCounter interface {
	CountByOwners(ctx context.Context, ownerUserIDs []string) (int, error)
}

// DeviceCounter cuenta dispositivos de un usuario (total y pagos).
type DeviceCounter interface {
	CountByUser(ctx context.Context, userID string) (total int, paid int, err error)
}

// AnimalRemover borra los animales de un usuario (con su limpieza asociada).
type AnimalRemover interface {
	DeleteByOwner(ctx context.Context, ownerUserID string) (int, error)
}

type Service struct {
	users   UserRepository
	orgs    OrganizationRepository
	animals AnimalCounter
	devices DeviceCounter
	remover AnimalRemover

	// serializa read-modify-write de usuarios/organizaciones para que los
	// contadores derivados no se pisen entre requests concurrentes
	mu sync.Mutex

	now func() time.Time
}

func NewService(users UserRepository, orgs OrganizationRepository, animals AnimalCounter) *Service {
	return &Service{
		users:   users,
		orgs:    orgs,
		animals: animals,
		now:     time.Now,
	}
}

// SetDeviceCounter y SetAnimalRemover se cablean después porque devices y animals
// se construyen con este servicio como dependencia.
func (s *Service) SetDeviceCounter(d DeviceCounter) { s.devices = d }
func (s *Service) SetAnimalRemover(r AnimalRemover) { s.remover = r }

// ===== Users =====

type CreateUserInput struct {
	ID             string // opcional
	Username       string
	Email          string
	Phone          string
	FullName       string
	Role           Role
	Status         UserStatus
	OrganizationID string
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return User{}, ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = RoleUser
	}
	status := in.Status
	if status == "" {
		status = UserActive
	}
	if !role.Valid() || !status.Valid() {
		return User{}, ErrInvalidInput
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID != "" {
		if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
			return User{}, err
		}
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now()
	u := User{
		ID:             id,
		Username:       username,
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		FullName:       strings.TrimSpace(in.FullName),
		Role:           role,
		Status:         status,
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return User{}, err
	}

	if orgID != "" {
		if err := s.recountOrganization(ctx, orgID); err != nil {
			return User{}, err
		}
	}
	return s.users.GetByID(ctx, u.ID)
}

type UpdateUserInput struct {
	Email          *string
	Phone          *string
	FullName       *string
	Role           *Role
	Status         *UserStatus
	OrganizationID *string // "" = quitar de la organización
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	prevOrg := u.OrganizationID

	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return User{}, ErrInvalidInput
		}
		u.Role = *in.Role
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return User{}, ErrInvalidInput
		}
		u.Status = *in.Status
	}
	if in.OrganizationID != nil {
		orgID := strings.TrimSpace(*in.OrganizationID)
		if orgID != "" {
			if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
				return User{}, err
			}
		}
		u.OrganizationID = orgID
	}
	u.UpdatedAt = s.now()

	if err := s.users.Update(ctx, u); err != nil {
		return User{}, err
	}

	if prevOrg != u.OrganizationID {
		for _, orgID := range []string{prevOrg, u.OrganizationID} {
			if orgID == "" {
				continue
			}
			if err := s.recountOrganization(ctx, orgID); err != nil {
				return User{}, err
			}
		}
	}
	return s.GetUser(ctx, id)
}

// DeleteUser borra el usuario y en cascada sus animales.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if s.remover != nil {
		if _, err := s.remover.DeleteByOwner(ctx, u.ID); err != nil {
			return fmt.Errorf("delete animals of user %s: %w", u.ID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	if u.OrganizationID != "" {
		return s.recountOrganization(ctx, u.OrganizationID)
	}
	return nil
}

// TouchLogin registra el último acceso del usuario autenticado.
func (s *Service) TouchLogin(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	u.LastLoginAt = &now
	return s.users.Update(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrUserNotFound
	}
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	return s.users.List(ctx, filter)
}

// HasUser, RoleOf y MemberIDs los consumen animals y permissions.

func (s *Service) HasUser(ctx context.Context, userID string) (bool, error) {
	_, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) RoleOf(ctx context.Context, userID string) (string, bool, error) {
	u, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(u.Role), true, nil
}

// MemberIDs devuelve vacío (sin error) si la organización no existe.
func (s *Service) MemberIDs(ctx context.Context, organizationID string) ([]string, error) {
	if strings.TrimSpace(organizationID) == "" {
		return []string{}, nil
	}
	members, err := s.users.List(ctx, UserFilter{OrganizationID: organizationID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// ===== Agregados =====

// RecountAnimals recalcula User.AnimalCount y los contadores de su organización.
// Si el usuario ya no existe no hace nada.
func (s *Service) RecountAnimals(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	n, err := s.animals.CountByOwners(ctx, []string{userID})
	if err != nil {
		return err
	}
	u.AnimalCount = n
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	if u.OrganizationID != "" {
		return s.recountOrganization(ctx, u.OrganizationID)
	}
	return nil
}

// RecountDevices recalcula los contadores de dispositivos del usuario.
func (s *Service) RecountDevices(ctx context.Context, userID string) error {
	if s.devices == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	total, paid, err := s.devices.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	u.DeviceCount = total
	u.PaidDeviceCount = paid
	u.UnpaidDeviceCount = total - paid
	return s.users.Update(ctx, u)
}

// recountOrganization asume s.mu tomado.
func (s *Service) recountOrganization(ctx context.Context, orgID string) error {
	o, err := s.orgs.GetByID(ctx, orgID)
	if errors.Is(err, ErrOrganizationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	members, err := s.users.List(ctx, UserFilter{OrganizationID: orgID})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	n := 0
	if len(ids) > 0 {
		n, err = s.animals.CountByOwners(ctx, ids)
		if err != nil {
			return err
		}
	}
	o.UserCount = len(ids)
	o.AnimalCount = n
	return s.orgs.Update(ctx, o)
}

// ===== Organizations =====

type CreateOrganizationInput struct {
	ID          string // opcional
	Name        string
	Description string
	Status      OrganizationStatus
}

func (s *Service) CreateOrganization(ctx context.Context, in CreateOrganizationInput) (Organization, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Organization{}, ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = OrgActive
	}
	if status != OrgActive && status != OrgInactive {
		return Organization{}, ErrInvalidInput
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now()
	o := Organization{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orgs.Create(ctx, o); err != nil {
		return Organization{}, err
	}
	return o, nil
}

type UpdateOrganizationInput struct {
	Name        *string
	Description *string
	Status      *OrganizationStatus
}

func (s *Service) UpdateOrganization(ctx context.Context, id string, in UpdateOrganizationInput) (Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.GetOrganization(ctx, id)
	if err != nil {
		return Organization{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Organization{}, ErrInvalidInput
		}
		o.Name = name
	}
	if in.Description != nil {
		o.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if *in.Status != OrgActive && *in.Status != OrgInactive {
			return Organization{}, ErrInvalidInput
		}
		o.Status = *in.Status
	}
	o.UpdatedAt = s.now()
	if err := s.orgs.Update(ctx, o); err != nil {
		return Organization{}, err
	}
	return o, nil
}

// DeleteOrganization desvincula a sus miembros (los usuarios no se borran).
func (s *Service) DeleteOrganization(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.GetOrganization(ctx, id)
	if err != nil {
		return err
	}
	members, err := s.users.List(ctx, UserFilter{OrganizationID: o.ID})
	if err != nil {
		return err
	}
	now := s.now()
	for _, m := range members {
		m.OrganizationID = ""
		m.UpdatedAt = now
		if err := s.users.Update(ctx, m); err != nil {
			return err
		}
	}
	return s.orgs.Delete(ctx, o.ID)
}

func (s *Service) GetOrganization(ctx context.Context, id string) (Organization, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Organization{}, ErrOrganizationNotFound
	}
	return s.orgs.GetByID(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.orgs.List(ctx)
}
