package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-health-monitor/internal/domain/accounts"
)

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]accounts.User
}

func NewUserRepo() accounts.UserRepository {
	return &userRepo{
		byID: make(map[string]accounts.User),
	}
}

func (r *userRepo) Create(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[u.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) Update(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return accounts.ErrUserNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return accounts.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return accounts.User{}, accounts.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return accounts.User{}, accounts.ErrUserNotFound
}

func (r *userRepo) List(ctx context.Context, f accounts.UserFilter) ([]accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Q))
	out := make([]accounts.User, 0)
	for _, u := range r.byID {
		if f.OrganizationID != "" && u.OrganizationID != f.OrganizationID {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if q != "" {
			hay := strings.ToLower(u.Username + " " + u.Email + " " + u.FullName)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type organizationRepo struct {
	mu   sync.RWMutex
	byID map[string]accounts.Organization
}

func NewOrganizationRepo() accounts.OrganizationRepository {
	return &organizationRepo{
		byID: make(map[string]accounts.Organization),
	}
}

func (r *organizationRepo) Create(ctx context.Context, o accounts.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[o.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[o.ID] = o
	return nil
}

func (r *organizationRepo) Update(ctx context.Context, o accounts.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; !exists {
		return accounts.ErrOrganizationNotFound
	}
	r.byID[o.ID] = o
	return nil
}

func (r *organizationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return accounts.ErrOrganizationNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (accounts.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return accounts.Organization{}, accounts.ErrOrganizationNotFound
	}
	return o, nil
}

func (r *organizationRepo) List(ctx context.Context) ([]accounts.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]accounts.Organization, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
