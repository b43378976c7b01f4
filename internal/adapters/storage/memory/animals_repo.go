package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-health-monitor/internal/domain/animals"
)

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[a.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[a.ID]; !exists {
		return animals.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return animals.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) ListAll(ctx context.Context) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sortAnimals(out)
	return out, nil
}

func (r *animalRepo) ListByOwners(ctx context.Context, ownerUserIDs []string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := toSet(ownerUserIDs)
	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if _, ok := owners[a.OwnerUserID]; ok {
			out = append(out, a)
		}
	}
	sortAnimals(out)
	return out, nil
}

func (r *animalRepo) CountByOwners(ctx context.Context, ownerUserIDs []string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := toSet(ownerUserIDs)
	n := 0
	for _, a := range r.byID {
		if _, ok := owners[a.OwnerUserID]; ok {
			n++
		}
	}
	return n, nil
}

// Orden estable por created_at asc, luego id (solo para consistencia en dev)
func sortAnimals(items []animals.Animal) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
