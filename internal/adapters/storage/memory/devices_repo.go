package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-health-monitor/internal/domain/devices"
)

type deviceRepo struct {
	mu   sync.RWMutex
	byID map[string]devices.Device
}

func NewDeviceRepo() devices.Repository {
	return &deviceRepo{
		byID: make(map[string]devices.Device),
	}
}

func (r *deviceRepo) Create(ctx context.Context, d devices.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[d.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[d.ID] = d
	return nil
}

func (r *deviceRepo) Update(ctx context.Context, d devices.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; !exists {
		return devices.ErrNotFound
	}
	r.byID[d.ID] = d
	return nil
}

func (r *deviceRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return devices.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *deviceRepo) GetByID(ctx context.Context, id string) (devices.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return devices.Device{}, devices.ErrNotFound
	}
	return d, nil
}

func (r *deviceRepo) GetByCode(ctx context.Context, code string) (devices.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.byID {
		if d.Code == code {
			return d, nil
		}
	}
	return devices.Device{}, devices.ErrNotFound
}

func (r *deviceRepo) List(ctx context.Context, f devices.ListFilter) ([]devices.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]devices.Device, 0)
	for _, d := range r.byID {
		if f.UserID != "" && d.UserID != f.UserID {
			continue
		}
		if f.AnimalID != "" && d.AnimalID != f.AnimalID {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *deviceRepo) CountByUser(ctx context.Context, userID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total, paid := 0, 0
	for _, d := range r.byID {
		if d.UserID != userID {
			continue
		}
		total++
		if d.IsPaid {
			paid++
		}
	}
	return total, paid, nil
}
