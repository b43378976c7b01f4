package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-health-monitor/internal/domain/syncs"
)

type syncRepo struct {
	mu   sync.RWMutex
	byID map[string]syncs.Record
}

func NewSyncRepo() syncs.Repository {
	return &syncRepo{
		byID: make(map[string]syncs.Record),
	}
}

func (r *syncRepo) Create(ctx context.Context, rec syncs.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[rec.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *syncRepo) Update(ctx context.Context, rec syncs.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rec.ID]; !exists {
		return syncs.ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *syncRepo) GetByID(ctx context.Context, id string) (syncs.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return syncs.Record{}, syncs.ErrNotFound
	}
	return rec, nil
}

func (r *syncRepo) ListByUser(ctx context.Context, userID string) ([]syncs.Record, error) {
	return r.list(func(rec syncs.Record) bool { return rec.UserID == userID }), nil
}

func (r *syncRepo) ListAll(ctx context.Context) ([]syncs.Record, error) {
	return r.list(func(syncs.Record) bool { return true }), nil
}

func (r *syncRepo) ListPending(ctx context.Context) ([]syncs.Record, error) {
	return r.list(func(rec syncs.Record) bool { return rec.Status == syncs.StatusPending }), nil
}

// list filtra y ordena: StartTime desc, ID asc para desempatar.
func (r *syncRepo) list(keep func(syncs.Record) bool) []syncs.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]syncs.Record, 0)
	for _, rec := range r.byID {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}
