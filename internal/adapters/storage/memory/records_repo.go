package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-health-monitor/internal/domain/records"
)

type recordRepo struct {
	mu   sync.RWMutex
	byID map[string]records.MedicalRecord
}

func NewRecordRepo() records.Repository {
	return &recordRepo{
		byID: make(map[string]records.MedicalRecord),
	}
}

func (r *recordRepo) Create(ctx context.Context, rec records.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[rec.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *recordRepo) Update(ctx context.Context, rec records.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rec.ID]; !exists {
		return records.ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *recordRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return records.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *recordRepo) DeleteByAnimal(ctx context.Context, animalID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, rec := range r.byID {
		if rec.AnimalID == animalID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (records.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return records.MedicalRecord{}, records.ErrNotFound
	}
	return rec, nil
}

func (r *recordRepo) ListByAnimal(ctx context.Context, animalID string, filter records.ListFilter) ([]records.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]records.MedicalRecord, 0)
	for _, rec := range r.byID {
		if rec.AnimalID != animalID {
			continue
		}

		if len(filter.Types) > 0 {
			ok := false
			for _, t := range filter.Types {
				if rec.Type == t {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		// Rango inclusivo sobre date
		if filter.From != nil && rec.Date.Before((*filter.From).Add(-1*time.Nanosecond)) {
			continue
		}
		if filter.To != nil && rec.Date.After(*filter.To) {
			continue
		}

		if q := strings.TrimSpace(filter.Query); q != "" {
			hay := strings.ToLower(rec.Title + " " + rec.Description)
			if !strings.Contains(hay, strings.ToLower(q)) {
				continue
			}
		}

		out = append(out, rec)
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *recordRepo) ListAll(ctx context.Context) ([]records.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.MedicalRecord, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}
