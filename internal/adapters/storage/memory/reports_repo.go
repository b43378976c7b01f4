package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-health-monitor/internal/domain/reports"
)

type reportRepo struct {
	mu   sync.RWMutex
	byID map[string]reports.Report
}

func NewReportRepo() reports.Repository {
	return &reportRepo{
		byID: make(map[string]reports.Report),
	}
}

func (r *reportRepo) Create(ctx context.Context, rep reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[rep.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[rep.ID] = rep
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.byID[id]
	if !ok {
		return reports.Report{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *reportRepo) ListByUser(ctx context.Context, userID string) ([]reports.Report, error) {
	return r.list(userID), nil
}

func (r *reportRepo) ListAll(ctx context.Context) ([]reports.Report, error) {
	return r.list(""), nil
}

func (r *reportRepo) list(userID string) []reports.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.Report, 0)
	for _, rep := range r.byID {
		if userID != "" && rep.UserID != userID {
			continue
		}
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}
