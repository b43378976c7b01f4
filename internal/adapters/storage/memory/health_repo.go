package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pet-health-monitor/internal/domain/health"
)

// healthRepo guarda la telemetría por animal, en orden de inserción.
type healthRepo struct {
	mu       sync.RWMutex
	readings map[string][]health.Reading
	scores   map[string][]health.HealthScore
	alerts   map[string]health.Alert
	// orden de inserción de alertas (desempate por timestamp igual)
	alertSeq map[string]int
	seq      int
}

func NewHealthRepo() health.Repository {
	return &healthRepo{
		readings: make(map[string][]health.Reading),
		scores:   make(map[string][]health.HealthScore),
		alerts:   make(map[string]health.Alert),
		alertSeq: make(map[string]int),
	}
}

func (r *healthRepo) AddReading(ctx context.Context, rd health.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rd.ID == "" {
		return ErrIDRequired
	}
	r.readings[rd.AnimalID] = append(r.readings[rd.AnimalID], rd)
	return nil
}

func (r *healthRepo) PurgeFresh(ctx context.Context, animalID string, metric health.Metric, after time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.readings[animalID]
	kept := src[:0]
	removed := 0
	for _, rd := range src {
		if rd.Metric == metric && rd.Timestamp.After(after) {
			removed++
			continue
		}
		kept = append(kept, rd)
	}
	r.readings[animalID] = kept
	return removed, nil
}

func (r *healthRepo) ListReadings(ctx context.Context, f health.ReadingFilter) ([]health.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups [][]health.Reading
	if f.AnimalID != "" {
		groups = [][]health.Reading{r.readings[f.AnimalID]}
	} else {
		for _, g := range r.readings {
			groups = append(groups, g)
		}
	}

	out := make([]health.Reading, 0)
	for _, g := range groups {
		for _, rd := range g {
			if f.Metric != "" && rd.Metric != f.Metric {
				continue
			}
			if f.Since != nil && rd.Timestamp.Before(*f.Since) {
				continue
			}
			out = append(out, rd)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (r *healthRepo) LatestReading(ctx context.Context, animalID string, metric health.Metric) (health.Reading, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  health.Reading
		found bool
	)
	for _, rd := range r.readings[animalID] {
		if rd.Metric != metric {
			continue
		}
		// >= para que, a igual timestamp, gane la última insertada
		if !found || !rd.Timestamp.Before(best.Timestamp) {
			best, found = rd, true
		}
	}
	return best, found, nil
}

func (r *healthRepo) AddScore(ctx context.Context, s health.HealthScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return ErrIDRequired
	}
	r.scores[s.AnimalID] = append(r.scores[s.AnimalID], s)
	return nil
}

func (r *healthRepo) LatestScore(ctx context.Context, animalID string) (health.HealthScore, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  health.HealthScore
		found bool
	)
	for _, s := range r.scores[animalID] {
		if !found || !s.Timestamp.Before(best.Timestamp) {
			best, found = s, true
		}
	}
	return best, found, nil
}

func (r *healthRepo) ListScores(ctx context.Context, f health.ScoreFilter) ([]health.HealthScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups [][]health.HealthScore
	if f.AnimalID != "" {
		groups = [][]health.HealthScore{r.scores[f.AnimalID]}
	} else {
		for _, g := range r.scores {
			groups = append(groups, g)
		}
	}

	out := make([]health.HealthScore, 0)
	for _, g := range groups {
		for _, s := range g {
			if f.Since != nil && s.Timestamp.Before(*f.Since) {
				continue
			}
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (r *healthRepo) AddAlert(ctx context.Context, a health.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return ErrIDRequired
	}
	if _, exists := r.alerts[a.ID]; exists {
		return ErrAlreadyExists
	}
	r.seq++
	r.alerts[a.ID] = a
	r.alertSeq[a.ID] = r.seq
	return nil
}

func (r *healthRepo) GetAlert(ctx context.Context, id string) (health.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return health.Alert{}, health.ErrAlertNotFound
	}
	return a, nil
}

func (r *healthRepo) MarkAlertRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return health.ErrAlertNotFound
	}
	a.Read = true
	r.alerts[id] = a
	return nil
}

func (r *healthRepo) ListAlerts(ctx context.Context, f health.AlertFilter) ([]health.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids map[string]struct{}
	if f.AnimalIDs != nil {
		ids = toSet(f.AnimalIDs)
	}

	out := make([]health.Alert, 0)
	for _, a := range r.alerts {
		if ids != nil {
			if _, ok := ids[a.AnimalID]; !ok {
				continue
			}
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.UnreadOnly && a.Read {
			continue
		}
		out = append(out, a)
	}

	// Más reciente primero; a igual timestamp, la última insertada primero
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return r.alertSeq[out[i].ID] > r.alertSeq[out[j].ID]
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *healthRepo) DeleteByAnimal(ctx context.Context, animalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.readings, animalID)
	delete(r.scores, animalID)
	for id, a := range r.alerts {
		if a.AnimalID == animalID {
			delete(r.alerts, id)
			delete(r.alertSeq, id)
		}
	}
	return nil
}
