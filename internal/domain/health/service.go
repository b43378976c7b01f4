package health

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/animals"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlertNotFound = errors.New("alert not found")
)

// DefaultWindow ventana por defecto de las consultas (24h).
const DefaultWindow = 24 * time.Hour

// AnimalDirectory resuelve animales para las vistas. Lo cumple animals.Service.
type AnimalDirectory interface {
	GetByID(ctx context.Context, id string) (animals.Animal, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]animals.Animal, error)
}

// Service expone las consultas de solo lectura sobre la telemetría.
type Service struct {
	repo    Repository
	animals AnimalDirectory
	now     func() time.Time
}

func NewService(repo Repository, dir AnimalDirectory) *Service {
	return &Service{
		repo:    repo,
		animals: dir,
		now:     time.Now,
	}
}

// Readings devuelve lecturas con ts >= now-window (now al momento de la llamada),
// ascendente. metric == "" => todas las métricas.
func (s *Service) Readings(ctx context.Context, animalID string, metric Metric, window time.Duration) ([]Reading, error) {
	if metric != "" && !metric.Valid() {
		return nil, ErrInvalidInput
	}
	if window <= 0 {
		window = DefaultWindow
	}
	since := s.now().Add(-window)
	return s.repo.ListReadings(ctx, ReadingFilter{AnimalID: animalID, Metric: metric, Since: &since})
}

// History devuelve todas las lecturas del animal, sin ventana.
func (s *Service) History(ctx context.Context, animalID string) ([]Reading, error) {
	return s.repo.ListReadings(ctx, ReadingFilter{AnimalID: animalID})
}

// Scores devuelve la serie de scores dentro de la ventana, ascendente.
func (s *Service) Scores(ctx context.Context, animalID string, window time.Duration) ([]HealthScore, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	since := s.now().Add(-window)
	return s.repo.ListScores(ctx, ScoreFilter{AnimalID: animalID, Since: &since})
}

// LatestScore: found=false si el animal todavía no tiene score.
func (s *Service) LatestScore(ctx context.Context, animalID string) (HealthScore, bool, error) {
	return s.repo.LatestScore(ctx, animalID)
}

// Status arma la vista compuesta del animal.
// Animal inexistente => found=false, err=nil (siempre, sin efectos).
func (s *Service) Status(ctx context.Context, animalID string) (AnimalStatus, bool, error) {
	a, err := s.animals.GetByID(ctx, strings.TrimSpace(animalID))
	if err != nil {
		if errors.Is(err, animals.ErrNotFound) {
			return AnimalStatus{}, false, nil
		}
		return AnimalStatus{}, false, err
	}
	st, err := s.statusOf(ctx, a)
	if err != nil {
		return AnimalStatus{}, false, err
	}
	return st, true, nil
}

func (s *Service) statusOf(ctx context.Context, a animals.Animal) (AnimalStatus, error) {
	st := AnimalStatus{
		AnimalID:   a.ID,
		AnimalName: a.Name,
		Species:    string(a.Species),
	}

	sc, found, err := s.repo.LatestScore(ctx, a.ID)
	if err != nil {
		return AnimalStatus{}, err
	}
	if found {
		st.Score = &sc
		st.LastUpdate = sc.Timestamp
	}

	latest := func(m Metric) (*float64, error) {
		r, ok, err := s.repo.LatestReading(ctx, a.ID, m)
		if err != nil || !ok {
			return nil, err
		}
		v := r.Value
		return &v, nil
	}
	if st.HeartRate, err = latest(MetricHeartRate); err != nil {
		return AnimalStatus{}, err
	}
	if st.Temperature, err = latest(MetricTemperature); err != nil {
		return AnimalStatus{}, err
	}
	if st.Activity, err = latest(MetricActivity); err != nil {
		return AnimalStatus{}, err
	}
	if st.HRV, err = latest(MetricHRV); err != nil {
		return AnimalStatus{}, err
	}
	mood, err := latest(MetricMood)
	if err != nil {
		return AnimalStatus{}, err
	}
	if mood != nil {
		st.Mood = MoodLabel(*mood)
	}

	unread, err := s.repo.ListAlerts(ctx, AlertFilter{AnimalIDs: []string{a.ID}, UnreadOnly: true})
	if err != nil {
		return AnimalStatus{}, err
	}
	st.UnreadAlerts = len(unread)
	return st, nil
}

// OrganizationStatus devuelve el estado de los animales de los miembros.
// Los animales sin score todavía se omiten.
func (s *Service) OrganizationStatus(ctx context.Context, organizationID string) ([]AnimalStatus, error) {
	items, err := s.animals.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	out := make([]AnimalStatus, 0, len(items))
	for _, a := range items {
		st, err := s.statusOf(ctx, a)
		if err != nil {
			return nil, err
		}
		if st.Score == nil {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// Alerts del animal, más reciente primero.
func (s *Service) Alerts(ctx context.Context, animalID string, unreadOnly bool) ([]Alert, error) {
	return s.repo.ListAlerts(ctx, AlertFilter{AnimalIDs: []string{animalID}, UnreadOnly: unreadOnly})
}

// OrganizationAlerts alertas de todos los animales de la organización, más reciente primero.
func (s *Service) OrganizationAlerts(ctx context.Context, organizationID string, unreadOnly bool) ([]Alert, error) {
	items, err := s.animals.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Alert{}, nil
	}
	ids := make([]string, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	return s.repo.ListAlerts(ctx, AlertFilter{AnimalIDs: ids, UnreadOnly: unreadOnly})
}

func (s *Service) MarkAlertRead(ctx context.Context, alertID string) (Alert, error) {
	alertID = strings.TrimSpace(alertID)
	if alertID == "" {
		return Alert{}, ErrAlertNotFound
	}
	if err := s.repo.MarkAlertRead(ctx, alertID); err != nil {
		return Alert{}, err
	}
	return s.repo.GetAlert(ctx, alertID)
}

// MarkAllRead marca como leídas todas las alertas del animal. Devuelve cuántas cambió.
func (s *Service) MarkAllRead(ctx context.Context, animalID string) (int, error) {
	open, err := s.repo.ListAlerts(ctx, AlertFilter{AnimalIDs: []string{animalID}, UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	for _, a := range open {
		if err := s.repo.MarkAlertRead(ctx, a.ID); err != nil {
			return 0, err
		}
	}
	return len(open), nil
}

// AllReadings / AllScores / AllAlerts se usan en la exportación.
func (s *Service) AllReadings(ctx context.Context) ([]Reading, error) {
	return s.repo.ListReadings(ctx, ReadingFilter{})
}

func (s *Service) AllScores(ctx context.Context) ([]HealthScore, error) {
	return s.repo.ListScores(ctx, ScoreFilter{})
}

func (s *Service) AllAlerts(ctx context.Context) ([]Alert, error) {
	return s.repo.ListAlerts(ctx, AlertFilter{})
}

// PurgeAnimal borra la telemetría del animal eliminado.
func (s *Service) PurgeAnimal(ctx context.Context, animalID string) error {
	return s.repo.DeleteByAnimal(ctx, animalID)
}
