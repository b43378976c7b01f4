package health

import (
	"context"
	"time"
)

type ReadingFilter struct {
	AnimalID string // "" = todos
	Metric   Metric // "" = todas
	Since    *time.Time
}

type ScoreFilter struct {
	AnimalID string // "" = todos
	Since    *time.Time
}

type AlertFilter struct {
	AnimalIDs  []string // nil = todos
	Category   Category
	UnreadOnly bool
}

type Repository interface {
	AddReading(ctx context.Context, r Reading) error
	// PurgeFresh borra lecturas del animal+métrica con timestamp posterior a after.
	PurgeFresh(ctx context.Context, animalID string, metric Metric, after time.Time) (int, error)
	// ListReadings devuelve ascendente por timestamp.
	ListReadings(ctx context.Context, filter ReadingFilter) ([]Reading, error)
	LatestReading(ctx context.Context, animalID string, metric Metric) (Reading, bool, error)

	AddScore(ctx context.Context, s HealthScore) error
	LatestScore(ctx context.Context, animalID string) (HealthScore, bool, error)
	// ListScores devuelve ascendente por timestamp.
	ListScores(ctx context.Context, filter ScoreFilter) ([]HealthScore, error)

	AddAlert(ctx context.Context, a Alert) error
	GetAlert(ctx context.Context, id string) (Alert, error)
	MarkAlertRead(ctx context.Context, id string) error
	// ListAlerts devuelve más reciente primero.
	ListAlerts(ctx context.Context, filter AlertFilter) ([]Alert, error)

	// DeleteByAnimal borra lecturas, scores y alertas del animal.
	DeleteByAnimal(ctx context.Context, animalID string) error
}
