package reports

import "time"

// Type tipo de reporte.
// @Enum monthly_free, on_demand_paid
type Type string

const (
	TypeMonthly  Type = "monthly_free"
	TypeOnDemand Type = "on_demand_paid"
)

// Umbrales de clasificación por health score.
const (
	HealthyFrom   = 80.0
	AttentionFrom = 60.0
)

// Summary agrega los scores de los animales cubiertos por el reporte.
type Summary struct {
	AnimalCount  int
	Scored       int
	Healthy      int // >= 80
	Attention    int // 60..80
	Abnormal     int // < 60
	AverageScore float64
}

type Report struct {
	ID       string
	UserID   string
	AnimalID string // solo on-demand de un animal

	Type    Type
	Title   string
	Content string
	Summary Summary

	PeriodStart *time.Time
	PeriodEnd   *time.Time

	GeneratedAt time.Time
	IsPaid      bool
}
