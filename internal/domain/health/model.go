package health

import "time"

// Metric tipo de métrica de un punto de telemetría.
// @Enum heart_rate, temperature, activity, sleep, stress, hrv, mood
type Metric string

const (
	MetricHeartRate   Metric = "heart_rate"
	MetricTemperature Metric = "temperature"
	MetricActivity    Metric = "activity"
	MetricSleep       Metric = "sleep"
	MetricStress      Metric = "stress"
	MetricHRV         Metric = "hrv"
	MetricMood        Metric = "mood"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricHeartRate, MetricTemperature, MetricActivity, MetricSleep, MetricStress, MetricHRV, MetricMood:
		return true
	}
	return false
}

// Unit devuelve la unidad con la que se guarda la métrica.
func (m Metric) Unit() string {
	switch m {
	case MetricHeartRate:
		return "bpm"
	case MetricTemperature:
		return "°C"
	case MetricActivity:
		return "%"
	case MetricHRV:
		return "ms"
	case MetricSleep:
		return "h"
	}
	return ""
}

// GeneratedMetrics son las métricas que produce cada pasada del simulador.
var GeneratedMetrics = []Metric{MetricHeartRate, MetricTemperature, MetricActivity, MetricHRV, MetricMood}

// Moods: el valor de la lectura mood es el índice en este slice.
var Moods = []string{"calm", "active", "tense", "relaxed", "excited"}

// MoodLabel traduce el índice guardado. Índices fuera de rango => "".
func MoodLabel(v float64) string {
	i := int(v)
	if i < 0 || i >= len(Moods) {
		return ""
	}
	return Moods[i]
}

// Reading es un punto de telemetría. Append-only.
type Reading struct {
	ID        string
	AnimalID  string
	Metric    Metric
	Value     float64
	Unit      string
	Timestamp time.Time
}

// HealthScore es un punto de la serie de scores del animal (0..100).
// Los sub-scores se sortean de forma independiente; no se promedian en Overall.
type HealthScore struct {
	ID          string
	AnimalID    string
	Overall     float64
	HeartRate   float64
	Temperature float64
	Activity    float64
	Sleep       float64
	Stress      float64
	Timestamp   time.Time
}

// Severity nivel de una alerta. Orden: low < medium < high < critical.
// @Enum low, medium, high, critical
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank permite comparar severidades. Valores desconocidos => 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Category regla que disparó la alerta.
// @Enum heart_rate, temperature, health_score
type Category string

const (
	CategoryHeartRate   Category = "heart_rate"
	CategoryTemperature Category = "temperature"
	CategoryHealthScore Category = "health_score"
)

type Alert struct {
	ID        string
	AnimalID  string
	Category  Category
	Severity  Severity
	Message   string
	Value     float64
	Timestamp time.Time
	Read      bool
}

// AnimalStatus es la vista compuesta que consume el dashboard.
type AnimalStatus struct {
	AnimalID   string
	AnimalName string
	Species    string

	Score *HealthScore

	HeartRate   *float64
	Temperature *float64
	Activity    *float64
	HRV         *float64
	Mood        string

	UnreadAlerts int
	LastUpdate   time.Time
}
