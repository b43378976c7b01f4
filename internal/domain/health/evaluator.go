package health

import (
	"fmt"
	"time"

	"pet-health-monitor/internal/domain/animals"

	"github.com/google/uuid"
)

// Umbrales de score.
const (
	scoreAlertBelow    = 60.0
	scoreCriticalBelow = 40.0
)

// Evaluate decide qué alertas corresponden a los últimos valores del animal.
// Es pura (no toca storage); el Simulator persiste y publica el resultado.
func Evaluate(a animals.Animal, heartRate, temperature, overall float64, now time.Time) []Alert {
	env := EnvelopeFor(a.Species)
	out := make([]Alert, 0, 3)

	if !env.HeartRate.Contains(heartRate) {
		dev := env.HeartRate.Deviation(heartRate)
		out = append(out, newAlert(a.ID, CategoryHeartRate, heartRateSeverity(dev), heartRate, now,
			fmt.Sprintf("%s heart rate out of range: %g bpm (normal %g-%g)",
				a.Name, heartRate, env.HeartRate.Min, env.HeartRate.Max)))
	}

	if !env.Temperature.Contains(temperature) {
		dev := env.Temperature.Deviation(temperature)
		out = append(out, newAlert(a.ID, CategoryTemperature, temperatureSeverity(dev), temperature, now,
			fmt.Sprintf("%s temperature out of range: %g°C (normal %g-%g)",
				a.Name, temperature, env.Temperature.Min, env.Temperature.Max)))
	}

	if overall < scoreAlertBelow {
		sev := SeverityHigh
		if overall < scoreCriticalBelow {
			sev = SeverityCritical
		}
		out = append(out, newAlert(a.ID, CategoryHealthScore, sev, overall, now,
			fmt.Sprintf("%s health score is low: %.1f, needs attention", a.Name, overall)))
	}

	return out
}

// >20 high, >10 medium, resto low
func heartRateSeverity(dev float64) Severity {
	switch {
	case dev > 20:
		return SeverityHigh
	case dev > 10:
		return SeverityMedium
	}
	return SeverityLow
}

// >1.0 high, >0.5 medium, resto low
func temperatureSeverity(dev float64) Severity {
	switch {
	case dev > 1.0:
		return SeverityHigh
	case dev > 0.5:
		return SeverityMedium
	}
	return SeverityLow
}

func newAlert(animalID string, c Category, sev Severity, value float64, now time.Time, msg string) Alert {
	return Alert{
		ID:        uuid.NewString(),
		AnimalID:  animalID,
		Category:  c,
		Severity:  sev,
		Message:   msg,
		Value:     value,
		Timestamp: now,
	}
}
