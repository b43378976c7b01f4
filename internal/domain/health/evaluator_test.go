package health

import (
	"testing"
	"time"

	"pet-health-monitor/internal/domain/animals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_HeartRateSeverity(t *testing.T) {
	cow := animals.Animal{ID: "a1", Name: "Bessie", Species: animals.SpeciesCattle} // 60-80 / 38.0-39.5
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		hr   float64
		want Severity
	}{
		{200, SeverityHigh},  // 120 sobre el máximo
		{101, SeverityHigh},  // 21
		{95, SeverityMedium}, // 15
		{90, SeverityLow},    // 10 (no es > 10)
		{55, SeverityLow},    // 5 debajo del mínimo
		{39, SeverityHigh},   // 21 debajo
	}
	for _, tc := range cases {
		got := Evaluate(cow, tc.hr, 38.5, 80, now)
		require.Len(t, got, 1, "hr=%v", tc.hr)
		assert.Equal(t, CategoryHeartRate, got[0].Category)
		assert.Equal(t, tc.want, got[0].Severity, "hr=%v", tc.hr)
		assert.Equal(t, "a1", got[0].AnimalID)
		assert.False(t, got[0].Read)
		assert.Contains(t, got[0].Message, "Bessie")
		assert.Contains(t, got[0].Message, "60-80")
	}
}

func TestEvaluate_TemperatureSeverity(t *testing.T) {
	cow := animals.Animal{ID: "a1", Name: "Bessie", Species: animals.SpeciesCattle}
	now := time.Now()

	cases := []struct {
		temp float64
		want Severity
	}{
		{41.0, SeverityHigh},   // 1.5
		{40.1, SeverityMedium}, // 0.6
		{39.8, SeverityLow},    // 0.3
		{36.9, SeverityHigh},   // 1.1 debajo
	}
	for _, tc := range cases {
		got := Evaluate(cow, 70, tc.temp, 80, now)
		require.Len(t, got, 1, "temp=%v", tc.temp)
		assert.Equal(t, CategoryTemperature, got[0].Category)
		assert.Equal(t, tc.want, got[0].Severity, "temp=%v", tc.temp)
	}
}

func TestEvaluate_Score(t *testing.T) {
	dog := animals.Animal{ID: "d1", Name: "Rex", Species: animals.SpeciesDog}
	now := time.Now()

	got := Evaluate(dog, 100, 38.5, 35, now)
	require.Len(t, got, 1)
	assert.Equal(t, CategoryHealthScore, got[0].Category)
	assert.Equal(t, SeverityCritical, got[0].Severity)

	got = Evaluate(dog, 100, 38.5, 45, now)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityHigh, got[0].Severity)

	assert.Empty(t, Evaluate(dog, 100, 38.5, 60, now))
}

func TestEvaluate_InBandBordersAndDefaultEnvelope(t *testing.T) {
	cow := animals.Animal{ID: "a1", Species: animals.SpeciesCattle}
	assert.Empty(t, Evaluate(cow, 60, 38.0, 90, time.Now()))
	assert.Empty(t, Evaluate(cow, 80, 39.5, 90, time.Now()))

	// especie desconocida => envelope por defecto 60-100 / 37-40
	llama := animals.Animal{ID: "x", Species: "llama"}
	assert.Empty(t, Evaluate(llama, 99, 39.9, 90, time.Now()))
	got := Evaluate(llama, 130, 39.9, 90, time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, SeverityHigh, got[0].Severity)
}

func TestEvaluate_MultipleAlerts(t *testing.T) {
	cat := animals.Animal{ID: "c1", Name: "Tom", Species: animals.SpeciesCat}
	got := Evaluate(cat, 100, 41, 30, time.Now())
	require.Len(t, got, 3)
	assert.Equal(t, CategoryHeartRate, got[0].Category)
	assert.Equal(t, CategoryTemperature, got[1].Category)
	assert.Equal(t, CategoryHealthScore, got[2].Category)
}

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Equal(t, 0, Severity("bogus").Rank())
}
