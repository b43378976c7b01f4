package health

import (
	"math"
	"time"

	"pet-health-monitor/internal/domain/animals"

	"github.com/google/uuid"
)

// Rand es la fuente de aleatoriedad del simulador. *math/rand.Rand la cumple.
// No es segura para uso concurrente; el Simulator serializa el acceso.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Bandas de los scores sorteados.
var (
	overallBand     = Band{60, 95}
	hrScoreBand     = Band{70, 95}
	tempScoreBand   = Band{75, 95}
	activityBand    = Band{60, 90}
	sleepScoreBand  = Band{60, 95}
	stressScoreBand = Band{70, 90}

	activityValueBand = Band{0, 100}
	hrvBand           = Band{20, 80}
)

// Generator produce lecturas y scores sintéticos.
type Generator struct {
	rnd Rand
}

func NewGenerator(rnd Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Sample son los valores de una pasada para un animal.
type Sample struct {
	HeartRate   float64
	Temperature float64
	Activity    float64
	HRV         float64
	Mood        int
}

// Draw sortea un Sample dentro del envelope de la especie.
func (g *Generator) Draw(a animals.Animal) Sample {
	env := EnvelopeFor(a.Species)
	return Sample{
		HeartRate:   g.uniform(env.HeartRate),
		Temperature: g.uniform(env.Temperature),
		Activity:    g.draw(activityValueBand),
		HRV:         g.draw(hrvBand),
		Mood:        g.rnd.Intn(len(Moods)),
	}
}

// Readings convierte un Sample en lecturas con timestamp now.
func (s Sample) Readings(animalID string, now time.Time) []Reading {
	values := map[Metric]float64{
		MetricHeartRate:   s.HeartRate,
		MetricTemperature: s.Temperature,
		MetricActivity:    s.Activity,
		MetricHRV:         s.HRV,
		MetricMood:        float64(s.Mood),
	}
	out := make([]Reading, 0, len(GeneratedMetrics))
	for _, m := range GeneratedMetrics {
		out = append(out, Reading{
			ID:        uuid.NewString(),
			AnimalID:  animalID,
			Metric:    m,
			Value:     values[m],
			Unit:      m.Unit(),
			Timestamp: now,
		})
	}
	return out
}

// NextScore arma el próximo punto de la serie.
// Sleep y stress se sortean una sola vez (prev == nil) y luego se arrastran.
func (g *Generator) NextScore(animalID string, prev *HealthScore, now time.Time) HealthScore {
	sc := HealthScore{
		ID:          uuid.NewString(),
		AnimalID:    animalID,
		Overall:     g.uniform(overallBand),
		HeartRate:   g.uniform(hrScoreBand),
		Temperature: g.uniform(tempScoreBand),
		Activity:    g.uniform(activityBand),
		Timestamp:   now,
	}
	if prev != nil {
		sc.Sleep = prev.Sleep
		sc.Stress = prev.Stress
	} else {
		sc.Sleep = g.uniform(sleepScoreBand)
		sc.Stress = g.uniform(stressScoreBand)
	}
	return sc
}

// uniform sortea en [Min,Max] y redondea a un decimal (pulso, temperatura, scores).
// Float64 es [0,1) pero el redondeo puede tocar Max; ambos bordes son válidos.
func (g *Generator) uniform(b Band) float64 {
	return round1(g.draw(b))
}

func (g *Generator) draw(b Band) float64 {
	return b.Min + g.rnd.Float64()*(b.Max-b.Min)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
