package health

import (
	"math"

	"pet-health-monitor/internal/domain/animals"
)

// Band es un rango normal [Min,Max], inclusivo.
type Band struct {
	Min float64
	Max float64
}

func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Deviation es la distancia al borde más cercano (0 si está dentro).
func (b Band) Deviation(v float64) float64 {
	if b.Contains(v) {
		return 0
	}
	return math.Min(math.Abs(v-b.Min), math.Abs(v-b.Max))
}

// Envelope agrupa los rangos normales de una especie.
type Envelope struct {
	HeartRate   Band // bpm
	Temperature Band // °C
}

var envelopes = map[animals.Species]Envelope{
	animals.SpeciesCattle:  {HeartRate: Band{60, 80}, Temperature: Band{38.0, 39.5}},
	animals.SpeciesSheep:   {HeartRate: Band{70, 90}, Temperature: Band{38.5, 40.0}},
	animals.SpeciesPig:     {HeartRate: Band{70, 100}, Temperature: Band{38.0, 40.0}},
	animals.SpeciesHorse:   {HeartRate: Band{30, 50}, Temperature: Band{37.0, 38.5}},
	animals.SpeciesDog:     {HeartRate: Band{60, 140}, Temperature: Band{37.5, 39.5}},
	animals.SpeciesCat:     {HeartRate: Band{140, 220}, Temperature: Band{37.5, 39.2}},
	animals.SpeciesChicken: {HeartRate: Band{200, 400}, Temperature: Band{40.0, 42.0}},
	animals.SpeciesDuck:    {HeartRate: Band{200, 400}, Temperature: Band{40.0, 42.0}},
}

// DefaultEnvelope aplica a especies no reconocidas.
var DefaultEnvelope = Envelope{HeartRate: Band{60, 100}, Temperature: Band{37.0, 40.0}}

func EnvelopeFor(sp animals.Species) Envelope {
	if e, ok := envelopes[sp]; ok {
		return e
	}
	return DefaultEnvelope
}
