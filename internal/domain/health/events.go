package health

import "time"

// EventType tipo de mensaje que se empuja a los suscriptores en vivo.
type EventType string

const (
	EventReadings EventType = "readings"
	EventAlert    EventType = "alert"
)

// Event es el payload JSON que reciben websocket y redis.
type Event struct {
	Type     EventType      `json:"type"`
	AnimalID string         `json:"animal_id"`
	Readings []EventReading `json:"readings,omitempty"`
	Alert    *AlertPayload  `json:"alert,omitempty"`
	SentAt   time.Time      `json:"sent_at"`
}

type EventReading struct {
	Metric    Metric    `json:"metric"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AlertPayload struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReadingsEvent(animalID string, readings []Reading, at time.Time) Event {
	ev := Event{Type: EventReadings, AnimalID: animalID, SentAt: at.UTC()}
	ev.Readings = make([]EventReading, 0, len(readings))
	for _, r := range readings {
		ev.Readings = append(ev.Readings, EventReading{
			Metric:    r.Metric,
			Value:     r.Value,
			Unit:      r.Unit,
			Timestamp: r.Timestamp.UTC(),
		})
	}
	return ev
}

func NewAlertEvent(a Alert, at time.Time) Event {
	return Event{
		Type:     EventAlert,
		AnimalID: a.AnimalID,
		Alert: &AlertPayload{
			ID:        a.ID,
			Category:  a.Category,
			Severity:  a.Severity,
			Message:   a.Message,
			Value:     a.Value,
			Timestamp: a.Timestamp.UTC(),
		},
		SentAt: at.UTC(),
	}
}
