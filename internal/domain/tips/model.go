package tips

import "time"

// TipType categoría del texto sugerido.
// @Enum health_tip, care_tip, alert_tip
type TipType string

const (
	TipTypeHealth TipType = "health_tip"
	TipTypeCare   TipType = "care_tip"
	TipTypeAlert  TipType = "alert_tip"
)

func (t TipType) Valid() bool {
	switch t {
	case TipTypeHealth, TipTypeCare, TipTypeAlert:
		return true
	}
	return false
}

// Tip es un texto de la biblioteca.
type Tip struct {
	ID         string
	Type       TipType
	Content    string
	Tags       []string
	Active     bool
	UsageCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Rule decide qué texto empujar según el health score.
// Rango inclusivo [MinScore,MaxScore]; menor Priority gana.
type Rule struct {
	ID       string
	Name     string
	TipType  TipType
	MinScore float64
	MaxScore float64
	Content  string
	Active   bool
	Priority int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Rule) Matches(score float64) bool {
	return r.Active && score >= r.MinScore && score <= r.MaxScore
}
