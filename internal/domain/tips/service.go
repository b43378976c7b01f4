package tips

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/health"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTipNotFound  = errors.New("tip not found")
	ErrRuleNotFound = errors.New("push rule not found")
	ErrNoScore      = errors.New("animal has no health score yet")
)

// ScoreSource da el último score de un animal. Lo cumple health.Service.
type ScoreSource interface {
	LatestScore(ctx context.Context, animalID string) (health.HealthScore, bool, error)
}

type Service struct {
	tips   TipRepository
	rules  RuleRepository
	scores ScoreSource
	now    func() time.Time
}

func NewService(tips TipRepository, rules RuleRepository, scores ScoreSource) *Service {
	return &Service{
		tips:   tips,
		rules:  rules,
		scores: scores,
		now:    time.Now,
	}
}

type CreateTipInput struct {
	ID      string
	Type    TipType
	Content string
	Tags    []string
	Active  *bool // nil => true
}

func (s *Service) CreateTip(ctx context.Context, in CreateTipInput) (Tip, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || !in.Type.Valid() {
		return Tip{}, ErrInvalidInput
	}
	now := s.now()
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	t := Tip{
		ID:        id,
		Type:      in.Type,
		Content:   content,
		Tags:      cleanTags(in.Tags),
		Active:    in.Active == nil || *in.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tips.Create(ctx, t); err != nil {
		return Tip{}, err
	}
	return t, nil
}

type UpdateTipInput struct {
	Type    *TipType
	Content *string
	Tags    *[]string
	Active  *bool
}

func (s *Service) UpdateTip(ctx context.Context, id string, in UpdateTipInput) (Tip, error) {
	t, err := s.GetTip(ctx, id)
	if err != nil {
		return Tip{}, err
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return Tip{}, ErrInvalidInput
		}
		t.Type = *in.Type
	}
	if in.Content != nil {
		c := strings.TrimSpace(*in.Content)
		if c == "" {
			return Tip{}, ErrInvalidInput
		}
		t.Content = c
	}
	if in.Tags != nil {
		t.Tags = cleanTags(*in.Tags)
	}
	if in.Active != nil {
		t.Active = *in.Active
	}
	t.UpdatedAt = s.now()
	if err := s.tips.Update(ctx, t); err != nil {
		return Tip{}, err
	}
	return t, nil
}

func (s *Service) DeleteTip(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrTipNotFound
	}
	return s.tips.Delete(ctx, id)
}

func (s *Service) GetTip(ctx context.Context, id string) (Tip, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Tip{}, ErrTipNotFound
	}
	return s.tips.GetByID(ctx, id)
}

func (s *Service) ListTips(ctx context.Context, f TipFilter) ([]Tip, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, ErrInvalidInput
	}
	return s.tips.List(ctx, f)
}

type CreateRuleInput struct {
	ID       string
	Name     string
	TipType  TipType
	MinScore float64
	MaxScore float64
	Content  string
	Active   *bool
	Priority int // 0 => 1
}

func (s *Service) CreateRule(ctx context.Context, in CreateRuleInput) (Rule, error) {
	now := s.now()
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if in.Priority == 0 {
		in.Priority = 1
	}
	r := Rule{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		TipType:   in.TipType,
		MinScore:  in.MinScore,
		MaxScore:  in.MaxScore,
		Content:   strings.TrimSpace(in.Content),
		Active:    in.Active == nil || *in.Active,
		Priority:  in.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateRule(r); err != nil {
		return Rule{}, err
	}
	if err := s.rules.Create(ctx, r); err != nil {
		return Rule{}, err
	}
	return r, nil
}

type UpdateRuleInput struct {
	Name     *string
	TipType  *TipType
	MinScore *float64
	MaxScore *float64
	Content  *string
	Active   *bool
	Priority *int
}

func (s *Service) UpdateRule(ctx context.Context, id string, in UpdateRuleInput) (Rule, error) {
	r, err := s.GetRule(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	if in.Name != nil {
		r.Name = strings.TrimSpace(*in.Name)
	}
	if in.TipType != nil {
		r.TipType = *in.TipType
	}
	if in.MinScore != nil {
		r.MinScore = *in.MinScore
	}
	if in.MaxScore != nil {
		r.MaxScore = *in.MaxScore
	}
	if in.Content != nil {
		r.Content = strings.TrimSpace(*in.Content)
	}
	if in.Active != nil {
		r.Active = *in.Active
	}
	if in.Priority != nil {
		r.Priority = *in.Priority
	}
	if err := validateRule(r); err != nil {
		return Rule{}, err
	}
	r.UpdatedAt = s.now()
	if err := s.rules.Update(ctx, r); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func (s *Service) DeleteRule(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrRuleNotFound
	}
	return s.rules.Delete(ctx, id)
}

func (s *Service) GetRule(ctx context.Context, id string) (Rule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Rule{}, ErrRuleNotFound
	}
	return s.rules.GetByID(ctx, id)
}

func (s *Service) ListRules(ctx context.Context, activeOnly bool) ([]Rule, error) {
	return s.rules.List(ctx, activeOnly)
}

// Recommend devuelve la regla activa de menor prioridad cuyo rango contiene score.
// A igual prioridad gana el orden del repo (creación).
func (s *Service) Recommend(ctx context.Context, score float64) (Rule, bool, error) {
	rules, err := s.rules.List(ctx, true)
	if err != nil {
		return Rule{}, false, err
	}
	var (
		best  Rule
		found bool
	)
	for _, r := range rules {
		if !r.Matches(score) {
			continue
		}
		if !found || r.Priority < best.Priority {
			best, found = r, true
		}
	}
	return best, found, nil
}

// Recommendation es lo que ve el dueño para un animal.
type Recommendation struct {
	AnimalID string
	Score    float64
	Rule     *Rule
	Tips     []Tip
}

// ForAnimal arma la recomendación según el último score del animal.
// Sin regla que aplique devuelve Rule nil y Tips vacío.
func (s *Service) ForAnimal(ctx context.Context, animalID string) (Recommendation, error) {
	sc, ok, err := s.scores.LatestScore(ctx, animalID)
	if err != nil {
		return Recommendation{}, err
	}
	if !ok {
		return Recommendation{}, ErrNoScore
	}

	rec := Recommendation{AnimalID: animalID, Score: sc.Overall, Tips: []Tip{}}
	rule, found, err := s.Recommend(ctx, sc.Overall)
	if err != nil || !found {
		return rec, err
	}
	rec.Rule = &rule

	items, err := s.tips.List(ctx, TipFilter{Type: rule.TipType, ActiveOnly: true})
	if err != nil {
		return Recommendation{}, err
	}
	rec.Tips = items
	return rec, nil
}

func validateRule(r Rule) error {
	switch {
	case r.Name == "", r.Content == "":
		return ErrInvalidInput
	case !r.TipType.Valid():
		return ErrInvalidInput
	case r.MinScore < 0, r.MaxScore > 100, r.MinScore > r.MaxScore:
		return ErrInvalidInput
	case r.Priority < 1:
		return ErrInvalidInput
	}
	return nil
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
