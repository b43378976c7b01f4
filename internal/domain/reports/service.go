package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/health"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("report not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrAnimalNotOwned = errors.New("animal does not belong to user")
)

type Users interface {
	GetUser(ctx context.Context, id string) (accounts.User, error)
}

type Animals interface {
	GetByID(ctx context.Context, id string) (animals.Animal, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]animals.Animal, error)
}

// StatusSource lo cumple health.Service.
type StatusSource interface {
	Status(ctx context.Context, animalID string) (health.AnimalStatus, bool, error)
}

type Service struct {
	repo    Repository
	users   Users
	animals Animals
	health  StatusSource
	now     func() time.Time
}

func NewService(repo Repository, users Users, an Animals, hs StatusSource) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		animals: an,
		health:  hs,
		now:     time.Now,
	}
}

// Period rango opcional del reporte.
type Period struct {
	Start *time.Time
	End   *time.Time
}

func (p Period) valid() bool {
	return p.Start == nil || p.End == nil || !p.End.Before(*p.Start)
}

// Monthly genera el reporte mensual de un usuario.
// Sin período se usa el último mes hasta ahora.
func (s *Service) Monthly(ctx context.Context, userID string, p Period) (Report, error) {
	if !p.valid() {
		return Report{}, ErrInvalidInput
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	now := s.now()
	if p.End == nil {
		p.End = &now
	}
	if p.Start == nil {
		start := p.End.AddDate(0, -1, 0)
		p.Start = &start
	}

	items, err := s.animals.ListByOwner(ctx, u.ID)
	if err != nil {
		return Report{}, err
	}
	sum, err := s.summarize(ctx, items)
	if err != nil {
		return Report{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This report covers health data from %s to %s.\n\n",
		p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
	fmt.Fprintf(&b, "Total animals: %d\n", sum.AnimalCount)
	fmt.Fprintf(&b, "Average health score: %.1f/100\n", sum.AverageScore)
	fmt.Fprintf(&b, "Healthy: %d\n", sum.Healthy)
	fmt.Fprintf(&b, "Needs attention: %d\n", sum.Attention)
	fmt.Fprintf(&b, "Abnormal: %d", sum.Abnormal)

	return s.save(ctx, Report{
		UserID:      u.ID,
		Type:        TypeMonthly,
		Title:       "Monthly health report - " + u.Username,
		Content:     b.String(),
		Summary:     sum,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
	})
}

// OnDemand genera un reporte detallado de un animal, o un resumen del usuario
// si animalID viene vacío.
func (s *Service) OnDemand(ctx context.Context, userID, animalID string, p Period) (Report, error) {
	if !p.valid() {
		return Report{}, ErrInvalidInput
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		items, err := s.animals.ListByOwner(ctx, u.ID)
		if err != nil {
			return Report{}, err
		}
		sum, err := s.summarize(ctx, items)
		if err != nil {
			return Report{}, err
		}
		return s.save(ctx, Report{
			UserID:      u.ID,
			Type:        TypeOnDemand,
			Title:       u.Username + " - overall health report",
			Content:     fmt.Sprintf("User: %s\nTotal animals: %d\nAverage health score: %.1f/100", u.Username, sum.AnimalCount, sum.AverageScore),
			Summary:     sum,
			PeriodStart: p.Start,
			PeriodEnd:   p.End,
		})
	}

	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return Report{}, err
	}
	if a.OwnerUserID != u.ID {
		return Report{}, ErrAnimalNotOwned
	}
	sum, err := s.summarize(ctx, []animals.Animal{a})
	if err != nil {
		return Report{}, err
	}

	st, _, err := s.health.Status(ctx, a.ID)
	if err != nil {
		return Report{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nSpecies: %s\nSex: %s\n\n", a.Name, a.Species, a.Sex)
	if st.Score != nil {
		fmt.Fprintf(&b, "Health score: %.1f/100\n", st.Score.Overall)
	} else {
		b.WriteString("Health score: N/A\n")
	}
	fmt.Fprintf(&b, "Heart rate: %s bpm\n", orNA(st.HeartRate))
	fmt.Fprintf(&b, "Temperature: %s °C\n", orNA(st.Temperature))
	fmt.Fprintf(&b, "Activity: %s%%\n", orNA(st.Activity))
	fmt.Fprintf(&b, "HRV: %s\n", orNA(st.HRV))
	mood := st.Mood
	if mood == "" {
		mood = "N/A"
	}
	fmt.Fprintf(&b, "Mood: %s\n", mood)
	fmt.Fprintf(&b, "Unread alerts: %d", st.UnreadAlerts)

	return s.save(ctx, Report{
		UserID:      u.ID,
		AnimalID:    a.ID,
		Type:        TypeOnDemand,
		Title:       a.Name + " - detailed health report",
		Content:     b.String(),
		Summary:     sum,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Report, error) {
	return s.repo.ListByUser(ctx, strings.TrimSpace(userID))
}

func (s *Service) ListAll(ctx context.Context) ([]Report, error) {
	return s.repo.ListAll(ctx)
}

// summarize clasifica por último score. Los animales sin score no cuentan en el promedio.
func (s *Service) summarize(ctx context.Context, items []animals.Animal) (Summary, error) {
	sum := Summary{AnimalCount: len(items)}
	total := 0.0
	for _, a := range items {
		st, found, err := s.health.Status(ctx, a.ID)
		if err != nil {
			return Summary{}, err
		}
		if !found || st.Score == nil {
			continue
		}
		v := st.Score.Overall
		sum.Scored++
		total += v
		switch {
		case v >= HealthyFrom:
			sum.Healthy++
		case v >= AttentionFrom:
			sum.Attention++
		default:
			sum.Abnormal++
		}
	}
	if sum.Scored > 0 {
		sum.AverageScore = math.Round(total/float64(sum.Scored)*10) / 10
	}
	return sum, nil
}

func (s *Service) user(ctx context.Context, id string) (accounts.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accounts.User{}, ErrInvalidInput
	}
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, accounts.ErrUserNotFound) {
		return accounts.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *Service) save(ctx context.Context, r Report) (Report, error) {
	r.ID = uuid.NewString()
	r.GeneratedAt = s.now()
	if err := s.repo.Create(ctx, r); err != nil {
		return Report{}, err
	}
	return r, nil
}

func orNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}
