package stats

import (
	"context"
	"time"

	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/syncs"
)

// System es el resumen del panel principal.
type System struct {
	TotalUsers         int
	ActiveUsers        int
	TotalAnimals       int
	TotalOrganizations int
	TodaySyncCount     int // exitosas iniciadas hoy
	FailedSyncCount    int
}

type Accounts interface {
	ListUsers(ctx context.Context, filter accounts.UserFilter) ([]accounts.User, error)
	ListOrganizations(ctx context.Context) ([]accounts.Organization, error)
}

type Animals interface {
	ListAll(ctx context.Context) ([]animals.Animal, error)
}

type Syncs interface {
	ListAll(ctx context.Context) ([]syncs.Record, error)
}

type Service struct {
	accounts Accounts
	animals  Animals
	syncs    Syncs
	now      func() time.Time
}

func NewService(acc Accounts, an Animals, sy Syncs) *Service {
	return &Service{
		accounts: acc,
		animals:  an,
		syncs:    sy,
		now:      time.Now,
	}
}

func (s *Service) System(ctx context.Context) (System, error) {
	users, err := s.accounts.ListUsers(ctx, accounts.UserFilter{})
	if err != nil {
		return System{}, err
	}
	orgs, err := s.accounts.ListOrganizations(ctx)
	if err != nil {
		return System{}, err
	}
	items, err := s.animals.ListAll(ctx)
	if err != nil {
		return System{}, err
	}
	records, err := s.syncs.ListAll(ctx)
	if err != nil {
		return System{}, err
	}

	out := System{
		TotalUsers:         len(users),
		TotalAnimals:       len(items),
		TotalOrganizations: len(orgs),
	}
	for _, u := range users {
		if u.Status == accounts.UserActive {
			out.ActiveUsers++
		}
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, rec := range records {
		switch rec.Status {
		case syncs.StatusSuccess:
			if !rec.StartTime.Before(today) {
				out.TodaySyncCount++
			}
		case syncs.StatusFailed:
			out.FailedSyncCount++
		}
	}
	return out, nil
}
