package stats

import (
	"context"
	"testing"
	"time"

	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/syncs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	users []accounts.User
	orgs  []accounts.Organization
}

func (f fakeAccounts) ListUsers(ctx context.Context, _ accounts.UserFilter) ([]accounts.User, error) {
	return f.users, nil
}

func (f fakeAccounts) ListOrganizations(ctx context.Context) ([]accounts.Organization, error) {
	return f.orgs, nil
}

type fakeAnimals []animals.Animal

func (f fakeAnimals) ListAll(ctx context.Context) ([]animals.Animal, error) { return f, nil }

type fakeSyncs []syncs.Record

func (f fakeSyncs) ListAll(ctx context.Context) ([]syncs.Record, error) { return f, nil }

func TestSystem(t *testing.T) {
	now := time.Date(2025, 7, 10, 15, 0, 0, 0, time.UTC)
	today := now.Add(-2 * time.Hour)
	yesterday := now.Add(-20 * time.Hour)

	svc := NewService(
		fakeAccounts{
			users: []accounts.User{
				{ID: "u1", Status: accounts.UserActive},
				{ID: "u2", Status: accounts.UserActive},
				{ID: "u3", Status: accounts.UserInactive},
				{ID: "u4", Status: accounts.UserPending},
			},
			orgs: []accounts.Organization{{ID: "o1"}, {ID: "o2"}},
		},
		fakeAnimals{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}},
		fakeSyncs{
			{ID: "s1", Status: syncs.StatusSuccess, StartTime: today},
			{ID: "s2", Status: syncs.StatusSuccess, StartTime: yesterday},
			{ID: "s3", Status: syncs.StatusFailed, StartTime: yesterday},
			{ID: "s4", Status: syncs.StatusFailed, StartTime: today},
			{ID: "s5", Status: syncs.StatusPending, StartTime: today},
			{ID: "s6", Status: syncs.StatusCancelled, StartTime: today},
		},
	)
	svc.now = func() time.Time { return now }

	got, err := svc.System(context.Background())
	require.NoError(t, err)
	assert.Equal(t, System{
		TotalUsers:         4,
		ActiveUsers:        2,
		TotalAnimals:       3,
		TotalOrganizations: 2,
		TodaySyncCount:     1,
		FailedSyncCount:    2,
	}, got)
}
