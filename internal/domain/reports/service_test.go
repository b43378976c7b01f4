package reports_test

import (
	"context"
	"testing"
	"time"

	"pet-health-monitor/internal/adapters/storage/memory"
	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/health"
	"pet-health-monitor/internal/domain/reports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]accounts.User

func (f fakeUsers) GetUser(ctx context.Context, id string) (accounts.User, error) {
	u, ok := f[id]
	if !ok {
		return accounts.User{}, accounts.ErrUserNotFound
	}
	return u, nil
}

type fakeAnimals []animals.Animal

func (f fakeAnimals) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	for _, a := range f {
		if a.ID == id {
			return a, nil
		}
	}
	return animals.Animal{}, animals.ErrNotFound
}

func (f fakeAnimals) ListByOwner(ctx context.Context, owner string) ([]animals.Animal, error) {
	out := []animals.Animal{}
	for _, a := range f {
		if a.OwnerUserID == owner {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeStatus: animalID -> overall; ausente => sin score.
type fakeStatus map[string]float64

func (f fakeStatus) Status(ctx context.Context, id string) (health.AnimalStatus, bool, error) {
	st := health.AnimalStatus{AnimalID: id}
	if v, ok := f[id]; ok {
		st.Score = &health.HealthScore{Overall: v}
		hr := 72.5
		st.HeartRate = &hr
		st.Mood = "calm"
	}
	return st, true, nil
}

func newService() *reports.Service {
	users := fakeUsers{
		"u1": {ID: "u1", Username: "farmer"},
		"u2": {ID: "u2", Username: "vet"},
	}
	an := fakeAnimals{
		{ID: "a1", OwnerUserID: "u1", Name: "Bessie", Species: animals.SpeciesCattle},
		{ID: "a2", OwnerUserID: "u1", Name: "Daisy", Species: animals.SpeciesCattle},
		{ID: "a3", OwnerUserID: "u1", Name: "Rosa", Species: animals.SpeciesCattle},
		{ID: "a4", OwnerUserID: "u1", Name: "Luna", Species: animals.SpeciesCattle},
		{ID: "a5", OwnerUserID: "u1", Name: "Nube", Species: animals.SpeciesCattle},
		{ID: "b1", OwnerUserID: "u2", Name: "Rex", Species: animals.SpeciesDog},
	}
	// 80 => healthy, 79.9 y 60 => attention, 35 => abnormal, a5 sin score
	st := fakeStatus{"a1": 80, "a2": 79.9, "a3": 60, "a4": 35}
	return reports.NewService(memory.NewReportRepo(), users, an, st)
}

func TestMonthly_ClassifiesByScore(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	rep, err := svc.Monthly(ctx, "u1", reports.Period{})
	require.NoError(t, err)
	assert.Equal(t, reports.TypeMonthly, rep.Type)
	assert.Equal(t, "u1", rep.UserID)
	assert.Equal(t, 5, rep.Summary.AnimalCount)
	assert.Equal(t, 4, rep.Summary.Scored)
	assert.Equal(t, 1, rep.Summary.Healthy)
	assert.Equal(t, 2, rep.Summary.Attention)
	assert.Equal(t, 1, rep.Summary.Abnormal)
	assert.InDelta(t, 63.7, rep.Summary.AverageScore, 0.001)
	assert.Contains(t, rep.Title, "farmer")
	require.NotNil(t, rep.PeriodStart)
	require.NotNil(t, rep.PeriodEnd)
	assert.Equal(t, rep.PeriodEnd.AddDate(0, -1, 0), *rep.PeriodStart)
	assert.Contains(t, rep.Content, "Average health score: 63.7/100")
}

func TestMonthly_Errors(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Monthly(ctx, "ghost", reports.Period{})
	assert.ErrorIs(t, err, reports.ErrUserNotFound)

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err = svc.Monthly(ctx, "u1", reports.Period{Start: &start, End: &end})
	assert.ErrorIs(t, err, reports.ErrInvalidInput)
}

func TestOnDemand_Animal(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	rep, err := svc.OnDemand(ctx, "u1", "a4", reports.Period{})
	require.NoError(t, err)
	assert.Equal(t, reports.TypeOnDemand, rep.Type)
	assert.Equal(t, "a4", rep.AnimalID)
	assert.Contains(t, rep.Content, "Health score: 35.0/100")
	assert.Contains(t, rep.Content, "Heart rate: 72.5 bpm")
	assert.Contains(t, rep.Content, "Temperature: N/A")
	assert.Equal(t, 1, rep.Summary.Abnormal)

	_, err = svc.OnDemand(ctx, "u1", "b1", reports.Period{})
	assert.ErrorIs(t, err, reports.ErrAnimalNotOwned)

	_, err = svc.OnDemand(ctx, "u1", "zzz", reports.Period{})
	assert.ErrorIs(t, err, animals.ErrNotFound)
}

func TestOnDemand_UserSummaryAndListing(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.OnDemand(ctx, "u2", "", reports.Period{})
	require.NoError(t, err)
	assert.Empty(t, first.AnimalID)
	assert.Equal(t, 1, first.Summary.AnimalCount)
	assert.Zero(t, first.Summary.AverageScore)

	_, err = svc.Monthly(ctx, "u1", reports.Period{})
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Title, got.Title)

	_, err = svc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, reports.ErrNotFound)
}
