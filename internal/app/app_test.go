package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-monitor/internal/app"
	"pet-health-monitor/internal/config"
	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/syncs"
	"pet-health-monitor/internal/platform/logger"
	"pet-health-monitor/internal/scheduler"
)

func testConfig(seed bool) *config.Config {
	return &config.Config{
		TickInterval:     10 * time.Second,
		FreshWindow:      60 * time.Second,
		AlertProbability: 0.1,
		SeedMockData:     seed,
		RNGSeed:          7,
		SyncDelay:        time.Second,
		SyncSuccessRate:  0.9,
		SyncTimeout:      30 * time.Second,
		SyncMaxAttempts:  3,
	}
}

func newApp(t *testing.T, seed bool) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), app.Options{
		Config:    testConfig(seed),
		Logger:    logger.NewNop(),
		AfterFunc: func(time.Duration, func()) {},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_EmptyWithoutSeed(t *testing.T) {
	a := newApp(t, false)
	ctx := context.Background()

	users, err := a.Accounts.ListUsers(ctx, accounts.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Nil(t, a.Verifier)
	assert.Nil(t, a.Redis)
	assert.NotNil(t, a.Live)
}

func TestSeed_LoadsMockDataset(t *testing.T) {
	a := newApp(t, false)
	ctx := context.Background()

	sum, err := a.Seed(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Organizations)
	assert.Equal(t, 5, sum.Users)
	assert.Equal(t, 45, sum.Animals)
	assert.Equal(t, 45, sum.Devices)
	assert.Equal(t, 15, sum.Syncs)
	assert.Equal(t, 3, sum.Tips)
	assert.Equal(t, 2, sum.Rules)
	assert.Equal(t, 45*5, sum.Readings)
	assert.LessOrEqual(t, sum.Records, 45)

	farmer, err := a.Accounts.GetUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 20, farmer.AnimalCount)
	assert.Equal(t, 20, farmer.DeviceCount)
	assert.Equal(t, 18, farmer.PaidDeviceCount)
	assert.NotNil(t, farmer.LastLoginAt)

	org, err := a.Accounts.GetOrganization(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, org.UserCount)
	assert.Equal(t, 35, org.AnimalCount)

	hist, err := a.Syncs.ListByUser(ctx, "user-3")
	require.NoError(t, err)
	require.Len(t, hist, 5)
	for _, r := range hist {
		assert.Equal(t, syncs.StatusSuccess, r.Status)
	}

	st, found, err := a.Health.Status(ctx, "animal-user-4-0")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "horse", st.Species)
	require.NotNil(t, st.Score)
}

func TestSeed_FailsTwice(t *testing.T) {
	a := newApp(t, true)
	_, err := a.Seed(context.Background())
	require.Error(t, err)
}

func TestSchedule_RegistersJobs(t *testing.T) {
	a := newApp(t, false)
	s := scheduler.New(logger.NewNop())
	require.NoError(t, a.Schedule(s))
	assert.Equal(t, 2, s.Jobs())
}
