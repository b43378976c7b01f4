package health_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"pet-health-monitor/internal/adapters/storage/memory"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/health"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOwners: userID -> organizationID
type fakeOwners struct {
	users map[string]string
}

func (f fakeOwners) HasUser(ctx context.Context, userID string) (bool, error) {
	_, ok := f.users[userID]
	return ok, nil
}

func (f fakeOwners) RecountAnimals(ctx context.Context, userID string) error { return nil }

func (f fakeOwners) MemberIDs(ctx context.Context, organizationID string) ([]string, error) {
	out := []string{}
	for u, org := range f.users {
		if org == organizationID {
			out = append(out, u)
		}
	}
	return out, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	animals *animals.Service
	repo    health.Repository
	svc     *health.Service
	sim     *health.Simulator
	clock   *clock
}

func newFixture(t *testing.T, opts health.SimulatorOptions) fixture {
	t.Helper()

	owners := fakeOwners{users: map[string]string{"u1": "org-1", "u2": "org-2"}}
	animalsSvc := animals.NewService(memory.NewAnimalRepo(), owners)
	repo := memory.NewHealthRepo()

	c := &clock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	opts.Now = c.Now

	svc := health.NewService(repo, animalsSvc)
	health.SetClock(svc, c.Now)
	sim := health.NewSimulator(repo, animalsSvc, opts)

	animalsSvc.AddCleaner(svc)

	return fixture{animals: animalsSvc, repo: repo, svc: svc, sim: sim, clock: c}
}

func (f fixture) addAnimal(t *testing.T, id, owner, species string) animals.Animal {
	t.Helper()
	a, err := f.animals.Create(context.Background(), animals.CreateInput{
		ID: id, OwnerUserID: owner, Name: "Animal " + id, Species: species,
	})
	require.NoError(t, err)
	return a
}

func ptr[T any](v T) *T { return &v }

func TestSimulator_SeedWritesOnePointPerMetricAndScore(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "cattle")
	f.addAnimal(t, "a2", "u2", "dog")

	res, err := f.sim.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Animals)
	assert.Equal(t, 2*len(health.GeneratedMetrics), res.Readings)

	// ventana de 1h justo después del seed con reloj fijo: exactamente lo sembrado
	got, err := f.svc.Readings(ctx, "a1", "", time.Hour)
	require.NoError(t, err)
	assert.Len(t, got, len(health.GeneratedMetrics))
	for _, r := range got {
		assert.Equal(t, f.clock.Now(), r.Timestamp)
	}

	hr, err := f.svc.Readings(ctx, "a1", health.MetricHeartRate, time.Hour)
	require.NoError(t, err)
	require.Len(t, hr, 1)
	env := health.EnvelopeFor(animals.SpeciesCattle)
	assert.True(t, env.HeartRate.Contains(hr[0].Value))

	scores, err := f.svc.Scores(ctx, "a1", time.Hour)
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestSimulator_FreshWindowReplacesInsteadOfAccumulating(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{AlertProbability: 0})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "sheep")

	_, err := f.sim.Seed(ctx)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Second)
	_, err = f.sim.Tick(ctx)
	require.NoError(t, err)

	hist, err := f.svc.History(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, hist, len(health.GeneratedMetrics))
	for _, r := range hist {
		assert.Equal(t, f.clock.Now(), r.Timestamp)
	}
}

func TestSimulator_HistoryOnlyGrowsOutsideFreshWindow(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{AlertProbability: 0})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "pig")

	_, err := f.sim.Seed(ctx)
	require.NoError(t, err)

	var prev []health.Reading
	for i := 0; i < 6; i++ {
		f.clock.Advance(45 * time.Second)
		cutoff := f.clock.Now().Add(-health.DefaultFreshWindow)

		prev, err = f.svc.History(ctx, "a1")
		require.NoError(t, err)

		_, err = f.sim.Tick(ctx)
		require.NoError(t, err)

		cur, err := f.svc.History(ctx, "a1")
		require.NoError(t, err)

		ids := map[string]bool{}
		for _, r := range cur {
			ids[r.ID] = true
		}
		for _, r := range prev {
			if !r.Timestamp.After(cutoff) {
				assert.True(t, ids[r.ID], "reading %s fuera de la ventana fresca desapareció", r.ID)
			}
		}
	}

	scores, err := f.svc.Scores(ctx, "a1", 24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, scores, 7)
	for _, s := range scores[1:] {
		assert.Equal(t, scores[0].Sleep, s.Sleep)
		assert.Equal(t, scores[0].Stress, s.Stress)
	}
}

func TestSimulator_TickWithoutProbabilityEmitsNoAlerts(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{AlertProbability: 0})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "horse")

	for i := 0; i < 20; i++ {
		res, err := f.sim.Tick(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Alerts)
		f.clock.Advance(time.Minute)
	}
}

func TestSimulator_RecordSampleOutOfRangeHeartRate(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{})
	ctx := context.Background()
	f.addAnimal(t, "cow", "u1", "cattle")

	alerts, err := f.sim.RecordSample(ctx, "cow", health.ManualSample{HeartRate: ptr(200.0), Temperature: ptr(38.6)})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, health.CategoryHeartRate, alerts[0].Category)
	assert.Equal(t, health.SeverityHigh, alerts[0].Severity)

	stored, err := f.svc.Alerts(ctx, "cow", true)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, alerts[0].ID, stored[0].ID)
}

func TestSimulator_RecordSampleValidation(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "dog")

	_, err := f.sim.RecordSample(ctx, "a1", health.ManualSample{})
	assert.ErrorIs(t, err, health.ErrNoValues)

	_, err = f.sim.RecordSample(ctx, "a1", health.ManualSample{Mood: ptr(9)})
	assert.ErrorIs(t, err, health.ErrInvalidInput)

	_, err = f.sim.RecordSample(ctx, "missing", health.ManualSample{HeartRate: ptr(80.0)})
	assert.ErrorIs(t, err, animals.ErrNotFound)
}

func TestSimulator_RecordScoreCritical(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "dog")

	sc, alerts, err := f.sim.RecordScore(ctx, "a1", health.ScoreInput{Overall: 35})
	require.NoError(t, err)
	assert.Equal(t, 35.0, sc.Overall)
	require.Len(t, alerts, 1)
	assert.Equal(t, health.CategoryHealthScore, alerts[0].Category)
	assert.Equal(t, health.SeverityCritical, alerts[0].Severity)

	latest, ok, err := f.svc.LatestScore(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sc.ID, latest.ID)

	_, _, err = f.sim.RecordScore(ctx, "a1", health.ScoreInput{Overall: 120})
	assert.ErrorIs(t, err, health.ErrInvalidInput)
}

func TestSimulator_RecordScoreCarriesSubScores(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "dog")

	first, _, err := f.sim.RecordScore(ctx, "a1", health.ScoreInput{Overall: 90, Sleep: ptr(70.0), Stress: ptr(80.0)})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	second, _, err := f.sim.RecordScore(ctx, "a1", health.ScoreInput{Overall: 85})
	require.NoError(t, err)
	assert.Equal(t, first.Sleep, second.Sleep)
	assert.Equal(t, first.Stress, second.Stress)

	series, err := f.svc.Scores(ctx, "a1", time.Hour)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 90.0, series[0].Overall)
	assert.Equal(t, 85.0, series[1].Overall)
}

func TestSimulator_SuppressUnread(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{SuppressUnread: true})
	ctx := context.Background()
	f.addAnimal(t, "cow", "u1", "cattle")

	first, err := f.sim.RecordSample(ctx, "cow", health.ManualSample{HeartRate: ptr(200.0)})
	require.NoError(t, err)
	require.Len(t, first, 1)

	again, err := f.sim.RecordSample(ctx, "cow", health.ManualSample{HeartRate: ptr(190.0)})
	require.NoError(t, err)
	assert.Empty(t, again)

	_, err = f.svc.MarkAlertRead(ctx, first[0].ID)
	require.NoError(t, err)

	third, err := f.sim.RecordSample(ctx, "cow", health.ManualSample{HeartRate: ptr(190.0)})
	require.NoError(t, err)
	assert.Len(t, third, 1)
}

func TestSimulator_WithoutSuppressionRepeatsAlerts(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{})
	ctx := context.Background()
	f.addAnimal(t, "cow", "u1", "cattle")

	for i := 0; i < 3; i++ {
		got, err := f.sim.RecordSample(ctx, "cow", health.ManualSample{HeartRate: ptr(200.0)})
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	all, err := f.svc.Alerts(ctx, "cow", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

type recordingPublisher struct {
	mu       sync.Mutex
	readings int
	alerts   []health.Alert
}

func (p *recordingPublisher) PublishReadings(ctx context.Context, animalID string, rs []health.Reading) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readings += len(rs)
	return nil
}

func (p *recordingPublisher) PublishAlert(ctx context.Context, a health.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, a)
	return nil
}

func TestSimulator_Publishes(t *testing.T) {
	pub := &recordingPublisher{}
	f := newFixture(t, health.SimulatorOptions{})
	f.sim.AddPublisher(pub)
	ctx := context.Background()
	f.addAnimal(t, "cow", "u1", "cattle")

	_, err := f.sim.Seed(ctx)
	require.NoError(t, err)
	_, err = f.sim.RecordSample(ctx, "cow", health.ManualSample{HeartRate: ptr(200.0)})
	require.NoError(t, err)

	assert.Equal(t, len(health.GeneratedMetrics)+1, pub.readings)
	require.NotEmpty(t, pub.alerts)
	assert.Equal(t, health.CategoryHeartRate, pub.alerts[len(pub.alerts)-1].Category)
}

// deletingPublisher borra el animal en medio de la pasada, como un DELETE
// HTTP que llega mientras corre el tick.
type deletingPublisher struct {
	animals *animals.Service
}

func (p deletingPublisher) PublishReadings(ctx context.Context, animalID string, rs []health.Reading) error {
	return p.animals.Delete(ctx, animalID)
}

func (p deletingPublisher) PublishAlert(ctx context.Context, a health.Alert) error { return nil }

func TestSimulator_AnimalDeletedDuringPassLeavesNoTelemetry(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{})
	f.sim.AddPublisher(deletingPublisher{animals: f.animals})
	ctx := context.Background()
	f.addAnimal(t, "cow", "u1", "cattle")

	_, err := f.sim.Seed(ctx)
	require.NoError(t, err)

	_, err = f.animals.GetByID(ctx, "cow")
	require.ErrorIs(t, err, animals.ErrNotFound)

	_, found, err := f.repo.LatestScore(ctx, "cow")
	require.NoError(t, err)
	assert.False(t, found)

	readings, err := f.svc.History(ctx, "cow")
	require.NoError(t, err)
	assert.Empty(t, readings)

	alerts, err := f.svc.Alerts(ctx, "cow", false)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestSimulator_TickEvaluatesPreviousScore(t *testing.T) {
	f := newFixture(t, health.SimulatorOptions{AlertProbability: 1})
	ctx := context.Background()
	f.addAnimal(t, "a1", "u1", "dog")

	_, alerts, err := f.sim.RecordScore(ctx, "a1", health.ScoreInput{Overall: 35})
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	f.clock.Advance(time.Minute)
	_, err = f.sim.Tick(ctx)
	require.NoError(t, err)

	// el tick sortea un score nuevo (>= 60) pero evalúa el 35 previo
	all, err := f.svc.Alerts(ctx, "a1", false)
	require.NoError(t, err)
	scoreAlerts := 0
	for _, a := range all {
		if a.Category == health.CategoryHealthScore {
			assert.Equal(t, health.SeverityCritical, a.Severity)
			scoreAlerts++
		}
	}
	assert.Equal(t, 2, scoreAlerts)

	latest, ok, err := f.svc.LatestScore(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, latest.Overall, 60.0)
}
