package redispub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-monitor/internal/domain/health"
)

type published struct {
	channel string
	payload []byte
}

type fakeClient struct {
	published  []published
	hashes     map[string]map[string]interface{}
	ttl        map[string]time.Duration
	publishErr error
	closed     bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		hashes: map[string]map[string]interface{}{},
		ttl:    map[string]time.Duration{},
	}
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.publishErr != nil {
		cmd.SetErr(f.publishErr)
		return cmd
	}
	f.published = append(f.published, published{channel: channel, payload: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

func (f *fakeClient) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]interface{}{}
		f.hashes[key] = h
	}
	for k, v := range values[0].(map[string]interface{}) {
		h[k] = v
	}
	cmd.SetVal(int64(len(h)))
	return cmd
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	f.ttl[key] = expiration
	cmd.SetVal(true)
	return cmd
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestPublishReadings_StateAndChannel(t *testing.T) {
	fc := newFakeClient()
	p := New(fc)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	err := p.PublishReadings(context.Background(), "a-1", []health.Reading{
		{ID: "r1", AnimalID: "a-1", Metric: health.MetricHeartRate, Value: 72, Unit: "bpm", Timestamp: at},
		{ID: "r2", AnimalID: "a-1", Metric: health.MetricTemperature, Value: 38.6, Unit: "°C", Timestamp: at},
	})
	require.NoError(t, err)

	require.Len(t, fc.published, 1)
	assert.Equal(t, "animal:a-1:readings", fc.published[0].channel)

	var ev health.Event
	require.NoError(t, json.Unmarshal(fc.published[0].payload, &ev))
	assert.Equal(t, health.EventReadings, ev.Type)
	assert.Equal(t, "a-1", ev.AnimalID)
	require.Len(t, ev.Readings, 2)
	assert.Equal(t, health.MetricTemperature, ev.Readings[1].Metric)
	assert.Equal(t, 38.6, ev.Readings[1].Value)

	state := fc.hashes["animal:a-1:state"]
	assert.Equal(t, 72.0, state["heart_rate"])
	assert.Equal(t, at.Unix(), state["updated_at"])
	assert.Equal(t, StateTTL, fc.ttl["animal:a-1:state"])
}

func TestPublishReadings_EmptyIsNoop(t *testing.T) {
	fc := newFakeClient()
	require.NoError(t, New(fc).PublishReadings(context.Background(), "a-1", nil))
	assert.Empty(t, fc.published)
	assert.Empty(t, fc.hashes)
}

func TestPublishAlert(t *testing.T) {
	fc := newFakeClient()
	p := New(fc)

	a := health.Alert{
		ID:        "al-1",
		AnimalID:  "a-9",
		Category:  health.CategoryHeartRate,
		Severity:  health.SeverityHigh,
		Message:   "Heart rate abnormal",
		Value:     140,
		Timestamp: time.Now(),
	}
	require.NoError(t, p.PublishAlert(context.Background(), a))

	require.Len(t, fc.published, 1)
	assert.Equal(t, "animal:a-9:alerts", fc.published[0].channel)

	var ev health.Event
	require.NoError(t, json.Unmarshal(fc.published[0].payload, &ev))
	require.NotNil(t, ev.Alert)
	assert.Equal(t, "al-1", ev.Alert.ID)
	assert.Equal(t, health.SeverityHigh, ev.Alert.Severity)
}

func TestPublishAlert_WrapsError(t *testing.T) {
	fc := newFakeClient()
	fc.publishErr = errors.New("connection refused")

	err := New(fc).PublishAlert(context.Background(), health.Alert{ID: "x", AnimalID: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, fc.publishErr)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}
