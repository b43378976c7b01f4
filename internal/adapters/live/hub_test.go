package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/health"
	"pet-health-monitor/internal/middleware"
	"pet-health-monitor/internal/platform/logger"
)

type fakeAnimals map[string]animals.Animal

func (f fakeAnimals) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	a, ok := f[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func newLiveServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(logger.NewNop())
	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, hub, fakeAnimals{"a-1": {ID: "a-1", Name: "Luna"}}, middleware.RequirePermission(nil))
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return hub, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	h := http.Header{}
	h.Set("X-Debug-User-ID", "user-1")
	return websocket.DefaultDialer.Dial(url, h)
}

func TestHub_DeliversEventsToSubscribers(t *testing.T) {
	hub, ts := newLiveServer(t)

	conn, _, err := dial(t, ts, "/animals/a-1/live")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("a-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	now := time.Now()
	require.NoError(t, hub.PublishReadings(context.Background(), "a-1", []health.Reading{
		{ID: "r1", AnimalID: "a-1", Metric: health.MetricHeartRate, Value: 88, Unit: "bpm", Timestamp: now},
	}))
	require.NoError(t, hub.PublishAlert(context.Background(), health.Alert{
		ID: "al-1", AnimalID: "a-1", Category: health.CategoryTemperature, Severity: health.SeverityMedium, Timestamp: now,
	}))
	// otro animal: no debe llegar
	require.NoError(t, hub.PublishAlert(context.Background(), health.Alert{ID: "al-2", AnimalID: "a-2"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev health.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, health.EventReadings, ev.Type)
	require.Len(t, ev.Readings, 1)
	assert.Equal(t, 88.0, ev.Readings[0].Value)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, health.EventAlert, ev.Type)
	require.NotNil(t, ev.Alert)
	assert.Equal(t, "al-1", ev.Alert.ID)
}

func TestHub_UnknownAnimal(t *testing.T) {
	_, ts := newLiveServer(t)

	_, resp, err := dial(t, ts, "/animals/nope/live")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHub_RequiresAuth(t *testing.T) {
	_, ts := newLiveServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/animals/a-1/live"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_RemovesOnDisconnect(t *testing.T) {
	hub, ts := newLiveServer(t)

	conn, _, err := dial(t, ts, "/animals/a-1/live")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Subscribers("a-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers("a-1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ClosedRejectsPublish(t *testing.T) {
	hub := NewHub(nil)
	hub.Close()
	err := hub.PublishAlert(context.Background(), health.Alert{AnimalID: "a-1"})
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_PublishRacingRemove(t *testing.T) {
	hub := NewHub(nil)
	ctx := context.Background()
	alert := health.Alert{ID: "al-1", AnimalID: "a-1"}

	for i := 0; i < 2000; i++ {
		s := &subscriber{animalID: "a-1", send: make(chan []byte, 1)}
		require.NoError(t, hub.add(s))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.remove(s)
		}()
		require.NotPanics(t, func() {
			_ = hub.PublishAlert(ctx, alert)
			_ = hub.PublishAlert(ctx, alert)
		})
		wg.Wait()
	}
	assert.Equal(t, 0, hub.Subscribers("a-1"))
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	ctx := context.Background()
	s := &subscriber{animalID: "a-1", send: make(chan []byte, 1)}
	require.NoError(t, hub.add(s))

	require.NoError(t, hub.PublishAlert(ctx, health.Alert{ID: "al-1", AnimalID: "a-1"}))
	assert.Equal(t, 1, hub.Subscribers("a-1"))

	// buffer lleno: se corta al suscriptor y se cierra su canal
	require.NoError(t, hub.PublishAlert(ctx, health.Alert{ID: "al-2", AnimalID: "a-1"}))
	assert.Equal(t, 0, hub.Subscribers("a-1"))

	<-s.send
	_, open := <-s.send
	assert.False(t, open)
}
