package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores del servicio. Cada instancia usa su propio registry
// para que varias apps (tests) puedan convivir en el mismo proceso.
type Metrics struct {
	registry *prometheus.Registry

	ticksTotal        prometheus.Counter
	tickDuration      prometheus.Histogram
	readingsGenerated prometheus.Counter
	alertsEmitted     *prometheus.CounterVec
	syncsFinished     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_ticks_total",
			Help: "Total generation passes executed by the simulator.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulator_tick_duration_seconds",
			Help:    "Duration of a simulator generation pass.",
			Buckets: prometheus.DefBuckets,
		}),
		readingsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_readings_generated_total",
			Help: "Synthetic readings appended by the simulator.",
		}),
		alertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulator_alerts_emitted_total",
			Help: "Alerts emitted by the rule evaluator by severity.",
		}, []string{"severity"}),
		syncsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sync_records_finished_total",
			Help: "Sync records that reached a final state.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.ticksTotal,
		m.tickDuration,
		m.readingsGenerated,
		m.alertsEmitted,
		m.syncsFinished,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Handler expone el registry en formato prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry permite a tests leer los valores.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Los métodos toleran receiver nil: los servicios pueden construirse sin métricas.

func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
	m.tickDuration.Observe(d.Seconds())
}

func (m *Metrics) AddReadings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.readingsGenerated.Add(float64(n))
}

func (m *Metrics) AlertEmitted(severity string) {
	if m == nil {
		return
	}
	m.alertsEmitted.WithLabelValues(severity).Inc()
}

func (m *Metrics) SyncFinished(status string) {
	if m == nil {
		return
	}
	m.syncsFinished.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveHTTP(route string, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, status).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
