package router

import (
	"net/http"

	"pet-health-monitor/internal/adapters/live"
	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/devices"
	"pet-health-monitor/internal/domain/exports"
	"pet-health-monitor/internal/domain/health"
	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/domain/records"
	"pet-health-monitor/internal/domain/reports"
	"pet-health-monitor/internal/domain/stats"
	"pet-health-monitor/internal/domain/syncs"
	"pet-health-monitor/internal/domain/tips"
	"pet-health-monitor/internal/middleware"
	"pet-health-monitor/internal/platform/logger"
	"pet-health-monitor/internal/platform/metrics"
	"pet-health-monitor/internal/ports/auth"

	_ "pet-health-monitor/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options son los servicios ya construidos (ver app.New).
type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	Logger  logger.Logger
	Metrics *metrics.Metrics

	Permissions *permissions.Service
	Accounts    *accounts.Service
	Animals     *animals.Service
	Devices     *devices.Service
	Records     *records.Service
	Health      *health.Service
	Simulator   *health.Simulator
	Syncs       *syncs.Service
	Tips        *tips.Service
	Reports     *reports.Service
	Stats       *stats.Service
	Exports     *exports.Service

	// opcional: sin hub no se expone /animals/{id}/live
	Live *live.Hub
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log, opts.Metrics))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	guard := middleware.RequirePermission(opts.Permissions)

	// Rutas por módulo
	accounts.RegisterRoutes(r, opts.Accounts, opts.Permissions, guard)
	animals.RegisterRoutes(r, opts.Animals, guard)
	devices.RegisterRoutes(r, opts.Devices, guard)
	records.RegisterRoutes(r, opts.Records, opts.Animals, guard)
	health.RegisterRoutes(r, opts.Health, opts.Simulator, guard)
	syncs.RegisterRoutes(r, opts.Syncs, guard)
	tips.RegisterRoutes(r, opts.Tips, guard)
	reports.RegisterRoutes(r, opts.Reports, guard)
	stats.RegisterRoutes(r, opts.Stats, guard)
	exports.RegisterRoutes(r, opts.Exports, guard)

	if opts.Live != nil {
		live.RegisterRoutes(r, opts.Live, opts.Animals, guard)
	}

	return r
}
