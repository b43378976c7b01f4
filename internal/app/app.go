package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"pet-health-monitor/internal/adapters/auth/iam"
	"pet-health-monitor/internal/adapters/live"
	"pet-health-monitor/internal/adapters/notify/redispub"
	mem "pet-health-monitor/internal/adapters/storage/memory"
	pg "pet-health-monitor/internal/adapters/storage/postgres"
	"pet-health-monitor/internal/config"
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
	"pet-health-monitor/internal/platform/logger"
	"pet-health-monitor/internal/platform/metrics"
	"pet-health-monitor/internal/ports/auth"
	"pet-health-monitor/internal/router"
	"pet-health-monitor/internal/scheduler"
	"pet-health-monitor/internal/seed"
)

// Options permite a los tests fijar reloj, azar y el agendado de syncs.
type Options struct {
	Config *config.Config
	Logger logger.Logger

	// DB opcional; si es nil y Config.DBDSN está seteado se abre con pg.Open.
	DB *sql.DB

	Now       func() time.Time
	AfterFunc syncs.AfterFunc
}

// App es una instancia completa del servicio. Cada llamada a New arma la suya.
type App struct {
	Config  *config.Config
	Log     logger.Logger
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

	Live     *live.Hub
	Redis    *redispub.Publisher
	Verifier auth.AuthVerifier

	db     *sql.DB
	ownsDB bool
	now    func() time.Time
	rnd    *rand.Rand
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Load()
	}
	log := opts.Logger
	if log == nil {
		log = logger.New(logger.Options{
			Level:  logger.ParseLevel(cfg.LogLevel),
			Format: logger.ParseFormat(cfg.LogFormat),
			App:    cfg.AppName,
		})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	seedValue := cfg.RNGSeed
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(),
		db:      opts.DB,
		now:     now,
		rnd:     rand.New(rand.NewSource(seedValue)),
	}

	// Telemetría: Postgres si hay DSN, si no in-memory.
	var healthRepo health.Repository
	if a.db == nil && cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.db, a.ownsDB = db, true
	}
	if a.db != nil {
		if err := pg.EnsureSchema(ctx, a.db); err != nil {
			a.closeDB()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		healthRepo = pg.NewHealthRepo(a.db)
		log.Info("telemetry store: postgres", nil)
	} else {
		healthRepo = mem.NewHealthRepo()
		log.Info("telemetry store: memory", nil)
	}

	animalRepo := mem.NewAnimalRepo()

	a.Accounts = accounts.NewService(mem.NewUserRepo(), mem.NewOrganizationRepo(), animalRepo)
	a.Permissions = permissions.NewService(a.Accounts, cfg.AllowAllPermissions)
	a.Animals = animals.NewService(animalRepo, a.Accounts)
	a.Devices = devices.NewService(mem.NewDeviceRepo(), a.Accounts, a.Animals)
	a.Records = records.NewService(mem.NewRecordRepo())
	a.Accounts.SetDeviceCounter(a.Devices)
	a.Accounts.SetAnimalRemover(a.Animals)

	a.Health = health.NewService(healthRepo, a.Animals)

	a.Live = live.NewHub(log)
	pubs := []health.Publisher{a.Live}
	if cfg.RedisAddr != "" {
		rp, err := redispub.Connect(ctx, redispub.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// sin redis el simulador sigue; solo se pierde el fan-out externo
			log.Warn("redis publisher disabled", map[string]any{"error": err})
		} else {
			a.Redis = rp
			pubs = append(pubs, rp)
		}
	}

	a.Simulator = health.NewSimulator(healthRepo, a.Animals, health.SimulatorOptions{
		FreshWindow:      cfg.FreshWindow,
		AlertProbability: cfg.AlertProbability,
		SuppressUnread:   cfg.AlertSuppressUnread,
		Rand:             rand.New(rand.NewSource(seedValue + 1)),
		Now:              now,
		Logger:           log.With(map[string]any{"component": "simulator"}),
		Metrics:          a.Metrics,
		Publishers:       pubs,
	})

	// Borrar un animal limpia telemetría, registros y desvincula collares.
	a.Animals.AddCleaner(a.Health)
	a.Animals.AddCleaner(a.Records)
	a.Animals.AddCleaner(a.Devices)

	a.Syncs = syncs.NewService(mem.NewSyncRepo(), a.Accounts, syncs.Options{
		Delay:       cfg.SyncDelay,
		SuccessRate: cfg.SyncSuccessRate,
		Timeout:     cfg.SyncTimeout,
		MaxAttempts: cfg.SyncMaxAttempts,
		AfterFunc:   opts.AfterFunc,
		Rand:        rand.New(rand.NewSource(seedValue + 2)),
		Now:         now,
		Logger:      log.With(map[string]any{"component": "syncs"}),
		Metrics:     a.Metrics,
	})

	a.Tips = tips.NewService(mem.NewTipRepo(), mem.NewRuleRepo(), a.Health)
	a.Reports = reports.NewService(mem.NewReportRepo(), a.Accounts, a.Animals, a.Health)
	a.Stats = stats.NewService(a.Accounts, a.Animals, a.Syncs)
	a.Exports = exports.NewService(exports.Sources{
		Users:     a.Accounts,
		Animals:   a.Animals,
		Devices:   a.Devices,
		Records:   a.Records,
		Telemetry: a.Health,
		Reports:   a.Reports,
	})

	if cfg.AuthBaseURL != "" {
		a.Verifier = iam.NewClient(iam.Config{
			BaseURL:    cfg.AuthBaseURL,
			APIKey:     cfg.AuthAPIKey,
			Timeout:    cfg.AuthTimeout,
			RetryCount: 2,
		}, log)
	}

	if cfg.SeedMockData {
		if _, err := a.Seed(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	return a, nil
}

// Seed carga el dataset de demo.
func (a *App) Seed(ctx context.Context) (seed.Summary, error) {
	return seed.Run(ctx, seed.Deps{
		Accounts:  a.Accounts,
		Animals:   a.Animals,
		Devices:   a.Devices,
		Records:   a.Records,
		Syncs:     a.Syncs,
		Tips:      a.Tips,
		Simulator: a.Simulator,
	}, a.rnd, a.now(), a.Log)
}

// Handler arma el router HTTP con los servicios de la app.
func (a *App) Handler() http.Handler {
	return router.NewRouter(router.Options{
		AuthVerifier: a.Verifier,
		Logger:       a.Log,
		Metrics:      a.Metrics,
		Permissions:  a.Permissions,
		Accounts:     a.Accounts,
		Animals:      a.Animals,
		Devices:      a.Devices,
		Records:      a.Records,
		Health:       a.Health,
		Simulator:    a.Simulator,
		Syncs:        a.Syncs,
		Tips:         a.Tips,
		Reports:      a.Reports,
		Stats:        a.Stats,
		Exports:      a.Exports,
		Live:         a.Live,
	})
}

// Schedule registra la pasada del simulador y el barrido de syncs.
func (a *App) Schedule(s *scheduler.Scheduler) error {
	spec := scheduler.Every(a.Config.TickInterval)
	if err := s.Add("simulator.tick", spec, func(ctx context.Context) error {
		_, err := a.Simulator.Tick(ctx)
		return err
	}); err != nil {
		return err
	}
	return s.Add("syncs.sweep", spec, func(ctx context.Context) error {
		res, err := a.Syncs.Sweep(ctx)
		if err != nil {
			return err
		}
		if res.Retried > 0 || res.TimedOut > 0 {
			a.Log.Info("stale syncs swept", map[string]any{"retried": res.Retried, "timed_out": res.TimedOut})
		}
		return nil
	})
}

func (a *App) Close() error {
	var errs []error
	if a.Live != nil {
		a.Live.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, fmt.Errorf("close postgres: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil || !a.ownsDB {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
