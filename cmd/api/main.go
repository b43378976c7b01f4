package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-health-monitor/internal/app"
	"pet-health-monitor/internal/config"
	"pet-health-monitor/internal/platform/logger"
	"pet-health-monitor/internal/scheduler"
)

// @title Pet Health Monitor API
// @version 1.0
// @description Consola de monitoreo de salud de mascotas y ganado.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.Options{Config: cfg, Logger: log})
	if err != nil {
		log.Error("app init failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("app close", map[string]any{"error": err})
		}
	}()

	sched := scheduler.New(log)
	if err := a.Schedule(sched); err != nil {
		log.Error("scheduler init failed", map[string]any{"error": err})
		os.Exit(1)
	}
	sched.Start()

	if a.Verifier == nil {
		log.Warn("no AUTH_BASE_URL: dev mode, X-Debug-User-ID accepted", nil)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "tick_interval": cfg.TickInterval.String()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-errCh:
		if err != nil {
			log.Error("server error", map[string]any{"error": err})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("scheduler stop", map[string]any{"error": err})
	}
	// los websockets no los cierra Shutdown
	a.Live.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", map[string]any{"error": err})
	}
	log.Info("server stopped", nil)
}
