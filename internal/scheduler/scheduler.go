package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"pet-health-monitor/internal/platform/logger"
)

// Scheduler corre los jobs periódicos (pasada del simulador, barrido de syncs).
// Un job que todavía está corriendo no se vuelve a lanzar.
type Scheduler struct {
	c      *cron.Cron
	log    logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	cl := cronLogger{log: log.With(map[string]any{"component": "scheduler"})}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		c: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    cl.log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every arma un spec "@every" para cron.
func Every(d time.Duration) string {
	return "@every " + d.String()
}

// Add registra un job. El ctx que recibe fn se cancela si Stop no llega a esperarlo.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.c.AddFunc(spec, func() {
		start := time.Now()
		if err := fn(s.ctx); err != nil {
			s.log.Error("job failed", map[string]any{"job": name, "error": err})
			return
		}
		s.log.Debug("job done", map[string]any{"job": name, "duration_ms": time.Since(start).Milliseconds()})
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info("job scheduled", map[string]any{"job": name, "spec": spec})
	return nil
}

// Jobs cantidad de jobs registrados.
func (s *Scheduler) Jobs() int {
	return len(s.c.Entries())
}

func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop frena el cron y espera a que terminen los jobs en curso. El ctx de los
// jobs recién se cancela cuando vence ctx, así una pasada no queda a medias.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.c.Stop()
	defer s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapta logger.Logger a cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// cron loguea cada wake/run en Info; para nosotros es debug
	l.log.Debug(msg, kvToMap(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvToMap(keysAndValues)
	fields["error"] = err
	l.log.Error(msg, fields)
}

func kvToMap(kv []interface{}) map[string]any {
	out := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok || strings.TrimSpace(k) == "" {
			k = fmt.Sprint(kv[i])
		}
		out[k] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		out["extra"] = kv[len(kv)-1]
	}
	return out
}
