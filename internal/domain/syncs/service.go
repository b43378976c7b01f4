package syncs

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"pet-health-monitor/internal/platform/logger"
	"pet-health-monitor/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("sync record not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrNotCancelable = errors.New("sync record is not pending")
)

const (
	DefaultDelay       = 2 * time.Second
	DefaultSuccessRate = 0.9
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3

	FailureMessage = "sync failed: network connection timeout"
	TimeoutMessage = "sync timed out"
)

// Users es lo que syncs necesita de cuentas.
type Users interface {
	HasUser(ctx context.Context, userID string) (bool, error)
}

// AfterFunc agenda f luego de d. Por defecto time.AfterFunc.
type AfterFunc func(d time.Duration, f func())

// Rand decide el resultado de cada intento. *math/rand.Rand la cumple.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type Options struct {
	Delay       time.Duration
	SuccessRate float64
	Timeout     time.Duration
	MaxAttempts int

	AfterFunc AfterFunc
	Rand      Rand
	Now       func() time.Time
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

type Service struct {
	// protege rnd y las transiciones de estado
	mu sync.Mutex

	repo  Repository
	users Users

	delay       time.Duration
	successRate float64
	timeout     time.Duration
	maxAttempts int

	after AfterFunc
	rnd   Rand
	now   func() time.Time
	log   logger.Logger
	m     *metrics.Metrics
}

func NewService(repo Repository, users Users, opts Options) *Service {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.SuccessRate <= 0 || opts.SuccessRate > 1 {
		opts.SuccessRate = DefaultSuccessRate
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Service{
		repo:        repo,
		users:       users,
		delay:       opts.Delay,
		successRate: opts.SuccessRate,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		after:       opts.AfterFunc,
		rnd:         opts.Rand,
		now:         opts.Now,
		log:         opts.Logger.With(map[string]any{"component": "syncs"}),
		m:           opts.Metrics,
	}
}

// Trigger crea un registro pending y agenda su finalización.
func (s *Service) Trigger(ctx context.Context, userID string, t Type, d Direction) (Record, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || !t.Valid() || !d.Valid() {
		return Record{}, ErrInvalidInput
	}
	ok, err := s.users.HasUser(ctx, userID)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := Record{
		ID:               uuid.NewString(),
		UserID:           userID,
		Type:             t,
		Direction:        d,
		Status:           StatusPending,
		StartTime:        now,
		Attempts:         1,
		AttemptStartedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	s.schedule(rec.ID, rec.Attempts)
	return rec, nil
}

func (s *Service) schedule(id string, attempt int) {
	s.after(s.delay, func() { s.complete(id, attempt) })
}

// complete resuelve un intento. Se ignora si el registro ya no está pending
// o si el intento fue reemplazado por un reintento.
func (s *Service) complete(id string, attempt int) {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Warn("sync completion for missing record", map[string]any{"sync_id": id, "error": err})
		return
	}
	if rec.Status != StatusPending || rec.Attempts != attempt {
		return
	}

	end := s.now()
	rec.EndTime = &end
	if s.rnd.Float64() < s.successRate {
		rec.Status = StatusSuccess
		rec.RecordCount = 10 + s.rnd.Intn(100)
	} else {
		rec.Status = StatusFailed
		rec.ErrorMessage = FailureMessage
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		s.log.Error("sync completion update failed", map[string]any{"sync_id": id, "error": err})
		return
	}
	s.m.SyncFinished(string(rec.Status))
	s.log.Info("sync finished", map[string]any{
		"sync_id": rec.ID,
		"user_id": rec.UserID,
		"status":  string(rec.Status),
		"records": rec.RecordCount,
	})
}

// SweepResult cuenta lo que hizo una pasada de Sweep.
type SweepResult struct {
	Retried  int
	TimedOut int
}

// Sweep aplica la política de timeout: los pending cuyo intento lleva más de
// Timeout se reintentan hasta MaxAttempts y después quedan failed.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	now := s.now()
	var res SweepResult
	for _, rec := range pending {
		if now.Sub(rec.AttemptStartedAt) < s.timeout {
			continue
		}
		if rec.Attempts < s.maxAttempts {
			rec.Attempts++
			rec.AttemptStartedAt = now
			if err := s.repo.Update(ctx, rec); err != nil {
				return res, err
			}
			s.schedule(rec.ID, rec.Attempts)
			res.Retried++
			continue
		}

		end := now
		rec.Status = StatusFailed
		rec.EndTime = &end
		rec.ErrorMessage = TimeoutMessage
		if err := s.repo.Update(ctx, rec); err != nil {
			return res, err
		}
		s.m.SyncFinished(string(rec.Status))
		res.TimedOut++
	}

	if res.Retried > 0 || res.TimedOut > 0 {
		s.log.Info("sync sweep", map[string]any{"retried": res.Retried, "timed_out": res.TimedOut})
	}
	return res, nil
}

// Cancel pasa un pending a cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Record{}, err
	}
	if rec.Status != StatusPending {
		return Record{}, ErrNotCancelable
	}
	end := s.now()
	rec.Status = StatusCancelled
	rec.EndTime = &end
	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	s.m.SyncFinished(string(rec.Status))
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	return s.repo.ListByUser(ctx, strings.TrimSpace(userID))
}

func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	return s.repo.ListAll(ctx)
}

// Import guarda un registro ya resuelto (datos de ejemplo). No agenda nada.
func (s *Service) Import(ctx context.Context, rec Record) (Record, error) {
	if strings.TrimSpace(rec.UserID) == "" || !rec.Type.Valid() || !rec.Direction.Valid() {
		return Record{}, ErrInvalidInput
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Attempts == 0 {
		rec.Attempts = 1
	}
	if rec.AttemptStartedAt.IsZero() {
		rec.AttemptStartedAt = rec.StartTime
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
