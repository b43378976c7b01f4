package health

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/platform/logger"
	"pet-health-monitor/internal/platform/metrics"

	"github.com/google/uuid"
)

// Publisher recibe lo que genera el simulador (websocket, redis...).
// Un error de publicación se loguea y no corta la pasada.
type Publisher interface {
	PublishReadings(ctx context.Context, animalID string, readings []Reading) error
	PublishAlert(ctx context.Context, a Alert) error
}

// AnimalSource es el directorio de animales a simular.
type AnimalSource interface {
	ListAll(ctx context.Context) ([]animals.Animal, error)
	GetByID(ctx context.Context, id string) (animals.Animal, error)
}

const (
	DefaultFreshWindow      = 60 * time.Second
	DefaultAlertProbability = 0.1
)

type SimulatorOptions struct {
	// FreshWindow: lecturas más nuevas que esto se reemplazan en cada pasada.
	FreshWindow time.Duration
	// AlertProbability: chance de evaluar alertas en un Tick (Seed evalúa siempre).
	AlertProbability float64
	// SuppressUnread: no emitir una alerta si ya hay otra sin leer de la misma categoría.
	SuppressUnread bool

	Rand       Rand
	Now        func() time.Time
	Logger     logger.Logger
	Metrics    *metrics.Metrics
	Publishers []Publisher
}

type Simulator struct {
	// serializa pasadas (Tick/Seed/Record*); también protege rnd
	mu sync.Mutex

	repo    Repository
	animals AnimalSource
	gen     *Generator

	freshWindow    time.Duration
	alertProb      float64
	suppressUnread bool

	rnd  Rand
	now  func() time.Time
	log  logger.Logger
	m    *metrics.Metrics
	pubs []Publisher
}

func NewSimulator(repo Repository, src AnimalSource, opts SimulatorOptions) *Simulator {
	if opts.FreshWindow <= 0 {
		opts.FreshWindow = DefaultFreshWindow
	}
	if opts.AlertProbability < 0 {
		opts.AlertProbability = DefaultAlertProbability
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Simulator{
		repo:           repo,
		animals:        src,
		gen:            NewGenerator(opts.Rand),
		freshWindow:    opts.FreshWindow,
		alertProb:      opts.AlertProbability,
		suppressUnread: opts.SuppressUnread,
		rnd:            opts.Rand,
		now:            opts.Now,
		log:            opts.Logger.With(map[string]any{"component": "simulator"}),
		m:              opts.Metrics,
		pubs:           opts.Publishers,
	}
}

// AddPublisher se usa cuando el publisher se construye después (p.ej. el hub websocket).
func (s *Simulator) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p != nil {
		s.pubs = append(s.pubs, p)
	}
}

// PassResult resume una pasada.
type PassResult struct {
	Animals  int
	Readings int
	Alerts   int
}

// Seed hace la pasada inicial: todas las lecturas y scores, evaluando alertas siempre.
func (s *Simulator) Seed(ctx context.Context) (PassResult, error) {
	return s.run(ctx, true)
}

// Tick es una pasada periódica: alertas solo con probabilidad AlertProbability por animal.
func (s *Simulator) Tick(ctx context.Context) (PassResult, error) {
	start := time.Now()
	res, err := s.run(ctx, false)
	s.m.ObserveTick(time.Since(start))
	return res, err
}

func (s *Simulator) run(ctx context.Context, alwaysEvaluate bool) (PassResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.animals.ListAll(ctx)
	if err != nil {
		return PassResult{}, fmt.Errorf("list animals: %w", err)
	}

	// La pasada no mira ctx.Done: una vez empezada termina con todos los animales.
	var res PassResult
	for _, a := range items {
		now := s.now()
		sample := s.gen.Draw(a)

		written, err := s.writeReadings(ctx, a.ID, sample.Readings(a.ID, now), now)
		if err != nil {
			return res, err
		}

		// se evalúa contra el score anterior al de esta pasada
		prev, score, err := s.nextScore(ctx, a.ID, now)
		if err != nil {
			return res, err
		}
		overall := score.Overall
		if prev != nil {
			overall = prev.Overall
		}

		res.Animals++
		res.Readings += written

		if alwaysEvaluate || s.rnd.Float64() < s.alertProb {
			n, err := s.emit(ctx, Evaluate(a, sample.HeartRate, sample.Temperature, overall, now))
			if err != nil {
				return res, err
			}
			res.Alerts += n
		}

		if err := s.dropIfGone(ctx, a.ID); err != nil {
			return res, err
		}
	}

	s.m.AddReadings(res.Readings)
	s.log.Debug("simulation pass done", map[string]any{
		"animals":  res.Animals,
		"readings": res.Readings,
		"alerts":   res.Alerts,
		"seed":     alwaysEvaluate,
	})
	return res, nil
}

// ManualSample son valores cargados a mano (o forzados en pruebas).
// Los nil no se escriben; para evaluar se usan los últimos valores guardados.
type ManualSample struct {
	HeartRate   *float64
	Temperature *float64
	Activity    *float64
	HRV         *float64
	Sleep       *float64
	Stress      *float64
	Mood        *int
}

var ErrNoValues = errors.New("no values to record")

// RecordSample guarda lecturas manuales del animal y evalúa alertas siempre.
func (s *Simulator) RecordSample(ctx context.Context, animalID string, in ManualSample) ([]Alert, error) {
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var readings []Reading
	add := func(m Metric, v *float64) {
		if v != nil {
			readings = append(readings, Reading{AnimalID: a.ID, Metric: m, Value: round1(*v), Unit: m.Unit(), Timestamp: now})
		}
	}
	add(MetricHeartRate, in.HeartRate)
	add(MetricTemperature, in.Temperature)
	add(MetricActivity, in.Activity)
	add(MetricHRV, in.HRV)
	add(MetricSleep, in.Sleep)
	add(MetricStress, in.Stress)
	if in.Mood != nil {
		if *in.Mood < 0 || *in.Mood >= len(Moods) {
			return nil, ErrInvalidInput
		}
		mood := float64(*in.Mood)
		add(MetricMood, &mood)
	}
	if len(readings) == 0 {
		return nil, ErrNoValues
	}
	for i := range readings {
		readings[i].ID = uuid.NewString()
	}

	written, err := s.writeReadings(ctx, a.ID, readings, now)
	if err != nil {
		return nil, err
	}
	s.m.AddReadings(written)

	alerts, err := s.evaluateLatest(ctx, a, now)
	if err != nil {
		return nil, err
	}
	if err := s.dropIfGone(ctx, a.ID); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ScoreInput permite fijar el score actual; los sub-scores nil se arrastran del anterior.
type ScoreInput struct {
	Overall     float64
	HeartRate   *float64
	Temperature *float64
	Activity    *float64
	Sleep       *float64
	Stress      *float64
}

// RecordScore agrega un punto a la serie de scores y evalúa alertas.
func (s *Simulator) RecordScore(ctx context.Context, animalID string, in ScoreInput) (HealthScore, []Alert, error) {
	if in.Overall < 0 || in.Overall > 100 {
		return HealthScore{}, nil, ErrInvalidInput
	}
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return HealthScore{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prev, found, err := s.repo.LatestScore(ctx, a.ID)
	if err != nil {
		return HealthScore{}, nil, err
	}
	sc := HealthScore{ID: uuid.NewString(), AnimalID: a.ID, Overall: round1(in.Overall), Timestamp: now}
	if found {
		sc.HeartRate, sc.Temperature, sc.Activity = prev.HeartRate, prev.Temperature, prev.Activity
		sc.Sleep, sc.Stress = prev.Sleep, prev.Stress
	}
	pick := func(dst *float64, v *float64) error {
		if v == nil {
			return nil
		}
		if *v < 0 || *v > 100 {
			return ErrInvalidInput
		}
		*dst = round1(*v)
		return nil
	}
	for _, p := range []struct {
		dst *float64
		v   *float64
	}{
		{&sc.HeartRate, in.HeartRate},
		{&sc.Temperature, in.Temperature},
		{&sc.Activity, in.Activity},
		{&sc.Sleep, in.Sleep},
		{&sc.Stress, in.Stress},
	} {
		if err := pick(p.dst, p.v); err != nil {
			return HealthScore{}, nil, err
		}
	}

	if err := s.repo.AddScore(ctx, sc); err != nil {
		return HealthScore{}, nil, err
	}

	alerts, err := s.evaluateLatest(ctx, a, now)
	if err != nil {
		return HealthScore{}, nil, err
	}
	if err := s.dropIfGone(ctx, a.ID); err != nil {
		return HealthScore{}, nil, err
	}
	return sc, alerts, nil
}

// evaluateLatest evalúa con los últimos valores guardados. Sin lectura previa
// de una métrica se usa el centro del envelope (no dispara nada).
func (s *Simulator) evaluateLatest(ctx context.Context, a animals.Animal, now time.Time) ([]Alert, error) {
	env := EnvelopeFor(a.Species)
	hr := (env.HeartRate.Min + env.HeartRate.Max) / 2
	temp := (env.Temperature.Min + env.Temperature.Max) / 2
	overall := 100.0

	if r, ok, err := s.repo.LatestReading(ctx, a.ID, MetricHeartRate); err != nil {
		return nil, err
	} else if ok {
		hr = r.Value
	}
	if r, ok, err := s.repo.LatestReading(ctx, a.ID, MetricTemperature); err != nil {
		return nil, err
	} else if ok {
		temp = r.Value
	}
	if sc, ok, err := s.repo.LatestScore(ctx, a.ID); err != nil {
		return nil, err
	} else if ok {
		overall = sc.Overall
	}

	candidates := Evaluate(a, hr, temp, overall, now)
	emitted := make([]Alert, 0, len(candidates))
	for _, al := range candidates {
		ok, err := s.store(ctx, al)
		if err != nil {
			return nil, err
		}
		if ok {
			emitted = append(emitted, al)
		}
	}
	return emitted, nil
}

// writeReadings purga la ventana fresca por métrica y agrega las nuevas lecturas.
func (s *Simulator) writeReadings(ctx context.Context, animalID string, readings []Reading, now time.Time) (int, error) {
	cutoff := now.Add(-s.freshWindow)
	for _, r := range readings {
		if _, err := s.repo.PurgeFresh(ctx, animalID, r.Metric, cutoff); err != nil {
			return 0, fmt.Errorf("purge fresh readings: %w", err)
		}
		if err := s.repo.AddReading(ctx, r); err != nil {
			return 0, fmt.Errorf("add reading: %w", err)
		}
	}
	for _, p := range s.pubs {
		if err := p.PublishReadings(ctx, animalID, readings); err != nil {
			s.log.Warn("publish readings failed", map[string]any{"animal_id": animalID, "error": err})
		}
	}
	return len(readings), nil
}

// nextScore agrega el siguiente punto de la serie. prev es nil si no había score.
func (s *Simulator) nextScore(ctx context.Context, animalID string, now time.Time) (*HealthScore, HealthScore, error) {
	last, found, err := s.repo.LatestScore(ctx, animalID)
	if err != nil {
		return nil, HealthScore{}, fmt.Errorf("latest score: %w", err)
	}
	var prev *HealthScore
	if found {
		prev = &last
	}
	sc := s.gen.NextScore(animalID, prev, now)
	if err := s.repo.AddScore(ctx, sc); err != nil {
		return nil, HealthScore{}, fmt.Errorf("add score: %w", err)
	}
	return prev, sc, nil
}

// dropIfGone borra lo recién escrito si el animal se eliminó durante la pasada.
// animals.Service borra el animal antes de correr los cleaners, así que un
// delete posterior a este chequeo limpia después de nuestras escrituras.
func (s *Simulator) dropIfGone(ctx context.Context, animalID string) error {
	_, err := s.animals.GetByID(ctx, animalID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, animals.ErrNotFound) {
		return fmt.Errorf("recheck animal: %w", err)
	}
	s.log.Debug("animal deleted during pass, dropping telemetry", map[string]any{"animal_id": animalID})
	if err := s.repo.DeleteByAnimal(ctx, animalID); err != nil {
		return fmt.Errorf("drop telemetry of deleted animal: %w", err)
	}
	return nil
}

func (s *Simulator) emit(ctx context.Context, alerts []Alert) (int, error) {
	n := 0
	for _, a := range alerts {
		ok, err := s.store(ctx, a)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// store persiste y publica la alerta. Con SuppressUnread devuelve false si
// ya hay una alerta sin leer del mismo animal y categoría.
func (s *Simulator) store(ctx context.Context, a Alert) (bool, error) {
	if s.suppressUnread {
		open, err := s.repo.ListAlerts(ctx, AlertFilter{AnimalIDs: []string{a.AnimalID}, Category: a.Category, UnreadOnly: true})
		if err != nil {
			return false, err
		}
		if len(open) > 0 {
			return false, nil
		}
	}
	if err := s.repo.AddAlert(ctx, a); err != nil {
		return false, fmt.Errorf("add alert: %w", err)
	}
	s.m.AlertEmitted(string(a.Severity))
	s.log.Info("alert emitted", map[string]any{
		"animal_id": a.AnimalID,
		"category":  string(a.Category),
		"severity":  string(a.Severity),
	})
	for _, p := range s.pubs {
		if err := p.PublishAlert(ctx, a); err != nil {
			s.log.Warn("publish alert failed", map[string]any{"alert_id": a.ID, "error": err})
		}
	}
	return true, nil
}
