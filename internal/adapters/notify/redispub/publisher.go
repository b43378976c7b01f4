package redispub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pet-health-monitor/internal/domain/health"
)

// StateTTL vida del hash animal:<id>:state si el simulador deja de escribir.
const StateTTL = 5 * time.Minute

// Client es el subconjunto de *redis.Client que usa el publisher.
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Publisher implementa health.Publisher sobre pub/sub de redis.
type Publisher struct {
	client Client
	now    func() time.Time
}

var _ health.Publisher = (*Publisher)(nil)

// Connect abre el cliente y verifica la conexión.
func Connect(ctx context.Context, cfg Config) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return New(client), nil
}

func New(client Client) *Publisher {
	return &Publisher{client: client, now: time.Now}
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

func ReadingsChannel(animalID string) string {
	return fmt.Sprintf("animal:%s:readings", animalID)
}

func AlertsChannel(animalID string) string {
	return fmt.Sprintf("animal:%s:alerts", animalID)
}

func StateKey(animalID string) string {
	return fmt.Sprintf("animal:%s:state", animalID)
}

// PublishReadings publica el lote y deja el último valor por métrica en el hash de estado.
func (p *Publisher) PublishReadings(ctx context.Context, animalID string, readings []health.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	payload, err := json.Marshal(health.NewReadingsEvent(animalID, readings, p.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal readings: %w", err)
	}

	state := make(map[string]interface{}, len(readings)+1)
	for _, r := range readings {
		state[string(r.Metric)] = r.Value
	}
	state["updated_at"] = readings[len(readings)-1].Timestamp.Unix()

	key := StateKey(animalID)
	if err := p.client.HSet(ctx, key, state).Err(); err != nil {
		return fmt.Errorf("redis hset state failed: %w", err)
	}
	if err := p.client.Expire(ctx, key, StateTTL).Err(); err != nil {
		return fmt.Errorf("redis expire state failed: %w", err)
	}
	if err := p.client.Publish(ctx, ReadingsChannel(animalID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish readings failed: %w", err)
	}
	return nil
}

func (p *Publisher) PublishAlert(ctx context.Context, a health.Alert) error {
	payload, err := json.Marshal(health.NewAlertEvent(a, p.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := p.client.Publish(ctx, AlertsChannel(a.AnimalID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish alert failed: %w", err)
	}
	return nil
}
