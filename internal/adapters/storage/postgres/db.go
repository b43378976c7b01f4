package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// schema de la telemetría. seq desempata filas con el mismo ts (orden de inserción).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS health_readings (
		seq       BIGSERIAL,
		id        TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL,
		metric    TEXT NOT NULL,
		value     DOUBLE PRECISION NOT NULL,
		unit      TEXT NOT NULL DEFAULT '',
		ts        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS health_readings_animal_metric_ts ON health_readings (animal_id, metric, ts)`,
	`CREATE TABLE IF NOT EXISTS health_scores (
		seq         BIGSERIAL,
		id          TEXT PRIMARY KEY,
		animal_id   TEXT NOT NULL,
		overall     DOUBLE PRECISION NOT NULL,
		heart_rate  DOUBLE PRECISION NOT NULL,
		temperature DOUBLE PRECISION NOT NULL,
		activity    DOUBLE PRECISION NOT NULL,
		sleep       DOUBLE PRECISION NOT NULL,
		stress      DOUBLE PRECISION NOT NULL,
		ts          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS health_scores_animal_ts ON health_scores (animal_id, ts)`,
	`CREATE TABLE IF NOT EXISTS health_alerts (
		seq       BIGSERIAL,
		id        TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL,
		category  TEXT NOT NULL,
		severity  TEXT NOT NULL,
		message   TEXT NOT NULL,
		value     DOUBLE PRECISION NOT NULL,
		ts        TIMESTAMPTZ NOT NULL,
		read      BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS health_alerts_animal_ts ON health_alerts (animal_id, ts)`,
}

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
