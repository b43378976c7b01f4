package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/health"
)

var _ health.Repository = (*HealthRepo)(nil)

// HealthRepo guarda lecturas, scores y alertas en Postgres.
type HealthRepo struct {
	db *sql.DB
}

func NewHealthRepo(db *sql.DB) *HealthRepo {
	return &HealthRepo{db: db}
}

const readingCols = `id, animal_id, metric, value, unit, ts`

const scoreCols = `id, animal_id, overall, heart_rate, temperature, activity, sleep, stress, ts`

const alertCols = `id, animal_id, category, severity, message, value, ts, read`

func (r *HealthRepo) AddReading(ctx context.Context, rd health.Reading) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_readings (`+readingCols+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		rd.ID,
		rd.AnimalID,
		string(rd.Metric),
		rd.Value,
		rd.Unit,
		rd.Timestamp,
	)
	return err
}

func (r *HealthRepo) PurgeFresh(ctx context.Context, animalID string, metric health.Metric, after time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM health_readings
		WHERE animal_id = $1 AND metric = $2 AND ts > $3
	`, animalID, string(metric), after)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *HealthRepo) ListReadings(ctx context.Context, f health.ReadingFilter) ([]health.Reading, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + readingCols + ` FROM health_readings WHERE 1=1`)

	args := []any{}
	argN := 1
	if f.AnimalID != "" {
		sb.WriteString(fmt.Sprintf(" AND animal_id = $%d", argN))
		args = append(args, f.AnimalID)
		argN++
	}
	if f.Metric != "" {
		sb.WriteString(fmt.Sprintf(" AND metric = $%d", argN))
		args = append(args, string(f.Metric))
		argN++
	}
	if f.Since != nil {
		sb.WriteString(fmt.Sprintf(" AND ts >= $%d", argN))
		args = append(args, *f.Since)
	}
	sb.WriteString(" ORDER BY ts ASC, seq ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.Reading, 0)
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *HealthRepo) LatestReading(ctx context.Context, animalID string, metric health.Metric) (health.Reading, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+readingCols+`
		FROM health_readings
		WHERE animal_id = $1 AND metric = $2
		ORDER BY ts DESC, seq DESC
		LIMIT 1
	`, animalID, string(metric))

	rd, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return health.Reading{}, false, nil
	}
	if err != nil {
		return health.Reading{}, false, err
	}
	return rd, true, nil
}

func (r *HealthRepo) AddScore(ctx context.Context, s health.HealthScore) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_scores (`+scoreCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		s.ID,
		s.AnimalID,
		s.Overall,
		s.HeartRate,
		s.Temperature,
		s.Activity,
		s.Sleep,
		s.Stress,
		s.Timestamp,
	)
	return err
}

func (r *HealthRepo) LatestScore(ctx context.Context, animalID string) (health.HealthScore, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+scoreCols+`
		FROM health_scores
		WHERE animal_id = $1
		ORDER BY ts DESC, seq DESC
		LIMIT 1
	`, animalID)

	s, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return health.HealthScore{}, false, nil
	}
	if err != nil {
		return health.HealthScore{}, false, err
	}
	return s, true, nil
}

func (r *HealthRepo) ListScores(ctx context.Context, f health.ScoreFilter) ([]health.HealthScore, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + scoreCols + ` FROM health_scores WHERE 1=1`)

	args := []any{}
	argN := 1
	if f.AnimalID != "" {
		sb.WriteString(fmt.Sprintf(" AND animal_id = $%d", argN))
		args = append(args, f.AnimalID)
		argN++
	}
	if f.Since != nil {
		sb.WriteString(fmt.Sprintf(" AND ts >= $%d", argN))
		args = append(args, *f.Since)
	}
	sb.WriteString(" ORDER BY ts ASC, seq ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.HealthScore, 0)
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *HealthRepo) AddAlert(ctx context.Context, a health.Alert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_alerts (`+alertCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.AnimalID,
		string(a.Category),
		string(a.Severity),
		a.Message,
		a.Value,
		a.Timestamp,
		a.Read,
	)
	return err
}

func (r *HealthRepo) GetAlert(ctx context.Context, id string) (health.Alert, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return health.Alert{}, health.ErrAlertNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+alertCols+` FROM health_alerts WHERE id = $1`, id)

	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return health.Alert{}, health.ErrAlertNotFound
	}
	return a, err
}

func (r *HealthRepo) MarkAlertRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE health_alerts SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return health.ErrAlertNotFound
	}
	return nil
}

func (r *HealthRepo) ListAlerts(ctx context.Context, f health.AlertFilter) ([]health.Alert, error) {
	// AnimalIDs vacío pero no nil => ningún animal
	if f.AnimalIDs != nil && len(f.AnimalIDs) == 0 {
		return []health.Alert{}, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + alertCols + ` FROM health_alerts WHERE 1=1`)

	args := []any{}
	argN := 1
	if len(f.AnimalIDs) > 0 {
		placeholders := make([]string, 0, len(f.AnimalIDs))
		for _, id := range f.AnimalIDs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, id)
			argN++
		}
		sb.WriteString(" AND animal_id IN (" + strings.Join(placeholders, ",") + ")")
	}
	if f.Category != "" {
		sb.WriteString(fmt.Sprintf(" AND category = $%d", argN))
		args = append(args, string(f.Category))
	}
	if f.UnreadOnly {
		sb.WriteString(" AND read = FALSE")
	}
	sb.WriteString(" ORDER BY ts DESC, seq DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *HealthRepo) DeleteByAnimal(ctx context.Context, animalID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, table := range []string{"health_readings", "health_scores", "health_alerts"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE animal_id = $1`, animalID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(s scanner) (health.Reading, error) {
	var rd health.Reading
	var metric string
	if err := s.Scan(&rd.ID, &rd.AnimalID, &metric, &rd.Value, &rd.Unit, &rd.Timestamp); err != nil {
		return health.Reading{}, err
	}
	rd.Metric = health.Metric(metric)
	return rd, nil
}

func scanScore(s scanner) (health.HealthScore, error) {
	var sc health.HealthScore
	if err := s.Scan(
		&sc.ID,
		&sc.AnimalID,
		&sc.Overall,
		&sc.HeartRate,
		&sc.Temperature,
		&sc.Activity,
		&sc.Sleep,
		&sc.Stress,
		&sc.Timestamp,
	); err != nil {
		return health.HealthScore{}, err
	}
	return sc, nil
}

func scanAlert(s scanner) (health.Alert, error) {
	var a health.Alert
	var category, severity string
	if err := s.Scan(&a.ID, &a.AnimalID, &category, &severity, &a.Message, &a.Value, &a.Timestamp, &a.Read); err != nil {
		return health.Alert{}, err
	}
	a.Category = health.Category(category)
	a.Severity = health.Severity(severity)
	return a, nil
}
