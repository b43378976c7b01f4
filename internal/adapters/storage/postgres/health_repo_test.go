package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"pet-health-monitor/internal/domain/health"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*HealthRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewHealthRepo(db), mock
}

var ts = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func TestHealthRepo_AddReading(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO health_readings`).
		WithArgs("r1", "a1", "heart_rate", 72.5, "bpm", ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.AddReading(context.Background(), health.Reading{
		ID: "r1", AnimalID: "a1", Metric: health.MetricHeartRate, Value: 72.5, Unit: "bpm", Timestamp: ts,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_PurgeFresh(t *testing.T) {
	repo, mock := newMock(t)
	cutoff := ts.Add(-time.Minute)

	mock.ExpectExec(`DELETE FROM health_readings\s+WHERE animal_id = \$1 AND metric = \$2 AND ts > \$3`).
		WithArgs("a1", "temperature", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.PurgeFresh(context.Background(), "a1", health.MetricTemperature, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_ListReadingsBuildsFilter(t *testing.T) {
	repo, mock := newMock(t)
	since := ts.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"id", "animal_id", "metric", "value", "unit", "ts"}).
		AddRow("r1", "a1", "heart_rate", 70.0, "bpm", ts.Add(-30*time.Minute)).
		AddRow("r2", "a1", "heart_rate", 71.0, "bpm", ts)

	mock.ExpectQuery(`FROM health_readings WHERE 1=1 AND animal_id = \$1 AND metric = \$2 AND ts >= \$3 ORDER BY ts ASC, seq ASC`).
		WithArgs("a1", "heart_rate", since).
		WillReturnRows(rows)

	got, err := repo.ListReadings(context.Background(), health.ReadingFilter{
		AnimalID: "a1", Metric: health.MetricHeartRate, Since: &since,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, health.MetricHeartRate, got[0].Metric)
	assert.Equal(t, "r2", got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_LatestReadingNone(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`ORDER BY ts DESC, seq DESC\s+LIMIT 1`).
		WithArgs("a1", "hrv").
		WillReturnError(sql.ErrNoRows)

	_, ok, err := repo.LatestReading(context.Background(), "a1", health.MetricHRV)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_LatestScore(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "animal_id", "overall", "heart_rate", "temperature", "activity", "sleep", "stress", "ts"}).
		AddRow("s1", "a1", 82.3, 80.0, 90.0, 70.0, 75.0, 85.0, ts)
	mock.ExpectQuery(`FROM health_scores\s+WHERE animal_id = \$1`).
		WithArgs("a1").
		WillReturnRows(rows)

	sc, ok, err := repo.LatestScore(context.Background(), "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 82.3, sc.Overall)
	assert.Equal(t, 85.0, sc.Stress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_ListAlertsPlaceholders(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "animal_id", "category", "severity", "message", "value", "ts", "read"}).
		AddRow("al1", "a2", "temperature", "high", "hot", 41.0, ts, false)
	mock.ExpectQuery(`animal_id IN \(\$1,\$2\) AND category = \$3 AND read = FALSE ORDER BY ts DESC, seq DESC`).
		WithArgs("a1", "a2", "temperature").
		WillReturnRows(rows)

	got, err := repo.ListAlerts(context.Background(), health.AlertFilter{
		AnimalIDs:  []string{"a1", "a2"},
		Category:   health.CategoryTemperature,
		UnreadOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, health.SeverityHigh, got[0].Severity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_ListAlertsEmptyIDsSkipsQuery(t *testing.T) {
	repo, mock := newMock(t)

	got, err := repo.ListAlerts(context.Background(), health.AlertFilter{AnimalIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_MarkAlertReadNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE health_alerts SET read = TRUE WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAlertRead(context.Background(), "missing")
	assert.ErrorIs(t, err, health.ErrAlertNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_GetAlertNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM health_alerts WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAlert(context.Background(), "nope")
	assert.ErrorIs(t, err, health.ErrAlertNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_DeleteByAnimalRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM health_readings WHERE animal_id = \$1`).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM health_scores WHERE animal_id = \$1`).WithArgs("a1").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.DeleteByAnimal(context.Background(), "a1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health_scores")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthRepo_DeleteByAnimalCommits(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	for _, table := range []string{"health_readings", "health_scores", "health_alerts"} {
		mock.ExpectExec(`DELETE FROM ` + table).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteByAnimal(context.Background(), "a1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
