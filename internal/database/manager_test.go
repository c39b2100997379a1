package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"jobportal/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.DatabaseConfig{SlowQueryThreshold: time.Second}
	return NewManagerWithDB(db, cfg, zap.NewNop()), mock
}

func TestManagerRecordsMetrics(t *testing.T) {
	manager, mock := newMockManager(t)

	mock.ExpectExec("UPDATE jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id FROM jobs").WillReturnError(errors.New("boom"))

	_, err := manager.ExecContext(context.Background(), "UPDATE jobs SET status = $1", "Expired")
	require.NoError(t, err)

	_, err = manager.QueryContext(context.Background(), "SELECT id FROM jobs")
	require.Error(t, err)

	snapshot := manager.Metrics()
	assert.Equal(t, int64(2), snapshot.QueryCount)
	assert.Equal(t, int64(1), snapshot.ErrorCount)
	assert.Equal(t, int64(1), snapshot.ExecCount)
	assert.Equal(t, int64(1), snapshot.SelectCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthReportsMissingTable(t *testing.T) {
	manager, mock := newMockManager(t)

	query := regexp.QuoteMeta("SELECT to_regclass($1) IS NOT NULL")
	mock.ExpectQuery(query).WithArgs("jobs").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs("applications").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(query).WithArgs("users").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	status := manager.Health(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Status)
	require.Len(t, status.Errors, 1)
	assert.Contains(t, status.Errors[0], "applications")
	assert.Contains(t, status.Details, "open_connections")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHealthy(t *testing.T) {
	manager, mock := newMockManager(t)

	query := regexp.QuoteMeta("SELECT to_regclass($1) IS NOT NULL")
	for _, table := range []string{"jobs", "applications", "users"} {
		mock.ExpectQuery(query).WithArgs(table).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	}

	status := manager.Health(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Empty(t, status.Errors)
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateQuery(short))

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	truncated := truncateQuery(string(long))
	assert.Len(t, truncated, 203)
}

func TestRetryWithBackoffStopsOnSuccess(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 10*time.Second, zap.NewNop(), "test")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}
