package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroCast/internal/domain/models"
	"MacroCast/pkg/cache"
	"MacroCast/pkg/postgres"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testKey() models.CacheKey {
	return models.CacheKey{
		Alias:     "selic",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Horizon:   2,
	}
}

func testResult() models.ForecastResult {
	return models.ForecastResult{
		HistoricalValues:     []float64{1, 2, 3},
		ForecastValues:       []float64{4, 5},
		HistoricalTimestamps: models.NewDates([]time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}),
		Horizon:              2,
		Source:               "BCB/SGS 432",
		SeriesID:             "selic",
	}
}

func newPostgresStore(t *testing.T) (*PostgresMacroCache, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewPostgresMacroCache(postgres.NewFromDB(db), 3*time.Hour,
		WithStoreClock(func() time.Time { return fixedNow }),
	)
	return store, mock
}

func keyArgsFor(key models.CacheKey) []driver.Value {
	return []driver.Value{key.Alias, key.StartDate, key.EndDate, key.Horizon}
}

func TestPostgresMacroCache_GetHit(t *testing.T) {
	store, mock := newPostgresStore(t)
	key := testKey()
	payload, err := json.Marshal(testResult())
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"payload", "expires_at", "updated_at"}).
		AddRow(string(payload), fixedNow.Add(time.Hour), fixedNow.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload, expires_at, updated_at FROM macro_cache")).
		WithArgs(keyArgsFor(key)...).
		WillReturnRows(rows)

	entry, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, entry.Value.ForecastValues)
	assert.Equal(t, "selic", entry.Value.SeriesID)
	assert.True(t, entry.ExpiresAt.Equal(fixedNow.Add(time.Hour)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMacroCache_GetNoRows(t *testing.T) {
	store, mock := newPostgresStore(t)
	key := testKey()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload")).
		WithArgs(keyArgsFor(key)...).
		WillReturnRows(sqlmock.NewRows([]string{"payload", "expires_at", "updated_at"}))

	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMacroCache_GetExpiredDeletesRow(t *testing.T) {
	store, mock := newPostgresStore(t)
	key := testKey()

	rows := sqlmock.NewRows([]string{"payload", "expires_at", "updated_at"}).
		AddRow("{}", fixedNow.Add(-time.Minute), fixedNow.Add(-4*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload")).WithArgs(keyArgsFor(key)...).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM macro_cache")).
		WithArgs(keyArgsFor(key)...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMacroCache_GetCorruptDeletesRow(t *testing.T) {
	store, mock := newPostgresStore(t)
	key := testKey()

	rows := sqlmock.NewRows([]string{"payload", "expires_at", "updated_at"}).
		AddRow("not-json", fixedNow.Add(time.Hour), fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload")).WithArgs(keyArgsFor(key)...).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM macro_cache")).
		WithArgs(keyArgsFor(key)...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMacroCache_GetQueryError(t *testing.T) {
	store, mock := newPostgresStore(t)
	key := testKey()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload")).
		WithArgs(keyArgsFor(key)...).
		WillReturnError(errors.New("connection reset"))

	_, err := store.Get(context.Background(), key)
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrCacheMiss)
}

func TestPostgresMacroCache_SetReplacesInTransaction(t *testing.T) {
	store, mock := newPostgresStore(t)
	key := testKey()
	payload, err := json.Marshal(testResult())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM macro_cache")).
		WithArgs(keyArgsFor(key)...).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO macro_cache")).
		WithArgs(key.Alias, key.StartDate, key.EndDate, key.Horizon, string(payload), fixedNow.Add(3*time.Hour), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Set(context.Background(), key, testResult()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMacroCache_SetRollsBackOnInsertError(t *testing.T) {
	store, mock := newPostgresStore(t)
	key := testKey()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM macro_cache")).
		WithArgs(keyArgsFor(key)...).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO macro_cache")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Set(context.Background(), key, testResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert macro_cache")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMacroCache_EnsureSchemaAndClear(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS macro_cache")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_macro_cache_expires_at")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM macro_cache")).WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMacroCache_Health(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := NewPostgresMacroCache(postgres.NewFromDB(db), time.Hour)

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection reset"))

	require.NoError(t, store.Health(context.Background()))
	assert.EqualError(t, store.Health(context.Background()), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
