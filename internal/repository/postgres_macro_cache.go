package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"MacroCast/internal/domain/models"
	drepo "MacroCast/internal/domain/repository"
	"MacroCast/pkg/cache"
	applogger "MacroCast/pkg/logger"
	"MacroCast/pkg/postgres"
)

// MacroCacheSchema creates the persistent cache table.
var MacroCacheSchema = []string{
	`CREATE TABLE IF NOT EXISTS macro_cache (
		serie_alias  VARCHAR(128) NOT NULL,
		data_inicial DATE         NOT NULL,
		data_final   DATE         NOT NULL,
		horizonte    INTEGER      NOT NULL,
		payload      TEXT         NOT NULL,
		expires_at   TIMESTAMPTZ  NOT NULL,
		updated_at   TIMESTAMPTZ  NOT NULL,
		PRIMARY KEY (serie_alias, data_inicial, data_final, horizonte)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_macro_cache_expires_at ON macro_cache (expires_at)`,
}

const (
	selectMacroCache = `SELECT payload, expires_at, updated_at FROM macro_cache
		WHERE serie_alias = $1 AND data_inicial = $2 AND data_final = $3 AND horizonte = $4`
	deleteMacroCache = `DELETE FROM macro_cache
		WHERE serie_alias = $1 AND data_inicial = $2 AND data_final = $3 AND horizonte = $4`
	insertMacroCache = `INSERT INTO macro_cache
		(serie_alias, data_inicial, data_final, horizonte, payload, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	clearMacroCache = `DELETE FROM macro_cache`
)

// PostgresMacroCache stores forecasts in the macro_cache table.
type PostgresMacroCache struct {
	client *postgres.Client
	ttl    time.Duration
	now    func() time.Time
	log    *applogger.Logger
}

// NewPostgresMacroCache creates the store. Call EnsureSchema before use.
func NewPostgresMacroCache(client *postgres.Client, ttl time.Duration, opts ...StoreOption) *PostgresMacroCache {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &PostgresMacroCache{client: client, ttl: ttl, now: cfg.now, log: cfg.log}
}

// EnsureSchema creates the table if it does not exist.
func (s *PostgresMacroCache) EnsureSchema(ctx context.Context) error {
	return s.client.InitSchema(ctx, MacroCacheSchema)
}

// Get loads a live entry. Expired and undecodable rows are deleted and
// reported as cache.ErrCacheMiss.
func (s *PostgresMacroCache) Get(ctx context.Context, key models.CacheKey) (cache.Entry[models.ForecastResult], error) {
	var (
		payload   string
		expiresAt time.Time
		updatedAt time.Time
	)
	err := s.client.DB().QueryRowContext(ctx, selectMacroCache, keyArgs(key)...).Scan(&payload, &expiresAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry[models.ForecastResult]{}, cache.ErrCacheMiss
	}
	if err != nil {
		return cache.Entry[models.ForecastResult]{}, fmt.Errorf("select macro_cache: %w", err)
	}

	entry := cache.Entry[models.ForecastResult]{ExpiresAt: expiresAt, UpdatedAt: updatedAt}
	if entry.Expired(s.now()) {
		s.evict(ctx, key, "expired")
		return cache.Entry[models.ForecastResult]{}, cache.ErrCacheMiss
	}

	if err := json.Unmarshal([]byte(payload), &entry.Value); err != nil {
		s.log.Warn("corrupt macro_cache payload",
			applogger.String("key", key.String()),
			applogger.Error(err),
		)
		s.evict(ctx, key, "corrupt")
		return cache.Entry[models.ForecastResult]{}, cache.ErrCacheMiss
	}
	return entry, nil
}

// Set replaces the row for key inside one transaction.
func (s *PostgresMacroCache) Set(ctx context.Context, key models.CacheKey, value models.ForecastResult) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	now := s.now()

	return s.client.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteMacroCache, keyArgs(key)...); err != nil {
			return fmt.Errorf("delete macro_cache: %w", err)
		}
		args := append(keyArgs(key), string(payload), now.Add(s.ttl), now)
		if _, err := tx.ExecContext(ctx, insertMacroCache, args...); err != nil {
			return fmt.Errorf("insert macro_cache: %w", err)
		}
		return nil
	})
}

func (s *PostgresMacroCache) Delete(ctx context.Context, key models.CacheKey) error {
	if _, err := s.client.DB().ExecContext(ctx, deleteMacroCache, keyArgs(key)...); err != nil {
		return fmt.Errorf("delete macro_cache: %w", err)
	}
	return nil
}

func (s *PostgresMacroCache) Clear(ctx context.Context) error {
	if _, err := s.client.DB().ExecContext(ctx, clearMacroCache); err != nil {
		return fmt.Errorf("clear macro_cache: %w", err)
	}
	return nil
}

// Health pings the database.
func (s *PostgresMacroCache) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *PostgresMacroCache) Close() error {
	return s.client.Close()
}

func (s *PostgresMacroCache) evict(ctx context.Context, key models.CacheKey, reason string) {
	if err := s.Delete(ctx, key); err != nil {
		s.log.Warn("macro_cache eviction failed",
			applogger.String("key", key.String()),
			applogger.String("reason", reason),
			applogger.Error(err),
		)
	}
}

func keyArgs(key models.CacheKey) []interface{} {
	return []interface{}{key.Alias, key.StartDate, key.EndDate, key.Horizon}
}

var _ drepo.ForecastStore = (*PostgresMacroCache)(nil)
