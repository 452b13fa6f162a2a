package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"MacroCast/internal/domain/models"
	drepo "MacroCast/internal/domain/repository"
	"MacroCast/pkg/cache"
	applogger "MacroCast/pkg/logger"
)

const redisKeyPrefix = "macro"

type redisEnvelope struct {
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expires_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RedisMacroCache stores forecasts as JSON envelopes with a native TTL.
type RedisMacroCache struct {
	rc  *cache.RedisCache
	ttl time.Duration
	now func() time.Time
	log *applogger.Logger
}

func NewRedisMacroCache(rc *cache.RedisCache, ttl time.Duration, opts ...StoreOption) *RedisMacroCache {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &RedisMacroCache{rc: rc, ttl: ttl, now: cfg.now, log: cfg.log}
}

func (s *RedisMacroCache) Get(ctx context.Context, key models.CacheKey) (cache.Entry[models.ForecastResult], error) {
	var raw []byte
	if err := s.rc.Get(ctx, redisKey(key), &raw); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return cache.Entry[models.ForecastResult]{}, cache.ErrCacheMiss
		}
		return cache.Entry[models.ForecastResult]{}, fmt.Errorf("redis get: %w", err)
	}

	var env redisEnvelope
	entry := cache.Entry[models.ForecastResult]{}
	err := json.Unmarshal(raw, &env)
	if err == nil {
		entry.ExpiresAt, entry.UpdatedAt = env.ExpiresAt, env.UpdatedAt
		if entry.Expired(s.now()) {
			s.evict(ctx, key)
			return cache.Entry[models.ForecastResult]{}, cache.ErrCacheMiss
		}
		err = json.Unmarshal(env.Payload, &entry.Value)
	}
	if err != nil {
		s.log.Warn("corrupt redis macro payload", applogger.String("key", key.String()), applogger.Error(err))
		s.evict(ctx, key)
		return cache.Entry[models.ForecastResult]{}, cache.ErrCacheMiss
	}
	return entry, nil
}

func (s *RedisMacroCache) Set(ctx context.Context, key models.CacheKey, value models.ForecastResult) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	now := s.now()
	env, err := json.Marshal(redisEnvelope{Payload: payload, ExpiresAt: now.Add(s.ttl), UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := s.rc.Set(ctx, redisKey(key), env, s.ttl); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisMacroCache) Delete(ctx context.Context, key models.CacheKey) error {
	return s.rc.Delete(ctx, redisKey(key))
}

func (s *RedisMacroCache) Clear(ctx context.Context) error {
	return s.rc.DeleteByPattern(ctx, cache.BuildPattern(redisKeyPrefix+":"))
}

func (s *RedisMacroCache) Health(ctx context.Context) error {
	return s.rc.Ping(ctx)
}

func (s *RedisMacroCache) Close() error {
	return s.rc.Close()
}

func (s *RedisMacroCache) evict(ctx context.Context, key models.CacheKey) {
	if err := s.Delete(ctx, key); err != nil {
		s.log.Warn("redis macro eviction failed", applogger.String("key", key.String()), applogger.Error(err))
	}
}

func redisKey(key models.CacheKey) string {
	return cache.GenerateKeyWithParams(redisKeyPrefix,
		key.Alias,
		key.StartDate.Format(time.DateOnly),
		key.EndDate.Format(time.DateOnly),
		key.Horizon,
	)
}

var _ drepo.ForecastStore = (*RedisMacroCache)(nil)
