package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Entry is a cached value together with its lifetime bookkeeping.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry must no longer be served at now.
func (e Entry[V]) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Tier is a second-level store behind the memory cache. Get returns
// ErrCacheMiss when the key is absent or expired.
type Tier[K comparable, V any] interface {
	Get(ctx context.Context, key K) (Entry[V], error)
	Set(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
	Clear(ctx context.Context) error
}

// Source tells which layer answered a lookup.
type Source string

const (
	SourceNone       Source = ""
	SourceMemory     Source = "memory"
	SourcePersistent Source = "persistent"
)
