package cache

import (
	"context"
	"errors"
)

// Layered implements a two-level cache: L1 in memory, L2 an optional
// persistent Tier. L2 failures are reported to the error handler and
// otherwise treated as misses.
type Layered[K comparable, V any] struct {
	memory     *MemoryCache[K, V]
	persistent Tier[K, V]
	onError    func(op string, err error)
}

// NewLayered creates a layered cache. persistent may be nil for memory-only.
func NewLayered[K comparable, V any](memory *MemoryCache[K, V], persistent Tier[K, V], opts ...LayeredOption) *Layered[K, V] {
	cfg := &LayeredConfig{
		OnError: func(string, error) {},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Layered[K, V]{
		memory:     memory,
		persistent: persistent,
		onError:    cfg.OnError,
	}
}

// Get looks in memory first, then in the persistent tier. A persistent hit
// is copied back into memory.
func (lc *Layered[K, V]) Get(ctx context.Context, key K) (Entry[V], Source, bool) {
	// L1: Try memory first
	if e, ok := lc.memory.Entry(key); ok {
		return e, SourceMemory, true
	}

	if lc.persistent == nil {
		return Entry[V]{}, SourceNone, false
	}

	// L2: Try persistent store
	e, err := lc.persistent.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			lc.onError("get", err)
		}
		return Entry[V]{}, SourceNone, false
	}

	// Store in memory for next time
	lc.memory.Set(key, e.Value)
	return e, SourcePersistent, true
}

// Set writes through both tiers and returns the memory entry.
func (lc *Layered[K, V]) Set(ctx context.Context, key K, value V) Entry[V] {
	e := lc.memory.Set(key, value)
	if lc.persistent != nil {
		if err := lc.persistent.Set(ctx, key, value); err != nil {
			lc.onError("set", err)
		}
	}
	return e
}

func (lc *Layered[K, V]) Delete(ctx context.Context, key K) {
	lc.memory.Delete(key)
	if lc.persistent != nil {
		if err := lc.persistent.Delete(ctx, key); err != nil {
			lc.onError("delete", err)
		}
	}
}

// ClearMemory empties L1 only.
func (lc *Layered[K, V]) ClearMemory() {
	lc.memory.Clear()
}

// Clear empties both tiers.
func (lc *Layered[K, V]) Clear(ctx context.Context) {
	lc.memory.Clear()
	if lc.persistent != nil {
		if err := lc.persistent.Clear(ctx); err != nil {
			lc.onError("clear", err)
		}
	}
}

// Persistent reports whether a second tier is attached.
func (lc *Layered[K, V]) Persistent() bool {
	return lc.persistent != nil
}
