package cache

import (
	"sync"
	"time"
)

// MemoryCache is a process-local TTL map. Values are cloned on the way in and
// on the way out so callers never share state with the cache.
type MemoryCache[K comparable, V any] struct {
	mutex   sync.Mutex
	data    map[K]Entry[V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	clone   func(V) V
}

// NewMemoryCache creates an in-memory cache. A nil clone keeps values as is,
// which is only safe for value types without shared references.
func NewMemoryCache[K comparable, V any](clone func(V) V, opts ...MemoryOption) *MemoryCache[K, V] {
	cfg := &MemoryConfig{
		TTL:   DefaultTTL,
		Clock: time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if clone == nil {
		clone = func(v V) V { return v }
	}

	return &MemoryCache[K, V]{
		data:    make(map[K]Entry[V]),
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     cfg.Clock,
		clone:   clone,
	}
}

// TTL returns the configured entry lifetime.
func (mc *MemoryCache[K, V]) TTL() time.Duration {
	return mc.ttl
}

// Get returns a copy of the value stored under key.
func (mc *MemoryCache[K, V]) Get(key K) (V, bool) {
	e, ok := mc.Entry(key)
	return e.Value, ok
}

// Entry returns a copy of the full entry. Stale entries are evicted.
func (mc *MemoryCache[K, V]) Entry(key K) (Entry[V], bool) {
	now := mc.now()

	mc.mutex.Lock()
	item, exists := mc.data[key]
	if exists && item.Expired(now) {
		delete(mc.data, key)
		exists = false
	}
	mc.mutex.Unlock()

	if !exists {
		return Entry[V]{}, false
	}
	item.Value = mc.clone(item.Value)
	return item, true
}

// Set stores a copy of value and returns the stored entry.
func (mc *MemoryCache[K, V]) Set(key K, value V) Entry[V] {
	now := mc.now()
	item := Entry[V]{
		Value:     mc.clone(value),
		ExpiresAt: now.Add(mc.ttl),
		UpdatedAt: now,
	}

	mc.mutex.Lock()
	if _, exists := mc.data[key]; !exists && mc.maxSize > 0 && len(mc.data) >= mc.maxSize {
		mc.evictOldest()
	}
	mc.data[key] = item
	mc.mutex.Unlock()

	item.Value = mc.clone(item.Value)
	return item
}

func (mc *MemoryCache[K, V]) Delete(key K) {
	mc.mutex.Lock()
	delete(mc.data, key)
	mc.mutex.Unlock()
}

func (mc *MemoryCache[K, V]) Clear() {
	mc.mutex.Lock()
	mc.data = make(map[K]Entry[V])
	mc.mutex.Unlock()
}

func (mc *MemoryCache[K, V]) Len() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return len(mc.data)
}

// evictOldest drops the least recently written entry. Caller holds the lock.
func (mc *MemoryCache[K, V]) evictOldest() {
	var (
		oldestKey  K
		oldestTime time.Time
		found      bool
	)
	for key, item := range mc.data {
		if !found || item.UpdatedAt.Before(oldestTime) {
			oldestKey, oldestTime, found = key, item.UpdatedAt, true
		}
	}
	if found {
		delete(mc.data, oldestKey)
	}
}
