package store

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Option configures a MemoryCache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, letting tests simulate time passing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// MemoryCache is a concurrency-safe, process-lifetime key-value cache.
//
// Entries are valid while now-storedAt < ttl. Expiry is checked lazily on
// read and a hit never extends an entry's life. A ttl <= 0 means entries
// never expire.
type MemoryCache[V any] struct {
	mu   sync.RWMutex
	data map[string]entry[V]
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl.
func NewMemoryCache[V any](ttl time.Duration, opts ...Option) *MemoryCache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryCache[V]{
		data: make(map[string]entry[V]),
		ttl:  ttl,
		now:  o.now,
	}
}

// Get returns the value stored under key if it is still fresh.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, ok := c.data[key]
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl {
		return zero, false
	}
	return e.value, true
}

// Put stores v under key, overwriting any previous entry.
func (c *MemoryCache[V]) Put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry[V]{value: v, storedAt: c.now()}
}

// Len returns the number of stored entries, stale ones included.
func (c *MemoryCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
