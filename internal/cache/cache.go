// Package cache provides a bounded LRU result cache with a per-entry TTL.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache is an LRU cache whose entries expire ttl after insertion. All operations,
// including Get (which updates recency), are serialized by one mutex.
type Cache[V any] struct {
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu          sync.Mutex
	lru         *simplelru.LRU[string, entry[V]]
	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Name        string        `json:"name"`
	Len         int           `json:"len"`
	Capacity    int           `json:"capacity"`
	TTL         time.Duration `json:"ttl_ns"`
	Hits        uint64        `json:"hits"`
	Misses      uint64        `json:"misses"`
	Evictions   uint64        `json:"evictions"`
	Expirations uint64        `json:"expirations"`
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	name string
	now  func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithName labels the cache in Stats.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// New creates a cache holding at most capacity entries. A ttl of zero disables expiry.
func New[V any](capacity int, ttl time.Duration, opts ...Option) (*Cache[V], error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cache ttl must not be negative: %v", ttl)
	}
	l, err := simplelru.NewLRU[string, entry[V]](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache %q: %w", o.name, err)
	}
	return &Cache[V]{name: o.name, capacity: capacity, ttl: ttl, now: o.now, lru: l}, nil
}

// Get returns the value for key. An entry older than the TTL is evicted and reported as a
// miss; a live entry becomes the most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.lru.Peek(key)
	if !ok {
		c.misses++
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(e.insertedAt) > c.ttl {
		c.lru.Remove(key)
		c.expirations++
		c.misses++
		return zero, false
	}
	c.lru.Get(key)
	c.hits++
	return e.value, true
}

// Set stores value under key. An existing entry is replaced and becomes the most recently
// used; otherwise a full cache first evicts its least recently used entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Remove(key)
	if c.lru.Add(key, entry[V]{value: value, insertedAt: c.now()}) {
		c.evictions++
	}
}

// Len returns the number of entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge removes every entry. Counters are kept.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Name:        c.name,
		Len:         c.lru.Len(),
		Capacity:    c.capacity,
		TTL:         c.ttl,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}
