package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
}

// TTL is an in-memory read-through cache keyed by dataset name
// ("companies") or composite keys ("customFieldValues:company:<id>").
//
// Entries expire purely by age. There is no capacity bound and no LRU:
// the key space is the set of sheets plus one key per viewed entity, which
// stays small for a single deployment.
type TTL struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *TTL {
	return &TTL{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Tests use it to step past the TTL
// without sleeping.
func (c *TTL) WithClock(now func() time.Time) *TTL {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Set stores value under key, stamped with the current time.
func (c *TTL) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Get returns the value if it is younger than the TTL. A stale entry is
// evicted and reported as a miss.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete removes one key. Missing keys are ignored.
func (c *TTL) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *TTL) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len counts stored entries, including ones that have expired but were not
// read since.
func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Lookup is a typed Get. A value of the wrong type counts as a miss.
func Lookup[T any](c *TTL, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
