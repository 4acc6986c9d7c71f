package store

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// TTL is a concurrency-safe in-memory cache with a fixed time-to-live.
// Expired entries are treated as absent by Get but remain readable through
// GetStale so callers can serve degraded data when an upstream is down.
type TTL[T any] struct {
	mu   sync.RWMutex
	data map[string]entry[T]
	ttl  time.Duration

	now func() time.Time // overridable in tests
}

// New creates a TTL cache. A ttl <= 0 means entries never expire.
func New[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{
		data: make(map[string]entry[T]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the cached value for key if it exists and has not expired.
func (s *TTL[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		var zero T
		return zero, false
	}
	if s.ttl > 0 && s.now().Sub(e.storedAt) > s.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// GetStale returns the cached value for key regardless of expiry.
func (s *TTL[T]) GetStale(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with the current timestamp.
func (s *TTL[T]) Put(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry[T]{value: value, storedAt: s.now()}
}

// Delete removes the entry for key if present.
func (s *TTL[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
}

// Len returns the number of entries, expired ones included.
func (s *TTL[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}
