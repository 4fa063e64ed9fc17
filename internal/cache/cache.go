// Package cache memoizes derived views. Entries are keyed by the inputs they
// were computed from, so a cached value is never stale; the TTL and size
// bound only limit memory.
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"fiscal/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Memo pairs a cache with a singleflight group so concurrent misses on the
// same key compute the value once.
type Memo[T any] struct {
	cache Cache[T]
	group singleflight.Group
}

func NewMemo[T any](c Cache[T]) *Memo[T] {
	return &Memo[T]{cache: c}
}

// Do returns the cached value for key or computes, stores and returns it.
// Errors are not cached.
func (m *Memo[T]) Do(key string, compute func() (T, error)) (T, error) {
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.cache.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		m.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Manager handles cache lifecycle and cleanup
type Manager struct {
	caches []Cleaner
	logger *log.Logger
	done   chan struct{}
}

func NewManager(logger *log.Logger) *Manager {
	return &Manager{logger: logger.WithComponent(log.ComponentCache)}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup sweeps expired entries every interval until ctx is done.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	m.done = make(chan struct{})
	go m.cleanup(ctx, interval)
}

func (m *Manager) cleanup(ctx context.Context, interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// CleanNow sweeps all registered caches once and returns how many entries
// were dropped.
func (m *Manager) CleanNow() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Wait blocks until the cleanup loop has exited.
func (m *Manager) Wait() {
	if m.done != nil {
		<-m.done
	}
}
