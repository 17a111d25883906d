package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/playhub-league/internal/platform/resilience"
)

var errNilLoader = errors.New("cache: loader is required")

type item[V any] struct {
	value    V
	deadline time.Time
}

// Store is an in-process TTL cache keyed by string. A zero ttl keeps entries
// until they are deleted. Concurrent loads of one key share a single call.
type Store[V any] struct {
	ttl   time.Duration
	clock func() time.Time

	mu    sync.Mutex
	items map[string]item[V]
	// epoch counts deletes per key so a load that started before a delete
	// never writes its stale result back.
	epoch map[string]uint64

	loads resilience.Group[V]
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		ttl:   ttl,
		clock: time.Now,
		items: make(map[string]item[V]),
		epoch: make(map[string]uint64),
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key)
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value)
}

// Delete drops key and fences off any load for it that is still running.
func (s *Store[V]) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	s.epoch[key]++
}

// GetOrLoad returns the cached value or runs loader once for all concurrent
// callers of the same key. Failed loads are not cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	if loader == nil {
		var zero V
		return zero, errNilLoader
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := s.loads.Do(key, func() (V, error) {
		s.mu.Lock()
		if v, ok := s.lookup(key); ok {
			s.mu.Unlock()
			return v, nil
		}
		started := s.epoch[key]
		s.mu.Unlock()

		v, err := loader(ctx)
		if err != nil {
			return v, err
		}

		s.mu.Lock()
		if s.epoch[key] == started {
			s.put(key, v)
		}
		s.mu.Unlock()
		return v, nil
	})
	return v, err
}

func (s *Store[V]) lookup(key string) (V, bool) {
	it, ok := s.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !it.deadline.IsZero() && !s.clock().Before(it.deadline) {
		delete(s.items, key)
		var zero V
		return zero, false
	}
	return it.value, true
}

func (s *Store[V]) put(key string, value V) {
	it := item[V]{value: value}
	if s.ttl > 0 {
		it.deadline = s.clock().Add(s.ttl)
	}
	s.items[key] = it
}
