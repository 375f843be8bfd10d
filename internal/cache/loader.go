package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fills an LRUCache on miss. Concurrent misses for one key share a
// single load, and a load that started before Invalidate never populates the
// cache.
type Loader[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group

	mu  sync.Mutex
	gen map[string]uint64
}

func NewLoader[T any](c *LRUCache[T]) *Loader[T] {
	return &Loader[T]{cache: c, gen: map[string]uint64{}}
}

// Get returns the cached value for key or runs load to produce it. Errors are
// not cached.
func (l *Loader[T]) Get(key string, load func() (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		gen := l.generation(key)
		v, err := load()
		if err != nil {
			return v, err
		}
		l.mu.Lock()
		if l.gen[key] == gen {
			l.cache.Set(key, v)
		}
		l.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops key and detaches any in-flight load from it.
func (l *Loader[T]) Invalidate(key string) {
	l.mu.Lock()
	l.gen[key]++
	l.cache.Delete(key)
	l.mu.Unlock()
	l.group.Forget(key)
}

func (l *Loader[T]) generation(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen[key]
}

// Cache exposes the underlying LRU, e.g. for registration with a Manager.
func (l *Loader[T]) Cache() *LRUCache[T] {
	return l.cache
}
