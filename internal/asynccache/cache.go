// Package asynccache implements the bounded, deduplicating, cooperatively
// cancellable cache described by the contour engine's AsyncCache component.
//
// Pending (in-flight) entries are tracked in an unbounded map keyed by
// string, each entry carrying a waiter refcount, since evicting a still-running producer would break the
// "at most one producer per key" contract. Once a producer completes
// successfully its entry moves into internal/tilecache's bounded,
// insertion-ordered LRU, so completion-insertion beyond capacity evicts
// the oldest completed entry, matching the component's "capacity C,
// insertion-ordered" contract.
package asynccache

import (
	"context"
	"sync"

	"github.com/pspoerri/demcontour/internal/tilecache"
)

// Producer computes the value for key. It must observe ctx and return
// promptly once ctx is done.
type Producer[V any] func(ctx context.Context, key string) (V, error)

// Cache is a bounded, string-keyed cache of in-flight-or-completed values of
// type V. The zero value is not usable; construct with New.
type Cache[V any] struct {
	mu      sync.Mutex
	pending map[string]*entry[V]
	done    *tilecache.LRU[*entry[V]]
}

type entry[V any] struct {
	waiters int
	cancel  context.CancelFunc
	ready   chan struct{}
	value   V
	err     error
}

// New creates a Cache bounded to capacity completed entries.
func New[V any](capacity int) *Cache[V] {
	return &Cache[V]{
		pending: make(map[string]*entry[V]),
		done:    tilecache.New[*entry[V]](capacity),
	}
}

// Get returns the value for key, invoking producer at most once concurrently
// per key. If an entry for key already exists (pending or complete), Get
// joins it as an additional waiter instead of re-invoking producer.
//
// ctx governs only this call's participation: if ctx is cancelled before the
// value is ready, Get returns ctx.Err() without affecting other waiters. If
// this was the last waiter on a still-pending entry, the entry's producer
// context is cancelled and the entry is removed, matching the "producer is
// cancelled exactly when all waiters have withdrawn" contract.
func (c *Cache[V]) Get(ctx context.Context, key string, producer Producer[V]) (V, error) {
	e := c.joinOrCreate(key, producer)

	c.mu.Lock()
	e.waiters++
	c.mu.Unlock()

	select {
	case <-e.ready:
		c.leave(key, e, false)
		return e.value, e.err
	case <-ctx.Done():
		c.leave(key, e, true)
		var zero V
		return zero, ctx.Err()
	}
}

// joinOrCreate returns the existing entry for key (pending or completed), or
// creates a pending entry and starts its producer in a new goroutine.
func (c *Cache[V]) joinOrCreate(key string, producer Producer[V]) *entry[V] {
	c.mu.Lock()
	if e, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return e
	}
	if e, ok := c.done.Get(key); ok {
		c.mu.Unlock()
		return e
	}

	producerCtx, cancel := context.WithCancel(context.Background())
	e := &entry[V]{cancel: cancel, ready: make(chan struct{})}
	c.pending[key] = e
	c.mu.Unlock()

	go func() {
		value, err := producer(producerCtx, key)

		c.mu.Lock()
		if c.pending[key] != e {
			// Every waiter withdrew while the producer was running; the
			// entry was already removed. Don't resurrect it.
			c.mu.Unlock()
			return
		}
		delete(c.pending, key)
		e.value = value
		e.err = err
		if err == nil {
			c.done.Put(key, e)
		}
		c.mu.Unlock()
		close(e.ready)
	}()

	return e
}

// leave handles a waiter's exit. Only a withdrawing waiter (one that left
// via its own ctx rather than the value becoming ready) on a still-pending
// entry decrements e's waiter count; if no waiters remain, the producer is
// cancelled and the entry is dropped. Other exits change nothing.
// Failed producer results are never memoized, so a failed entry is simply
// gone from both maps by the time any waiter observes e.ready.
func (c *Cache[V]) leave(key string, e *entry[V], withdrawing bool) {
	if !withdrawing {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-e.ready:
		return
	default:
	}

	if c.pending[key] != e {
		return
	}
	e.waiters--
	if e.waiters <= 0 {
		e.cancel()
		delete(c.pending, key)
	}
}

// Len reports the number of completed entries currently retained.
func (c *Cache[V]) Len() int {
	return c.done.Len()
}
