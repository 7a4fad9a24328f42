// Package loadcache maps keys to asynchronously loaded values, coalescing
// concurrent requests so the loader runs at most once per key at a time.
//
// Cache is the cooperative, callback-based form: single logical thread,
// no locking, never blocks. Flight is a goroutine-safe blocking form for
// concurrent hosts.
package loadcache

import (
	"github.com/example/tempo/internal/metrics"
	"github.com/example/tempo/internal/store"
	"github.com/sirupsen/logrus"
)

// Loader produces the value for a key and must call resolve exactly once.
// A loader that never resolves leaves the key pending forever; the cache
// does not detect that.
type Loader func(key string, resolve func(value any))

// Cache coalesces Get calls per key onto one in-flight loader call and
// memoizes resolved values in a Store.
type Cache struct {
	loader  Loader
	storage store.Store
	pending map[string][]func(any)
}

func New(loader Loader, st store.Store) *Cache {
	return &Cache{
		loader:  loader,
		storage: st,
		pending: make(map[string][]func(any)),
	}
}

// Get delivers the value for key to cb: synchronously when it is already
// resolved, otherwise once the loader resolves it. While a load for key
// is in flight, further Gets join its waiter list in order; no second
// loader call is issued for the key.
func (c *Cache) Get(key string, cb func(value any)) {
	v, ok, err := c.storage.Get(key)
	if err != nil {
		// Degrade to a miss; the in-flight guard below still holds.
		logrus.Errorf("loadcache: get %q: %v", key, err)
	} else if ok {
		metrics.IncCacheHit()
		cb(v)
		return
	}

	waiters, inFlight := c.pending[key]
	c.pending[key] = append(waiters, cb)
	if inFlight {
		metrics.IncCoalesced()
		return
	}

	metrics.IncCacheMiss()
	metrics.IncLoad()
	metrics.SetPending(len(c.pending))
	c.loader(key, func(value any) {
		c.resolve(key, value)
	})
}

func (c *Cache) resolve(key string, value any) {
	if err := c.storage.Set(key, value); err != nil {
		logrus.Errorf("loadcache: set %q: %v", key, err)
	}
	waiters := c.pending[key]
	delete(c.pending, key)
	metrics.SetPending(len(c.pending))
	for _, cb := range waiters {
		cb(value)
	}
}

// ForEach visits every resolved entry. Order is unspecified.
func (c *Cache) ForEach(fn func(key string, value any)) {
	if err := c.storage.ForEach(fn); err != nil {
		logrus.Errorf("loadcache: foreach: %v", err)
	}
}

// Clear drops resolved values only. In-flight loads are unaffected: they
// still resolve into storage and fire their waiters, and a Get for such a
// key keeps coalescing instead of re-issuing the loader.
func (c *Cache) Clear() {
	if err := c.storage.Clear(); err != nil {
		logrus.Errorf("loadcache: clear: %v", err)
	}
}

// IsPending reports whether any key has an in-flight load.
func (c *Cache) IsPending() bool { return len(c.pending) > 0 }

// PendingCount reports how many keys have an in-flight load.
func (c *Cache) PendingCount() int { return len(c.pending) }
