package loadcache

import (
	"sync"

	"github.com/example/tempo/internal/metrics"
	"github.com/example/tempo/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Flight is the goroutine-safe counterpart of Cache: concurrent Load
// calls for the same key share one execution of the load function, and
// successful results are memoized in the Store. Errors are not cached,
// so a failed load can be retried.
type Flight struct {
	group   singleflight.Group
	mu      sync.RWMutex
	storage store.Store
}

func NewFlight(st store.Store) *Flight {
	return &Flight{storage: st}
}

// Load returns the value for key, calling fn at most once per key across
// concurrent callers.
func (f *Flight) Load(key string, fn func() (any, error)) (any, error) {
	if v, ok := f.lookup(key); ok {
		metrics.IncCacheHit()
		return v, nil
	}

	val, err, shared := f.group.Do(key, func() (any, error) {
		// Another caller may have stored the value while we waited
		// for the flight slot.
		if v, ok := f.lookup(key); ok {
			return v, nil
		}

		metrics.IncCacheMiss()
		metrics.IncLoad()
		result, err := fn()
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		serr := f.storage.Set(key, result)
		f.mu.Unlock()
		if serr != nil {
			logrus.Errorf("loadcache: flight set %q: %v", key, serr)
		}
		return result, nil
	})
	if shared {
		metrics.IncCoalesced()
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Clear drops memoized values. In-flight loads finish normally.
func (f *Flight) Clear() {
	f.mu.Lock()
	err := f.storage.Clear()
	f.mu.Unlock()
	if err != nil {
		logrus.Errorf("loadcache: flight clear: %v", err)
	}
}

func (f *Flight) lookup(key string) (any, bool) {
	f.mu.RLock()
	v, ok, err := f.storage.Get(key)
	f.mu.RUnlock()
	if err != nil {
		logrus.Errorf("loadcache: flight get %q: %v", key, err)
		return nil, false
	}
	return v, ok
}
