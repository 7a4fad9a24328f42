package loadcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/tempo/internal/store"
	"github.com/stretchr/testify/require"
)

func TestFlightCoalescesConcurrentLoads(t *testing.T) {
	f := NewFlight(store.NewMemoryStore())

	var calls int32
	gate := make(chan struct{})

	const n = 8
	results := make([]any, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := f.Load("a", func() (any, error) {
				atomic.AddInt32(&calls, 1)
				<-gate
				return "foo", nil
			})
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.Equal(t, int32(1), calls)
	for _, v := range results {
		require.Equal(t, "foo", v)
	}
}

func TestFlightMemoizesAcrossCalls(t *testing.T) {
	f := NewFlight(store.NewMemoryStore())

	calls := 0
	load := func() (any, error) {
		calls++
		return 42, nil
	}

	v, err := f.Load("a", load)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	v, err = f.Load("a", load)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, calls)
}

func TestFlightDoesNotCacheErrors(t *testing.T) {
	f := NewFlight(store.NewMemoryStore())

	_, err := f.Load("a", func() (any, error) {
		return nil, errors.New("backend down")
	})
	require.Error(t, err)

	v, err := f.Load("a", func() (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	require.Equal(t, "recovered", v)
}

func TestFlightClearForcesReload(t *testing.T) {
	f := NewFlight(store.NewMemoryStore())

	calls := 0
	load := func() (any, error) {
		calls++
		return "v", nil
	}

	_, err := f.Load("a", load)
	require.NoError(t, err)

	f.Clear()
	_, err = f.Load("a", load)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
