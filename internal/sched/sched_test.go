package sched

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/tempo/internal/clock"
	"github.com/stretchr/testify/require"
)

func TestAfterZeroFiresSynchronously(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	fired := 0
	c := s.After(0, func() { fired++ })

	require.Equal(t, 1, fired)
	require.True(t, c.Finished())
	require.False(t, c.Aborted())
	require.Equal(t, 0, ws.Pending())
}

func TestAfterNegativeFiresSynchronously(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	fired := 0
	s.After(-time.Second, func() { fired++ })

	require.Equal(t, 1, fired)
	require.Equal(t, 0, ws.Pending())
}

func TestAfterFiresOnceAfterDuration(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	fired := 0
	c := s.After(100*time.Millisecond, func() { fired++ })

	ws.Advance(99 * time.Millisecond)
	require.Equal(t, 0, fired)
	require.False(t, c.Finished())

	ws.Advance(time.Millisecond)
	require.Equal(t, 1, fired)
	require.True(t, c.Finished())

	ws.Advance(time.Second)
	require.Equal(t, 1, fired)
}

func TestAbortPreventsFire(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	fired := 0
	c := s.After(100*time.Millisecond, func() { fired++ })
	c.Abort()

	ws.Advance(time.Second)
	require.Equal(t, 0, fired)
	require.True(t, c.Finished())
	require.True(t, c.Aborted())
	require.Equal(t, 0, ws.Pending())
}

// stickyScheduler hands out wake-ups that cannot be revoked, standing in
// for environments where Cancel is only advisory.
type stickyScheduler struct {
	fires []func()
}

type stickyWakeup struct{}

func (stickyWakeup) Cancel() {}

func (s *stickyScheduler) Schedule(d time.Duration, onFire func()) Wakeup {
	s.fires = append(s.fires, onFire)
	return stickyWakeup{}
}

func TestStaleFireAfterAbortIsIgnored(t *testing.T) {
	ws := &stickyScheduler{}

	fired := 0
	c := NewDeferredCall(ws, 100*time.Millisecond, func() { fired++ })
	c.Start()
	c.Abort()

	// The wake-up still arrives; the finished flag must keep the
	// callback from running.
	require.Len(t, ws.fires, 1)
	ws.fires[0]()
	require.Equal(t, 0, fired)
}

func TestRestartCancelsPreviousWakeup(t *testing.T) {
	ws := NewManualScheduler(nil)

	fired := 0
	c := NewDeferredCall(ws, 100*time.Millisecond, func() { fired++ })
	c.Start()
	ws.Advance(50 * time.Millisecond)
	c.Start()

	ws.Advance(time.Second)
	require.Equal(t, 1, fired)
}

func TestReschedule(t *testing.T) {
	ws := NewManualScheduler(nil)

	fired := 0
	c := NewDeferredCall(ws, 100*time.Millisecond, func() { fired++ })
	c.Start()
	c.Reschedule(300 * time.Millisecond)

	ws.Advance(200 * time.Millisecond)
	require.Equal(t, 0, fired)
	ws.Advance(100 * time.Millisecond)
	require.Equal(t, 1, fired)
}

func TestEveryRepeatsFromEachFire(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	fired := 0
	c := s.Every(10*time.Millisecond, func() { fired++ })

	ws.Advance(35 * time.Millisecond)
	require.Equal(t, 3, fired)

	c.Abort()
	ws.Advance(time.Second)
	require.Equal(t, 3, fired)
}

func TestEveryAbortFromInsideCallbackStopsRepetition(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	fired := 0
	var c *DeferredCall
	c = s.Every(10*time.Millisecond, func() {
		fired++
		if fired == 2 {
			c.Abort()
		}
	})

	ws.Advance(time.Second)
	require.Equal(t, 2, fired)
}

func TestResourceReleasedPanicIsIsolated(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	require.NotPanics(t, func() {
		s.After(0, func() { panic(ErrResourceReleased) })
	})
	require.NotPanics(t, func() {
		s.After(0, func() { panic(fmt.Errorf("widget gone: %w", ErrResourceReleased)) })
	})
}

func TestOtherPanicsPropagate(t *testing.T) {
	ws := NewManualScheduler(nil)
	s := New(ws)

	require.PanicsWithValue(t, "boom", func() {
		s.After(0, func() { panic("boom") })
	})
}

func TestSerialTimersDeliverThroughChannel(t *testing.T) {
	events := make(chan func(), 1)
	s := New(NewSerialTimers(events))

	fired := make(chan struct{})
	s.After(5*time.Millisecond, func() { close(fired) })

	select {
	case fn := <-events:
		fn()
	case <-time.After(time.Second):
		t.Fatal("wake-up never posted")
	}
	select {
	case <-fired:
	default:
		t.Fatal("callback did not run")
	}
}

func TestManualSchedulerDrivesClock(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	ws := NewManualScheduler(clk)
	s := New(ws)

	var seen time.Time
	s.After(100*time.Millisecond, func() { seen = clk.Now() })

	ws.Advance(time.Second)
	require.Equal(t, time.Unix(0, 0).Add(100*time.Millisecond), seen)
	require.Equal(t, time.Unix(0, 0).Add(time.Second), clk.Now())
}
