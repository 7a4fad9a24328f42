package sched

import "time"

// Wakeup is a handle to a scheduled wake-up. Cancel is best-effort: some
// schedulers cannot revoke a wake-up that is already firing, so consumers
// must additionally guard their fire handlers (DeferredCall does).
type Wakeup interface {
	Cancel()
}

// WakeupScheduler arranges for onFire to run after d.
type WakeupScheduler interface {
	Schedule(d time.Duration, onFire func()) Wakeup
}

// Timers is a WakeupScheduler backed by the runtime timer wheel. Fires run
// on a timer goroutine; use SerialTimers when fires must share one logical
// thread with the rest of the program.
type Timers struct{}

func (Timers) Schedule(d time.Duration, onFire func()) Wakeup {
	return timerWakeup{time.AfterFunc(d, onFire)}
}

type timerWakeup struct {
	t *time.Timer
}

func (w timerWakeup) Cancel() { w.t.Stop() }

// SerialTimers is a WakeupScheduler that posts fires to a channel instead
// of running them on timer goroutines. A host that drains the channel from
// a single goroutine gets real timers and single-threaded delivery.
type SerialTimers struct {
	out chan<- func()
}

// NewSerialTimers returns a SerialTimers posting fires to out.
func NewSerialTimers(out chan<- func()) *SerialTimers {
	return &SerialTimers{out: out}
}

func (s *SerialTimers) Schedule(d time.Duration, onFire func()) Wakeup {
	return timerWakeup{time.AfterFunc(d, func() {
		s.out <- onFire
	})}
}
