package sched

import (
	"time"

	"github.com/example/tempo/internal/clock"
)

// ManualScheduler is a WakeupScheduler for tests. Time does not pass on
// its own; Advance moves it forward and runs the wake-ups that come due,
// earliest first. When built with a clock.Manual the clock is moved in
// lockstep, so a fire handler reading the clock sees its own fire time.
type ManualScheduler struct {
	clk     *clock.Manual
	entries []*manualEntry
}

type manualEntry struct {
	remaining time.Duration
	onFire    func()
	canceled  bool
}

func (e *manualEntry) Cancel() { e.canceled = true }

// NewManualScheduler returns a ManualScheduler. clk may be nil.
func NewManualScheduler(clk *clock.Manual) *ManualScheduler {
	return &ManualScheduler{clk: clk}
}

func (m *ManualScheduler) Schedule(d time.Duration, onFire func()) Wakeup {
	e := &manualEntry{remaining: d, onFire: onFire}
	m.entries = append(m.entries, e)
	return e
}

// Pending reports how many scheduled wake-ups have neither fired nor been
// canceled.
func (m *ManualScheduler) Pending() int {
	n := 0
	for _, e := range m.entries {
		if !e.canceled {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing due wake-ups in order. Fire
// handlers may schedule further wake-ups; those participate if they fall
// within the remaining span.
func (m *ManualScheduler) Advance(d time.Duration) {
	for {
		next := m.earliest()
		if next == nil || next.remaining > d {
			break
		}
		step := next.remaining
		d -= step
		m.elapse(step)
		m.remove(next)
		if m.clk != nil {
			m.clk.Advance(step)
		}
		next.onFire()
	}
	m.elapse(d)
	if m.clk != nil {
		m.clk.Advance(d)
	}
}

func (m *ManualScheduler) earliest() *manualEntry {
	var best *manualEntry
	for _, e := range m.entries {
		if e.canceled {
			continue
		}
		if best == nil || e.remaining < best.remaining {
			best = e
		}
	}
	return best
}

func (m *ManualScheduler) elapse(d time.Duration) {
	for _, e := range m.entries {
		e.remaining -= d
	}
}

func (m *ManualScheduler) remove(target *manualEntry) {
	for i, e := range m.entries {
		if e == target {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}
