package clock

import "time"

// Clock supplies the current time. Callers must tolerate backward jumps:
// a Clock is allowed to return a time earlier than a previous reading.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Manual is a hand-driven clock for tests. It is not safe for concurrent
// use; drive it from the same goroutine that reads it.
type Manual struct {
	now time.Time
}

// NewManual returns a Manual clock starting at t.
func NewManual(t time.Time) *Manual { return &Manual{now: t} }

func (m *Manual) Now() time.Time { return m.now }

// Advance moves the clock by d. Negative d moves it backward, which is a
// legal reading (clock regression).
func (m *Manual) Advance(d time.Duration) { m.now = m.now.Add(d) }

// Set jumps the clock to t.
func (m *Manual) Set(t time.Time) { m.now = t }
