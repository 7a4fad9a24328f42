// Package sched provides one-shot and repeating callback scheduling on
// top of a pluggable wake-up primitive.
//
// DeferredCall, Scheduler, and everything built on them assume exclusive
// access from one logical thread. They never block and never lock; a
// multi-goroutine host must serialize access externally, for example by
// draining a SerialTimers channel from a single goroutine.
package sched

import "time"

// Scheduler builds DeferredCalls against one WakeupScheduler.
type Scheduler struct {
	ws WakeupScheduler
}

// New returns a Scheduler using ws for wake-ups.
func New(ws WakeupScheduler) *Scheduler {
	return &Scheduler{ws: ws}
}

// Defer builds an unarmed DeferredCall for cb after d.
func (s *Scheduler) Defer(d time.Duration, cb func()) *DeferredCall {
	return NewDeferredCall(s.ws, d, cb)
}

// After arms a DeferredCall for cb after d and returns it so the caller
// can Abort it. A non-positive d runs cb synchronously.
func (s *Scheduler) After(d time.Duration, cb func()) *DeferredCall {
	c := s.Defer(d, cb)
	c.Start()
	return c
}

// Every arms a repeating DeferredCall: after each fire it invokes cb and,
// unless aborted, re-arms itself. Each period is measured from the fire,
// not from the original start, so there is no drift compensation.
// Aborting stops future repetitions only. d must be positive.
func (s *Scheduler) Every(d time.Duration, cb func()) *DeferredCall {
	var c *DeferredCall
	c = s.Defer(d, func() {
		cb()
		if !c.Aborted() {
			c.Start()
		}
	})
	c.Start()
	return c
}
