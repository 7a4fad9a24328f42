package sched

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrResourceReleased marks the one callback fault that is tolerated: the
// callback found its host resource already torn down. A callback that
// panics with (or wrapping) this error is skipped with a warning; every
// other panic propagates to the call site.
var ErrResourceReleased = errors.New("host resource released")

// DeferredCall is a one-shot, abortable invocation of a callback after a
// duration. The creator owns it: Start arms it, Abort cancels it before
// it fires. Restarting a fired or aborted call re-arms it.
//
// Not safe for concurrent use; see the package comment on serialization.
type DeferredCall struct {
	d        time.Duration
	cb       func()
	ws       WakeupScheduler
	wakeup   Wakeup
	finished bool
	aborted  bool
}

// NewDeferredCall builds an unarmed DeferredCall. Most callers want
// Scheduler.After, which also starts it.
func NewDeferredCall(ws WakeupScheduler, d time.Duration, cb func()) *DeferredCall {
	return &DeferredCall{d: d, cb: cb, ws: ws}
}

// Start arms the call. A non-positive duration fires the callback
// synchronously with no wake-up scheduled. Only one wake-up is ever
// outstanding: starting again cancels the previous one.
func (c *DeferredCall) Start() {
	if c.wakeup != nil {
		c.wakeup.Cancel()
		c.wakeup = nil
	}
	c.finished = false
	c.aborted = false
	if c.d <= 0 {
		c.finished = true
		invoke(c.cb)
		return
	}
	c.wakeup = c.ws.Schedule(c.d, c.fire)
}

// Reschedule changes the duration and re-arms.
func (c *DeferredCall) Reschedule(d time.Duration) {
	c.d = d
	c.Start()
}

// Abort cancels the pending fire. The cancellation is cooperative: even
// if the wake-up cannot be revoked, fire re-checks finished and refuses
// to invoke the callback. Aborted is recorded even when the call has
// already fired, so a callback can stop its own repetition (see Every).
func (c *DeferredCall) Abort() {
	if !c.finished {
		c.finished = true
		if c.wakeup != nil {
			c.wakeup.Cancel()
			c.wakeup = nil
		}
	}
	c.aborted = true
}

// Finished reports whether the call has fired or been aborted.
func (c *DeferredCall) Finished() bool { return c.finished }

// Aborted reports whether the call was canceled before firing.
func (c *DeferredCall) Aborted() bool { return c.aborted }

func (c *DeferredCall) fire() {
	if c.finished {
		// stale wake-up that Abort could not revoke
		return
	}
	c.finished = true
	c.wakeup = nil
	invoke(c.cb)
}

// invoke runs cb, tolerating exactly one fault class.
func invoke(cb func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok && errors.Is(err, ErrResourceReleased) {
			logrus.Warnf("deferred callback skipped: %v", err)
			return
		}
		panic(r)
	}()
	cb()
}
