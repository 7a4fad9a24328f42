// Package limiter implements edge-triggered debouncing and throttling of
// a wrapped function.
//
// A RateLimiter decides per Call whether to invoke the function now (a
// leading edge), merge the call into the open window, or defer it to a
// trailing edge. Throttling is the special case MaxWait == Wait.
//
// Like the sched package it is single-threaded by contract: no locking,
// no blocking; hosts serialize access externally.
package limiter

import (
	"time"

	"github.com/example/tempo/internal/clock"
	"github.com/example/tempo/internal/metrics"
	"github.com/example/tempo/internal/sched"
)

// Func is the wrapped function. It receives the arguments of the call
// that triggered the invocation; for a trailing edge that is the most
// recent call of the window.
type Func func(args any)

type Config struct {
	Func     Func
	Wait     time.Duration // negative clamps to 0
	MaxWait  time.Duration // 0 disables; otherwise clamps up to Wait
	Leading  bool
	Trailing bool
	Clock    clock.Clock      // defaults to clock.System
	Sched    *sched.Scheduler // defaults to real timers
}

type RateLimiter struct {
	fn         Func
	wait       time.Duration
	maxWait    time.Duration
	hasMaxWait bool
	leading    bool
	trailing   bool

	clk clock.Clock
	sch *sched.Scheduler

	lastCallTime   time.Time
	hasLastCall    bool
	lastInvokeTime time.Time
	pending        *sched.DeferredCall
	hasPendingArgs bool
	lastArgs       any
}

func New(cfg Config) *RateLimiter {
	r := &RateLimiter{
		fn:       cfg.Func,
		wait:     cfg.Wait,
		leading:  cfg.Leading,
		trailing: cfg.Trailing,
		clk:      cfg.Clock,
		sch:      cfg.Sched,
	}
	if r.wait < 0 {
		r.wait = 0
	}
	if cfg.MaxWait > 0 {
		r.hasMaxWait = true
		r.maxWait = cfg.MaxWait
		if r.maxWait < r.wait {
			r.maxWait = r.wait
		}
	}
	if r.clk == nil {
		r.clk = clock.System{}
	}
	if r.sch == nil {
		r.sch = sched.New(sched.Timers{})
	}
	return r
}

// NewThrottle wraps fn so it is invoked at most once per wait, on both
// edges of the window.
func NewThrottle(fn Func, wait time.Duration, clk clock.Clock, sch *sched.Scheduler) *RateLimiter {
	return New(Config{
		Func:     fn,
		Wait:     wait,
		MaxWait:  wait,
		Leading:  true,
		Trailing: true,
		Clock:    clk,
		Sched:    sch,
	})
}

// Call records a call and runs the edge decision. It may invoke the
// wrapped function synchronously (leading edge or max-wait ceiling).
func (r *RateLimiter) Call(args any) {
	now := r.clk.Now()
	isInvoking := r.shouldInvoke(now)

	r.lastArgs = args
	r.hasPendingArgs = true
	r.lastCallTime = now
	r.hasLastCall = true

	if isInvoking {
		if r.pending == nil {
			r.leadingEdge(now)
			return
		}
		if r.hasMaxWait {
			// Calls in a tight loop: push the window out to the
			// ceiling and invoke now.
			r.pending.Reschedule(r.maxWait)
			metrics.IncInvocation("maxwait")
			r.invoke(now)
			return
		}
	}
	if r.pending == nil {
		r.pending = r.sch.After(r.wait, r.timerExpired)
	}
}

// Flush forces the trailing edge immediately, as if the open window's
// timer had fired. Without an open window it does nothing.
func (r *RateLimiter) Flush() {
	if r.pending == nil {
		return
	}
	r.finishTrailing(r.clk.Now())
}

// Abort cancels the open window and clears all timing state without
// invoking the function.
func (r *RateLimiter) Abort() {
	if r.pending != nil {
		r.pending.Abort()
		r.pending = nil
	}
	r.lastArgs = nil
	r.hasPendingArgs = false
	r.hasLastCall = false
	r.lastCallTime = time.Time{}
	r.lastInvokeTime = time.Time{}
	metrics.IncAbort()
}

// Pending reports whether a window is open, i.e. a trailing edge may
// still fire.
func (r *RateLimiter) Pending() bool { return r.pending != nil }

// shouldInvoke is evaluated against the call time preceding the current
// one. A negative gap means the clock jumped backward; treat it like an
// expired window.
func (r *RateLimiter) shouldInvoke(now time.Time) bool {
	if !r.hasLastCall {
		return true
	}
	sinceCall := now.Sub(r.lastCallTime)
	if sinceCall >= r.wait || sinceCall < 0 {
		return true
	}
	return r.hasMaxWait && now.Sub(r.lastInvokeTime) >= r.maxWait
}

// leadingEdge opens a window. The pending deferred is installed before
// the function runs, so a reentrant Call from inside it observes an open
// window instead of taking a second leading edge.
func (r *RateLimiter) leadingEdge(now time.Time) {
	r.lastInvokeTime = now
	r.pending = r.sch.Defer(r.wait, r.timerExpired)
	if r.leading {
		metrics.IncInvocation("leading")
		r.invoke(now)
	}
	r.pending.Start()
}

// timerExpired runs when the window timer fires. A call made after the
// timer was armed shrinks the effective remaining wait, in which case
// the window is re-armed for what is left.
func (r *RateLimiter) timerExpired() {
	now := r.clk.Now()
	if r.shouldInvoke(now) {
		r.finishTrailing(now)
		return
	}
	r.pending.Reschedule(r.remainingWait(now))
}

func (r *RateLimiter) finishTrailing(now time.Time) {
	p := r.pending
	r.pending = nil
	if p != nil && !p.Finished() {
		p.Abort() // Flush path: the timer has not fired yet
	}
	if r.trailing && r.hasPendingArgs {
		metrics.IncInvocation("trailing")
		r.invoke(now)
		return
	}
	r.hasPendingArgs = false
	r.lastArgs = nil
}

func (r *RateLimiter) remainingWait(now time.Time) time.Duration {
	remaining := r.wait - now.Sub(r.lastCallTime)
	if r.hasMaxWait {
		if m := r.maxWait - now.Sub(r.lastInvokeTime); m < remaining {
			remaining = m
		}
	}
	return remaining
}

func (r *RateLimiter) invoke(now time.Time) {
	r.lastInvokeTime = now
	args := r.lastArgs
	r.lastArgs = nil
	r.hasPendingArgs = false
	r.fn(args)
}
