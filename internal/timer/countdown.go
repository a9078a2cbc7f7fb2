// Package timer implements wall-clock deadline countdowns.
//
// A Countdown never decrements a counter. It fixes a deadline when started
// and recomputes remaining = max(0, deadline − now) on every tick, so the
// reported time is correct no matter how long the process was suspended
// between ticks.
package timer

import (
	"sync"
	"time"
)

// Kind identifies which countdown an event came from.
type Kind int

const (
	// KindStage counts down the current stage's expected duration.
	KindStage Kind = iota
	// KindStarter counts down the remaining pre-bake starter wait.
	KindStarter
	// KindHelper is the short advisory countdown shown on a stage card.
	KindHelper
)

// String returns a human-readable kind.
func (k Kind) String() string {
	switch k {
	case KindStage:
		return "stage"
	case KindStarter:
		return "starter"
	case KindHelper:
		return "helper"
	default:
		return "unknown"
	}
}

// Option configures a countdown.
type Option func(*Countdown)

// WithTickInterval sets how often the countdown re-evaluates its deadline.
func WithTickInterval(d time.Duration) Option {
	return func(c *Countdown) {
		c.tick = d
	}
}

// WithClock overrides the wall-clock source.
func WithClock(now func() time.Time) Option {
	return func(c *Countdown) {
		c.now = now
	}
}

// WithOnTick registers a per-tick callback receiving the remaining time.
func WithOnTick(fn func(remaining time.Duration)) Option {
	return func(c *Countdown) {
		c.onTick = fn
	}
}

// Countdown is a single running deadline timer. Completion fires exactly
// once; Stop cancels the countdown without ever firing completion.
type Countdown struct {
	kind       Kind
	duration   time.Duration
	deadline   time.Time
	tick       time.Duration
	now        func() time.Time
	onComplete func(*Countdown)
	onTick     func(time.Duration)

	mu        sync.Mutex
	stopCh    chan struct{}
	stopped   bool
	completed bool
}

// Start begins a countdown of the given duration. The deadline is fixed at
// now + duration. onComplete runs on the countdown's own goroutine.
func Start(kind Kind, duration time.Duration, onComplete func(*Countdown), opts ...Option) *Countdown {
	return ResumeAt(kind, time.Time{}, duration, onComplete, opts...)
}

// ResumeAt reattaches to a previously persisted deadline. Remaining time is
// re-derived from the stored deadline and the current clock, never from a
// stored remaining value. A zero deadline means "start fresh from now". A
// deadline already in the past completes on the first tick.
func ResumeAt(kind Kind, deadline time.Time, duration time.Duration, onComplete func(*Countdown), opts ...Option) *Countdown {
	c := &Countdown{
		kind:       kind,
		duration:   duration,
		deadline:   deadline,
		tick:       time.Second,
		now:        time.Now,
		onComplete: onComplete,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.deadline.IsZero() {
		c.deadline = c.now().Add(duration)
	}
	go c.run()
	return c
}

func (c *Countdown) run() {
	// An already expired deadline completes immediately — still on this
	// goroutine, so a caller holding its own lock while starting the
	// countdown cannot deadlock against its completion handler.
	if c.fireIfDue() {
		return
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			rem := c.Remaining()
			if c.onTick != nil {
				c.onTick(rem)
			}
			if c.fireIfDue() {
				return
			}
		}
	}
}

// fireIfDue marks completion and invokes the handler when the deadline has
// passed. Returns true when the countdown is finished with (completed or
// stopped under our feet).
func (c *Countdown) fireIfDue() bool {
	if c.Remaining() > 0 {
		return false
	}
	c.mu.Lock()
	if c.stopped || c.completed {
		c.mu.Unlock()
		return true
	}
	c.completed = true
	c.mu.Unlock()

	if c.onComplete != nil {
		c.onComplete(c)
	}
	return true
}

// Stop cancels the countdown. After Stop returns no completion will fire
// unless it had already fired. Idempotent.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.completed {
		return
	}
	c.stopped = true
	close(c.stopCh)
}

// Kind returns the countdown's kind.
func (c *Countdown) Kind() Kind { return c.kind }

// Duration returns the configured total duration.
func (c *Countdown) Duration() time.Duration { return c.duration }

// Deadline returns the wall-clock completion time.
func (c *Countdown) Deadline() time.Time { return c.deadline }

// Remaining recomputes the time left from the deadline. Never negative.
func (c *Countdown) Remaining() time.Duration {
	rem := c.deadline.Sub(c.now())
	if rem < 0 {
		return 0
	}
	return rem
}

// Completed reports whether completion has fired.
func (c *Countdown) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}
