// Package clock provides the stopwatch primitive behind a run.
//
// A Clock is not safe for concurrent use. All calls, including the ticks
// delivered by its Scheduler, must come from one goroutine.
package clock

import "time"

// DefaultInterval is the sampling period used when Options.Interval is unset.
const DefaultInterval = 100 * time.Millisecond

// Status is the clock state.
type Status int

const (
	StatusInitialised Status = iota + 1
	StatusRunning
	StatusPaused
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusInitialised:
		return "initialised"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Callbacks receive clock notifications. Nil fields are ignored.
type Callbacks struct {
	// TimeChanged receives the time added by each sample (incremental).
	TimeChanged func(delta time.Duration)
	// StatusChanged receives the new status after every transition.
	StatusChanged func(status Status)
}

// Options configures a Clock.
type Options struct {
	Source    Source
	Scheduler Scheduler
	Interval  time.Duration
}

// Clock accumulates elapsed time between start and pause/finish.
type Clock struct {
	source    Source
	scheduler Scheduler
	interval  time.Duration
	callbacks Callbacks

	status     Status
	elapsed    time.Duration
	lastSample time.Time
	stopTick   func()
}

// New creates a Clock in the initialised state. A nil Scheduler disables
// periodic sampling; elapsed time still advances on every flush.
func New(opts Options, callbacks Callbacks) *Clock {
	if opts.Source == nil {
		opts.Source = SystemSource{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Clock{
		source:    opts.Source,
		scheduler: opts.Scheduler,
		interval:  opts.Interval,
		callbacks: callbacks,
		status:    StatusInitialised,
	}
}

// Status returns the current status.
func (c *Clock) Status() Status {
	return c.status
}

// Elapsed returns the accumulated time as of the last sample.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Start begins or resumes timing. Only valid from initialised or paused.
func (c *Clock) Start() {
	if c.status != StatusInitialised && c.status != StatusPaused {
		return
	}
	c.lastSample = c.source.Now()
	if c.scheduler != nil {
		c.stopTick = c.scheduler.Every(c.interval, c.tick)
	}
	c.setStatus(StatusRunning)
}

// Pause flushes pending time and stops sampling. Only valid while running.
func (c *Clock) Pause() {
	if c.status != StatusRunning {
		return
	}
	c.cancelTick()
	c.sample()
	c.setStatus(StatusPaused)
}

// Finish flushes pending time and stops sampling for this attempt. Only
// valid while running.
func (c *Clock) Finish() {
	if c.status != StatusRunning {
		return
	}
	c.cancelTick()
	c.sample()
	c.setStatus(StatusFinished)
}

// Reset zeroes the clock. Only valid from paused or finished.
func (c *Clock) Reset() {
	if c.status != StatusPaused && c.status != StatusFinished {
		return
	}
	c.elapsed = 0
	c.lastSample = time.Time{}
	c.setStatus(StatusInitialised)
}

// Sample forces a sample while running and is a no-op otherwise.
func (c *Clock) Sample() {
	if c.status != StatusRunning {
		return
	}
	c.sample()
}

func (c *Clock) tick() {
	// A tick that slipped past cancellation must not move time.
	if c.status != StatusRunning {
		return
	}
	c.sample()
}

func (c *Clock) sample() {
	now := c.source.Now()
	delta := now.Sub(c.lastSample)
	if delta < 0 {
		delta = 0
	}
	c.lastSample = now
	c.elapsed += delta
	if c.callbacks.TimeChanged != nil {
		c.callbacks.TimeChanged(delta)
	}
}

func (c *Clock) cancelTick() {
	if c.stopTick == nil {
		return
	}
	c.stopTick()
	c.stopTick = nil
}

func (c *Clock) setStatus(status Status) {
	c.status = status
	if c.callbacks.StatusChanged != nil {
		c.callbacks.StatusChanged(status)
	}
}
