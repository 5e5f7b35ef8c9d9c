package clock

import (
	"sync"
	"time"
)

// Scheduler invokes fn roughly every interval until the returned stop
// function is called. After stop returns, fn must not run again.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler drives ticks from a time.Ticker goroutine. Each tick is
// sent on Ticks as a function the owner must run on the goroutine that owns
// the clock. A tick from a stopped or replaced schedule does nothing when run.
type TickerScheduler struct {
	ticks chan func()
	// gen is only touched on the owner goroutine.
	gen int
}

// NewTickerScheduler returns a TickerScheduler with an unbuffered tick channel.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{ticks: make(chan func())}
}

// Ticks returns the channel the owner loop receives ticks from.
func (s *TickerScheduler) Ticks() <-chan func() {
	return s.ticks
}

// Every implements Scheduler.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) func() {
	s.gen++
	gen := s.gen
	tick := func() {
		if s.gen != gen {
			return
		}
		fn()
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			select {
			case <-done:
				return
			default:
			}
			select {
			case <-done:
				return
			case s.ticks <- tick:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if s.gen == gen {
				s.gen++
			}
			close(done)
		})
	}
}

// ManualScheduler records the scheduled callback and runs it only when
// Fire is called.
type ManualScheduler struct {
	fn       func()
	interval time.Duration
	gen      int
	active   bool
}

// Every implements Scheduler.
func (s *ManualScheduler) Every(interval time.Duration, fn func()) func() {
	s.gen++
	gen := s.gen
	s.fn = fn
	s.interval = interval
	s.active = true
	return func() {
		if s.gen != gen {
			return
		}
		s.active = false
		s.fn = nil
	}
}

// Fire runs the scheduled callback once and reports whether one was active.
func (s *ManualScheduler) Fire() bool {
	if !s.active {
		return false
	}
	s.fn()
	return true
}

// Active reports whether a callback is scheduled.
func (s *ManualScheduler) Active() bool {
	return s.active
}

// Interval returns the interval of the last scheduled callback.
func (s *ManualScheduler) Interval() time.Duration {
	return s.interval
}
