package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	deltas   []time.Duration
	statuses []Status
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		TimeChanged:   func(d time.Duration) { r.deltas = append(r.deltas, d) },
		StatusChanged: func(s Status) { r.statuses = append(r.statuses, s) },
	}
}

func newTestClock(t *testing.T) (*Clock, *ManualSource, *ManualScheduler, *recorder) {
	t.Helper()
	src := NewManualSource(time.Unix(0, 0))
	sched := &ManualScheduler{}
	rec := &recorder{}
	c := New(Options{Source: src, Scheduler: sched}, rec.callbacks())
	return c, src, sched, rec
}

func TestNewDefaults(t *testing.T) {
	c, _, sched, rec := newTestClock(t)
	assert.Equal(t, StatusInitialised, c.Status())
	assert.Zero(t, c.Elapsed())
	assert.Empty(t, rec.statuses)

	c.Start()
	assert.Equal(t, DefaultInterval, sched.Interval())
}

func TestStartTickPause(t *testing.T) {
	c, src, sched, rec := newTestClock(t)

	c.Start()
	require.True(t, sched.Active())
	assert.Equal(t, []Status{StatusRunning}, rec.statuses)

	src.Advance(100 * time.Millisecond)
	require.True(t, sched.Fire())
	src.Advance(120 * time.Millisecond)
	require.True(t, sched.Fire())
	assert.Equal(t, 220*time.Millisecond, c.Elapsed())

	src.Advance(30 * time.Millisecond)
	c.Pause()
	assert.False(t, sched.Active())
	assert.Equal(t, 250*time.Millisecond, c.Elapsed())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 120 * time.Millisecond, 30 * time.Millisecond}, rec.deltas)
	assert.Equal(t, []Status{StatusRunning, StatusPaused}, rec.statuses)
}

func TestPausedTimeIsNotCounted(t *testing.T) {
	c, src, _, _ := newTestClock(t)

	c.Start()
	src.Advance(time.Second)
	c.Pause()
	src.Advance(time.Hour)
	c.Start()
	src.Advance(2 * time.Second)
	c.Finish()

	assert.Equal(t, 3*time.Second, c.Elapsed())
	assert.Equal(t, StatusFinished, c.Status())
}

func TestIllegalCallsAreIgnored(t *testing.T) {
	c, src, _, rec := newTestClock(t)

	c.Pause()
	c.Finish()
	c.Reset()
	c.Sample()
	assert.Equal(t, StatusInitialised, c.Status())
	assert.Empty(t, rec.statuses)
	assert.Empty(t, rec.deltas)

	c.Start()
	src.Advance(time.Second)
	c.Pause()
	statuses := len(rec.statuses)
	deltas := len(rec.deltas)

	c.Pause()
	c.Finish()
	c.Sample()
	assert.Equal(t, StatusPaused, c.Status())
	assert.Equal(t, time.Second, c.Elapsed())
	assert.Len(t, rec.statuses, statuses)
	assert.Len(t, rec.deltas, deltas)
}

func TestStartWhileRunningKeepsSampling(t *testing.T) {
	c, src, sched, rec := newTestClock(t)
	c.Start()
	src.Advance(time.Second)
	c.Start()
	assert.Equal(t, []Status{StatusRunning}, rec.statuses)

	require.True(t, sched.Fire())
	assert.Equal(t, time.Second, c.Elapsed())
}

func TestResetOnlyFromPausedOrFinished(t *testing.T) {
	c, src, _, rec := newTestClock(t)
	c.Start()
	src.Advance(time.Second)

	c.Reset()
	assert.Equal(t, StatusRunning, c.Status())

	c.Finish()
	c.Reset()
	assert.Equal(t, StatusInitialised, c.Status())
	assert.Zero(t, c.Elapsed())
	assert.Equal(t, []Status{StatusRunning, StatusFinished, StatusInitialised}, rec.statuses)

	c.Start()
	src.Advance(500 * time.Millisecond)
	c.Pause()
	assert.Equal(t, 500*time.Millisecond, c.Elapsed())
}

func TestFinishedClockCannotRestart(t *testing.T) {
	c, src, _, _ := newTestClock(t)
	c.Start()
	src.Advance(time.Second)
	c.Finish()
	c.Start()
	assert.Equal(t, StatusFinished, c.Status())
}

func TestStaleTickAfterPauseDoesNotMoveTime(t *testing.T) {
	src := NewManualSource(time.Unix(0, 0))
	var tick func()
	sched := schedulerFunc(func(_ time.Duration, fn func()) func() {
		tick = fn
		// Deliberately keep tick callable after stop.
		return func() {}
	})
	c := New(Options{Source: src, Scheduler: sched}, Callbacks{})

	c.Start()
	src.Advance(time.Second)
	c.Pause()
	src.Advance(time.Minute)
	tick()
	assert.Equal(t, time.Second, c.Elapsed())
}

func TestNilSchedulerSamplesOnFlush(t *testing.T) {
	src := NewManualSource(time.Unix(0, 0))
	c := New(Options{Source: src}, Callbacks{})
	c.Start()
	src.Advance(time.Second)
	c.Sample()
	src.Advance(time.Second)
	c.Finish()
	assert.Equal(t, 2*time.Second, c.Elapsed())
}

func TestElapsedIsMonotonic(t *testing.T) {
	c, src, sched, _ := newTestClock(t)
	c.Start()
	prev := c.Elapsed()
	for _, step := range []time.Duration{0, 10, 100, 1, 0, 250} {
		src.Advance(step * time.Millisecond)
		sched.Fire()
		require.GreaterOrEqual(t, c.Elapsed(), prev)
		prev = c.Elapsed()
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "unknown", Status(0).String())
}

type schedulerFunc func(time.Duration, func()) func()

func (f schedulerFunc) Every(d time.Duration, fn func()) func() { return f(d, fn) }
