package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveTick(t *testing.T, sched *TickerScheduler) func() {
	t.Helper()
	select {
	case fn := <-sched.Ticks():
		return fn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return nil
	}
}

func TestTickerSchedulerDeliversTicks(t *testing.T) {
	sched := NewTickerScheduler()
	ticks := 0
	stop := sched.Every(time.Millisecond, func() { ticks++ })
	defer stop()

	for i := 0; i < 3; i++ {
		receiveTick(t, sched)()
	}
	assert.Equal(t, 3, ticks)
}

func TestTickerSchedulerDropsTicksAfterStop(t *testing.T) {
	sched := NewTickerScheduler()
	ticks := 0
	stop := sched.Every(time.Millisecond, func() { ticks++ })

	pending := receiveTick(t, sched)
	stop()
	stop()
	pending()
	assert.Zero(t, ticks, "tick received before stop ran after it")

	// The sender goroutine exits instead of blocking on the channel; at most
	// one tick already in flight may still arrive, and it does nothing.
	late := 0
	deadline := time.After(50 * time.Millisecond)
	for done := false; !done; {
		select {
		case fn := <-sched.Ticks():
			fn()
			late++
		case <-deadline:
			done = true
		}
	}
	assert.LessOrEqual(t, late, 1)
	assert.Zero(t, ticks)
}

func TestTickerSchedulerStaleScheduleIsIgnored(t *testing.T) {
	sched := NewTickerScheduler()
	first, second := 0, 0
	stopFirst := sched.Every(time.Millisecond, func() { first++ })
	stale := receiveTick(t, sched)
	stopFirst()

	stopSecond := sched.Every(time.Millisecond, func() { second++ })
	defer stopSecond()
	stale()
	stopFirst()
	for i := 0; second == 0 && i < 10; i++ {
		receiveTick(t, sched)()
	}

	assert.Zero(t, first)
	assert.Equal(t, 1, second, "stopping an old schedule must not cancel the new one")
}

func TestManualSchedulerStopIsScoped(t *testing.T) {
	sched := &ManualScheduler{}
	calls := 0
	stopFirst := sched.Every(time.Second, func() { calls++ })
	stopFirst()
	assert.False(t, sched.Fire())

	sched.Every(time.Second, func() { calls++ })
	stopFirst()
	require.True(t, sched.Active())
	require.True(t, sched.Fire())
	assert.Equal(t, 1, calls)
}
