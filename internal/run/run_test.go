package run

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/timeit/internal/clock"
	"github.com/verte-zerg/timeit/internal/model"
)

type harness struct {
	run      *Run
	src      *clock.ManualSource
	sched    *clock.ManualScheduler
	statuses []clock.Status
	splits   []Segment
	resets   []Segment
	deltas   []time.Duration
}

func newHarness(t *testing.T, seeds ...model.SegmentSeed) *harness {
	t.Helper()
	h := &harness{
		src:   clock.NewManualSource(time.Unix(0, 0)),
		sched: &clock.ManualScheduler{},
	}
	r, err := New(model.RunSeed{Name: "test", Segments: seeds}, clock.Options{Source: h.src, Scheduler: h.sched}, Callbacks{
		TimeChanged:   func(d time.Duration) { h.deltas = append(h.deltas, d) },
		StatusChanged: func(s clock.Status) { h.statuses = append(h.statuses, s) },
		SegmentSplit:  func(s Segment) { h.splits = append(h.splits, s) },
		SegmentReset:  func(s Segment) { h.resets = append(h.resets, s) },
	})
	require.NoError(t, err)
	h.run = r
	return h
}

func (h *harness) advance(d time.Duration) {
	h.src.Advance(d)
	h.sched.Fire()
}

func seeds(n int) []model.SegmentSeed {
	out := make([]model.SegmentSeed, n)
	for i := range out {
		out[i] = model.SegmentSeed{Name: string(rune('A' + i))}
	}
	return out
}

func best(d time.Duration) model.NullDuration { return model.ValidDuration(d) }

// sumOfDurations adds the durations of completed segments.
func sumOfDurations(r *Run) time.Duration {
	var total time.Duration
	for _, s := range r.Segments() {
		if s.Duration.Valid {
			total += s.Duration.Duration
		}
	}
	return total
}

func TestNewRequiresSegments(t *testing.T) {
	_, err := New(model.RunSeed{Name: "empty"}, clock.Options{}, Callbacks{})
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestNewAssignsIDs(t *testing.T) {
	h := newHarness(t, model.SegmentSeed{ID: "keep"}, model.SegmentSeed{Name: "fresh"})
	segs := h.run.Segments()
	assert.Equal(t, "keep", segs[0].ID)
	assert.NotEmpty(t, segs[1].ID)
	assert.NotEqual(t, segs[0].ID, segs[1].ID)
}

func TestThreeSegmentsWithoutBests(t *testing.T) {
	h := newHarness(t, seeds(3)...)

	h.run.Start()
	h.advance(60000 * time.Millisecond)
	h.run.Split()
	h.advance(61000 * time.Millisecond)
	h.run.Split()
	h.advance(0)
	h.run.Split()

	assert.Equal(t, clock.StatusFinished, h.run.Status())
	assert.Equal(t, 3, h.run.ActiveIndex())
	assert.Equal(t, 121000*time.Millisecond, h.run.TotalElapsed())

	segs := h.run.Segments()
	assert.Equal(t, best(60000*time.Millisecond), segs[0].Best)
	assert.Equal(t, best(61000*time.Millisecond), segs[1].Best)
	assert.Equal(t, best(0), segs[2].Best)
	assert.Equal(t, best(121000*time.Millisecond), segs[2].EndedAt)
	for _, s := range segs {
		assert.False(t, s.Difference.Valid, "no prior best means no comparison")
	}
	assert.Zero(t, h.run.TotalSaved())
	assert.Equal(t, best(121000*time.Millisecond), h.run.SumOfBest())
	assert.Len(t, h.splits, 3)
	assert.Equal(t, []clock.Status{clock.StatusRunning, clock.StatusFinished}, h.statuses)

	_, ok := h.run.ActiveSegment()
	assert.False(t, ok)
}

func TestSlowerThanBest(t *testing.T) {
	h := newHarness(t,
		model.SegmentSeed{Name: "one", Best: best(50000 * time.Millisecond)},
		model.SegmentSeed{Name: "two"},
	)

	h.run.Start()
	h.advance(60000 * time.Millisecond)
	h.run.Split()

	seg, _ := h.run.Segment(0)
	assert.Equal(t, best(10000*time.Millisecond), seg.Difference)
	assert.Equal(t, best(50000*time.Millisecond), seg.Best)
	assert.Equal(t, 10000*time.Millisecond, h.run.TotalSaved())
}

func TestFasterThanBestTightens(t *testing.T) {
	h := newHarness(t,
		model.SegmentSeed{Best: best(50 * time.Second)},
		model.SegmentSeed{Best: best(10 * time.Second)},
	)

	h.run.Start()
	h.advance(45 * time.Second)
	h.run.Split()
	h.advance(12 * time.Second)
	h.run.Split()

	segs := h.run.Segments()
	assert.Equal(t, best(-5*time.Second), segs[0].Difference)
	assert.Equal(t, best(45*time.Second), segs[0].Best)
	assert.Equal(t, best(2*time.Second), segs[1].Difference)
	assert.Equal(t, best(10*time.Second), segs[1].Best)
	assert.Equal(t, -3*time.Second, h.run.TotalSaved())
}

func TestResetWhileRunningIsNoop(t *testing.T) {
	h := newHarness(t, seeds(2)...)
	h.run.Start()
	h.advance(5 * time.Second)

	h.run.Reset()
	assert.Equal(t, clock.StatusRunning, h.run.Status())
	assert.Equal(t, 5*time.Second, h.run.TotalElapsed())
	assert.Empty(t, h.resets)
}

func TestIllegalCallsLeaveStateUnchanged(t *testing.T) {
	h := newHarness(t, seeds(2)...)

	h.run.Split()
	h.run.Pause()
	h.run.SaveBest()
	h.run.Skip()
	assert.Equal(t, clock.StatusInitialised, h.run.Status())
	assert.Empty(t, h.statuses)
	assert.Empty(t, h.splits)

	h.run.Start()
	h.advance(time.Second)
	h.run.Pause()
	statuses := len(h.statuses)
	deltas := len(h.deltas)

	h.run.Pause()
	h.src.Advance(time.Minute)
	h.run.Split()
	h.run.Skip()
	h.run.SaveBest()

	assert.Equal(t, clock.StatusPaused, h.run.Status())
	assert.Equal(t, time.Second, h.run.TotalElapsed())
	assert.Equal(t, 0, h.run.ActiveIndex())
	assert.Len(t, h.statuses, statuses)
	assert.Len(t, h.deltas, deltas)
	assert.Empty(t, h.splits)
}

func TestResetClearsAttemptButKeepsBests(t *testing.T) {
	h := newHarness(t, seeds(3)...)
	h.run.Start()
	h.advance(10 * time.Second)
	h.run.Split()
	h.advance(20 * time.Second)
	h.run.Split()
	h.advance(3 * time.Second)
	h.run.Pause()

	h.run.Reset()

	assert.Equal(t, clock.StatusInitialised, h.run.Status())
	assert.Zero(t, h.run.TotalElapsed())
	assert.Zero(t, h.run.SegmentElapsed())
	assert.Zero(t, h.run.TotalSaved())
	assert.Equal(t, 0, h.run.ActiveIndex())
	segs := h.run.Segments()
	for _, s := range segs {
		assert.False(t, s.Difference.Valid)
		assert.False(t, s.EndedAt.Valid)
		assert.False(t, s.Duration.Valid)
	}
	assert.Equal(t, best(10*time.Second), segs[0].Best)
	assert.Equal(t, best(20*time.Second), segs[1].Best)
	assert.False(t, segs[2].Best.Valid)
	assert.Len(t, h.resets, 3)
	assert.False(t, h.run.SumOfBest().Valid)
}

func TestSaveBestOnlyWhenFinished(t *testing.T) {
	h := newHarness(t, seeds(1)...)
	h.run.Start()
	h.advance(time.Second)
	h.run.SaveBest()
	assert.Equal(t, clock.StatusRunning, h.run.Status())

	h.run.Split()
	require.Equal(t, clock.StatusFinished, h.run.Status())
	h.run.SaveBest()
	assert.Equal(t, clock.StatusInitialised, h.run.Status())
	seg, _ := h.run.Segment(0)
	assert.Equal(t, best(time.Second), seg.Best)
}

func TestBestIsNonIncreasingAcrossAttempts(t *testing.T) {
	h := newHarness(t, seeds(2)...)
	attempts := [][2]time.Duration{
		{30 * time.Second, 40 * time.Second},
		{35 * time.Second, 20 * time.Second},
		{25 * time.Second, 45 * time.Second},
	}
	prev := []model.NullDuration{{}, {}}
	for _, attempt := range attempts {
		h.run.Start()
		for i, d := range attempt {
			h.advance(d)
			h.run.Split()
			seg, _ := h.run.Segment(i)
			if prev[i].Valid {
				require.LessOrEqual(t, seg.Best.Duration, prev[i].Duration)
			}
			prev[i] = seg.Best
		}
		h.run.SaveBest()
	}
	assert.Equal(t, best(25*time.Second), prev[0])
	assert.Equal(t, best(20*time.Second), prev[1])
}

func TestConservationAndMonotonicity(t *testing.T) {
	h := newHarness(t, seeds(4)...)
	h.run.Start()
	steps := []time.Duration{150, 90, 0, 400, 1000, 30, 70}
	prev := h.run.TotalElapsed()
	for i, step := range steps {
		h.advance(step * time.Millisecond)
		require.GreaterOrEqual(t, h.run.TotalElapsed(), prev)
		prev = h.run.TotalElapsed()
		if i%2 == 1 {
			h.run.Split()
		}
		require.Equal(t, h.run.TotalElapsed(), sumOfDurations(h.run)+h.run.SegmentElapsed())
	}
}

func TestPauseResumeWithinSegment(t *testing.T) {
	h := newHarness(t, seeds(2)...)
	h.run.Start()
	h.advance(4 * time.Second)
	h.run.Pause()
	h.src.Advance(time.Hour)
	h.run.Start()
	assert.Equal(t, 0, h.run.ActiveIndex())
	h.advance(6 * time.Second)
	h.run.Split()

	seg, _ := h.run.Segment(0)
	assert.Equal(t, best(10*time.Second), seg.Duration)
	assert.Equal(t, 1, h.run.ActiveIndex())
}

func TestSplitFlushesTimeSinceLastTick(t *testing.T) {
	h := newHarness(t, seeds(2)...)
	h.run.Start()
	h.advance(100 * time.Millisecond)
	h.src.Advance(42 * time.Millisecond)
	h.run.Split()

	seg, _ := h.run.Segment(0)
	assert.Equal(t, best(142*time.Millisecond), seg.Duration)
}

func TestSkipCarriesTimeIntoNextSegment(t *testing.T) {
	h := newHarness(t,
		model.SegmentSeed{Name: "a", Best: best(10 * time.Second)},
		model.SegmentSeed{Name: "b", Best: best(10 * time.Second)},
		model.SegmentSeed{Name: "c"},
	)
	h.run.Start()
	h.advance(8 * time.Second)
	h.run.Skip()
	h.advance(7 * time.Second)
	h.run.Split()

	segs := h.run.Segments()
	assert.True(t, segs[0].Skipped)
	assert.False(t, segs[0].Duration.Valid)
	assert.Equal(t, best(10*time.Second), segs[0].Best)
	assert.Equal(t, best(15*time.Second), segs[1].Duration)
	assert.False(t, segs[1].Difference.Valid)
	assert.Equal(t, best(10*time.Second), segs[1].Best)
	assert.Zero(t, h.run.TotalSaved())
	assert.Equal(t, h.run.TotalElapsed(), sumOfDurations(h.run)+h.run.SegmentElapsed())

	h.run.Skip()
	assert.Equal(t, 2, h.run.ActiveIndex(), "last segment cannot be skipped")
	h.advance(time.Second)
	h.run.Split()
	segs = h.run.Segments()
	assert.Equal(t, best(time.Second), segs[2].Best)
	assert.Equal(t, clock.StatusFinished, h.run.Status())

	h.run.Reset()
	assert.False(t, h.run.Segments()[0].Skipped)
}

func TestFinishEarlyStopsMutation(t *testing.T) {
	h := newHarness(t, seeds(3)...)
	h.run.Start()
	h.advance(time.Second)
	h.run.Finish()
	h.run.Split()

	assert.Equal(t, clock.StatusFinished, h.run.Status())
	assert.Equal(t, 0, h.run.ActiveIndex())
	assert.Empty(t, h.splits)
	assert.Equal(t, time.Second, h.run.SegmentElapsed())
}
