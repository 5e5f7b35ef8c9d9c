// Package run sequences the segments of a speedrun over a clock and keeps
// per-segment and best-time bookkeeping.
//
// A Run is not safe for concurrent use; drive it from the goroutine that
// delivers its clock ticks.
package run

import (
	"errors"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/clock"
	"github.com/verte-zerg/timeit/internal/model"
)

// ErrNoSegments is returned when a run is configured without segments.
var ErrNoSegments = errors.New("run has no segments")

// Callbacks receive run notifications. Nil fields are ignored.
type Callbacks struct {
	// TimeChanged receives the time added by each clock sample (incremental).
	TimeChanged   func(delta time.Duration)
	StatusChanged func(status clock.Status)
	// SegmentSplit receives the segment just completed.
	SegmentSplit func(segment Segment)
	// SegmentReset receives every segment after a reset clears it.
	SegmentReset func(segment Segment)
}

// Run is one attempt across a fixed list of segments.
type Run struct {
	id        string
	name      string
	clock     *clock.Clock
	callbacks Callbacks

	segments       []Segment
	active         int
	segmentElapsed time.Duration
	totalElapsed   time.Duration
	totalSaved     time.Duration
	afterSkip      bool
}

// New builds a run from seed. The run owns its clock, built from opts.
func New(seed model.RunSeed, opts clock.Options, callbacks Callbacks) (*Run, error) {
	if len(seed.Segments) == 0 {
		return nil, ErrNoSegments
	}
	r := &Run{
		id:        seed.ID,
		name:      seed.Name,
		callbacks: callbacks,
		segments:  lo.Map(seed.Segments, func(s model.SegmentSeed, _ int) Segment { return newSegment(s) }),
	}
	r.clock = clock.New(opts, clock.Callbacks{
		TimeChanged:   r.handleTimeChanged,
		StatusChanged: r.handleStatusChanged,
	})
	return r, nil
}

// Start begins the attempt or resumes it after a pause.
func (r *Run) Start() {
	switch r.clock.Status() {
	case clock.StatusInitialised:
		r.active = 0
	case clock.StatusPaused:
	default:
		return
	}
	r.clock.Start()
}

// Pause pauses a running attempt.
func (r *Run) Pause() {
	r.clock.Pause()
}

// Split completes the active segment. Completing the last segment finishes
// the attempt. Only valid while running.
func (r *Run) Split() {
	if r.clock.Status() != clock.StatusRunning {
		return
	}
	r.clock.Sample()

	seg := &r.segments[r.active]
	seg.EndedAt = model.ValidDuration(r.totalElapsed)
	seg.Duration = model.ValidDuration(r.segmentElapsed)
	if r.afterSkip {
		// The duration spans skipped segments and says nothing about this one.
		seg.Difference = model.NullDuration{}
	} else {
		if seg.Best.Valid {
			diff := r.segmentElapsed - seg.Best.Duration
			seg.Difference = model.ValidDuration(diff)
			r.totalSaved += diff
		} else {
			seg.Difference = model.NullDuration{}
		}
		if !seg.Best.Valid || r.segmentElapsed < seg.Best.Duration {
			seg.Best = model.ValidDuration(r.segmentElapsed)
		}
	}
	if r.callbacks.SegmentSplit != nil {
		r.callbacks.SegmentSplit(*seg)
	}

	r.afterSkip = false
	r.segmentElapsed = 0
	r.active++
	if r.active >= len(r.segments) {
		r.Finish()
	}
}

// Skip passes over the active segment without recording it. Its time
// carries into the next segment. The last segment cannot be skipped.
func (r *Run) Skip() {
	if r.clock.Status() != clock.StatusRunning {
		return
	}
	if r.active >= len(r.segments)-1 {
		return
	}
	r.clock.Sample()
	seg := &r.segments[r.active]
	seg.clearAttempt()
	seg.Skipped = true
	if r.callbacks.SegmentSplit != nil {
		r.callbacks.SegmentSplit(*seg)
	}
	r.afterSkip = true
	r.active++
}

// Reset clears the attempt. Only valid while paused or finished. Best
// times are kept.
func (r *Run) Reset() {
	status := r.clock.Status()
	if status != clock.StatusPaused && status != clock.StatusFinished {
		return
	}
	r.totalElapsed = 0
	r.totalSaved = 0
	r.segmentElapsed = 0
	r.active = 0
	r.afterSkip = false
	for i := range r.segments {
		r.segments[i].clearAttempt()
		if r.callbacks.SegmentReset != nil {
			r.callbacks.SegmentReset(r.segments[i])
		}
	}
	r.clock.Reset()
}

// Finish stops the clock for this attempt.
func (r *Run) Finish() {
	r.clock.Finish()
}

// SaveBest accepts a finished attempt and resets for the next one. Best
// times were already tightened on each split.
func (r *Run) SaveBest() {
	if r.clock.Status() != clock.StatusFinished {
		return
	}
	r.Reset()
}

func (r *Run) handleTimeChanged(delta time.Duration) {
	r.totalElapsed += delta
	r.segmentElapsed += delta
	if r.callbacks.TimeChanged != nil {
		r.callbacks.TimeChanged(delta)
	}
}

func (r *Run) handleStatusChanged(status clock.Status) {
	if r.callbacks.StatusChanged != nil {
		r.callbacks.StatusChanged(status)
	}
}
