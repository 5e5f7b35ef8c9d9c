package run

import (
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/clock"
	"github.com/verte-zerg/timeit/internal/model"
)

// ID returns the run identifier from the seed.
func (r *Run) ID() string { return r.id }

// Name returns the run name from the seed.
func (r *Run) Name() string { return r.name }

// Status returns the clock status.
func (r *Run) Status() clock.Status { return r.clock.Status() }

// Len returns the number of segments.
func (r *Run) Len() int { return len(r.segments) }

// ActiveIndex returns the cursor. It equals Len once every segment is done.
func (r *Run) ActiveIndex() int { return r.active }

// ActiveSegment returns the segment being timed, if any.
func (r *Run) ActiveSegment() (Segment, bool) {
	if r.active >= len(r.segments) {
		return Segment{}, false
	}
	return r.segments[r.active], true
}

// Segment returns the segment at index i.
func (r *Run) Segment(i int) (Segment, bool) {
	if i < 0 || i >= len(r.segments) {
		return Segment{}, false
	}
	return r.segments[i], true
}

// Segments returns a copy of all segments in run order.
func (r *Run) Segments() []Segment {
	out := make([]Segment, len(r.segments))
	copy(out, r.segments)
	return out
}

// SegmentElapsed returns the time spent in the active segment.
func (r *Run) SegmentElapsed() time.Duration { return r.segmentElapsed }

// TotalElapsed returns the time since the attempt started, excluding pauses.
func (r *Run) TotalElapsed() time.Duration { return r.totalElapsed }

// TotalSaved returns the sum of differences against best times. Negative
// means ahead.
func (r *Run) TotalSaved() time.Duration { return r.totalSaved }

// SumOfBest adds up every segment's best time. It is absent while any
// segment has no best.
func (r *Run) SumOfBest() model.NullDuration {
	if !lo.EveryBy(r.segments, func(s Segment) bool { return s.Best.Valid }) {
		return model.NullDuration{}
	}
	return model.ValidDuration(lo.SumBy(r.segments, func(s Segment) time.Duration { return s.Best.Duration }))
}
