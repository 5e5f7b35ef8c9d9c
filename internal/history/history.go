// Package history aggregates recorded attempts and renders reports.
package history

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline. Higher values use denser
// characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lowest, highest := lo.Min(values), lo.Max(values)
	if math.Abs(highest-lowest) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lowest) / (highest - lowest) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

// AggregateSegments folds per-attempt splits into per-segment results. A
// split following a skipped segment spans both and is not counted as timed.
func AggregateSegments(attempts []model.AttemptAggregate, splits map[int64][]model.AttemptSplit) []model.SegmentAggregate {
	byIndex := map[int]*model.SegmentAggregate{}
	sums := map[int]time.Duration{}
	for _, attempt := range attempts {
		prevSkipped := false
		for _, sp := range splits[attempt.AttemptID] {
			agg, ok := byIndex[sp.SegmentIndex]
			if !ok {
				agg = &model.SegmentAggregate{Index: sp.SegmentIndex}
				byIndex[sp.SegmentIndex] = agg
			}
			agg.Name = sp.Name
			agg.Reached++
			switch {
			case sp.Skipped:
				agg.Skipped++
			case sp.Duration.Valid && !prevSkipped:
				agg.Timed++
				sums[sp.SegmentIndex] += sp.Duration.Duration
				if !agg.Best.Valid || sp.Duration.Duration < agg.Best.Duration {
					agg.Best = sp.Duration
				}
			}
			prevSkipped = sp.Skipped
		}
	}

	out := make([]model.SegmentAggregate, 0, len(byIndex))
	for idx, agg := range byIndex {
		if agg.Timed > 0 {
			agg.Mean = model.ValidDuration(sums[idx] / time.Duration(agg.Timed))
		}
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// PossibleSave is the gap between a segment's mean and best.
func PossibleSave(agg model.SegmentAggregate) model.NullDuration {
	if !agg.Best.Valid || !agg.Mean.Valid {
		return model.NullDuration{}
	}
	return model.ValidDuration(agg.Mean.Duration - agg.Best.Duration)
}

// TopSaves returns up to n segments with the largest possible save, largest first.
func TopSaves(aggs []model.SegmentAggregate, n int) []model.SegmentAggregate {
	if n <= 0 {
		return nil
	}
	candidates := lo.Filter(aggs, func(a model.SegmentAggregate, _ int) bool {
		save := PossibleSave(a)
		return save.Valid && save.Duration > 0
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return PossibleSave(candidates[i]).Duration > PossibleSave(candidates[j]).Duration
	})
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}

// SumOfBest adds every segment's best over a run of segmentCount segments.
// It is absent while any segment lacks a best, including segments no attempt
// reached, and when the segment count is unknown.
func SumOfBest(aggs []model.SegmentAggregate, segmentCount int) model.NullDuration {
	if segmentCount <= 0 || len(aggs) < segmentCount || !lo.EveryBy(aggs, func(a model.SegmentAggregate) bool { return a.Best.Valid }) {
		return model.NullDuration{}
	}
	return model.ValidDuration(lo.SumBy(aggs, func(a model.SegmentAggregate) time.Duration { return a.Best.Duration }))
}
