package history

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/model"
)

// Source loads recorded attempts.
type Source interface {
	ListAttempts(ctx context.Context, cfg model.HistoryConfig) ([]model.AttemptAggregate, error)
	ListSplitsForAttempts(ctx context.Context, attemptIDs []int64) (map[int64][]model.AttemptSplit, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Attempts []model.AttemptAggregate
	Segments []model.SegmentAggregate
	// SegmentCount is the run length, known once an attempt has completed.
	SegmentCount int
	Window       int
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, src Source, cfg model.HistoryConfig) (Report, error) {
	attempts, err := src.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load attempts: %w", err)
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	ids := lo.Map(attempts, func(a model.AttemptAggregate, _ int) int64 { return a.AttemptID })
	splits, err := src.ListSplitsForAttempts(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load splits: %w", err)
	}
	segmentCount := 0
	for _, a := range attempts {
		if a.Completed {
			segmentCount = max(segmentCount, len(splits[a.AttemptID]))
		}
	}
	return Report{
		Attempts:     attempts,
		Segments:     AggregateSegments(attempts, splits),
		SegmentCount: segmentCount,
		Window:       cfg.Window,
	}, nil
}

// Completed returns the finished attempts in order.
func (r Report) Completed() []model.AttemptAggregate {
	return lo.Filter(r.Attempts, func(a model.AttemptAggregate, _ int) bool { return a.Completed })
}
