package splitsio

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/model"
)

// Runner is a splits.io user.
type Runner struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Category is a game category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Game is a splits.io game.
type Game struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Shortname  string     `json:"shortname"`
	Categories []Category `json:"categories"`
}

// Segment is the raw API shape of a run segment.
type Segment struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	SegmentNumber int    `json:"segment_number"`

	RealtimeEndMS              *int64 `json:"realtime_end_ms"`
	RealtimeDurationMS         *int64 `json:"realtime_duration_ms"`
	RealtimeShortestDurationMS *int64 `json:"realtime_shortest_duration_ms"`
	RealtimeSkipped            bool   `json:"realtime_skipped"`

	GametimeEndMS              *int64 `json:"gametime_end_ms"`
	GametimeDurationMS         *int64 `json:"gametime_duration_ms"`
	GametimeShortestDurationMS *int64 `json:"gametime_shortest_duration_ms"`
	GametimeSkipped            bool   `json:"gametime_skipped"`
}

// History is one past attempt of a run.
type History struct {
	AttemptNumber      int    `json:"attempt_number"`
	RealtimeDurationMS *int64 `json:"realtime_duration_ms"`
	GametimeDurationMS *int64 `json:"gametime_duration_ms"`
	StartedAt          string `json:"started_at"`
	EndedAt            string `json:"ended_at"`
}

// Run is the raw API shape of a run.
type Run struct {
	ID                  string    `json:"id"`
	DefaultTiming       string    `json:"default_timing"`
	Program             string    `json:"program"`
	Attempts            int       `json:"attempts"`
	RealtimeDurationMS  *int64    `json:"realtime_duration_ms"`
	RealtimeSumOfBestMS *int64    `json:"realtime_sum_of_best_ms"`
	GametimeDurationMS  *int64    `json:"gametime_duration_ms"`
	GametimeSumOfBestMS *int64    `json:"gametime_sum_of_best_ms"`
	CreatedAt           string    `json:"created_at"`
	Game                *Game     `json:"game"`
	Category            *Category `json:"category"`
	Runners             []Runner  `json:"runners"`
	Segments            []Segment `json:"segments"`
	Histories           []History `json:"histories"`
}

// Title names the run by game and category, falling back to its ID.
func (r Run) Title() string {
	switch {
	case r.Game != nil && r.Category != nil:
		return fmt.Sprintf("%s - %s", r.Game.Name, r.Category.Name)
	case r.Game != nil:
		return r.Game.Name
	case r.Category != nil:
		return r.Category.Name
	default:
		return r.ID
	}
}

// Timing resolves the timing to use. An empty preference selects the run's
// default timing.
func (r Run) Timing(preferred model.Timing) model.Timing {
	if preferred != "" {
		return preferred
	}
	if model.Timing(r.DefaultTiming) == model.TimingGame {
		return model.TimingGame
	}
	return model.TimingReal
}

// Duration returns the run's final time for timing.
func (r Run) Duration(timing model.Timing) model.NullDuration {
	if timing == model.TimingGame {
		return positiveMillis(r.GametimeDurationMS)
	}
	return positiveMillis(r.RealtimeDurationMS)
}

// CreatedTime parses CreatedAt. It is zero when absent or malformed.
func (r Run) CreatedTime() time.Time {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return created
}

// Seed converts the run into a timer definition.
func (r Run) Seed(preferred model.Timing) model.RunSeed {
	timing := r.Timing(preferred)
	seed := model.RunSeed{
		ID:       r.ID,
		Name:     r.Title(),
		Timing:   timing,
		Segments: lo.Map(r.Segments, func(s Segment, _ int) model.SegmentSeed { return s.toSeed(timing) }),
	}
	if r.Game != nil {
		seed.Game = r.Game.Name
	}
	if r.Category != nil {
		seed.Category = r.Category.Name
	}
	return seed
}

func (s Segment) toSeed(timing model.Timing) model.SegmentSeed {
	best, end, skipped := s.RealtimeShortestDurationMS, s.RealtimeEndMS, s.RealtimeSkipped
	if timing == model.TimingGame {
		best, end, skipped = s.GametimeShortestDurationMS, s.GametimeEndMS, s.GametimeSkipped
	}
	name := s.DisplayName
	if name == "" {
		name = s.Name
	}
	seed := model.SegmentSeed{
		ID:   s.ID,
		Name: name,
		Best: positiveMillis(best),
	}
	if !skipped {
		seed.PersonalBest = positiveMillis(end)
	}
	return seed
}

func positiveMillis(ms *int64) model.NullDuration {
	if ms == nil || *ms <= 0 {
		return model.NullDuration{}
	}
	return model.Millis(ms)
}
