// Package model defines shared data structures.
package model

import "time"

// Timing selects which clock a fetched run's times come from.
type Timing string

const (
	TimingReal Timing = "real"
	TimingGame Timing = "game"
)

// Config defines timer settings resolved from flags and the config file.
type Config struct {
	SplitsPath string
	RunID      string
	Timing     Timing
	Tick       time.Duration
	LogLevel   string
	LogFile    string
	Keys       KeyMap
}

// KeyMap lists the key strings bound to each timer action.
type KeyMap struct {
	Start []string
	Split []string
	Pause []string
	Reset []string
	Save  []string
	Skip  []string
	Quit  []string
}

// SegmentSeed is the initial state of one segment handed to a run.
type SegmentSeed struct {
	ID           string
	Name         string
	Best         NullDuration
	PersonalBest NullDuration
}

// RunSeed is a run definition loaded from a splits file or splits.io.
type RunSeed struct {
	ID       string
	Name     string
	Game     string
	Category string
	Timing   Timing
	Segments []SegmentSeed
	// Path is the local splits file the seed was loaded from, if any.
	Path string
}

// Key identifies a run in the attempt history: the run ID, else the
// splits file path, else the name.
func (s RunSeed) Key() string {
	switch {
	case s.ID != "":
		return s.ID
	case s.Path != "":
		return s.Path
	default:
		return s.Name
	}
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	RunKey string
	Since  *time.Time
	Last   int
	Window int
}

// Attempt captures one finished or abandoned attempt.
type Attempt struct {
	RunKey    string
	RunName   string
	StartedAt time.Time
	EndedAt   time.Time
	Completed bool
	Total     time.Duration
	TimeSaved time.Duration
}

// AttemptSplit stores one segment result of an attempt.
type AttemptSplit struct {
	SegmentIndex int
	SegmentID    string
	Name         string
	Duration     NullDuration
	EndedAt      NullDuration
	Skipped      bool
}

// AttemptAggregate summarizes an attempt for reporting.
type AttemptAggregate struct {
	AttemptID int64
	RunKey    string
	EndedAt   time.Time
	Completed bool
	Total     time.Duration
	TimeSaved time.Duration
}

// SegmentAggregate aggregates one segment's results across attempts.
type SegmentAggregate struct {
	Index   int
	Name    string
	Reached int
	Timed   int
	Best    NullDuration
	Mean    NullDuration
	Skipped int
}

// RunSummary counts recorded attempts per run.
type RunSummary struct {
	RunKey    string
	RunName   string
	Attempts  int
	Completed int
	LastEnded time.Time
}
