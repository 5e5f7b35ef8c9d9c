// Package tui provides the Bubble Tea split timer interface.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/timeit/internal/clock"
	"github.com/verte-zerg/timeit/internal/logging"
	"github.com/verte-zerg/timeit/internal/model"
	"github.com/verte-zerg/timeit/internal/run"
)

// Recorder stores finished and abandoned attempts.
type Recorder interface {
	InsertAttempt(ctx context.Context, attempt model.Attempt, splits []model.AttemptSplit) (int64, error)
}

// Options configures the timer model.
type Options struct {
	Keys   model.KeyMap
	Tick   time.Duration
	Source clock.Source
	// Scheduler overrides the ticker-driven scheduler. Ticks from an
	// injected scheduler are expected to arrive on the caller's goroutine.
	Scheduler clock.Scheduler
	Recorder  Recorder
	Logger    *log.Logger
}

// Model implements the Bubble Tea timer UI.
type Model struct {
	seed     model.RunSeed
	run      *run.Run
	ticks    <-chan func()
	source   clock.Source
	recorder Recorder
	logger   *log.Logger
	keys     keyMap
	help     help.Model

	width  int
	height int

	startedAt time.Time
	recorded  bool
	notice    string
}

// NewModel constructs a timer model for seed.
func NewModel(seed model.RunSeed, opts Options) (*Model, error) {
	if opts.Source == nil {
		opts.Source = clock.SystemSource{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	var ticks <-chan func()
	if opts.Scheduler == nil {
		sched := clock.NewTickerScheduler()
		opts.Scheduler = sched
		ticks = sched.Ticks()
	}
	m := &Model{
		seed:     seed,
		ticks:    ticks,
		source:   opts.Source,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		keys:     newKeyMap(opts.Keys),
		help:     help.New(),
	}
	r, err := run.New(seed, clock.Options{
		Source:    opts.Source,
		Scheduler: opts.Scheduler,
		Interval:  opts.Tick,
	}, run.Callbacks{
		StatusChanged: m.onStatusChanged,
		SegmentSplit:  m.onSegmentSplit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	m.run = r
	return m, nil
}

// Run exposes the underlying run.
func (m *Model) Run() *run.Run {
	return m.run
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next scheduler tick. One listener is outstanding at
// a time; each tick re-arms it.
func (m *Model) listen() tea.Cmd {
	if m.ticks == nil {
		return nil
	}
	return waitForTick(m.ticks)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		msg.run()
		return m, m.listen()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.run.Pause()
		m.recordAbandoned()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		if m.run.Status() == clock.StatusInitialised {
			m.startedAt = m.source.Now()
			m.recorded = false
			m.notice = ""
		}
		m.run.Start()
	case key.Matches(msg, m.keys.Split):
		m.run.Split()
		if m.run.Status() == clock.StatusFinished {
			m.recordAttempt(true)
		}
	case key.Matches(msg, m.keys.Pause):
		switch m.run.Status() {
		case clock.StatusRunning:
			m.run.Pause()
		case clock.StatusPaused:
			m.run.Start()
		}
	case key.Matches(msg, m.keys.Skip):
		m.run.Skip()
	case key.Matches(msg, m.keys.Reset):
		if m.run.Status() == clock.StatusPaused {
			m.recordAbandoned()
		}
		m.run.Reset()
	case key.Matches(msg, m.keys.Save):
		m.run.SaveBest()
	}
	return m, nil
}

func (m *Model) onStatusChanged(status clock.Status) {
	m.logger.Debug("status changed", "run", m.seed.Key(), "status", status)
}

func (m *Model) onSegmentSplit(seg run.Segment) {
	if seg.Skipped {
		m.logger.Info("segment skipped", "segment", seg.Name)
		return
	}
	m.logger.Info("split",
		"segment", seg.Name,
		"duration", seg.Duration.Duration,
		"ended_at", seg.EndedAt.Duration,
		"best", seg.Best.Duration,
	)
}

// recordAbandoned stores a paused attempt that reached at least one split.
func (m *Model) recordAbandoned() {
	if m.run.Status() != clock.StatusPaused || m.run.ActiveIndex() == 0 {
		return
	}
	m.recordAttempt(false)
}

func (m *Model) recordAttempt(completed bool) {
	if m.recorded || m.recorder == nil {
		return
	}
	m.recorded = true
	attempt := model.Attempt{
		RunKey:    m.seed.Key(),
		RunName:   m.seed.Name,
		StartedAt: m.startedAt,
		EndedAt:   m.source.Now(),
		Completed: completed,
		Total:     m.run.TotalElapsed(),
		TimeSaved: m.run.TotalSaved(),
	}
	segments := m.run.Segments()[:m.run.ActiveIndex()]
	splits := make([]model.AttemptSplit, 0, len(segments))
	for i, seg := range segments {
		splits = append(splits, model.AttemptSplit{
			SegmentIndex: i,
			SegmentID:    seg.ID,
			Name:         seg.Name,
			Duration:     seg.Duration,
			EndedAt:      seg.EndedAt,
			Skipped:      seg.Skipped,
		})
	}
	id, err := m.recorder.InsertAttempt(context.Background(), attempt, splits)
	if err != nil {
		m.logger.Error("failed to save attempt", "err", err)
		m.notice = "failed to save attempt"
		return
	}
	m.logger.Info("attempt saved", "id", id, "completed", completed, "total", attempt.Total)
	if completed {
		m.notice = "attempt saved"
	} else {
		m.notice = "attempt saved as abandoned"
	}
}
