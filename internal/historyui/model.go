// Package historyui provides the Bubble Tea attempt history browser.
package historyui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/timeit/internal/history"
	"github.com/verte-zerg/timeit/internal/model"
)

const (
	tabOverview = iota
	tabSegments
	tabAttempts
)

var tabNames = []string{"Overview", "Segments", "Attempts"}

// Model implements the Bubble Tea history UI.
type Model struct {
	src history.Source
	cfg model.HistoryConfig

	report history.Report
	errMsg string

	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model
	help      help.Model

	width  int
	height int
}

// NewModel constructs a history UI model and loads the first report.
func NewModel(src history.Source, cfg model.HistoryConfig) *Model {
	segments := newTable(segmentColumns())
	attempts := newTable(attemptColumns())
	m := &Model{
		src:      src,
		cfg:      cfg,
		overview: viewport.New(0, 0),
		tables:   map[int]*table.Model{tabSegments: &segments, tabAttempts: &attempts},
		help:     help.New(),
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		m.fillOverview()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active, onTable := m.tables[m.activeTab]
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.PrevTab):
		m.selectTab(m.activeTab - 1)
		return m, tea.ClearScreen
	case key.Matches(msg, keys.NextTab):
		m.selectTab(m.activeTab + 1)
		return m, tea.ClearScreen
	case key.Matches(msg, keys.Wider):
		m.cfg.Window = nextWindow(m.cfg.Window)
		m.reload()
		return m, nil
	case key.Matches(msg, keys.Narrower):
		m.cfg.Window = prevWindow(m.cfg.Window)
		m.reload()
		return m, nil
	case key.Matches(msg, keys.Top):
		if onTable {
			active.GotoTop()
		} else {
			m.overview.GotoTop()
		}
		return m, nil
	case key.Matches(msg, keys.Bottom):
		if onTable {
			active.GotoBottom()
		} else {
			m.overview.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if onTable {
		*active, cmd = active.Update(msg)
	} else {
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectTab(i int) {
	n := len(tabNames)
	m.activeTab = (i%n + n) % n
	for idx, t := range m.tables {
		if idx == m.activeTab {
			t.Focus()
			continue
		}
		t.Blur()
	}
}

// reload rebuilds the report with the current filters.
func (m *Model) reload() {
	report, err := history.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load history.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabSegments].SetRows(segmentRows(report.Segments))
	m.tables[tabAttempts].SetRows(attemptRows(report.Attempts))
	m.resize()
	m.fillOverview()
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	body := m.bodyHeight()
	m.overview.Width, m.overview.Height = m.width, body
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(max(1, body-1))
	}
}

func (m *Model) fillOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, width))
}
