package historyui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/history"
	"github.com/verte-zerg/timeit/internal/model"
	"github.com/verte-zerg/timeit/internal/timefmt"
)

var (
	colorText   = lipgloss.Color("#F0F0F0")
	colorMuted  = lipgloss.Color("#8C8C8C")
	colorDim    = lipgloss.Color("#6E6E6E")
	colorBorder = lipgloss.Color("#4A4A4A")
	colorAccent = lipgloss.Color("#C89A3A")
	colorError  = lipgloss.Color("#FF4D4F")

	boxStyle       = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(colorBorder)
	tabStyle       = boxStyle.Foreground(lipgloss.Color("#B0B0B0"))
	activeTabStyle = boxStyle.Foreground(colorText).Bold(true).BorderForeground(colorAccent)
	filterStyle    = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	labelStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle     = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	tableBodyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))

	cellFmt = timefmt.Options{Compact: true, Placeholder: "-"}
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderTabs() + "\n" + m.renderFilters()
	return strings.Join([]string{
		fitLines(header, m.width, m.headerHeight()),
		fitLines(m.renderBody(), m.width, m.bodyHeight()),
		fitLines(m.renderFooter(), m.width, m.footerHeight()),
	}, "\n")
}

func (m *Model) headerHeight() int {
	return lipgloss.Height(activeTabStyle.Render("X")) + 1
}

func (m *Model) footerHeight() int {
	if m.errMsg != "" {
		return 2
	}
	return 1
}

func (m *Model) bodyHeight() int {
	return max(1, m.height-m.headerHeight()-m.footerHeight())
}

func (m *Model) renderTabs() string {
	rendered := lo.Map(tabNames, func(name string, i int) string {
		if i == m.activeTab {
			return activeTabStyle.Render(name)
		}
		return tabStyle.Render(name)
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderFilters() string {
	run, since, last := "any", "any", "all"
	if m.cfg.RunKey != "" {
		run = m.cfg.RunKey
	}
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(time.DateOnly)
	}
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	line := fmt.Sprintf("Filters: run=%s  since=%s  last=%s  window=%d", run, since, last, m.cfg.Window)
	return filterStyle.Render(runewidth.Truncate(line, m.width, "..."))
}

func (m *Model) renderFooter() string {
	footer := m.help.View(keys)
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}

func (m *Model) renderBody() string {
	if m.activeTab == tabOverview {
		return m.overview.View()
	}
	if len(m.report.Attempts) == 0 {
		return "No attempts found."
	}
	return tableBodyStyle.Render(m.tables[m.activeTab].View())
}

func renderOverview(report history.Report, width int) string {
	if len(report.Attempts) == 0 {
		return "No attempts found."
	}
	completed := report.Completed()
	best, mean := model.NullDuration{}, model.NullDuration{}
	if len(completed) > 0 {
		best = model.ValidDuration(lo.MinBy(completed, func(a, b model.AttemptAggregate) bool { return a.Total < b.Total }).Total)
		mean = model.ValidDuration(lo.SumBy(completed, func(a model.AttemptAggregate) time.Duration { return a.Total }) / time.Duration(len(completed)))
	}
	rate := float64(len(completed)) / float64(len(report.Attempts)) * 100
	cards := []string{
		card("Attempts", strconv.Itoa(len(report.Attempts))),
		card("Completed", fmt.Sprintf("%d (%.0f%%)", len(completed), rate)),
		card("Best", timefmt.Null(best, cellFmt)),
		card("Mean", timefmt.Null(mean, cellFmt)),
		card("Sum of best", timefmt.Null(history.SumOfBest(report.Segments, report.SegmentCount), cellFmt)),
	}

	var sections []string
	if width < 80 {
		sections = append(sections, cards...)
	} else {
		sections = append(sections,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
		)
	}
	sections = append(sections, "")

	if len(completed) > 1 {
		seconds := lo.Map(completed, func(a model.AttemptAggregate, _ int) float64 { return a.Total.Seconds() })
		trend := history.MovingAverage(seconds, report.Window)
		if avail := width - 2; avail > 0 && len(trend) > avail {
			trend = trend[len(trend)-avail:]
		}
		sections = append(sections, labelStyle.Render("Completed time trend (lower is better)"), history.Sparkline(trend), "")
	}
	if top := history.TopSaves(report.Segments, 3); len(top) > 0 {
		sections = append(sections, labelStyle.Render("Biggest possible saves"))
		for _, agg := range top {
			sections = append(sections, timefmt.Duration(history.PossibleSave(agg).Duration, cellFmt)+"  "+agg.Name)
		}
	}
	return strings.TrimRight(strings.Join(sections, "\n"), "\n")
}

func card(label, value string) string {
	return boxStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func segmentColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Segment", Width: 24},
		{Title: "Reached", Width: 7},
		{Title: "Skipped", Width: 7},
		{Title: "Best", Width: 10},
		{Title: "Mean", Width: 10},
		{Title: "Save", Width: 10},
	}
}

func segmentRows(aggs []model.SegmentAggregate) []table.Row {
	return lo.Map(aggs, func(a model.SegmentAggregate, _ int) table.Row {
		return table.Row{
			strconv.Itoa(a.Index + 1),
			a.Name,
			strconv.Itoa(a.Reached),
			strconv.Itoa(a.Skipped),
			timefmt.Null(a.Best, cellFmt),
			timefmt.Null(a.Mean, cellFmt),
			timefmt.Null(history.PossibleSave(a), cellFmt),
		}
	})
}

func attemptColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Ended", Width: 16},
		{Title: "Result", Width: 9},
		{Title: "Time", Width: 12},
		{Title: "Saved", Width: 11},
	}
}

// attemptRows lists attempts newest first.
func attemptRows(attempts []model.AttemptAggregate) []table.Row {
	rows := make([]table.Row, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		result, saved := "reset", "-"
		if a.Completed {
			result = "finished"
			saved = timefmt.Duration(a.TimeSaved, timefmt.Options{Compact: true, Sign: true})
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(a.AttemptID, 10),
			a.EndedAt.Local().Format("2006-01-02 15:04"),
			result,
			timefmt.Duration(a.Total, cellFmt),
			saved,
		})
	}
	return rows
}

func newTable(columns []table.Column) table.Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorBorder).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.Foreground(colorText).Bold(true)
	return table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
		table.WithStyles(styles),
	)
}

// fitLines pads or cuts s to exactly height lines of at least width cells.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out[i] = line + strings.Repeat(" ", max(0, width-lipgloss.Width(line)))
	}
	return strings.Join(out, "\n")
}
