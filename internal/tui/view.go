package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/timeit/internal/clock"
	"github.com/verte-zerg/timeit/internal/run"
	"github.com/verte-zerg/timeit/internal/timefmt"
)

const (
	defaultContentWidth = 48
	minContentWidth     = 30
	timeColWidth        = 11
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	aheadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	behindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

	timerStyles = map[clock.Status]lipgloss.Style{
		clock.StatusInitialised: lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Bold(true),
		clock.StatusRunning:     lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
		clock.StatusPaused:      lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		clock.StatusFinished:    lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF")).Bold(true),
	}

	compact = timefmt.Options{Compact: true, Placeholder: "-"}
	signed  = timefmt.Options{Compact: true, Sign: true}
)

// View implements tea.Model.
func (m *Model) View() string {
	width := m.contentWidth()
	lines := []string{titleStyle.Render(runewidth.Truncate(m.seed.Name, width, "…"))}
	if sub := m.subtitle(); sub != "" {
		lines = append(lines, subtitleStyle.Render(runewidth.Truncate(sub, width, "…")))
	}
	lines = append(lines, "")
	lines = append(lines, m.renderSegments(width)...)
	lines = append(lines, "", m.renderTimer(width), m.renderSegmentTimer(width), "", m.renderFooter())
	content := strings.Join(lines, "\n")

	helpView := m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return content + "\n" + helpView
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	helpLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpView)
	return body + "\n" + helpLine
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return defaultContentWidth
	}
	return max(minContentWidth, min(m.width, int(float64(m.width)*0.70)))
}

func (m *Model) subtitle() string {
	switch {
	case m.seed.Game != "" && m.seed.Category != "":
		return m.seed.Game + " · " + m.seed.Category
	case m.seed.Game != "":
		return m.seed.Game
	default:
		return m.seed.Category
	}
}

func (m *Model) renderSegments(width int) []string {
	nameWidth := max(1, width-2*(timeColWidth+1))
	active := m.run.ActiveIndex()
	status := m.run.Status()
	inAttempt := status == clock.StatusRunning || status == clock.StatusPaused

	lines := make([]string, 0, m.run.Len())
	for i, seg := range m.run.Segments() {
		name := runewidth.FillRight(runewidth.Truncate(seg.Name, nameWidth, "…"), nameWidth)
		var delta, timeCell string
		style := pendingStyle
		switch {
		case i < active:
			style = doneStyle
			delta = m.renderDifference(seg)
			timeCell = timefmt.Null(seg.EndedAt, compact)
		case i == active && inAttempt:
			style = activeStyle
			delta = m.renderLiveDelta(seg)
			timeCell = timefmt.Null(seg.PersonalBest, compact)
		default:
			timeCell = timefmt.Null(seg.PersonalBest, compact)
		}
		lines = append(lines, style.Render(name)+" "+padLeft(delta, timeColWidth)+" "+style.Render(padLeft(timeCell, timeColWidth)))
	}
	return lines
}

func (m *Model) renderDifference(seg run.Segment) string {
	if seg.Skipped {
		return pendingStyle.Render("skipped")
	}
	if !seg.Difference.Valid {
		return ""
	}
	text := timefmt.Duration(seg.Difference.Duration, signed)
	if seg.Difference.Duration < 0 {
		return aheadStyle.Render(text)
	}
	return behindStyle.Render(text)
}

// renderLiveDelta shows how far the active segment is behind its best, once it is.
func (m *Model) renderLiveDelta(seg run.Segment) string {
	if !seg.Best.Valid {
		return ""
	}
	over := m.run.SegmentElapsed() - seg.Best.Duration
	if over <= 0 {
		return ""
	}
	return behindStyle.Render(timefmt.Duration(over, signed))
}

func (m *Model) renderTimer(width int) string {
	style := timerStyles[m.run.Status()]
	text := timefmt.Duration(m.run.TotalElapsed(), timefmt.Options{})
	return style.Render(padLeft(text, width))
}

func (m *Model) renderSegmentTimer(width int) string {
	text := timefmt.Duration(m.run.SegmentElapsed(), compact)
	if seg, ok := m.run.ActiveSegment(); ok && seg.Best.Valid {
		text = fmt.Sprintf("best %s  %s", timefmt.Duration(seg.Best.Duration, compact), text)
	}
	return subtitleStyle.Render(padLeft(text, width))
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Status %s", m.run.Status()),
		fmt.Sprintf("Segment %d/%d", min(m.run.ActiveIndex()+1, m.run.Len()), m.run.Len()),
		fmt.Sprintf("Sum of best %s", timefmt.Null(m.run.SumOfBest(), compact)),
		fmt.Sprintf("Saved %s", timefmt.Duration(m.run.TotalSaved(), signed)),
	}
	if m.notice != "" {
		segments = append(segments, m.notice)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func padLeft(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
