package history

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/model"
	"github.com/verte-zerg/timeit/internal/timefmt"
)

const (
	defaultTopSaves = 3
	// Columns other than the name in the segment table, with separators.
	segmentTableFixedWidth = 60
	minNameWidth           = 8
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cellFmt      = timefmt.Options{Compact: true, Placeholder: "-"}
)

func heading(w io.Writer, title string, opts Options) error {
	if opts.Color {
		title = headingStyle.Render(title)
	}
	_, err := fmt.Fprintln(w, title)
	return err
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSummary prints attempt counts, totals, and the rolling trend of
// completed times.
func RenderSummary(w io.Writer, report Report, opts Options) error {
	if len(report.Attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	completed := report.Completed()
	rate := float64(len(completed)) / float64(len(report.Attempts)) * 100

	best, mean := model.NullDuration{}, model.NullDuration{}
	if len(completed) > 0 {
		totals := lo.Map(completed, func(a model.AttemptAggregate, _ int) time.Duration { return a.Total })
		best = model.ValidDuration(lo.Min(totals))
		mean = model.ValidDuration(lo.Sum(totals) / time.Duration(len(totals)))
	}

	if err := heading(w, "Summary", opts); err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("Attempts: %d", len(report.Attempts)),
		fmt.Sprintf("Completed: %d (%.1f%%)", len(completed), rate),
		fmt.Sprintf("Best: %s", timefmt.Null(best, timefmt.Options{Placeholder: "-"})),
		fmt.Sprintf("Mean: %s", timefmt.Null(mean, timefmt.Options{Placeholder: "-"})),
		fmt.Sprintf("Sum of best: %s", timefmt.Null(SumOfBest(report.Segments, report.SegmentCount), timefmt.Options{Placeholder: "-"})),
	}
	if len(completed) > 1 {
		seconds := lo.Map(completed, func(a model.AttemptAggregate, _ int) float64 { return a.Total.Seconds() })
		trend := MovingAverage(seconds, report.Window)
		const prefix = "Trend: "
		if avail := opts.Width - len(prefix); avail > 0 && len(trend) > avail {
			trend = trend[len(trend)-avail:]
		}
		lines = append(lines, prefix+Sparkline(trend))
	}
	return writeLines(w, lines)
}

// RenderSegmentTable prints per-segment results and the biggest possible saves.
func RenderSegmentTable(w io.Writer, report Report, opts Options) error {
	if len(report.Segments) == 0 {
		_, err := fmt.Fprintln(w, "No segment results found.")
		return err
	}
	nameWidth := 0
	if opts.Width > 0 {
		nameWidth = max(minNameWidth, opts.Width-segmentTableFixedWidth)
	}

	if err := heading(w, "Segments", opts); err != nil {
		return err
	}
	headers := []string{"#", "Segment", "Reached", "Skipped", "Best", "Mean", "Save"}
	rows := make([][]string, 0, len(report.Segments))
	for _, agg := range report.Segments {
		name := agg.Name
		if nameWidth > 0 {
			name = runewidth.Truncate(name, nameWidth, "…")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", agg.Index+1),
			name,
			fmt.Sprintf("%d", agg.Reached),
			fmt.Sprintf("%d", agg.Skipped),
			timefmt.Null(agg.Best, cellFmt),
			timefmt.Null(agg.Mean, cellFmt),
			timefmt.Null(PossibleSave(agg), cellFmt),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	if err := writeLines(w, formatTable(headers, rows, rightAlign)); err != nil {
		return err
	}

	top := TopSaves(report.Segments, defaultTopSaves)
	if len(top) == 0 {
		return nil
	}
	if err := heading(w, "Biggest possible saves", opts); err != nil {
		return err
	}
	lines := lo.Map(top, func(a model.SegmentAggregate, _ int) string {
		return fmt.Sprintf("%s  %s", timefmt.Duration(PossibleSave(a).Duration, timefmt.Options{Compact: true}), a.Name)
	})
	return writeLines(w, lines)
}

// RenderRuns lists the runs that have recorded attempts.
func RenderRuns(w io.Writer, runs []model.RunSummary, opts Options) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No attempts recorded yet.")
		return err
	}
	if err := heading(w, "Runs", opts); err != nil {
		return err
	}
	headers := []string{"Key", "Name", "Attempts", "Completed", "Last"}
	rows := lo.Map(runs, func(r model.RunSummary, _ int) []string {
		return []string{
			r.RunKey,
			r.RunName,
			fmt.Sprintf("%d", r.Attempts),
			fmt.Sprintf("%d", r.Completed),
			r.LastEnded.Local().Format("2006-01-02 15:04"),
		}
	})
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true}))
}
