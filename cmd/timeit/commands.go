package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/timeit/internal/config"
	"github.com/verte-zerg/timeit/internal/history"
	"github.com/verte-zerg/timeit/internal/historyui"
	"github.com/verte-zerg/timeit/internal/model"
	"github.com/verte-zerg/timeit/internal/splits"
	"github.com/verte-zerg/timeit/internal/splitsio"
	"github.com/verte-zerg/timeit/internal/store"
	"github.com/verte-zerg/timeit/internal/timefmt"
)

const defaultHistoryWindow = 5

var (
	fetchOut      string
	fetchHistoric bool
	fetchTiming   string

	pbsAll    bool
	pbsTiming string

	gamesCategories bool

	historyRun    string
	historySince  string
	historyLast   int
	historyWindow int
	historyPlain  bool
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local splits files",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	dir := config.DefaultSplitsDir()
	entries, err := splits.List(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(cmd.OutOrStdout(), "no splits in %s\n", dir)
			return nil
		}
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no splits in %s\n", dir)
		return nil
	}
	logger := cliLogger(cmd.ErrOrStderr())
	out := cmd.OutOrStdout()
	for _, entry := range entries {
		name := filepath.Base(entry.Path)
		if entry.Err != nil {
			logger.Warn("skipping invalid splits file", "file", name, "err", entry.Err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%d segments\n", name, entry.Seed.Name, len(entry.Seed.Segments))
	}
	return nil
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <run-id>",
		Short: "Download a splits.io run as a local splits file",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetchCmd,
	}
	cmd.Flags().StringVar(&fetchOut, "out", "", "output file (default: <splits dir>/<run-id>.toml)")
	cmd.Flags().BoolVar(&fetchHistoric, "historic", false, "include attempt history")
	cmd.Flags().StringVar(&fetchTiming, "timing", "", "real or game (default: run's own)")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	timing, err := parseOptionalTiming(fetchTiming)
	if err != nil {
		return err
	}
	out := config.ExpandHome(fetchOut)
	if out == "" {
		out = filepath.Join(config.DefaultSplitsDir(), id+splitsFileMode)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()
	logger := cliLogger(cmd.ErrOrStderr())
	logger.Debug("fetching run", "id", id, "historic", fetchHistoric)
	run, err := splitsio.NewClient(splitsioBaseURL).GetRun(ctx, id, fetchHistoric)
	if err != nil {
		return fmt.Errorf("failed to fetch run %s: %w", id, err)
	}
	seed := run.Seed(timing)
	if err := splits.Save(out, seed); err != nil {
		return err
	}
	logger.Info("saved splits", "run", run.Title(), "segments", len(seed.Segments), "path", out)
	if fetchHistoric {
		writeHistories(cmd.OutOrStdout(), run, seed.Timing)
	}
	return nil
}

func writeHistories(w io.Writer, run splitsio.Run, timing model.Timing) {
	opts := timefmt.Options{Placeholder: "-"}
	for _, h := range run.Histories {
		ms := h.RealtimeDurationMS
		if timing == model.TimingGame {
			ms = h.GametimeDurationMS
		}
		fmt.Fprintf(w, "#%d\t%s\t%s\n", h.AttemptNumber, h.StartedAt, timefmt.Null(model.Millis(ms), opts))
	}
}

func newPBsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pbs <runner>",
		Short: "List a splits.io runner's personal bests",
		Args:  cobra.ExactArgs(1),
		RunE:  runPBsCmd,
	}
	cmd.Flags().BoolVar(&pbsAll, "all", false, "list every run, not only personal bests")
	cmd.Flags().StringVar(&pbsTiming, "timing", "", "real or game (default: each run's own)")
	return cmd
}

func runPBsCmd(cmd *cobra.Command, args []string) error {
	timing, err := parseOptionalTiming(pbsTiming)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()
	client := splitsio.NewClient(splitsioBaseURL)
	var runs []splitsio.Run
	if pbsAll {
		runs, err = client.RunnerRuns(ctx, args[0])
	} else {
		runs, err = client.RunnerPBs(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to fetch runs for %s: %w", args[0], err)
	}
	out := cmd.OutOrStdout()
	opts := timefmt.Options{Placeholder: "-"}
	for _, run := range runs {
		d := run.Duration(run.Timing(timing))
		fmt.Fprintf(out, "%s\t%s\t%s\n", run.ID, timefmt.Null(d, opts), run.Title())
	}
	return nil
}

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games <query>",
		Short: "Search splits.io games",
		Args:  cobra.ExactArgs(1),
		RunE:  runGamesCmd,
	}
	cmd.Flags().BoolVar(&gamesCategories, "categories", false, "treat the argument as a game shortname and list its categories")
	return cmd
}

func runGamesCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()
	client := splitsio.NewClient(splitsioBaseURL)
	out := cmd.OutOrStdout()
	if gamesCategories {
		categories, err := client.GameCategories(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch categories for %s: %w", args[0], err)
		}
		for _, c := range categories {
			fmt.Fprintf(out, "%s\t%s\n", c.ID, c.Name)
		}
		return nil
	}
	games, err := client.SearchGames(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to search games: %w", err)
	}
	for _, g := range games {
		fmt.Fprintf(out, "%s\t%s\n", g.Shortname, g.Name)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded attempts",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyRun, "run", "", "run key (splits.io id or run name)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			cliLogger(cmd.ErrOrStderr()).Warn("failed to close history database", "err", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	opts := history.OptionsFor(out)
	if cfg.RunKey == "" {
		runs, err := st.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		return history.RenderRuns(out, runs, opts)
	}

	if !historyPlain && isTerminal(out) {
		program := tea.NewProgram(historyui.NewModel(st, cfg), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report, err := history.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return err
	}
	if err := history.RenderSummary(out, report, opts); err != nil {
		return err
	}
	return history.RenderSegmentTable(out, report, opts)
}

func historyConfig() (model.HistoryConfig, error) {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if historyWindow <= 0 {
		return model.HistoryConfig{}, fmt.Errorf("--window must be > 0")
	}
	return model.HistoryConfig{
		RunKey: strings.TrimSpace(historyRun),
		Since:  sinceTime,
		Last:   historyLast,
		Window: historyWindow,
	}, nil
}

func parseOptionalTiming(value string) (model.Timing, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return config.ParseTiming(value)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
