// Package main provides the CLI entrypoint for timeit.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/timeit/internal/clock"
	"github.com/verte-zerg/timeit/internal/config"
	"github.com/verte-zerg/timeit/internal/logging"
	"github.com/verte-zerg/timeit/internal/model"
	"github.com/verte-zerg/timeit/internal/splits"
	"github.com/verte-zerg/timeit/internal/splitsio"
	"github.com/verte-zerg/timeit/internal/store"
	"github.com/verte-zerg/timeit/internal/tui"
)

const (
	defaultTiming  = ""
	defaultTick    = clock.DefaultInterval
	fetchTimeout   = 30 * time.Second
	splitsFileMode = ".toml"
)

var (
	timerSplits  string
	timerRun     string
	timerTiming  string
	timerTick    time.Duration
	timerLogFile string
	logLevel     string

	// splitsioBaseURL overrides the API endpoint; empty uses splits.io.
	splitsioBaseURL string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "timeit",
		Short:         "Terminal speedrun split timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&timerSplits, "splits", "", "splits file (.toml, .yaml)")
	rootCmd.Flags().StringVar(&timerRun, "run", "", "splits.io run id to time against")
	rootCmd.Flags().StringVar(&timerTiming, "timing", defaultTiming, "timing for splits.io runs: real or game (default: run's own)")
	rootCmd.Flags().DurationVar(&timerTick, "tick", defaultTick, "display refresh interval")
	rootCmd.Flags().StringVar(&timerLogFile, "log-file", "", "log file while the timer runs")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newPBsCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runTimerCmd(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := resolveTimerConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close log file: %w", cerr)
		}
	}()
	logger, err := logging.New(logFile, cfg.LogLevel)
	if err != nil {
		return err
	}

	seed, err := loadSeed(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logger.Info("loaded run", "key", seed.Key(), "name", seed.Name, "segments", len(seed.Segments))

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	m, err := tui.NewModel(seed, tui.Options{
		Keys:     cfg.Keys,
		Tick:     cfg.Tick,
		Recorder: st,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveTimerConfig merges the config file under the command line flags and
// validates the result.
func resolveTimerConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	// The run source is chosen as a whole: a flag for either one replaces
	// both config values.
	if !cmd.Flags().Changed("splits") && !cmd.Flags().Changed("run") {
		applyStringConfig(cmd, "splits", &timerSplits, fileCfg.Timer.Splits)
		applyStringConfig(cmd, "run", &timerRun, fileCfg.Timer.Run)
	}
	applyStringConfig(cmd, "timing", &timerTiming, fileCfg.Timer.Timing)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Timer.LogLevel)
	applyStringConfig(cmd, "log-file", &timerLogFile, fileCfg.Timer.LogFile)
	if err := applyDurationConfig(cmd, "tick", &timerTick, fileCfg.Timer.Tick); err != nil {
		return model.Config{}, err
	}

	cfg := model.Config{
		SplitsPath: config.ExpandHome(timerSplits),
		RunID:      strings.TrimSpace(timerRun),
		Timing:     model.Timing(strings.ToLower(strings.TrimSpace(timerTiming))),
		Tick:       timerTick,
		LogLevel:   logLevel,
		LogFile:    config.ExpandHome(timerLogFile),
		Keys:       fileCfg.Keys.Apply(config.DefaultKeyMap()),
	}
	if cfg.LogFile == "" {
		cfg.LogFile = config.DefaultLogPath()
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func loadSeed(ctx context.Context, cfg model.Config) (model.RunSeed, error) {
	if cfg.RunID != "" {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		run, err := splitsio.NewClient(splitsioBaseURL).GetRun(ctx, cfg.RunID, false)
		if err != nil {
			return model.RunSeed{}, fmt.Errorf("failed to fetch run %s: %w", cfg.RunID, err)
		}
		return run.Seed(cfg.Timing), nil
	}
	seed, err := splits.Load(cfg.SplitsPath)
	if err != nil {
		return model.RunSeed{}, err
	}
	return seed, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := config.ParseTick(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# timeit configuration
# Uncomment a value to enable it. CLI flags override config values.

[timer]
# splits = "%s"   # Splits file to time against
# run = ""                 # splits.io run id (instead of splits)
# timing = "real"          # real or game, for splits.io runs
# tick = %q             # Display refresh interval
# log-level = %q        # debug, info, warn, error
# log-file = %q

[keys]
# start = ["enter"]
# split = ["space"]
# pause = ["p"]
# reset = ["esc"]
# save = ["s"]
# skip = ["k"]
# quit = ["q", "ctrl+c"]
`,
		filepath.Join(config.DefaultSplitsDir(), "run"+splitsFileMode),
		defaultTick.String(),
		logging.DefaultLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.SplitsPath == "" && cfg.RunID == "" {
		return fmt.Errorf("no run to time: pass --splits <file> or --run <splits.io id> (see: timeit list)")
	}
	if cfg.SplitsPath != "" && cfg.RunID != "" {
		return fmt.Errorf("--splits and --run are mutually exclusive")
	}
	if cfg.Tick <= 0 {
		return fmt.Errorf("--tick must be > 0")
	}
	switch cfg.Timing {
	case "", model.TimingReal, model.TimingGame:
	default:
		return fmt.Errorf("--timing must be real or game")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	for name, keys := range map[string][]string{
		"start": cfg.Keys.Start,
		"split": cfg.Keys.Split,
		"quit":  cfg.Keys.Quit,
	} {
		if len(keys) == 0 {
			return fmt.Errorf("keys.%s must not be empty", name)
		}
	}
	return nil
}

// cliLogger logs subcommand progress to stderr.
func cliLogger(w io.Writer) *log.Logger {
	logger, err := logging.New(w, logLevel)
	if err != nil {
		logger, _ = logging.New(w, logging.DefaultLevel)
		logger.Warn("invalid log level, using default", "level", logLevel)
	}
	return logger
}
