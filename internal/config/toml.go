// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/timeit/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer TimerConfig `toml:"timer"`
	Keys  KeysConfig  `toml:"keys"`
}

// TimerConfig maps timer-related settings.
type TimerConfig struct {
	Splits   *string `toml:"splits"`
	Run      *string `toml:"run"`
	Timing   *string `toml:"timing"`
	Tick     *string `toml:"tick"`
	LogLevel *string `toml:"log-level"`
	LogFile  *string `toml:"log-file"`
}

// KeysConfig maps key bindings. A nil list keeps the default binding.
type KeysConfig struct {
	Start []string `toml:"start"`
	Split []string `toml:"split"`
	Pause []string `toml:"pause"`
	Reset []string `toml:"reset"`
	Save  []string `toml:"save"`
	Skip  []string `toml:"skip"`
	Quit  []string `toml:"quit"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// DefaultKeyMap returns the built-in key bindings.
func DefaultKeyMap() model.KeyMap {
	return model.KeyMap{
		Start: []string{"enter"},
		Split: []string{" "},
		Pause: []string{"p"},
		Reset: []string{"esc"},
		Save:  []string{"s"},
		Skip:  []string{"k"},
		Quit:  []string{"q", "ctrl+c"},
	}
}

// Apply overlays the configured bindings on km.
func (k KeysConfig) Apply(km model.KeyMap) model.KeyMap {
	overlay := func(dst *[]string, src []string) {
		if src != nil {
			*dst = append([]string(nil), src...)
		}
	}
	overlay(&km.Start, k.Start)
	overlay(&km.Split, k.Split)
	overlay(&km.Pause, k.Pause)
	overlay(&km.Reset, k.Reset)
	overlay(&km.Save, k.Save)
	overlay(&km.Skip, k.Skip)
	overlay(&km.Quit, k.Quit)
	return km
}

// ParseTick parses a tick interval such as "100ms".
func ParseTick(value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid tick %q: %w", value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick must be > 0")
	}
	return d, nil
}

// ParseTiming validates a timing name.
func ParseTiming(value string) (model.Timing, error) {
	switch t := model.Timing(strings.ToLower(strings.TrimSpace(value))); t {
	case model.TimingReal, model.TimingGame:
		return t, nil
	case "":
		return model.TimingReal, nil
	default:
		return "", fmt.Errorf("unknown timing %q (want real or game)", value)
	}
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
