// Package splits reads and writes local splits files in TOML or YAML.
package splits

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/timeit/internal/model"
)

// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported splits file format")

type fileSegment struct {
	ID     string `toml:"id,omitempty" yaml:"id,omitempty"`
	Name   string `toml:"name" yaml:"name"`
	BestMS *int64 `toml:"best_ms,omitempty" yaml:"best_ms,omitempty"`
	PBMS   *int64 `toml:"pb_ms,omitempty" yaml:"pb_ms,omitempty"`
}

type file struct {
	ID       string        `toml:"id,omitempty" yaml:"id,omitempty"`
	Name     string        `toml:"name" yaml:"name"`
	Game     string        `toml:"game,omitempty" yaml:"game,omitempty"`
	Category string        `toml:"category,omitempty" yaml:"category,omitempty"`
	Timing   string        `toml:"timing,omitempty" yaml:"timing,omitempty"`
	Segments []fileSegment `toml:"segments" yaml:"segments"`
}

type format int

const (
	formatTOML format = iota + 1
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Load reads a splits file. The format follows the file extension.
func Load(path string) (model.RunSeed, error) {
	fmtKind, err := formatOf(path)
	if err != nil {
		return model.RunSeed{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunSeed{}, fmt.Errorf("failed to read splits: %w", err)
	}
	var f file
	switch fmtKind {
	case formatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return model.RunSeed{}, fmt.Errorf("failed to decode splits: %w", err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return model.RunSeed{}, fmt.Errorf("failed to decode splits: %w", err)
		}
	}
	return f.toSeed(path)
}

func (f file) toSeed(path string) (model.RunSeed, error) {
	seed := model.RunSeed{
		ID:       f.ID,
		Name:     f.Name,
		Game:     f.Game,
		Category: f.Category,
		Timing:   model.Timing(f.Timing),
		Segments: make([]model.SegmentSeed, 0, len(f.Segments)),
		Path:     path,
	}
	if abs, err := filepath.Abs(path); err == nil {
		seed.Path = abs
	}
	if seed.Name == "" {
		seed.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	switch seed.Timing {
	case "":
		seed.Timing = model.TimingReal
	case model.TimingReal, model.TimingGame:
	default:
		return model.RunSeed{}, fmt.Errorf("unknown timing %q", f.Timing)
	}
	for i, s := range f.Segments {
		if (s.BestMS != nil && *s.BestMS < 0) || (s.PBMS != nil && *s.PBMS < 0) {
			return model.RunSeed{}, fmt.Errorf("segment %d: negative time", i+1)
		}
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("Segment %d", i+1)
		}
		seed.Segments = append(seed.Segments, model.SegmentSeed{
			ID:           s.ID,
			Name:         name,
			Best:         model.Millis(s.BestMS),
			PersonalBest: model.Millis(s.PBMS),
		})
	}
	return seed, nil
}

func fromSeed(seed model.RunSeed) file {
	f := file{
		ID:       seed.ID,
		Name:     seed.Name,
		Game:     seed.Game,
		Category: seed.Category,
		Timing:   string(seed.Timing),
		Segments: make([]fileSegment, 0, len(seed.Segments)),
	}
	for _, s := range seed.Segments {
		f.Segments = append(f.Segments, fileSegment{
			ID:     s.ID,
			Name:   s.Name,
			BestMS: s.Best.MillisPtr(),
			PBMS:   s.PersonalBest.MillisPtr(),
		})
	}
	return f
}

// Save writes seed to path, replacing any existing file atomically.
func Save(path string, seed model.RunSeed) error {
	fmtKind, err := formatOf(path)
	if err != nil {
		return err
	}
	f := fromSeed(seed)
	var buf bytes.Buffer
	switch fmtKind {
	case formatTOML:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return fmt.Errorf("failed to encode splits: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("failed to encode splits: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode splits: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create splits dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "splits-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to create temp splits: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write splits: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close splits: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write splits: %w", err)
	}
	return nil
}

// Entry describes one splits file found by List.
type Entry struct {
	Path string
	Seed model.RunSeed
	Err  error
}

// List returns the splits files in dir sorted by file name. Files that fail
// to parse are returned with Err set.
func List(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read splits directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := formatOf(entry.Name()); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := make([]Entry, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		seed, err := Load(path)
		out = append(out, Entry{Path: path, Seed: seed, Err: err})
	}
	return out, nil
}
