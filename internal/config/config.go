// Package config loads tacsim.toml.
//
// The file is optional. When present it is found by walking up from the
// working directory, and every key it leaves out keeps its default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"tacsim/internal/diag"
	"tacsim/internal/report"
	"tacsim/internal/sim"
	"tacsim/internal/tac"
)

// FileName is the config file looked up by Find.
const FileName = "tacsim.toml"

// Output formats accepted by [report].format.
var Formats = []string{"text", "json", "yaml", "inline"}

type Config struct {
	Path string `toml:"-"` // empty for defaults
	Root string `toml:"-"`

	Simulator SimulatorConfig `toml:"simulator"`
	Report    ReportConfig    `toml:"report"`
	Cache     CacheConfig     `toml:"cache"`
	Batch     BatchConfig     `toml:"batch"`
}

type SimulatorConfig struct {
	MaxSteps       int    `toml:"max_steps"`
	LabelPrefix    string `toml:"label_prefix"`
	TempPrefix     string `toml:"temp_prefix"`
	CallKeyword    string `toml:"call_keyword"`
	SmallIntLimit  int64  `toml:"small_int_limit"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type ReportConfig struct {
	Format          string `toml:"format"`
	ElideAfter      int    `toml:"elide_after"`
	Head            int    `toml:"head"`
	Tail            int    `toml:"tail"`
	ShowTemporaries bool   `toml:"show_temporaries"`
	ShowDiagnostics bool   `toml:"show_diagnostics"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // relative to the config file
}

type BatchConfig struct {
	Jobs       int      `toml:"jobs"` // 0 means GOMAXPROCS
	Extensions []string `toml:"extensions"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Simulator: SimulatorConfig{
			MaxSteps:       sim.DefaultMaxSteps,
			LabelPrefix:    tac.DefaultLabelPrefix,
			TempPrefix:     sim.DefaultTempPrefix,
			CallKeyword:    sim.DefaultCallKeyword,
			SmallIntLimit:  sim.DefaultSmallIntLimit,
			MaxDiagnostics: diag.DefaultMax,
		},
		Report: ReportConfig{
			Format:     "text",
			ElideAfter: report.DefaultElideAfter,
			Head:       report.DefaultHead,
			Tail:       report.DefaultTail,
		},
		Cache: CacheConfig{Dir: ".tacsim-cache"},
		Batch: BatchConfig{Extensions: []string{".tac", ".ir", ".txt"}},
	}
}

// Find walks up from startDir looking for tacsim.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest tacsim.toml, falling back to Default.
func Discover(startDir string) (Config, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	cfg, err := Load(path)
	if err != nil {
		return Default(), true, err
	}
	return cfg, true, nil
}

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Simulator.MaxSteps <= 0:
		return fmt.Errorf("[simulator].max_steps must be positive, got %d", c.Simulator.MaxSteps)
	case c.Simulator.SmallIntLimit < 0:
		return fmt.Errorf("[simulator].small_int_limit must not be negative")
	case strings.TrimSpace(c.Simulator.LabelPrefix) == "":
		return fmt.Errorf("[simulator].label_prefix must not be empty")
	case strings.TrimSpace(c.Simulator.TempPrefix) == "":
		return fmt.Errorf("[simulator].temp_prefix must not be empty")
	case strings.TrimSpace(c.Simulator.CallKeyword) == "":
		return fmt.Errorf("[simulator].call_keyword must not be empty")
	case !slices.Contains(Formats, c.Report.Format):
		return fmt.Errorf("[report].format must be one of %s, got %q", strings.Join(Formats, "|"), c.Report.Format)
	case c.Report.Head < 0 || c.Report.Tail < 0 || c.Report.ElideAfter < 0:
		return fmt.Errorf("[report] elision sizes must not be negative")
	case c.Batch.Jobs < 0:
		return fmt.Errorf("[batch].jobs must not be negative")
	}
	return nil
}

// SimOptions converts the [simulator] table.
func (c Config) SimOptions() sim.Options {
	s := c.Simulator
	return sim.Options{
		MaxSteps:       s.MaxSteps,
		LabelPrefix:    s.LabelPrefix,
		TempPrefix:     s.TempPrefix,
		CallKeyword:    s.CallKeyword,
		SmallIntLimit:  s.SmallIntLimit,
		MaxDiagnostics: s.MaxDiagnostics,
	}
}

// ReportOptions converts the [report] table. Color is left to the caller.
func (c Config) ReportOptions() report.Options {
	r := c.Report
	return report.Options{
		ElideAfter:      r.ElideAfter,
		Head:            r.Head,
		Tail:            r.Tail,
		ShowTemporaries: r.ShowTemporaries,
		ShowDiagnostics: r.ShowDiagnostics,
	}
}

// CacheDir resolves [cache].dir against the config file's directory, or the
// working directory for defaults.
func (c Config) CacheDir() string {
	dir := c.Cache.Dir
	if dir == "" || filepath.IsAbs(dir) || c.Root == "" {
		return dir
	}
	return filepath.Join(c.Root, filepath.FromSlash(dir))
}
