package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tacsim/internal/sim"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: %v, %v", ok, err)
	}
	if got != want {
		t.Fatalf("Find = %q, want %q", got, want)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, ok, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	// A parent of the temp dir could hold a stray tacsim.toml; only check
	// the defaults when nothing was found.
	if !ok && cfg.Simulator.MaxSteps != sim.DefaultMaxSteps {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[simulator]
max_steps = 50
call_keyword = "invoke"

[report]
format = "json"
show_temporaries = true

[cache]
enabled = true
dir = "cache"

[batch]
jobs = 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulator.MaxSteps != 50 || cfg.Simulator.CallKeyword != "invoke" {
		t.Fatalf("simulator = %+v", cfg.Simulator)
	}
	if cfg.Simulator.TempPrefix != sim.DefaultTempPrefix {
		t.Fatalf("temp prefix default lost: %q", cfg.Simulator.TempPrefix)
	}
	if cfg.Report.Format != "json" || !cfg.Report.ShowTemporaries || cfg.Report.Head != 5 {
		t.Fatalf("report = %+v", cfg.Report)
	}
	if got := cfg.CacheDir(); got != filepath.Join(dir, "cache") {
		t.Fatalf("CacheDir = %q", got)
	}
	if cfg.Batch.Jobs != 3 || !slices.Equal(cfg.Batch.Extensions, []string{".tac", ".ir", ".txt"}) {
		t.Fatalf("batch = %+v", cfg.Batch)
	}

	opts := cfg.SimOptions()
	if opts.MaxSteps != 50 || opts.CallKeyword != "invoke" {
		t.Fatalf("SimOptions = %+v", opts)
	}
	if !cfg.ReportOptions().ShowTemporaries {
		t.Fatalf("ReportOptions dropped show_temporaries")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"[simulator]\nmax_steps = 0\n", "max_steps"},
		{"[report]\nformat = \"xml\"\n", "format"},
		{"[simulator]\ncall_keyword = \" \"\n", "call_keyword"},
		{"[batch]\njobs = -1\n", "jobs"},
		{"[simulator]\nmax_step = 10\n", "unknown keys: simulator.max_step"},
		{"[simulator\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		path := writeConfig(t, t.TempDir(), tc.body)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%q: err = %v, want mention of %q", tc.body, err, tc.want)
		}
	}
}
