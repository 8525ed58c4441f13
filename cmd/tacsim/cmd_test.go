package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tacsim/internal/cache"
	"tacsim/internal/config"
	"tacsim/internal/report"
	"tacsim/internal/sim"
	"tacsim/internal/tac"
)

func TestReplSession(t *testing.T) {
	s := newReplSession()
	steps := []struct {
		line string
		want string
	}{
		{"a = 7", "a = 7"},
		{"b = a / 2", "b = 3.5"},
		{"c = (int) b", "c = 3"},
		{"a + c", "10"},
		{"return c * 2", "6"},
	}
	for _, step := range steps {
		got, err := s.exec(step.line)
		if err != nil {
			t.Fatalf("exec(%q): %v", step.line, err)
		}
		if got != step.want {
			t.Fatalf("exec(%q) = %q, want %q", step.line, got, step.want)
		}
	}
	if _, err := s.exec("x <= 3"); err == nil {
		t.Fatalf("expected error for unbound variable")
	}

	vars, err := s.exec(":vars")
	if err != nil {
		t.Fatalf(":vars: %v", err)
	}
	if vars != "a = 7\nb = 3.5\nc = 3" {
		t.Fatalf(":vars = %q", vars)
	}
	if _, err := s.exec(":reset"); err != nil || len(s.env) != 0 {
		t.Fatalf(":reset left %d vars (err %v)", len(s.env), err)
	}
	if _, err := s.exec(":quit"); err != errReplQuit {
		t.Fatalf(":quit err = %v", err)
	}
	if _, err := s.exec(":nope"); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestWriteResultFormats(t *testing.T) {
	res := sim.Simulate("function main()\nx = 2\ny = x * 3\nreturn y\n")
	opts := report.Options{}

	cases := map[string]string{
		"text":   "result: 6",
		"inline": "x = 2; y = 6",
		"json":   `"value": "6"`,
		"yaml":   "value: \"6\"",
	}
	for format, want := range cases {
		var buf bytes.Buffer
		if err := writeResult(&buf, res, format, opts); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("%s output missing %q:\n%s", format, want, buf.String())
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
	if !shouldUseTUI(uiModeOn, 1) || shouldUseTUI(uiModeOff, 10) {
		t.Fatalf("explicit modes ignored")
	}
}

func TestCollectBatchFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tac", "b.ir", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("return 1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	extra := filepath.Join(dir, "notes.md")

	files, err := collectBatchFiles([]string{dir, extra}, []string{".tac", ".ir"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := []string{filepath.Join(dir, "a.tac"), filepath.Join(dir, "b.ir"), extra}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("files = %v, want %v", files, want)
	}

	if _, err := collectBatchFiles([]string{filepath.Join(dir, "missing")}, nil); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestClassifyPayload(t *testing.T) {
	prog := tac.Classify("function main()\nL1:\nx = 1\njump L1\nwhat is this\n", tac.Options{})

	p := buildClassifyPayload(prog, false)
	if len(p.Instructions) != 2 {
		t.Fatalf("instructions = %+v", p.Instructions)
	}
	if p.Instructions[0].Op != "assign" || p.Instructions[1].Text != "jump L1" {
		t.Fatalf("unexpected instructions %+v", p.Instructions)
	}
	if len(p.Labels) != 1 || p.Labels[0].Name != "L1" {
		t.Fatalf("labels = %+v", p.Labels)
	}
	if len(p.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", p.Diagnostics)
	}

	all := buildClassifyPayload(prog, true)
	if len(all.Instructions) != 4 {
		t.Fatalf("with skips: %d instructions", len(all.Instructions))
	}

	var buf bytes.Buffer
	renderClassifyPretty(&buf, p, false)
	if !strings.Contains(buf.String(), "L1 -> ") || !strings.Contains(buf.String(), "line skipped") {
		t.Fatalf("pretty output:\n%s", buf.String())
	}
}

func TestCleanCacheDropsEntries(t *testing.T) {
	dir := t.TempDir()
	disk, err := cache.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	text := "x = 1\nreturn x\n"
	key := cache.Key(text, sim.Options{})
	if err := cache.NewResults(disk, 1).Store(key, sim.Simulate(text)); err != nil {
		t.Fatalf("store: %v", err)
	}

	cfg := config.Default()
	cfg.Cache.Dir = dir
	var out bytes.Buffer
	if err := cleanCache(&out, cfg); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out.String(), dir) {
		t.Fatalf("output does not name the cache dir: %q", out.String())
	}

	fresh := cache.NewResults(disk, 1)
	if _, ok := fresh.Lookup(key); ok {
		t.Fatalf("entry survived clean")
	}
}

func TestPrintCacheStats(t *testing.T) {
	var out bytes.Buffer
	printCacheStats(&out, nil)
	if out.Len() != 0 {
		t.Fatalf("nil cache printed %q", out.String())
	}

	results := cache.NewResults(nil, 1)
	key := cache.Key("return 1", sim.Options{})
	results.Lookup(key)
	if err := results.Store(key, sim.Simulate("return 1")); err != nil {
		t.Fatalf("store: %v", err)
	}
	results.Lookup(key)

	printCacheStats(&out, results)
	if got := out.String(); got != "cache 1 hits, 1 misses\n" {
		t.Fatalf("stats = %q", got)
	}
}
