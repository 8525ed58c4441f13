package ui

import (
	"errors"
	"strings"
	"testing"

	"tacsim/internal/batch"
)

func newModel(files ...string) *progressModel {
	return NewProgressModel("simulating", files, nil).(*progressModel)
}

func TestApplyEventTracksStatus(t *testing.T) {
	m := newModel("a.tac", "b.tac")

	m.applyEvent(batch.Event{File: "a.tac", Stage: batch.StageSimulate, Status: batch.StatusWorking})
	if m.items[0].status != "simulating" {
		t.Fatalf("status = %q", m.items[0].status)
	}
	if got := m.percent(); got != 0.35 {
		t.Fatalf("percent = %v, want 0.35", got)
	}

	m.applyEvent(batch.Event{File: "a.tac", Stage: batch.StageSimulate, Status: batch.StatusDone, Outcome: "value"})
	m.applyEvent(batch.Event{File: "b.tac", Stage: batch.StageSimulate, Status: batch.StatusError, Err: errors.New("read b.tac: denied")})
	if m.finished() != 2 || m.percent() != 1 {
		t.Fatalf("finished %d, percent %v", m.finished(), m.percent())
	}
	if m.items[0].outcome != "value" || m.items[1].outcome != "read b.tac: denied" {
		t.Fatalf("outcomes = %q, %q", m.items[0].outcome, m.items[1].outcome)
	}

	// unknown files and batch-level events are ignored
	m.applyEvent(batch.Event{File: "zzz.tac", Status: batch.StatusDone})
	m.applyEvent(batch.Event{Status: batch.StatusDone})
	if m.finished() != 2 {
		t.Fatalf("finished = %d", m.finished())
	}
}

func TestViewListsFiles(t *testing.T) {
	m := newModel("a.tac", "b.tac")
	m.applyEvent(batch.Event{File: "a.tac", Stage: batch.StageSimulate, Status: batch.StatusCached, Outcome: "array-dependent"})

	view := m.View()
	for _, want := range []string{"simulating (1/2)", "a.tac", "array-dependent", "queued"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short.tac", 20, "short.tac"},
		{"very/long/path/to/dump.tac", 10, "very/lo..."},
		{"中间代码.tac", 9, "中间代..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
