package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"tacsim/internal/eval"
	"tacsim/internal/sim"
)

func longResult(n int) sim.Result {
	res := sim.Result{Outcome: sim.OutcomeValue, Value: eval.Int(int64(n)), Resolution: sim.ResolvedDirect}
	for i := range n {
		res.Steps = append(res.Steps, sim.Step{Var: "x", Value: eval.Int(int64(i))})
	}
	return res
}

func TestRenderShortTrace(t *testing.T) {
	res := sim.Simulate("a = 1\nt0 = a + 1\nb = t0\nreturn b")
	got := String(res, Options{})
	want := "steps:\n  a = 1\n  b = 2\nresult: 2\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	got = String(res, Options{ShowTemporaries: true})
	if !strings.Contains(got, "  t0 = 2\n") {
		t.Fatalf("temporaries not shown:\n%s", got)
	}
}

func TestRenderElidesLongTrace(t *testing.T) {
	out := String(longResult(30), Options{})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	// steps:, 5 head, marker, 5 tail, result
	if len(lines) != 13 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[1] != "  x = 0" || lines[5] != "  x = 4" {
		t.Fatalf("unexpected head:\n%s", out)
	}
	if lines[6] != "  ... 20 more steps (~15 loop iterations)" {
		t.Fatalf("marker = %q", lines[6])
	}
	if lines[7] != "  x = 25" || lines[11] != "  x = 29" {
		t.Fatalf("unexpected tail:\n%s", out)
	}
}

func TestRenderNegativeHeadOrTailDropsThatSide(t *testing.T) {
	marker := "  ... 25 more steps (~15 loop iterations)"
	cases := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "no tail",
			opts: Options{Tail: -1},
			want: []string{"steps:", "  x = 0", "  x = 1", "  x = 2", "  x = 3", "  x = 4", marker, "result: 30"},
		},
		{
			name: "no head",
			opts: Options{Head: -1},
			want: []string{"steps:", marker, "  x = 25", "  x = 26", "  x = 27", "  x = 28", "  x = 29", "result: 30"},
		},
		{
			name: "neither",
			opts: Options{Head: -1, Tail: -1},
			want: []string{"steps:", "  ... 30 more steps (~15 loop iterations)", "result: 30"},
		},
	}
	for _, tc := range cases {
		out := String(longResult(30), tc.opts)
		got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		if strings.Join(got, "\n") != strings.Join(tc.want, "\n") {
			t.Fatalf("%s: got:\n%s", tc.name, out)
		}
	}

	kept, hidden := Elide(make([]string, 30), Options{Tail: -1})
	if len(kept) != 5 || hidden != 25 {
		t.Fatalf("Elide kept %d hidden %d", len(kept), hidden)
	}
}

func TestElideThreshold(t *testing.T) {
	cases := []struct {
		n, ElideAfter int
		wantKept      int
		wantHidden    int
	}{
		{20, 0, 20, 0},
		{21, 0, 10, 11},
		{8, 6, 8, 0}, // head+tail already cover everything
		{12, 6, 10, 2},
	}
	for _, tc := range cases {
		trace := make([]string, tc.n)
		for i := range trace {
			trace[i] = fmt.Sprint(i)
		}
		kept, hidden := Elide(trace, Options{ElideAfter: tc.ElideAfter})
		if len(kept) != tc.wantKept || hidden != tc.wantHidden {
			t.Fatalf("n=%d: kept %d hidden %d, want %d/%d", tc.n, len(kept), hidden, tc.wantKept, tc.wantHidden)
		}
	}
}

func TestOutcomeLines(t *testing.T) {
	cases := []struct {
		name string
		res  sim.Result
		want string
	}{
		{"direct", sim.Result{Outcome: sim.OutcomeValue, Value: eval.Float(2.5), Resolution: sim.ResolvedDirect}, "result: 2.5\n"},
		{"indirect", sim.Result{Outcome: sim.OutcomeValue, Value: eval.Int(7), Resolution: sim.ResolvedIndirect, Via: "b"}, "result: 7 (via b)\n"},
		{"guess", sim.Result{Outcome: sim.OutcomeValue, Value: eval.Int(4), Resolution: sim.ResolvedArraySumGuess}, "result: 4 (estimated: array-sum guess)\n"},
		{"call", sim.Result{Outcome: sim.OutcomeValue, Value: eval.Int(9), Resolution: sim.ResolvedCallSumGuess}, "result: 9 (estimated: call-sum guess)\n"},
		{"array", sim.Result{Outcome: sim.OutcomeArrayDependent}, "result: " + MsgArrayDependent + "\n"},
		{"unresolved", sim.Result{Reason: sim.ReasonStepLimit}, "result: " + MsgUnresolved + " (step limit exceeded)\n"},
		{"bare", sim.Result{}, "result: " + MsgUnresolved + "\n"},
	}
	for _, tc := range cases {
		if got := String(tc.res, Options{}); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExplicitZeroNote(t *testing.T) {
	out := String(sim.Simulate("a = 1\nreturn 0"), Options{})
	if !strings.Contains(out, "note: "+MsgExplicitZero) {
		t.Fatalf("missing note:\n%s", out)
	}
	out = String(sim.Simulate("return 0"), Options{})
	if strings.Contains(out, "note:") {
		t.Fatalf("note without steps:\n%s", out)
	}
}

func TestRenderDiagnostics(t *testing.T) {
	res := sim.Simulate("jump L4\nreturn 1")
	out := String(res, Options{ShowDiagnostics: true})
	if !strings.Contains(out, "diagnostics:\n  warning SIM2001 line 1: ") {
		t.Fatalf("diagnostics missing:\n%s", out)
	}
	if strings.Contains(String(res, Options{}), "diagnostics:") {
		t.Fatalf("diagnostics shown without the option")
	}
}

func TestInline(t *testing.T) {
	res := sim.Simulate("t0 = 3\nt1 = 4\nt2 = t0 + t1\nx = t2\nreturn x")
	if got := Inline(res, false); got != "x = 7" {
		t.Fatalf("inline = %q", got)
	}
	if got := Inline(res, true); got != "t0 = 3; t1 = 4; t2 = 7; x = 7" {
		t.Fatalf("inline with temporaries = %q", got)
	}
}

func TestJSONDocument(t *testing.T) {
	res := sim.Simulate("t0 = 1\nt1 = 2\nt2 = 3\ns = a + b\nreturn s")
	data, err := JSON(res, false)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, data)
	}
	if doc.Outcome != "value" || doc.Value != "4" || !doc.Estimated || doc.Via != "s" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.Trace) != 0 || len(doc.Steps) != 3 {
		t.Fatalf("trace %v, steps %v", doc.Trace, doc.Steps)
	}
}

func TestYAMLDocument(t *testing.T) {
	data, err := YAML(sim.Simulate("arr = *base\nreturn arr"), false)
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	out := string(data)
	for _, want := range []string{"outcome: array-dependent\n", "return_expr: arr\n", "executed: 2\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "value:") {
		t.Fatalf("array-dependent result carries a value:\n%s", out)
	}
}
