package sim

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"tacsim/internal/diag"
	"tacsim/internal/eval"
	"tacsim/internal/tac"
	"tacsim/internal/trace"
)

func run(t *testing.T, text string) Result {
	t.Helper()
	return New(Options{}).RunText(context.Background(), text)
}

func hasCode(ds []diag.Diagnostic, code diag.Code) int {
	n := 0
	for _, d := range ds {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestStraightLineReturnsLiteral(t *testing.T) {
	cases := []struct {
		text string
		want eval.Value
	}{
		{"return 42", eval.Int(42)},
		{"a = 1\nb = a + 2\nreturn 7", eval.Int(7)},
		{"x = 1.5\nreturn 2.25", eval.Float(2.25)},
		{"return 0", eval.Int(0)},
	}
	for _, tc := range cases {
		res := run(t, tc.text)
		if res.Outcome != OutcomeValue || res.Resolution != ResolvedDirect {
			t.Fatalf("%q: outcome %s/%s, want direct value", tc.text, res.Outcome, res.Resolution)
		}
		if res.Value != tc.want {
			t.Fatalf("%q: value %v, want %v", tc.text, res.Value, tc.want)
		}
	}
}

func TestTemporarySum(t *testing.T) {
	res := run(t, "t0 = 3\nt1 = 4\nt2 = t0 + t1\nreturn t2")

	if got, want := res.Trace(true), []string{"t0 = 3", "t1 = 4", "t2 = 7"}; !slices.Equal(got, want) {
		t.Fatalf("trace = %v, want %v", got, want)
	}
	if got := res.Trace(false); len(got) != 0 {
		t.Fatalf("filtered trace = %v, want empty", got)
	}
	if !res.HasValue() || res.Value != eval.Int(7) {
		t.Fatalf("value = %v (%s), want 7", res.Value, res.Outcome)
	}
	if res.ReturnExpr != "t2" || res.ReturnLine != 4 {
		t.Fatalf("return = %q at %d", res.ReturnExpr, res.ReturnLine)
	}
	if res.Executed != 4 {
		t.Fatalf("executed = %d, want 4", res.Executed)
	}
}

const loopDump = `function main()
main:
    i = 0
    s = 0
    jump L1
L0:
    t0 = s + i
    s = t0
    t1 = i + 1
    i = t1
L1:
    t2 = i < 3
    if t2 != 0 goto L0
L2:
    return s
`

func TestLoop(t *testing.T) {
	res := run(t, loopDump)
	if res.Value != eval.Int(3) || res.Resolution != ResolvedDirect {
		t.Fatalf("value = %v (%s), want direct 3", res.Value, res.Resolution)
	}
	want := []string{"i = 0", "s = 0", "s = 0", "i = 1", "s = 1", "i = 2", "s = 3", "i = 3"}
	if got := res.Trace(false); !slices.Equal(got, want) {
		t.Fatalf("trace = %v, want %v", got, want)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
}

func branchProgram(cmpOp string) tac.Program {
	return tac.NewProgram([]tac.Instruction{
		tac.Assign("x", "0"),
		tac.CondJump("x", cmpOp, "0", "L1"),
		tac.Assign("y", "1"),
		tac.Jump("L2"),
		tac.Label("L1"),
		tac.Assign("y", "2"),
		tac.Label("L2"),
		tac.Return("y"),
	})
}

func TestCondJumpOnZero(t *testing.T) {
	s := New(Options{})
	ne := s.Run(context.Background(), branchProgram("!="))
	eq := s.Run(context.Background(), branchProgram("=="))

	if ne.Value != eval.Int(1) {
		t.Fatalf("!= on zero jumped: value %v", ne.Value)
	}
	if eq.Value != eval.Int(2) {
		t.Fatalf("== on zero did not jump: value %v", eq.Value)
	}
	if slices.Equal(ne.Trace(false), eq.Trace(false)) {
		t.Fatalf("branches produced the same trace: %v", ne.Trace(false))
	}
}

func TestCondJumpUnknownConditionIsZero(t *testing.T) {
	res := run(t, "if nope == 0 goto L1\ny = 1\nreturn y\nL1:\nreturn 9")
	if res.Value != eval.Int(9) {
		t.Fatalf("value = %v, want 9", res.Value)
	}
}

func TestCyclicJumpHitsStepLimit(t *testing.T) {
	done := make(chan Result, 1)
	go func() {
		done <- run(t, "L0:\nx = 1\njump L0\n")
	}()

	var res Result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("simulation of a cycle did not terminate")
	}
	if res.Outcome != OutcomeUnresolved || res.Reason != ReasonStepLimit {
		t.Fatalf("outcome %s (%s), want step limit", res.Outcome, res.Reason)
	}
	if res.Executed != DefaultMaxSteps {
		t.Fatalf("executed = %d, want %d", res.Executed, DefaultMaxSteps)
	}
	if hasCode(res.Diagnostics, diag.SimStepLimit) != 1 {
		t.Fatalf("missing step limit diagnostic: %v", res.Diagnostics)
	}
}

func TestMaxStepsOption(t *testing.T) {
	res := New(Options{MaxSteps: 10}).RunText(context.Background(), "L0:\njump L0")
	if res.Reason != ReasonStepLimit || res.Executed != 10 {
		t.Fatalf("reason %s after %d steps", res.Reason, res.Executed)
	}
}

func TestDereferenceIsArrayDependent(t *testing.T) {
	res := run(t, "arr = *base\nreturn arr")
	if res.Outcome != OutcomeArrayDependent {
		t.Fatalf("outcome = %s, want array-dependent", res.Outcome)
	}
	if res.HasValue() || res.Resolution != ResolvedNone {
		t.Fatalf("array-dependent result carries a value: %+v", res)
	}
	if len(res.Steps) != 0 {
		t.Fatalf("dereference produced steps: %v", res.Steps)
	}
}

func TestMultiplicationIsNotDereference(t *testing.T) {
	res := run(t, "a = 3\nb = a * 4\nreturn b")
	if res.Value != eval.Int(12) {
		t.Fatalf("value = %v, want 12", res.Value)
	}
}

func TestStoreThroughPointer(t *testing.T) {
	res := run(t, "p = alloc 4\n*p = 3\nreturn y")
	if res.Outcome != OutcomeArrayDependent {
		t.Fatalf("outcome = %s, want array-dependent", res.Outcome)
	}
}

func TestUnresolvedJumpFallsThrough(t *testing.T) {
	res := run(t, "x = 1\njump L9\nx = 2\nreturn x")
	if res.Value != eval.Int(2) {
		t.Fatalf("value = %v, want 2", res.Value)
	}
	if hasCode(res.Diagnostics, diag.SimUnresolvedLabel) != 1 {
		t.Fatalf("want one unresolved label diagnostic, got %v", res.Diagnostics)
	}
}

func TestUnresolvedJumpReportedOnceInLoop(t *testing.T) {
	res := New(Options{MaxSteps: 50}).RunText(context.Background(), "L0:\nif 1 != 0 goto L7\njump L0")
	if res.Reason != ReasonStepLimit {
		t.Fatalf("reason = %s", res.Reason)
	}
	if n := hasCode(res.Diagnostics, diag.SimUnresolvedLabel); n != 1 {
		t.Fatalf("unresolved label reported %d times", n)
	}
}

func TestUnresolvedReasons(t *testing.T) {
	cases := []struct {
		text string
		want Reason
	}{
		{"x = 1\nreturn", ReasonEmptyReturn},
		{"x = 1\ny = 2", ReasonNoReturn},
		{"", ReasonNoReturn},
		{"return y", ReasonNotComputable},
		{"x = 1 + 2 + 3\nreturn x", ReasonNotComputable},
	}
	for _, tc := range cases {
		res := run(t, tc.text)
		if res.Outcome != OutcomeUnresolved || res.Reason != tc.want {
			t.Fatalf("%q: %s (%s), want unresolved (%s)", tc.text, res.Outcome, res.Reason, tc.want)
		}
	}
}

func TestIndirectResolution(t *testing.T) {
	res := run(t, "a = 5\nb = a + c\nc = 2\nreturn b")
	if res.Resolution != ResolvedIndirect || res.Value != eval.Int(7) {
		t.Fatalf("got %v (%s), want indirect 7", res.Value, res.Resolution)
	}
	if res.Via != "b" {
		t.Fatalf("via = %q, want b", res.Via)
	}
	if hasCode(res.Diagnostics, diag.SimNotComputable) != 1 {
		t.Fatalf("want a not-computable note for b: %v", res.Diagnostics)
	}
}

func TestArraySumGuess(t *testing.T) {
	res := run(t, "t10 = 100\nt2 = 3\nt1 = 2\ns = a + b\nreturn s")
	if res.Resolution != ResolvedArraySumGuess || !res.Resolution.IsGuess() {
		t.Fatalf("resolution = %s, want array-sum guess", res.Resolution)
	}
	// t1 and t10 are the first and third temporaries by number.
	if res.Value != eval.Int(102) {
		t.Fatalf("value = %v, want 102", res.Value)
	}
	if res.Via != "s" {
		t.Fatalf("via = %q", res.Via)
	}
}

func TestArraySumGuessNeedsThreeTemporaries(t *testing.T) {
	res := run(t, "t0 = 1\nt1 = 2\ns = a + b\nreturn s")
	if res.Outcome != OutcomeUnresolved {
		t.Fatalf("outcome = %s, want unresolved", res.Outcome)
	}
}

func TestCallSumGuess(t *testing.T) {
	res := run(t, "param 4\nt0 = 2\nt1 = 5\nr = call f, 1\nreturn r")
	if res.Resolution != ResolvedCallSumGuess {
		t.Fatalf("resolution = %s, want call-sum guess", res.Resolution)
	}
	if res.Value != eval.Int(7) {
		t.Fatalf("value = %v, want 7", res.Value)
	}
	if hasCode(res.Diagnostics, diag.SimOpaqueCall) != 1 {
		t.Fatalf("missing opaque call note: %v", res.Diagnostics)
	}
}

func TestCallKeywordMatchesWholeWords(t *testing.T) {
	res := run(t, "recall = 2\nx = recall + 1\nreturn x")
	if res.Value != eval.Int(3) || res.Resolution != ResolvedDirect {
		t.Fatalf("got %v (%s)", res.Value, res.Resolution)
	}

	res = New(Options{CallKeyword: "invoke"}).RunText(context.Background(), "t0 = 1\nr = invoke g\nreturn r")
	if res.Resolution != ResolvedCallSumGuess {
		t.Fatalf("custom call keyword ignored: %s", res.Resolution)
	}
}

func TestArraySizeDeclarationsAreSkipped(t *testing.T) {
	res := run(t, "arr = alloc 10\narr = 10\nx = 3\nreturn x")
	if got := res.Trace(true); !slices.Equal(got, []string{"x = 3"}) {
		t.Fatalf("trace = %v", got)
	}

	res = run(t, "p = *base\nn = 5\nt0 = 5\nreturn t0")
	if got := res.Trace(true); !slices.Equal(got, []string{"t0 = 5"}) {
		t.Fatalf("trace after dereference = %v", got)
	}
	if res.Value != eval.Int(5) {
		t.Fatalf("value = %v", res.Value)
	}
	if hasCode(res.Diagnostics, diag.SimArraySizeDecl) != 1 {
		t.Fatalf("missing array size note: %v", res.Diagnostics)
	}
}

func TestCastsAndDivision(t *testing.T) {
	res := run(t, "a = 7\nb = a / 2\nc = (int)b\nreturn c")
	want := []string{"a = 7", "b = 3.5", "c = 3"}
	if got := res.Trace(false); !slices.Equal(got, want) {
		t.Fatalf("trace = %v, want %v", got, want)
	}
	if res.Value != eval.Int(3) {
		t.Fatalf("value = %v", res.Value)
	}
}

func TestIntegerOverflowLeavesResultUnresolved(t *testing.T) {
	res := run(t, "x = 9223372036854775807\ny = x + 1\nreturn y")
	if res.Outcome != OutcomeUnresolved || res.Reason != ReasonNotComputable {
		t.Fatalf("outcome = %v (%v), value %v", res.Outcome, res.Reason, res.Value)
	}
	if got := res.Trace(false); !slices.Equal(got, []string{"x = 9223372036854775807"}) {
		t.Fatalf("trace = %v", got)
	}
}

func TestRunsAreIndependent(t *testing.T) {
	s := New(Options{})
	first := s.RunText(context.Background(), "x = 5\nreturn x")
	second := s.RunText(context.Background(), "return x")
	if first.Value != eval.Int(5) {
		t.Fatalf("first run = %v", first.Value)
	}
	if second.Outcome != OutcomeUnresolved {
		t.Fatalf("second run saw state from the first: %+v", second)
	}
}

func TestConcurrentRuns(t *testing.T) {
	s := New(Options{})
	prog := tac.Classify(loopDump, s.Options().ClassifyOptions())

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.Run(context.Background(), prog)
		}()
	}
	wg.Wait()
	for i, res := range results {
		if res.Value != eval.Int(3) {
			t.Fatalf("run %d: value %v", i, res.Value)
		}
	}
}

func TestClassifierDiagnosticsComeFirst(t *testing.T) {
	res := run(t, "if x goto L1\njump L4\nreturn 1")
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	if res.Diagnostics[0].Code != diag.TACMalformedCondJump || res.Diagnostics[1].Code != diag.SimUnresolvedLabel {
		t.Fatalf("unexpected order: %v", res.Diagnostics)
	}
}

func TestRunEmitsTrace(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	res := New(Options{}).RunText(ctx, "t0 = 3\nt1 = 4\nt2 = t0 + t1\nreturn t2")

	var spans, points int
	var simulate trace.Event
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindSpanEnd && ev.Name == "simulate":
			simulate = ev
			spans++
		case ev.Kind == trace.KindSpanEnd && ev.Name == "classify":
			spans++
		case ev.Kind == trace.KindPoint && ev.Scope == trace.ScopeStep:
			points++
		}
	}
	if spans != 2 {
		t.Fatalf("got %d pass spans, want 2", spans)
	}
	if points != res.Executed {
		t.Fatalf("got %d step events, want %d", points, res.Executed)
	}
	if simulate.Detail != "value" || simulate.Extra["executed"] != "4" {
		t.Fatalf("simulate span end = %+v", simulate)
	}
}
