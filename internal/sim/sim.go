// Package sim executes a classified TAC program over a symbol table and
// reports the value the program returns.
//
// A Simulator is configuration only. Every Run builds a fresh runContext, so
// one Simulator may serve any number of concurrent runs.
package sim

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"tacsim/internal/diag"
	"tacsim/internal/eval"
	"tacsim/internal/tac"
	"tacsim/internal/trace"
)

type Simulator struct {
	opts Options
}

func New(opts Options) *Simulator {
	return &Simulator{opts: opts.withDefaults()}
}

// Options returns the effective options, defaults applied.
func (s *Simulator) Options() Options { return s.opts }

// Simulate classifies and runs text with default options.
func Simulate(text string) Result {
	return New(Options{}).RunText(context.Background(), text)
}

// RunText classifies text and runs the resulting program. Classifier
// diagnostics come first in Result.Diagnostics.
func (s *Simulator) RunText(ctx context.Context, text string) Result {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "classify", trace.CurrentSpan(ctx))
	prog := tac.Classify(text, s.opts.ClassifyOptions())
	span.WithExtra("instructions", strconv.Itoa(prog.Len())).
		WithExtra("labels", strconv.Itoa(len(prog.Labels))).
		End("")

	res := s.Run(ctx, prog)
	if len(prog.Diagnostics) > 0 {
		res.Diagnostics = append(slices.Clone(prog.Diagnostics), res.Diagnostics...)
	}
	return res
}

// Run executes prog from its first instruction until a return, the end of
// the stream, or the step cap.
func (s *Simulator) Run(ctx context.Context, prog tac.Program) Result {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "simulate", trace.CurrentSpan(ctx))

	c := newRunContext(prog, s.opts, tracer, span.ID())
	res := c.run()

	span.WithExtra("executed", strconv.Itoa(res.Executed)).
		WithExtra("steps", strconv.Itoa(len(res.Steps))).
		End(res.Outcome.String())
	return res
}

type runContext struct {
	opts Options
	prog tac.Program

	env       eval.Env
	assignLog map[string]string
	arrays    map[string]struct{}

	arrayObserved bool
	callObserved  bool

	pc       int
	executed int
	steps    []Step

	bag *diag.Bag
	rep diag.Reporter

	tracer     trace.Tracer
	parent     uint64
	traceSteps bool
}

func newRunContext(prog tac.Program, opts Options, tracer trace.Tracer, parent uint64) *runContext {
	bag := diag.NewBag(opts.MaxDiagnostics)
	return &runContext{
		opts:       opts,
		prog:       prog,
		env:        make(eval.Env),
		assignLog:  make(map[string]string),
		arrays:     make(map[string]struct{}),
		bag:        bag,
		rep:        diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		tracer:     tracer,
		parent:     parent,
		traceSteps: tracer.Enabled() && tracer.Level().ShouldEmit(trace.ScopeStep),
	}
}

func (c *runContext) run() Result {
	instrs := c.prog.Instructions
	for {
		if c.pc >= len(instrs) {
			return c.finish(Result{Reason: ReasonNoReturn})
		}
		if c.executed >= c.opts.MaxSteps {
			c.rep.Report(diag.SimStepLimit, diag.SevWarning, instrs[c.pc].Line,
				fmt.Sprintf("stopped after %d steps without reaching a return", c.opts.MaxSteps))
			return c.finish(Result{Reason: ReasonStepLimit})
		}

		in := instrs[c.pc]
		c.executed++
		c.traceStep(in)

		switch in.Op {
		case tac.OpJump:
			c.jump(in)
		case tac.OpCondJump:
			c.condJump(in)
		case tac.OpAssign:
			c.assign(in)
			c.pc++
		case tac.OpReturn:
			return c.finish(c.ret(in))
		default:
			c.pc++
		}
	}
}

func (c *runContext) traceStep(in tac.Instruction) {
	if !c.traceSteps {
		return
	}
	trace.Point(c.tracer, trace.ScopeStep, in.Op.String(), in.String(), c.parent, map[string]string{
		"pc":   strconv.Itoa(c.pc),
		"line": strconv.Itoa(in.Line),
	})
}

// resolve looks a label up; a miss is reported once per label and line.
func (c *runContext) resolve(label string, line int) (int, bool) {
	idx, ok := c.prog.Labels.Resolve(label)
	if ok && idx >= 0 && idx <= len(c.prog.Instructions) {
		return idx, true
	}
	c.rep.Report(diag.SimUnresolvedLabel, diag.SevWarning, line, "jump to unknown label "+label+", falling through")
	return 0, false
}

func (c *runContext) jump(in tac.Instruction) {
	if idx, ok := c.resolve(in.Target, in.Line); ok {
		c.pc = idx
		return
	}
	c.pc++
}

func (c *runContext) condJump(in tac.Instruction) {
	v, ok := eval.Evaluate(in.Cond, c.env)
	if !ok {
		v = eval.Int(0)
	}
	k := parseConst(in.Const)

	var taken bool
	switch in.CmpOp {
	case "!=":
		taken = !v.Equal(k)
	case "==":
		taken = v.Equal(k)
	}
	if taken {
		if idx, ok := c.resolve(in.Target, in.Line); ok {
			c.pc = idx
			return
		}
	}
	c.pc++
}

// parseConst reads the comparison literal; anything unreadable compares as 0.
func parseConst(s string) eval.Value {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = strings.TrimSpace(s[1:])
	}
	v, ok := eval.ParseLiteral(s)
	if !ok {
		return eval.Int(0)
	}
	if neg {
		n, ok := v.Neg()
		if !ok {
			return eval.Int(0)
		}
		return n
	}
	return v
}

func (c *runContext) assign(in tac.Instruction) {
	name, expr := in.Var, in.Expr
	c.assignLog[name] = expr

	switch {
	case c.hasCallMarker(expr):
		c.callObserved = true
		c.rep.Report(diag.SimOpaqueCall, diag.SevInfo, in.Line, name+" holds a call result and stays unknown")
		return
	case strings.HasPrefix(name, "*"):
		c.arrays[strings.TrimSpace(name[1:])] = struct{}{}
		c.arrayObserved = true
		c.rep.Report(diag.SimArrayOperation, diag.SevInfo, in.Line, "store through "+name+" is not modeled")
		return
	case isDereference(expr):
		c.arrays[name] = struct{}{}
		c.arrayObserved = true
		c.rep.Report(diag.SimArrayOperation, diag.SevInfo, in.Line, name+" loads through a pointer and stays unknown")
		return
	case strings.HasPrefix(expr, "alloc "):
		c.arrays[name] = struct{}{}
		return
	}

	if c.isArraySizeDecl(name, expr) {
		c.rep.Report(diag.SimArraySizeDecl, diag.SevInfo, in.Line, name+" = "+expr+" looks like an array size, skipped")
		return
	}

	v, ok := eval.Evaluate(expr, c.env)
	if !ok {
		c.rep.Report(diag.SimNotComputable, diag.SevInfo, in.Line, "cannot evaluate "+expr)
		return
	}
	c.env[name] = v
	c.steps = append(c.steps, Step{
		Var:       name,
		Value:     v,
		Temporary: c.isTemporary(name),
		Line:      in.Line,
	})
}

// ret resolves the value of a return, trying the strategies from most to
// least trustworthy.
func (c *runContext) ret(in tac.Instruction) Result {
	res := Result{ReturnExpr: in.Expr, ReturnLine: in.Line}
	expr := in.Expr
	if expr == "" {
		res.Reason = ReasonEmptyReturn
		return res
	}

	if v, ok := eval.Evaluate(expr, c.env); ok {
		return withValue(res, v, ResolvedDirect)
	}
	if c.arrayObserved {
		res.Outcome = OutcomeArrayDependent
		return res
	}

	if rhs, logged := c.assignLog[expr]; logged {
		if v, ok := eval.Evaluate(rhs, c.env); ok {
			res.Via = expr
			return withValue(res, v, ResolvedIndirect)
		}
		if v, ok := c.arraySumGuess(rhs); ok {
			res.Via = expr
			return withValue(res, v, ResolvedArraySumGuess)
		}
	}
	if c.callObserved {
		if v, ok := c.callSumGuess(); ok {
			return withValue(res, v, ResolvedCallSumGuess)
		}
	}

	res.Reason = ReasonNotComputable
	return res
}

func withValue(res Result, v eval.Value, how Resolution) Result {
	res.Outcome = OutcomeValue
	res.Value = v
	res.Resolution = how
	return res
}

func (c *runContext) finish(res Result) Result {
	res.Steps = c.steps
	res.Executed = c.executed
	c.bag.Sort()
	res.Diagnostics = c.bag.Items()
	return res
}
