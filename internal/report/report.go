// Package report renders a simulation result for people. It never computes
// anything: every number it prints comes from sim.Result.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tacsim/internal/sim"
)

const (
	DefaultElideAfter = 20
	DefaultHead       = 5
	DefaultTail       = 5
)

// Fixed outcome messages.
const (
	MsgArrayDependent = "depends on array or pointer contents that are not simulated"
	MsgUnresolved     = "could not determine the return value"
	MsgExplicitZero   = "return 0 is explicit; the steps above were still computed"
)

// Options controls rendering. Zero values take the defaults above.
type Options struct {
	ElideAfter      int  // elide the trace when it is longer than this
	Head            int  // steps kept before the elision marker
	Tail            int  // steps kept after it
	ShowTemporaries bool // include compiler temporaries in the trace
	ShowDiagnostics bool
	Color           bool
}

func (o Options) withDefaults() Options {
	if o.ElideAfter <= 0 {
		o.ElideAfter = DefaultElideAfter
	}
	if o.Head < 0 {
		o.Head = 0
	} else if o.Head == 0 {
		o.Head = DefaultHead
	}
	if o.Tail < 0 {
		o.Tail = 0
	} else if o.Tail == 0 {
		o.Tail = DefaultTail
	}
	return o
}

type palette struct {
	step, marker, value, guess, warn, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		step:   color.New(color.FgCyan),
		marker: color.New(color.FgHiBlack),
		value:  color.New(color.FgGreen, color.Bold),
		guess:  color.New(color.FgYellow, color.Bold),
		warn:   color.New(color.FgRed),
		dim:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.step, p.marker, p.value, p.guess, p.warn, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Render writes the trace followed by the final outcome.
func Render(w io.Writer, r sim.Result, opts Options) error {
	opts = opts.withDefaults()
	p := newPalette(opts.Color)
	bw := bufio.NewWriter(w)

	lines, hidden := elide(r.Trace(opts.ShowTemporaries), opts)
	if len(lines) > 0 || hidden > 0 {
		fmt.Fprintln(bw, "steps:")
		marker := "  " + p.marker.Sprint(ElisionMarker(hidden, len(lines)+hidden))
		for i, line := range lines {
			if hidden > 0 && i == opts.Head {
				fmt.Fprintln(bw, marker)
			}
			fmt.Fprintln(bw, "  "+p.step.Sprint(line))
		}
		// no tail lines to precede
		if hidden > 0 && opts.Head >= len(lines) {
			fmt.Fprintln(bw, marker)
		}
	}

	fmt.Fprintln(bw, "result: "+outcomeText(r, p))
	if explicitZero(r) {
		fmt.Fprintln(bw, p.dim.Sprint("note: "+MsgExplicitZero))
	}

	if opts.ShowDiagnostics && len(r.Diagnostics) > 0 {
		fmt.Fprintln(bw, "diagnostics:")
		for _, d := range r.Diagnostics {
			fmt.Fprintln(bw, "  "+p.dim.Sprint(d.String()))
		}
	}
	return bw.Flush()
}

// String is Render into a string.
func String(r sim.Result, opts Options) string {
	var sb strings.Builder
	_ = Render(&sb, r, opts)
	return sb.String()
}

// Inline joins the visible steps as "a = 1; b = 2" with no elision.
func Inline(r sim.Result, showTemporaries bool) string {
	return strings.Join(r.Trace(showTemporaries), "; ")
}

// Elide keeps the head and tail of a long trace. It returns the kept lines
// and how many were dropped between them.
func Elide(trace []string, opts Options) ([]string, int) {
	return elide(trace, opts.withDefaults())
}

// elide expects opts already passed through withDefaults.
func elide(trace []string, opts Options) ([]string, int) {
	n := len(trace)
	if n <= opts.ElideAfter || opts.Head+opts.Tail >= n {
		return trace, 0
	}
	kept := make([]string, 0, opts.Head+opts.Tail)
	kept = append(kept, trace[:opts.Head]...)
	kept = append(kept, trace[n-opts.Tail:]...)
	return kept, n - opts.Head - opts.Tail
}

// ElisionMarker describes hidden steps. A loop body usually assigns two
// visible variables per iteration, so total/2 approximates the iteration count.
func ElisionMarker(hidden, total int) string {
	return fmt.Sprintf("... %d more steps (~%d loop iterations)", hidden, total/2)
}

func outcomeText(r sim.Result, p palette) string {
	switch r.Outcome {
	case sim.OutcomeValue:
		v := r.Value.String()
		switch {
		case r.Resolution.IsGuess():
			return p.guess.Sprint(v) + " (estimated: " + r.Resolution.String() + ")"
		case r.Resolution == sim.ResolvedIndirect && r.Via != "":
			return p.value.Sprint(v) + " (via " + r.Via + ")"
		}
		return p.value.Sprint(v)
	case sim.OutcomeArrayDependent:
		return p.warn.Sprint(MsgArrayDependent)
	}
	msg := MsgUnresolved
	if r.Reason != sim.ReasonNone {
		msg += " (" + r.Reason.String() + ")"
	}
	return p.warn.Sprint(msg)
}

func explicitZero(r sim.Result) bool {
	return r.Outcome == sim.OutcomeValue &&
		r.Resolution == sim.ResolvedDirect &&
		strings.TrimSpace(r.ReturnExpr) == "0" &&
		len(r.Steps) > 0
}
