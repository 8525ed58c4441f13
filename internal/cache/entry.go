package cache

import (
	"tacsim/internal/diag"
	"tacsim/internal/eval"
	"tacsim/internal/sim"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// Entry is the on-disk form of a sim.Result.
type Entry struct {
	Schema uint16

	Outcome    uint8
	Value      ValueEntry
	Resolution uint8
	Reason     uint8

	ReturnExpr string
	ReturnLine int
	Via        string
	Executed   int

	Steps       []StepEntry
	Diagnostics []DiagnosticEntry
}

type ValueEntry struct {
	Kind  uint8
	Int   int64
	Float float64
}

type StepEntry struct {
	Var       string
	Value     ValueEntry
	Temporary bool
	Line      int
}

type DiagnosticEntry struct {
	Severity uint8
	Code     uint16
	Line     int
	Message  string
}

func valueEntry(v eval.Value) ValueEntry {
	return ValueEntry{Kind: uint8(v.Kind), Int: v.Int, Float: v.Float}
}

func (v ValueEntry) value() eval.Value {
	return eval.Value{Kind: eval.Kind(v.Kind), Int: v.Int, Float: v.Float}
}

// NewEntry converts r for storage.
func NewEntry(r sim.Result) *Entry {
	e := &Entry{
		Schema:     schemaVersion,
		Outcome:    uint8(r.Outcome),
		Value:      valueEntry(r.Value),
		Resolution: uint8(r.Resolution),
		Reason:     uint8(r.Reason),
		ReturnExpr: r.ReturnExpr,
		ReturnLine: r.ReturnLine,
		Via:        r.Via,
		Executed:   r.Executed,
	}
	if len(r.Steps) > 0 {
		e.Steps = make([]StepEntry, len(r.Steps))
		for i, s := range r.Steps {
			e.Steps[i] = StepEntry{Var: s.Var, Value: valueEntry(s.Value), Temporary: s.Temporary, Line: s.Line}
		}
	}
	if len(r.Diagnostics) > 0 {
		e.Diagnostics = make([]DiagnosticEntry, len(r.Diagnostics))
		for i, d := range r.Diagnostics {
			e.Diagnostics[i] = DiagnosticEntry{Severity: uint8(d.Severity), Code: uint16(d.Code), Line: d.Line, Message: d.Message}
		}
	}
	return e
}

// Result restores the simulation result.
func (e *Entry) Result() sim.Result {
	r := sim.Result{
		Outcome:    sim.Outcome(e.Outcome),
		Value:      e.Value.value(),
		Resolution: sim.Resolution(e.Resolution),
		Reason:     sim.Reason(e.Reason),
		ReturnExpr: e.ReturnExpr,
		ReturnLine: e.ReturnLine,
		Via:        e.Via,
		Executed:   e.Executed,
	}
	if len(e.Steps) > 0 {
		r.Steps = make([]sim.Step, len(e.Steps))
		for i, s := range e.Steps {
			r.Steps[i] = sim.Step{Var: s.Var, Value: s.Value.value(), Temporary: s.Temporary, Line: s.Line}
		}
	}
	if len(e.Diagnostics) > 0 {
		r.Diagnostics = make([]diag.Diagnostic, len(e.Diagnostics))
		for i, d := range e.Diagnostics {
			r.Diagnostics[i] = diag.New(diag.Severity(d.Severity), diag.Code(d.Code), d.Line, d.Message)
		}
	}
	return r
}
