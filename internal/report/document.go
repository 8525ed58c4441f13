package report

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"tacsim/internal/sim"
)

// StepDoc is one assignment in machine-readable output.
type StepDoc struct {
	Var       string `json:"var" yaml:"var"`
	Value     string `json:"value" yaml:"value"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Temporary bool   `json:"temporary,omitempty" yaml:"temporary,omitempty"`
}

// DiagnosticDoc mirrors diag.Diagnostic.
type DiagnosticDoc struct {
	Severity string `json:"severity" yaml:"severity"`
	Code     string `json:"code" yaml:"code"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

// Document is the structured form of a result used by the json and yaml
// output formats.
type Document struct {
	Path        string          `json:"path,omitempty" yaml:"path,omitempty"`
	Outcome     string          `json:"outcome" yaml:"outcome"`
	Value       string          `json:"value,omitempty" yaml:"value,omitempty"`
	Resolution  string          `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Estimated   bool            `json:"estimated,omitempty" yaml:"estimated,omitempty"`
	Via         string          `json:"via,omitempty" yaml:"via,omitempty"`
	Reason      string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	ReturnExpr  string          `json:"return_expr,omitempty" yaml:"return_expr,omitempty"`
	ReturnLine  int             `json:"return_line,omitempty" yaml:"return_line,omitempty"`
	Executed    int             `json:"executed" yaml:"executed"`
	Trace       []string        `json:"trace" yaml:"trace"`
	Steps       []StepDoc       `json:"steps,omitempty" yaml:"steps,omitempty"`
	Diagnostics []DiagnosticDoc `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewDocument converts r. Steps carries every assignment, temporaries
// included; Trace follows showTemporaries.
func NewDocument(r sim.Result, showTemporaries bool) Document {
	doc := Document{
		Outcome:    r.Outcome.String(),
		ReturnExpr: r.ReturnExpr,
		ReturnLine: r.ReturnLine,
		Executed:   r.Executed,
		Trace:      r.Trace(showTemporaries),
		Reason:     r.Reason.String(),
	}
	if r.HasValue() {
		doc.Value = r.Value.String()
		doc.Resolution = r.Resolution.String()
		doc.Estimated = r.Resolution.IsGuess()
		doc.Via = r.Via
	}
	for _, s := range r.Steps {
		doc.Steps = append(doc.Steps, StepDoc{
			Var:       s.Var,
			Value:     s.Value.String(),
			Line:      s.Line,
			Temporary: s.Temporary,
		})
	}
	for _, d := range r.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, DiagnosticDoc{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Line:     d.Line,
			Message:  d.Message,
		})
	}
	return doc
}

// JSON renders r as indented JSON.
func JSON(r sim.Result, showTemporaries bool) ([]byte, error) {
	return json.MarshalIndent(NewDocument(r, showTemporaries), "", "  ")
}

// YAML renders r as a YAML document.
func YAML(r sim.Result, showTemporaries bool) ([]byte, error) {
	return yaml.Marshal(NewDocument(r, showTemporaries))
}
