package diag

import "fmt"

// Diagnostic describes one finding tied to a 1-based input line.
// Line is 0 when the finding concerns the run as a whole.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Line     int
}

func New(sev Severity, code Code, line int, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Line:     line,
		Message:  msg,
	}
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s %s line %d: %s", d.Severity, d.Code.ID(), d.Line, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code.ID(), d.Message)
}
