package sim

import (
	"tacsim/internal/diag"
	"tacsim/internal/eval"
)

// Outcome is the kind of final answer a run produced.
type Outcome uint8

const (
	// OutcomeUnresolved means no usable return value was found.
	OutcomeUnresolved Outcome = iota
	// OutcomeValue carries a number in Result.Value.
	OutcomeValue
	// OutcomeArrayDependent means the return value hinges on array or
	// pointer contents the simulator does not model.
	OutcomeArrayDependent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValue:
		return "value"
	case OutcomeArrayDependent:
		return "array-dependent"
	default:
		return "unresolved"
	}
}

// Resolution says how a value outcome was obtained. The two guess variants
// are presentation aids, not computed results.
type Resolution uint8

const (
	ResolvedNone Resolution = iota
	ResolvedDirect
	ResolvedIndirect
	ResolvedArraySumGuess
	ResolvedCallSumGuess
)

func (r Resolution) String() string {
	switch r {
	case ResolvedDirect:
		return "direct"
	case ResolvedIndirect:
		return "indirect"
	case ResolvedArraySumGuess:
		return "array-sum guess"
	case ResolvedCallSumGuess:
		return "call-sum guess"
	default:
		return "none"
	}
}

// IsGuess reports whether the value came from a heuristic.
func (r Resolution) IsGuess() bool {
	return r == ResolvedArraySumGuess || r == ResolvedCallSumGuess
}

// Reason explains an unresolved outcome.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNoReturn
	ReasonEmptyReturn
	ReasonStepLimit
	ReasonNotComputable
)

func (r Reason) String() string {
	switch r {
	case ReasonNoReturn:
		return "no return reached"
	case ReasonEmptyReturn:
		return "return without a value"
	case ReasonStepLimit:
		return "step limit exceeded"
	case ReasonNotComputable:
		return "return value not computable"
	default:
		return ""
	}
}

// Step is one successful assignment, in execution order.
type Step struct {
	Var       string
	Value     eval.Value
	Temporary bool
	Line      int
}

func (s Step) String() string { return s.Var + " = " + s.Value.String() }

// Result is everything one run produced.
type Result struct {
	Steps      []Step
	Outcome    Outcome
	Value      eval.Value
	Resolution Resolution
	Reason     Reason

	ReturnExpr string // expression of the return that halted the run
	ReturnLine int
	Via        string // variable whose logged right-hand side resolved the value

	Executed    int // instructions executed, including the return
	Diagnostics []diag.Diagnostic
}

// HasValue reports whether Value is meaningful.
func (r Result) HasValue() bool { return r.Outcome == OutcomeValue }

// Trace renders the steps as "var = value" strings.
func (r Result) Trace(includeTemporaries bool) []string {
	out := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Temporary && !includeTemporaries {
			continue
		}
		out = append(out, s.String())
	}
	return out
}
