package tac

import "fmt"

// Op identifies the instruction variant.
type Op uint8

const (
	OpSkip Op = iota
	OpLabel
	OpJump
	OpCondJump
	OpAssign
	OpReturn
)

func (o Op) String() string {
	switch o {
	case OpSkip:
		return "skip"
	case OpLabel:
		return "label"
	case OpJump:
		return "jump"
	case OpCondJump:
		return "cjump"
	case OpAssign:
		return "assign"
	case OpReturn:
		return "return"
	}
	return "unknown"
}

// Instruction is one simulated operation. Only the fields relevant to Op are
// set; Line and Raw always point back to the input.
type Instruction struct {
	Op   Op
	Line int    // 1-based input line, 0 for synthesized instructions
	Raw  string // trimmed input text

	Target string // OpLabel, OpJump, OpCondJump
	Cond   string // OpCondJump
	CmpOp  string // OpCondJump: "!=" or "=="
	Const  string // OpCondJump comparison literal

	Var  string // OpAssign
	Expr string // OpAssign right-hand side, OpReturn value (may be empty)
}

func Skip() Instruction { return Instruction{Op: OpSkip} }

func Label(name string) Instruction { return Instruction{Op: OpLabel, Target: name} }

func Jump(target string) Instruction { return Instruction{Op: OpJump, Target: target} }

func CondJump(cond, cmpOp, konst, target string) Instruction {
	return Instruction{Op: OpCondJump, Cond: cond, CmpOp: cmpOp, Const: konst, Target: target}
}

func Assign(v, expr string) Instruction {
	return Instruction{Op: OpAssign, Var: v, Expr: expr}
}

func Return(expr string) Instruction { return Instruction{Op: OpReturn, Expr: expr} }

// String renders the normalized form of the instruction.
func (in Instruction) String() string {
	switch in.Op {
	case OpLabel:
		return in.Target + ":"
	case OpJump:
		return "jump " + in.Target
	case OpCondJump:
		return fmt.Sprintf("if %s %s %s goto %s", in.Cond, in.CmpOp, in.Const, in.Target)
	case OpAssign:
		return in.Var + " = " + in.Expr
	case OpReturn:
		if in.Expr == "" {
			return "return"
		}
		return "return " + in.Expr
	}
	if in.Raw != "" {
		return "skip (" + in.Raw + ")"
	}
	return "skip"
}

// LabelTable maps a label name to its index in the instruction stream.
type LabelTable map[string]int

// Resolve returns the instruction index for name.
func (t LabelTable) Resolve(name string) (int, bool) {
	idx, ok := t[name]
	return idx, ok
}
