package tac

import "tacsim/internal/diag"

// Program is the classifier output: the normalized stream plus its labels.
type Program struct {
	Instructions []Instruction
	Labels       LabelTable
	Diagnostics  []diag.Diagnostic
}

// NewProgram wraps a hand-built instruction stream. Every OpLabel becomes a
// label table entry pointing at its own index; the first definition wins.
func NewProgram(instrs []Instruction) Program {
	labels := make(LabelTable)
	for i, in := range instrs {
		if in.Op != OpLabel {
			continue
		}
		if _, dup := labels[in.Target]; !dup {
			labels[in.Target] = i
		}
	}
	return Program{Instructions: instrs, Labels: labels}
}

// Len returns the number of instructions.
func (p Program) Len() int { return len(p.Instructions) }
