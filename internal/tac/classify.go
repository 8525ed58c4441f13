// Package tac turns a raw three-address-code dump into a normalized
// instruction stream.
//
// Classification is a total function: every input line either becomes an
// Instruction, records a label position, or degrades to OpSkip. Nothing here
// returns an error; lines that could not be understood are reported through
// Program.Diagnostics instead.
package tac

import (
	"strings"
	"unicode"

	"tacsim/internal/diag"
	"tacsim/internal/eval"
)

// DefaultLabelPrefix matches the labels the compiler emits (L0, L1, ...).
const DefaultLabelPrefix = "L"

// Options tunes classification.
type Options struct {
	LabelPrefix    string
	MaxDiagnostics int
}

// Classify splits text into instructions and a label table.
func Classify(text string, opts Options) Program {
	prefix := opts.LabelPrefix
	if prefix == "" {
		prefix = DefaultLabelPrefix
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	rep := diag.BagReporter{Bag: bag}

	prog := Program{Labels: make(LabelTable)}
	for i, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		lineNo := i + 1

		if name, ok := labelDefinition(line, prefix); ok {
			if _, dup := prog.Labels[name]; dup {
				rep.Report(diag.TACDuplicateLabel, diag.SevWarning, lineNo, "label "+name+" defined again; keeping the first definition")
				continue
			}
			prog.Labels[name] = len(prog.Instructions)
			continue
		}

		in := classifyLine(line, lineNo, rep)
		in.Line = lineNo
		in.Raw = line
		prog.Instructions = append(prog.Instructions, in)
	}
	prog.Diagnostics = bag.Items()
	return prog
}

func classifyLine(line string, lineNo int, rep diag.Reporter) Instruction {
	switch {
	case strings.HasPrefix(line, "function") || strings.HasSuffix(line, "main:"):
		return Skip()

	case strings.HasPrefix(line, "jump "):
		return Jump(strings.TrimSpace(line[len("jump "):]))

	case strings.HasPrefix(line, "if "):
		if in, ok := parseCondJump(line); ok {
			return in
		}
		rep.Report(diag.TACMalformedCondJump, diag.SevWarning, lineNo, "conditional jump not understood: "+line)
		return Skip()

	case isReturn(line):
		return Return(strings.TrimSpace(line[len("return"):]))
	}

	if idx, ok := topLevelAssign(line); ok {
		v := strings.TrimSpace(line[:idx])
		expr := strings.TrimSpace(line[idx+1:])
		if v == "" || expr == "" {
			rep.Report(diag.TACEmptyAssignSide, diag.SevWarning, lineNo, "assignment with an empty side: "+line)
			return Skip()
		}
		return Assign(v, expr)
	}

	if !isDeclarativeNoise(line) {
		rep.Report(diag.TACUnrecognizedLine, diag.SevInfo, lineNo, "line skipped: "+line)
	}
	return Skip()
}

// labelDefinition recognises "<prefix><digits>:".
func labelDefinition(line, prefix string) (string, bool) {
	name, ok := strings.CutSuffix(line, ":")
	if !ok {
		return "", false
	}
	digits, ok := strings.CutPrefix(name, prefix)
	if !ok || digits == "" {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return name, true
}

// parseCondJump accepts
//
//	if <cond> <op> <const> goto <label>
//	if <cond> <op><const> goto <label>
func parseCondJump(line string) (Instruction, bool) {
	f := strings.Fields(line)
	var cond, op, konst, target string
	switch len(f) {
	case 6:
		if f[4] != "goto" {
			return Instruction{}, false
		}
		cond, op, konst, target = f[1], f[2], f[3], f[5]
	case 5:
		if f[3] != "goto" || len(f[2]) < 3 {
			return Instruction{}, false
		}
		cond, op, konst, target = f[1], f[2][:2], f[2][2:], f[4]
	default:
		return Instruction{}, false
	}
	if op != "!=" && op != "==" {
		return Instruction{}, false
	}
	if !eval.IsNumericLiteral(strings.TrimPrefix(konst, "-")) {
		return Instruction{}, false
	}
	return CondJump(cond, op, konst, target), true
}

func isReturn(line string) bool {
	rest, ok := strings.CutPrefix(line, "return")
	if !ok {
		return false
	}
	return rest == "" || unicode.IsSpace(rune(rest[0]))
}

// topLevelAssign returns the index of the only '=' that is not part of
// ==, !=, <= or >=.
func topLevelAssign(line string) (int, bool) {
	found, count := -1, 0
	for i := 0; i < len(line); i++ {
		if line[i] != '=' {
			continue
		}
		if i+1 < len(line) && line[i+1] == '=' {
			i++
			continue
		}
		if i > 0 && strings.IndexByte("!<>", line[i-1]) >= 0 {
			continue
		}
		found = i
		count++
	}
	return found, count == 1
}

// isDeclarativeNoise covers shapes the compiler emits that carry no
// simulated semantics (argument passing, non-numbered block labels).
func isDeclarativeNoise(line string) bool {
	if strings.HasPrefix(line, "param ") {
		return true
	}
	return strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " \t")
}
