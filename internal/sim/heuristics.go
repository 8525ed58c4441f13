package sim

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"tacsim/internal/eval"
)

// isTemporary reports whether name is prefix followed by digits only.
func (c *runContext) isTemporary(name string) bool {
	_, ok := c.temporaryIndex(name)
	return ok
}

func (c *runContext) temporaryIndex(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, c.opts.TempPrefix)
	if !ok || rest == "" {
		return "", false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return rest, true
}

// hasCallMarker matches the call keyword as a whole word.
func (c *runContext) hasCallMarker(expr string) bool {
	words := strings.FieldsFunc(expr, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, w := range words {
		if w == c.opts.CallKeyword {
			return true
		}
	}
	return false
}

// isDereference reports a pointer load, looking through casts and negation.
func isDereference(expr string) bool {
	e := strings.TrimSpace(expr)
	for {
		switch {
		case strings.HasPrefix(e, "(int)"):
			e = strings.TrimSpace(e[len("(int)"):])
		case strings.HasPrefix(e, "(float)"):
			e = strings.TrimSpace(e[len("(float)"):])
		case strings.HasPrefix(e, "-"):
			e = strings.TrimSpace(e[1:])
		default:
			return strings.HasPrefix(e, "*")
		}
	}
}

// isArraySizeDecl filters "arr = 10" style declarations that would otherwise
// pollute the trace with array lengths.
func (c *runContext) isArraySizeDecl(name, expr string) bool {
	if !c.isSmallInt(expr) {
		return false
	}
	if _, ok := c.arrays[name]; ok {
		return true
	}
	return c.arrayObserved && !c.isTemporary(name)
}

func (c *runContext) isSmallInt(expr string) bool {
	if expr == "" {
		return false
	}
	for _, r := range expr {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.ParseInt(expr, 10, 64)
	return err == nil && n <= c.opts.SmallIntLimit
}

// resolvedTemporaries lists temporaries with a value, by ascending number.
func (c *runContext) resolvedTemporaries() []string {
	type temp struct {
		name string
		num  uint64
		ok   bool
	}
	var temps []temp
	for name := range c.env {
		digits, ok := c.temporaryIndex(name)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(digits, 10, 64)
		temps = append(temps, temp{name: name, num: n, ok: err == nil})
	}
	sort.Slice(temps, func(i, j int) bool {
		a, b := temps[i], temps[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.num != b.num {
			return a.num < b.num
		}
		return a.name < b.name
	})
	out := make([]string, len(temps))
	for i, t := range temps {
		out[i] = t.name
	}
	return out
}

// arraySumGuess handles "tN = tA + tB" where both operands were array loads:
// it assumes the first and third resolved temporaries held the elements.
func (c *runContext) arraySumGuess(rhs string) (eval.Value, bool) {
	if !isIdentifierSum(rhs) {
		return eval.Value{}, false
	}
	temps := c.resolvedTemporaries()
	if len(temps) < 3 {
		return eval.Value{}, false
	}
	return eval.Add(c.env[temps[0]], c.env[temps[2]])
}

// callSumGuess sums every resolved temporary after an opaque call.
func (c *runContext) callSumGuess() (eval.Value, bool) {
	temps := c.resolvedTemporaries()
	if len(temps) == 0 {
		return eval.Value{}, false
	}
	sum := eval.Int(0)
	for _, name := range temps {
		var ok bool
		if sum, ok = eval.Add(sum, c.env[name]); !ok {
			return eval.Value{}, false
		}
	}
	return sum, true
}

func isIdentifierSum(expr string) bool {
	if strings.Count(expr, "+") != 1 {
		return false
	}
	l, r, _ := strings.Cut(expr, "+")
	return isIdentifier(strings.TrimSpace(l)) && isIdentifier(strings.TrimSpace(r))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
