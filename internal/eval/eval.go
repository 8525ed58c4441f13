// Package eval computes the values of TAC right-hand sides.
//
// The evaluator deliberately stops short of being a parser. Rules are tried in
// a fixed order and the first applicable one decides:
//
//  1. (int) / (float) cast prefix
//  2. unary minus, then logical not
//  3. variable lookup
//  4. numeric literal (digits with at most one '.')
//  5. a binary operator that occurs exactly once in the expression
//
// An operator that occurs more than once (a+b+c) is never split, because the
// grouping cannot be asserted without a real grammar. Such expressions are
// reported as not computable instead of silently wrong.
package eval

import (
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Evaluate computes expr against env. ok is false when the expression is not
// computable; callers must not treat the zero Value as a result in that case.
func Evaluate(expr string, env Env) (Value, bool) {
	return evaluate(strings.TrimSpace(expr), env)
}

func evaluate(expr string, env Env) (Value, bool) {
	if expr == "" {
		return Value{}, false
	}

	if rest, ok := strings.CutPrefix(expr, "(int)"); ok {
		v, ok := evaluate(strings.TrimSpace(rest), env)
		if !ok {
			return Value{}, false
		}
		return toInt(v)
	}
	if rest, ok := strings.CutPrefix(expr, "(float)"); ok {
		v, ok := evaluate(strings.TrimSpace(rest), env)
		if !ok {
			return Value{}, false
		}
		return Float(v.AsFloat()), true
	}

	if rest, ok := strings.CutPrefix(expr, "-"); ok {
		v, ok := evaluate(strings.TrimSpace(rest), env)
		if !ok {
			return Value{}, false
		}
		return v.Neg()
	}
	if strings.HasPrefix(expr, "!") && !strings.HasPrefix(expr, "!=") {
		v, ok := evaluate(strings.TrimSpace(expr[1:]), env)
		if !ok {
			return Value{}, false
		}
		return Bool(!v.Truthy()), true
	}

	if v, ok := env.Lookup(expr); ok {
		return v, true
	}

	if IsNumericLiteral(expr) {
		return ParseLiteral(expr)
	}

	for _, op := range binaryOps {
		if strings.Count(expr, op.token) != 1 {
			continue
		}
		if op.unless != "" && strings.Contains(expr, op.unless) {
			continue
		}
		idx := strings.Index(expr, op.token)
		left, lok := evaluate(strings.TrimSpace(expr[:idx]), env)
		right, rok := evaluate(strings.TrimSpace(expr[idx+len(op.token):]), env)
		if !lok || !rok {
			return Value{}, false
		}
		return op.apply(left, right)
	}

	return Value{}, false
}

// IsNumericLiteral reports whether s consists of digits with at most one
// decimal point and at least one digit.
func IsNumericLiteral(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// ParseLiteral parses a numeric literal; a decimal point selects float.
func ParseLiteral(s string) (Value, bool) {
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, false
		}
		return Float(f), true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}, false
	}
	return Int(n), true
}

func toInt(v Value) (Value, bool) {
	if v.Kind == KindInt {
		return v, true
	}
	if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return Value{}, false
	}
	n, err := safecast.Truncate[int64](v.Float)
	if err != nil {
		return Value{}, false
	}
	return Int(n), true
}
