package eval

import (
	"math"
	"strconv"
	"strings"
)

// Kind distinguishes integer from floating-point values.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
)

func (k Kind) String() string {
	if k == KindFloat {
		return "float"
	}
	return "int"
}

// Value is a number produced by the evaluator.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
}

// Int wraps an integer.
func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }

// Float wraps a floating-point number.
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// Bool maps a truth value to the integer 1 or 0.
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

func (v Value) IsFloat() bool { return v.Kind == KindFloat }

// AsFloat returns the value widened to float64.
func (v Value) AsFloat() float64 {
	if v.Kind == KindFloat {
		return v.Float
	}
	return float64(v.Int)
}

func (v Value) IsZero() bool {
	if v.Kind == KindFloat {
		return v.Float == 0
	}
	return v.Int == 0
}

// Truthy reports whether the value is non-zero.
func (v Value) Truthy() bool { return !v.IsZero() }

// Equal compares numerically, so Int(2) equals Float(2.0).
func (v Value) Equal(o Value) bool {
	if v.Kind == KindInt && o.Kind == KindInt {
		return v.Int == o.Int
	}
	return v.AsFloat() == o.AsFloat()
}

// Neg negates v. ok is false for the one int64 that has no negation.
func (v Value) Neg() (Value, bool) {
	if v.Kind == KindFloat {
		return Float(-v.Float), true
	}
	if v.Int == math.MinInt64 {
		return Value{}, false
	}
	return Int(-v.Int), true
}

// String renders integers plainly and floats always with a fractional part
// (5 -> "5", 5.0 -> "5.0").
func (v Value) String() string {
	if v.Kind == KindInt {
		return strconv.FormatInt(v.Int, 10)
	}
	f := v.Float
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Env maps variable names to their current values.
type Env map[string]Value

// Lookup returns the value bound to name.
func (e Env) Lookup(name string) (Value, bool) {
	v, ok := e[name]
	return v, ok
}
