package eval

import "math"

type binaryOp struct {
	token  string
	unless string // skip the operator when this token is present
	apply  func(l, r Value) (Value, bool)
}

// Order matters: relational operators are tried before arithmetic ones and
// the first operator occurring exactly once wins.
var binaryOps = []binaryOp{
	{token: "<=", apply: compare(func(c int) bool { return c <= 0 })},
	{token: ">=", apply: compare(func(c int) bool { return c >= 0 })},
	{token: "<", unless: "<=", apply: compare(func(c int) bool { return c < 0 })},
	{token: ">", unless: ">=", apply: compare(func(c int) bool { return c > 0 })},
	{token: "==", apply: compare(func(c int) bool { return c == 0 })},
	{token: "!=", apply: compare(func(c int) bool { return c != 0 })},
	{token: "+", apply: add},
	{token: "-", apply: arith(subInt, func(a, b float64) float64 { return a - b })},
	{token: "*", apply: arith(mulInt, func(a, b float64) float64 { return a * b })},
	{token: "/", apply: divide},
	{token: "%", apply: modulo},
	{token: "&&", apply: func(l, r Value) (Value, bool) { return Bool(l.Truthy() && r.Truthy()), true }},
	{token: "||", apply: func(l, r Value) (Value, bool) { return Bool(l.Truthy() || r.Truthy()), true }},
}

var add = arith(addInt, func(a, b float64) float64 { return a + b })

// Add sums two values with the same promotion rules as "l + r". ok is false
// when an int64 sum overflows.
func Add(l, r Value) (Value, bool) {
	return add(l, r)
}

// cmp returns -1, 0 or 1.
func cmp(l, r Value) int {
	if l.Kind == KindInt && r.Kind == KindInt {
		switch {
		case l.Int < r.Int:
			return -1
		case l.Int > r.Int:
			return 1
		}
		return 0
	}
	a, b := l.AsFloat(), r.AsFloat()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(holds func(int) bool) func(l, r Value) (Value, bool) {
	return func(l, r Value) (Value, bool) {
		if isNaN(l) || isNaN(r) {
			return Value{}, false
		}
		return Bool(holds(cmp(l, r))), true
	}
}

// arith applies ints when both sides are integers and floats otherwise.
// Integer overflow makes the result not computable.
func arith(ints func(a, b int64) (int64, bool), floats func(a, b float64) float64) func(l, r Value) (Value, bool) {
	return func(l, r Value) (Value, bool) {
		if l.Kind == KindInt && r.Kind == KindInt {
			n, ok := ints(l.Int, r.Int)
			if !ok {
				return Value{}, false
			}
			return Int(n), true
		}
		return Float(floats(l.AsFloat(), r.AsFloat())), true
	}
}

func addInt(a, b int64) (int64, bool) {
	s := a + b
	// знак меняется только при переполнении
	if (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0) {
		return 0, false
	}
	return s, true
}

func subInt(a, b int64) (int64, bool) {
	d := a - b
	if (a >= 0) != (b >= 0) && (d >= 0) != (a >= 0) {
		return 0, false
	}
	return d, true
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// divide is true division: the quotient is always a float.
func divide(l, r Value) (Value, bool) {
	if r.IsZero() {
		return Value{}, false
	}
	return Float(l.AsFloat() / r.AsFloat()), true
}

// modulo truncates toward zero like the C source the TAC came from.
func modulo(l, r Value) (Value, bool) {
	if r.IsZero() {
		return Value{}, false
	}
	if l.Kind == KindInt && r.Kind == KindInt {
		return Int(l.Int % r.Int), true
	}
	return Float(math.Mod(l.AsFloat(), r.AsFloat())), true
}

func isNaN(v Value) bool {
	return v.Kind == KindFloat && math.IsNaN(v.Float)
}
