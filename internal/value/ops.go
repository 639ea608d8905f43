package value

import "strings"

// BinOp evaluates one binary operator over two values. Generated code
// calls it for operator shapes that have no dedicated helper. It is
// total: a zero denominator yields 0, non-numeric operands of numeric
// operators coerce to 0, and unknown operators yield the empty
// sentinel.
func BinOp(op string, a, b Value) Value {
	switch op {
	case ".":
		return Concat(a, b)
	case "x":
		return Repeat(a, b)
	case "&&", "and":
		return Bool(IsTruthy(a) && IsTruthy(b))
	case "||", "or":
		if IsTruthy(a) {
			return a
		}
		return b
	case "eq", "ne", "lt", "gt", "le", "ge":
		return compareStrings(op, Stringify(a), Stringify(b))
	case "==", "!=", "<", ">", "<=", ">=":
		return compareNumbers(op, a, b)
	case "=~":
		return Bool(RegexMatch(Stringify(b), a))
	case "!~":
		return Bool(!RegexMatch(Stringify(b), a))
	}

	fa, aok := a.AsFloat()
	fb, bok := b.AsFloat()
	if !aok {
		fa = 0
	}
	if !bok {
		fb = 0
	}
	switch op {
	case "+":
		return F64(fa + fb)
	case "-":
		return F64(fa - fb)
	case "*":
		return F64(fa * fb)
	case "/":
		if fb == 0 {
			return F64(0)
		}
		return F64(fa / fb)
	case "%":
		if int64(fb) == 0 {
			return F64(0)
		}
		return F64(float64(int64(fa) % int64(fb)))
	case "**":
		return Power(F64(fa), F64(fb))
	}
	return Empty()
}

func compareStrings(op, a, b string) Value {
	c := strings.Compare(a, b)
	switch op {
	case "eq":
		return Bool(c == 0)
	case "ne":
		return Bool(c != 0)
	case "lt":
		return Bool(c < 0)
	case "gt":
		return Bool(c > 0)
	case "le":
		return Bool(c <= 0)
	case "ge":
		return Bool(c >= 0)
	}
	return Empty()
}

func compareNumbers(op string, a, b Value) Value {
	fa, aok := a.AsFloat()
	fb, bok := b.AsFloat()
	if !aok || !bok {
		// Perl coerces silently; string comparisons against numbers
		// reduce to 0 on the non-numeric side.
		if !aok {
			fa = 0
		}
		if !bok {
			fb = 0
		}
	}
	switch op {
	case "==":
		return Bool(fa == fb)
	case "!=":
		return Bool(fa != fb)
	case "<":
		return Bool(fa < fb)
	case ">":
		return Bool(fa > fb)
	case "<=":
		return Bool(fa <= fb)
	case ">=":
		return Bool(fa >= fb)
	}
	return Empty()
}

// Not is logical negation under Perl truthiness.
func Not(v Value) Value { return Bool(!IsTruthy(v)) }

// If selects between two eagerly evaluated branches on the condition's
// truthiness. Generated ternaries are side-effect free, so eager
// evaluation is safe.
func If(cond, then, els Value) Value {
	if IsTruthy(cond) {
		return then
	}
	return els
}

// Substr implements the three-argument substr. Offsets follow Perl:
// negative offsets count from the end, out-of-range requests clamp.
func Substr(v, offset, length Value) Value {
	s := Stringify(v)
	off64, ok := offset.AsFloat()
	if !ok {
		return String("")
	}
	off := int(off64)
	if off < 0 {
		off += len(s)
	}
	if off < 0 {
		off = 0
	}
	if off > len(s) {
		return String("")
	}
	n := len(s) - off
	if l64, ok := length.AsFloat(); ok {
		l := int(l64)
		if l < 0 {
			l += len(s) - off
		}
		if l < n {
			n = l
		}
	}
	if n < 0 {
		n = 0
	}
	return String(s[off : off+n])
}

// IndexOf implements index: the byte position of needle in haystack,
// -1 when absent.
func IndexOf(haystack, needle Value) Value {
	return I32(int32(strings.Index(Stringify(haystack), Stringify(needle))))
}

// Split implements the common fixed-separator split, returning a
// heterogeneous array of string elements.
func Split(sep, v Value) Value {
	s := Stringify(v)
	if s == "" {
		return Array(nil)
	}
	parts := strings.Split(s, Stringify(sep))
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = String(p)
	}
	return Array(out)
}
