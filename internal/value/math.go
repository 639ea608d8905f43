package value

import (
	"math"
	"strconv"
	"strings"
)

// numericOrSelf applies fn when the value has a numeric view and hands
// the value back untouched otherwise. Generated arithmetic keeps the
// "non-numeric input passes through" behavior of the source tables.
func numericOrSelf(v Value, fn func(float64) float64) Value {
	f, ok := v.AsFloat()
	if !ok {
		return v
	}
	return F64(fn(f))
}

// Int truncates toward zero (Perl int).
func Int(v Value) Value { return numericOrSelf(v, math.Trunc) }

// Exp is e**x.
func Exp(v Value) Value { return numericOrSelf(v, math.Exp) }

// Log is the natural logarithm (Perl log).
func Log(v Value) Value { return numericOrSelf(v, math.Log) }

// Abs is the absolute value.
func Abs(v Value) Value { return numericOrSelf(v, math.Abs) }

// Sqrt is the square root.
func Sqrt(v Value) Value { return numericOrSelf(v, math.Sqrt) }

// Negate flips the sign of a numeric value; non-numeric input passes
// through unchanged.
func Negate(v Value) Value { return numericOrSelf(v, func(f float64) float64 { return -f }) }

// Pow2 computes 2**x, the most common power shape in exposure math.
func Pow2(v Value) Value {
	return numericOrSelf(v, func(f float64) float64 { return math.Pow(2, f) })
}

// Power computes base**exp. A non-numeric base passes through; a
// non-numeric exponent is treated as 0 (Perl numeric coercion).
func Power(base, exp Value) Value {
	e, ok := exp.AsFloat()
	if !ok {
		e = 0
	}
	return numericOrSelf(base, func(b float64) float64 { return math.Pow(b, e) })
}

// RoundTo rounds to the given number of decimal places by
// scale/truncate, matching the sprintf-free rounding idiom in the
// source tables.
func RoundTo(v Value, places int) Value {
	scale := math.Pow(10, float64(places))
	return numericOrSelf(v, func(f float64) float64 {
		return math.Round(f*scale) / scale
	})
}

// SafeDivision implements `$val ? N / $val : 0`: a falsy or zero
// denominator yields 0.0 instead of dividing by zero.
func SafeDivision(numerator float64, v Value) Value {
	if !IsTruthy(v) {
		return F64(0)
	}
	f, ok := v.AsFloat()
	if !ok || f == 0 {
		return F64(0)
	}
	return F64(numerator / f)
}

// SafeReciprocal implements `$val ? 1 / $val : 0`.
func SafeReciprocal(v Value) Value { return SafeDivision(1, v) }

// Hex parses a hexadecimal string value (with or without a 0x prefix),
// mirroring Perl's hex(). Numeric input is truncated to an integer.
func Hex(v Value) Value {
	if s, ok := v.AsString(); ok {
		s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
		s = strings.TrimPrefix(s, "0X")
		n, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return U64(0)
		}
		return U64(n)
	}
	return Int(v)
}

// Oct parses an octal (or prefixed hex/binary) string value, mirroring
// Perl's oct().
func Oct(v Value) Value {
	s, ok := v.AsString()
	if !ok {
		return Int(v)
	}
	s = strings.TrimSpace(s)
	base := 8
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		s, base = s[2:], 2
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return U64(0)
	}
	return U64(n)
}
