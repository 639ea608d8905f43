// Package manual holds the hand-written conversion implementations the
// registry's exact-match tier resolves to. These cover expressions the
// generator cannot translate but which are common enough across the
// tag tables to deserve a real implementation.
package manual

import (
	"fmt"
	"math"

	"convgen/internal/value"
)

// PrintExposureTime renders a shutter speed: fractional-second values
// as 1/N, longer exposures in plain seconds.
func PrintExposureTime(val value.Value) value.Value {
	f, ok := val.AsFloat()
	if !ok {
		return val
	}
	if f > 0 && f < 0.25001 {
		return value.String(fmt.Sprintf("1/%d", int(0.5+1/f)))
	}
	if f == math.Trunc(f) {
		return value.String(fmt.Sprintf("%d", int64(f)))
	}
	return value.String(fmt.Sprintf("%.1f", f))
}

// PrintFNumber renders an aperture with the conventional precision:
// one decimal below f/10, two significant digits above.
func PrintFNumber(val value.Value) value.Value {
	f, ok := val.AsFloat()
	if !ok {
		return val
	}
	if f > 0 && f < 10 {
		return value.String(fmt.Sprintf("%.1f", f))
	}
	return value.String(fmt.Sprintf("%.2g", f))
}

// PrintFraction renders an exposure-compensation value as a signed
// fraction in halves or thirds when one fits, else as a plain number.
func PrintFraction(val value.Value) value.Value {
	f, ok := val.AsFloat()
	if !ok {
		return val
	}
	n := f * 1.00001 // absorb rational rounding
	switch {
	case n == 0:
		return value.String("0")
	case math.Abs(n-math.Round(n)) < 0.01:
		return value.String(fmt.Sprintf("%+d", int64(math.Round(n))))
	case math.Abs(n*2-math.Round(n*2)) < 0.02:
		return value.String(fmt.Sprintf("%+d/2", int64(math.Round(n*2))))
	case math.Abs(n*3-math.Round(n*3)) < 0.03:
		return value.String(fmt.Sprintf("%+d/3", int64(math.Round(n*3))))
	default:
		return value.String(fmt.Sprintf("%+.3g", n))
	}
}

// CanonEv decodes Canon's 1/32-step EV encoding, where the fraction
// codes 0x0c and 0x14 stand for exact thirds.
func CanonEv(val value.Value) (value.Value, error) {
	f, ok := val.AsFloat()
	if !ok {
		return val, nil
	}
	n := int64(f)
	sign := 1.0
	if n < 0 {
		n = -n
		sign = -1
	}
	frac := n & 0x1f
	n -= frac
	var ev float64
	switch frac {
	case 0x0c:
		ev = 1.0 / 3
	case 0x14:
		ev = 2.0 / 3
	default:
		ev = float64(frac) / 32
	}
	return value.F64(sign * (float64(n)/32 + ev)), nil
}

// CanonEvInverse is the encoding direction of CanonEv.
func CanonEvInverse(val value.Value) (value.Value, error) {
	f, ok := val.AsFloat()
	if !ok {
		return val, nil
	}
	sign := 1.0
	if f < 0 {
		f = -f
		sign = -1
	}
	whole := math.Trunc(f)
	frac := f - whole
	var code int64
	switch {
	case math.Abs(frac-1.0/3) < 0.05:
		code = 0x0c
	case math.Abs(frac-2.0/3) < 0.05:
		code = 0x14
	default:
		code = int64(math.Round(frac * 32))
	}
	return value.F64(sign * (whole*32 + float64(code))), nil
}
