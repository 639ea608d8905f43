package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the runtime representation held by a Value.
type Kind int

const (
	// KindEmpty is the explicit "no value" sentinel. Generated code never
	// passes a nil pointer around; absence is always represented by Empty.
	KindEmpty Kind = iota

	KindU8
	KindU16
	KindU32
	KindU64
	KindI16
	KindI32
	KindF64
	KindString
	KindBool

	KindU8Array
	KindU16Array
	KindU32Array
	KindF64Array

	KindRational
	KindSRational
	KindRationalArray
	KindSRationalArray

	KindBinary
	KindArray
	KindObject
)

// String returns the kind name used in diagnostics and test failures.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindF64:
		return "F64"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindU8Array:
		return "U8Array"
	case KindU16Array:
		return "U16Array"
	case KindU32Array:
		return "U32Array"
	case KindF64Array:
		return "F64Array"
	case KindRational:
		return "Rational"
	case KindSRational:
		return "SRational"
	case KindRationalArray:
		return "RationalArray"
	case KindSRationalArray:
		return "SRationalArray"
	case KindBinary:
		return "Binary"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Rat is a numerator/denominator pair. Signed coordinates and exposure
// values use the signed flavor; EXIF rational64u uses the unsigned one.
type Rat struct {
	Num, Den uint32
}

// SRat is the signed rational pair (EXIF rational64s).
type SRat struct {
	Num, Den int32
}

// Value is the tagged union passed through every generated conversion
// function. Only the field selected by Kind is meaningful.
type Value struct {
	kind Kind

	u   uint64
	i   int64
	f   float64
	b   bool
	str string

	u8s  []uint8
	u16s []uint16
	u32s []uint32
	f64s []float64

	rat   Rat
	srat  SRat
	rats  []Rat
	srats []SRat

	bin  []byte
	arr  []Value
	obj  map[string]Value
}

// Empty returns the empty sentinel.
func Empty() Value { return Value{kind: KindEmpty} }

// U8 wraps an unsigned 8-bit integer.
func U8(v uint8) Value { return Value{kind: KindU8, u: uint64(v)} }

// U16 wraps an unsigned 16-bit integer.
func U16(v uint16) Value { return Value{kind: KindU16, u: uint64(v)} }

// U32 wraps an unsigned 32-bit integer.
func U32(v uint32) Value { return Value{kind: KindU32, u: uint64(v)} }

// U64 wraps an unsigned 64-bit integer.
func U64(v uint64) Value { return Value{kind: KindU64, u: v} }

// I16 wraps a signed 16-bit integer.
func I16(v int16) Value { return Value{kind: KindI16, i: int64(v)} }

// I32 wraps a signed 32-bit integer.
func I32(v int32) Value { return Value{kind: KindI32, i: int64(v)} }

// F64 wraps a float.
func F64(v float64) Value { return Value{kind: KindF64, f: v} }

// String wraps a text string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// U8Slice wraps a byte-valued array tag.
func U8Slice(v []uint8) Value { return Value{kind: KindU8Array, u8s: v} }

// U16Slice wraps a uint16-valued array tag.
func U16Slice(v []uint16) Value { return Value{kind: KindU16Array, u16s: v} }

// U32Slice wraps a uint32-valued array tag.
func U32Slice(v []uint32) Value { return Value{kind: KindU32Array, u32s: v} }

// F64Slice wraps a float-valued array tag.
func F64Slice(v []float64) Value { return Value{kind: KindF64Array, f64s: v} }

// Rational wraps an unsigned numerator/denominator pair.
func Rational(num, den uint32) Value {
	return Value{kind: KindRational, rat: Rat{Num: num, Den: den}}
}

// SRational wraps a signed numerator/denominator pair.
func SRational(num, den int32) Value {
	return Value{kind: KindSRational, srat: SRat{Num: num, Den: den}}
}

// RationalSlice wraps an array of unsigned rationals (GPS coordinates).
func RationalSlice(v []Rat) Value { return Value{kind: KindRationalArray, rats: v} }

// SRationalSlice wraps an array of signed rationals.
func SRationalSlice(v []SRat) Value { return Value{kind: KindSRationalArray, srats: v} }

// Binary wraps raw bytes of unknown interpretation.
func Binary(v []byte) Value { return Value{kind: KindBinary, bin: v} }

// Array wraps a heterogeneous value list.
func Array(v []Value) Value { return Value{kind: KindArray, arr: v} }

// Object wraps a keyed map of values.
func Object(v map[string]Value) Value { return Value{kind: KindObject, obj: v} }

// Kind reports the representation tag.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the empty sentinel.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsString returns the string payload, or "" and false for other kinds.
func (v Value) AsString() (string, bool) {
	if v.kind == KindString {
		return v.str, true
	}
	return "", false
}

// AsFloat attempts a numeric view of the value. Strings parse if they
// look numeric; rationals divide (zero denominator fails); arrays,
// objects, binary and empty have no numeric view.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindU8, KindU16, KindU32, KindU64:
		return float64(v.u), true
	case KindI16, KindI32:
		return float64(v.i), true
	case KindF64:
		return v.f, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindRational:
		if v.rat.Den == 0 {
			return 0, false
		}
		return float64(v.rat.Num) / float64(v.rat.Den), true
	case KindSRational:
		if v.srat.Den == 0 {
			return 0, false
		}
		return float64(v.srat.Num) / float64(v.srat.Den), true
	default:
		return 0, false
	}
}

// AsBool reports the boolean payload, or false for other kinds.
func (v Value) AsBool() bool { return v.kind == KindBool && v.b }

// IsDefined reports whether the value carries information.
//
// Contract: false only for the empty sentinel and the empty string.
// Numeric zero is DEFINED. This deliberately diverges from Perl's
// falsy-zero truthiness: downstream generated code distinguishes "the
// camera reported 0" from "the tag is absent", and collapsing the two
// loses real data. Use IsTruthy for Perl-compatible truthiness.
func IsDefined(v Value) bool {
	switch v.kind {
	case KindEmpty:
		return false
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

// IsTruthy applies Perl truthiness: zero, "", and "0" are false; the
// empty sentinel is false; everything else is true.
func IsTruthy(v Value) bool {
	switch v.kind {
	case KindEmpty:
		return false
	case KindBool:
		return v.b
	case KindString:
		return v.str != "" && v.str != "0"
	case KindU8, KindU16, KindU32, KindU64:
		return v.u != 0
	case KindI16, KindI32:
		return v.i != 0
	case KindF64:
		return v.f != 0
	case KindRational:
		return v.rat.Num != 0
	case KindSRational:
		return v.srat.Num != 0
	default:
		return true
	}
}

// ArrayLen reports the element count for any array variant, or -1 for
// non-array values.
func (v Value) ArrayLen() int {
	switch v.kind {
	case KindU8Array:
		return len(v.u8s)
	case KindU16Array:
		return len(v.u16s)
	case KindU32Array:
		return len(v.u32s)
	case KindF64Array:
		return len(v.f64s)
	case KindRationalArray:
		return len(v.rats)
	case KindSRationalArray:
		return len(v.srats)
	case KindBinary:
		return len(v.bin)
	case KindArray:
		return len(v.arr)
	default:
		return -1
	}
}

// GetArrayElement returns element i of any array variant. It is total:
// out-of-range indexes and non-array inputs yield the empty sentinel,
// never an error, so generated `$val[n]` accesses cannot fail.
func GetArrayElement(v Value, i int) Value {
	n := v.ArrayLen()
	if n < 0 || i < 0 || i >= n {
		return Empty()
	}
	switch v.kind {
	case KindU8Array:
		return U8(v.u8s[i])
	case KindU16Array:
		return U16(v.u16s[i])
	case KindU32Array:
		return U32(v.u32s[i])
	case KindF64Array:
		return F64(v.f64s[i])
	case KindRationalArray:
		return Rational(v.rats[i].Num, v.rats[i].Den)
	case KindSRationalArray:
		return SRational(v.srats[i].Num, v.srats[i].Den)
	case KindBinary:
		return U8(v.bin[i])
	case KindArray:
		return v.arr[i]
	}
	return Empty()
}

// Stringify renders a value the way Perl string context would: numbers
// without trailing zeros, rationals as "num/den", arrays space-joined.
// The empty sentinel renders as "".
func Stringify(v Value) string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindU8, KindU16, KindU32, KindU64:
		return strconv.FormatUint(v.u, 10)
	case KindI16, KindI32:
		return strconv.FormatInt(v.i, 10)
	case KindF64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindRational:
		return fmt.Sprintf("%d/%d", v.rat.Num, v.rat.Den)
	case KindSRational:
		return fmt.Sprintf("%d/%d", v.srat.Num, v.srat.Den)
	case KindU8Array, KindU16Array, KindU32Array, KindF64Array,
		KindRationalArray, KindSRationalArray, KindArray:
		n := v.ArrayLen()
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = Stringify(GetArrayElement(v, i))
		}
		return strings.Join(parts, " ")
	case KindBinary:
		return fmt.Sprintf("(Binary data %d bytes)", len(v.bin))
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+Stringify(v.obj[k]))
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// Equal compares two values by kind and payload. Array variants compare
// element-wise; objects compare by key set and per-key equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindEmpty:
		return true
	case KindU8, KindU16, KindU32, KindU64:
		return a.u == b.u
	case KindI16, KindI32:
		return a.i == b.i
	case KindF64:
		return a.f == b.f
	case KindString:
		return a.str == b.str
	case KindBool:
		return a.b == b.b
	case KindRational:
		return a.rat == b.rat
	case KindSRational:
		return a.srat == b.srat
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		na, nb := a.ArrayLen(), b.ArrayLen()
		if na != nb {
			return false
		}
		for i := 0; i < na; i++ {
			if !Equal(GetArrayElement(a, i), GetArrayElement(b, i)) {
				return false
			}
		}
		return true
	}
}
