package value

import (
	"regexp"
	"strings"
)

// Concat joins the string renderings of its operands in order,
// implementing the `.` operator.
func Concat(parts ...Value) Value {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(Stringify(p))
	}
	return String(sb.String())
}

// Repeat implements the `x` operator. A negative or non-numeric count
// yields the empty string, as in Perl.
func Repeat(s Value, count Value) Value {
	n, ok := count.AsFloat()
	if !ok || n < 1 {
		return String("")
	}
	return String(strings.Repeat(Stringify(s), int(n)))
}

// Length reports the string length of the value's rendering.
func Length(v Value) Value {
	if v.IsEmpty() {
		return Empty()
	}
	return I32(int32(len(Stringify(v))))
}

// Uppercase implements uc.
func Uppercase(v Value) Value { return String(strings.ToUpper(Stringify(v))) }

// Lowercase implements lc.
func Lowercase(v Value) Value { return String(strings.ToLower(Stringify(v))) }

// Chr converts a code point to a one-character string.
func Chr(v Value) Value {
	f, ok := v.AsFloat()
	if !ok || f < 0 {
		return String("")
	}
	return String(string(rune(int(f))))
}

// Ord returns the first code point of the string rendering, 0 for "".
func Ord(v Value) Value {
	s := Stringify(v)
	if s == "" {
		return I32(0)
	}
	return I32(int32([]rune(s)[0]))
}

// DefaultIfEmpty substitutes def when v is undefined (empty sentinel or
// empty string), implementing the `$val || "default"` idiom.
func DefaultIfEmpty(v Value, def Value) Value {
	if !IsDefined(v) {
		return def
	}
	return v
}

// RegexSubstitute applies an s/pattern/replacement/ substitution to the
// string rendering of v and returns both whether anything matched and
// the (possibly unchanged) result, mirroring Perl's combined
// mutate-and-test `s///` semantics so generated conditions can branch
// on the match while keeping the substituted value.
//
// Only simple replacements are supported: an unparseable pattern, or a
// replacement using capture groups, reports no match and returns v
// unchanged.
func RegexSubstitute(pattern, replacement string, v Value) (bool, Value) {
	if strings.ContainsAny(replacement, "$\\") {
		return false, v
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, v
	}
	s := Stringify(v)
	if !re.MatchString(s) {
		return false, v
	}
	return true, String(re.ReplaceAllLiteralString(s, replacement))
}

// RegexMatch reports whether the pattern matches the string rendering
// of v, implementing the `=~ /.../ ` operator. An unparseable pattern
// never matches.
func RegexMatch(pattern string, v Value) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(Stringify(v))
}
