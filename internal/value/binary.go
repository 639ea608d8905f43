package value

import (
	"fmt"
	"strings"
)

// Unpack interprets the bytes of v according to a Perl unpack template.
// Supported directives: C c (bytes), n N (big-endian 16/32), v V
// (little-endian 16/32), H<n> (hex string of n digits), each with an
// optional repeat count where * means "to the end of the data".
// Non-binary, non-string input yields a single zero element.
func Unpack(template string, v Value) []Value {
	var data []byte
	switch v.kind {
	case KindBinary:
		data = v.bin
	case KindString:
		data = []byte(v.str)
	case KindU8Array:
		data = v.u8s
	default:
		return []Value{I32(0)}
	}
	return unpackBytes(template, data)
}

func unpackBytes(template string, data []byte) []Value {
	var out []Value
	pos := 0

	for i := 0; i < len(template); i++ {
		dir := template[i]

		// Read the count suffix (digits or *).
		count, star := 1, false
		j := i + 1
		if j < len(template) && template[j] == '*' {
			star = true
			i = j
		} else {
			n := 0
			for j < len(template) && template[j] >= '0' && template[j] <= '9' {
				n = n*10 + int(template[j]-'0')
				j++
			}
			if j > i+1 {
				count = n
				i = j - 1
			}
		}

		switch dir {
		case 'H':
			// H consumes its count as hex digits, default 2.
			digits := 2
			if star {
				digits = len(data[pos:]) * 2
			} else if count != 1 {
				digits = count
			}
			byteCount := (digits + 1) / 2
			var sb strings.Builder
			for k := 0; k < byteCount; k++ {
				if pos < len(data) {
					fmt.Fprintf(&sb, "%02x", data[pos])
					pos++
				} else {
					sb.WriteString("00")
				}
			}
			hex := sb.String()
			if len(hex) > digits {
				hex = hex[:digits]
			}
			out = append(out, String(hex))
		case 'C', 'c':
			width := 1
			out = appendInts(out, data, &pos, dir, width, count, star)
		case 'n', 'v':
			out = appendInts(out, data, &pos, dir, 2, count, star)
		case 'N', 'V':
			out = appendInts(out, data, &pos, dir, 4, count, star)
		default:
			// Unknown directive: skip one byte per repeat.
			pos += count
		}
	}

	return out
}

func appendInts(out []Value, data []byte, pos *int, dir byte, width, count int, star bool) []Value {
	if star {
		count = (len(data) - *pos) / width
	}
	for k := 0; k < count; k++ {
		if *pos+width > len(data) {
			out = append(out, I32(0))
			*pos = len(data)
			continue
		}
		b := data[*pos : *pos+width]
		*pos += width
		switch dir {
		case 'C':
			out = append(out, U8(b[0]))
		case 'c':
			out = append(out, I32(int32(int8(b[0]))))
		case 'n':
			out = append(out, U16(uint16(b[0])<<8|uint16(b[1])))
		case 'v':
			out = append(out, U16(uint16(b[0])|uint16(b[1])<<8))
		case 'N':
			out = append(out, U32(uint32(b[0])<<24|uint32(b[1])<<16|uint32(b[2])<<8|uint32(b[3])))
		case 'V':
			out = append(out, U32(uint32(b[0])|uint32(b[1])<<8|uint32(b[2])<<16|uint32(b[3])<<24))
		}
	}
	return out
}

// JoinUnpack implements the `join sep, unpack template, $val` idiom in
// one call: unpack then join the string renderings.
func JoinUnpack(sep, template string, v Value) Value {
	elems := Unpack(template, v)
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = Stringify(e)
	}
	return String(strings.Join(parts, sep))
}

// PackBitExtract implements `pack "C*", map { (($val>>$_)&mask)+offset }
// shifts...`: extract a bit field per shift amount, bias it into a
// character range, and pack the results into a string. Non-numeric
// input yields the empty string.
func PackBitExtract(v Value, shifts []int, mask, offset int) Value {
	f, ok := v.AsFloat()
	if !ok {
		return String("")
	}
	n := int64(f)
	chars := make([]byte, len(shifts))
	for i, s := range shifts {
		chars[i] = byte((n>>uint(s))&int64(mask) + int64(offset))
	}
	return String(string(chars))
}

// SprintfPerl formats values with a Perl-style format string. The
// directives used by the conversion tables map directly onto Go's fmt
// verbs; %s arguments are stringified first so every variant formats.
// Extra arguments are ignored and missing ones format as empty, so the
// call is total.
func SprintfPerl(format string, args ...Value) Value {
	goArgs := make([]interface{}, 0, len(args))
	verbs := countVerbs(format)
	for i := 0; i < verbs; i++ {
		if i >= len(args) {
			goArgs = append(goArgs, "")
			continue
		}
		goArgs = append(goArgs, sprintfArg(format, i, args[i]))
	}
	return String(fmt.Sprintf(format, goArgs...))
}

func countVerbs(format string) int {
	n := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}

// sprintfArg picks the Go argument representation for the i-th verb.
func sprintfArg(format string, idx int, v Value) interface{} {
	verb := verbAt(format, idx)
	switch verb {
	case 'd', 'x', 'X', 'o', 'b', 'c':
		f, ok := v.AsFloat()
		if !ok {
			return 0
		}
		return int64(f)
	case 'f', 'e', 'E', 'g', 'G':
		f, ok := v.AsFloat()
		if !ok {
			return 0.0
		}
		return f
	default:
		return Stringify(v)
	}
}

func verbAt(format string, idx int) byte {
	n := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			i++
			continue
		}
		// Skip flags, width, and precision to the verb letter.
		j := i + 1
		for j < len(format) && strings.IndexByte("+-# 0123456789.", format[j]) >= 0 {
			j++
		}
		if j < len(format) {
			if n == idx {
				return format[j]
			}
			n++
			i = j
		}
	}
	return 's'
}
