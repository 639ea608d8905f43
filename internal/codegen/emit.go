package codegen

import (
	"fmt"
	"strings"

	"convgen/internal/arith"
	"convgen/internal/tree"
)

// Signature returns the fixed function signature for a conversion kind.
// PrintConv and Condition are total; ValueConv keeps an error slot for
// hand-written registry implementations that can genuinely fail.
func Signature(kind tree.ConvKind, name string) string {
	switch kind {
	case tree.ValueConv:
		return fmt.Sprintf("func %s(val value.Value) (value.Value, error)", name)
	case tree.Condition:
		return fmt.Sprintf("func %s(val value.Value) bool", name)
	default:
		return fmt.Sprintf("func %s(val value.Value) value.Value", name)
	}
}

// Function wraps a rendered value expression into a complete function
// definition for the given kind.
func Function(kind tree.ConvKind, name, expr string) string {
	var b strings.Builder
	b.WriteString(Signature(kind, name))
	b.WriteString(" {\n")
	switch kind {
	case tree.ValueConv:
		fmt.Fprintf(&b, "\treturn %s, nil\n", expr)
	case tree.Condition:
		fmt.Fprintf(&b, "\treturn value.IsTruthy(%s)\n", expr)
	default:
		fmt.Fprintf(&b, "\treturn %s\n", expr)
	}
	b.WriteString("}\n")
	return b.String()
}

// FunctionFromArith wraps a fast-path compile into a full function. The
// float prologue passes non-numeric input through unchanged, matching
// how the tables behave on text values.
func FunctionFromArith(kind tree.ConvKind, name string, ce *arith.CompiledExpression) string {
	var b strings.Builder
	b.WriteString(Signature(kind, name))
	b.WriteString(" {\n")
	b.WriteString("\tv, ok := val.AsFloat()\n")
	switch kind {
	case tree.ValueConv:
		b.WriteString("\tif !ok {\n\t\treturn val, nil\n\t}\n")
		fmt.Fprintf(&b, "\treturn value.F64(%s), nil\n", ce.GoExpr)
	case tree.Condition:
		b.WriteString("\tif !ok {\n\t\treturn false\n\t}\n")
		fmt.Fprintf(&b, "\treturn %s != 0\n", ce.GoExpr)
	default:
		b.WriteString("\tif !ok {\n\t\treturn val\n\t}\n")
		fmt.Fprintf(&b, "\treturn value.F64(%s)\n", ce.GoExpr)
	}
	b.WriteString("}\n")
	return b.String()
}
