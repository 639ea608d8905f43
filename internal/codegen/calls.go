package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"convgen/internal/tree"
)

// unaryHelpers maps single-argument call names onto runtime helpers.
var unaryHelpers = map[string]string{
	"length": "value.Length",
	"int":    "value.Int",
	"abs":    "value.Abs",
	"sqrt":   "value.Sqrt",
	"hex":    "value.Hex",
	"oct":    "value.Oct",
	"uc":     "value.Uppercase",
	"lc":     "value.Lowercase",
	"chr":    "value.Chr",
	"ord":    "value.Ord",
	"exp":    "value.Exp",
	"log":    "value.Log",
}

// renderCall renders a canonical function-call node. Unknown call names
// fail with ErrUnsupported so resolution can fall through.
func (g *Generator) renderCall(n tree.Node) (string, error) {
	args := splitArgs(n.Children)

	switch n.Content {
	case "safe-reciprocal":
		if len(args) != 1 {
			return "", Unsupported("safe-reciprocal with %d arguments", len(args))
		}
		den, err := g.renderSequence(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("value.SafeReciprocal(%s)", den), nil

	case "safe-division":
		if len(args) != 2 || len(args[0]) != 1 || !args[0][0].IsNumber() {
			return "", Unsupported("safe-division shape")
		}
		den, err := g.renderSequence(args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("value.SafeDivision(%s, %s)", numberLiteral(args[0][0]), den), nil

	case "sprintf":
		return g.renderSprintf(args)

	case "join":
		return g.renderJoin(args)

	case "unpack":
		return g.renderUnpack(args)

	case "split":
		if len(args) != 2 {
			return "", Unsupported("split with %d arguments", len(args))
		}
		sep, err := g.renderSequence(args[0])
		if err != nil {
			return "", err
		}
		v, err := g.renderSequence(args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("value.Split(%s, %s)", sep, v), nil

	case "substr":
		return g.renderSubstr(args)

	case "pack":
		raw := append([]tree.Node{{Kind: tree.Word, Content: "pack"}}, n.Children...)
		return g.renderPackBitExtract(raw)

	case "index":
		if len(args) != 2 {
			return "", Unsupported("index with %d arguments", len(args))
		}
		h, err := g.renderSequence(args[0])
		if err != nil {
			return "", err
		}
		needle, err := g.renderSequence(args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("value.IndexOf(%s, %s)", h, needle), nil
	}

	if helper, ok := unaryHelpers[n.Content]; ok {
		if len(args) != 1 {
			return "", Unsupported("%s with %d arguments", n.Content, len(args))
		}
		arg, err := g.renderSequence(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", helper, arg), nil
	}

	return "", Unsupported("function %q", n.Content)
}

// renderSprintf handles both the plain comma-argument form and formats
// whose operands are themselves concatenations or repetitions.
func (g *Generator) renderSprintf(args [][]tree.Node) (string, error) {
	if len(args) == 0 {
		return "", Unsupported("sprintf without arguments")
	}
	format, ok := literalString(args[0])
	if !ok {
		return "", Unsupported("sprintf with non-literal format")
	}
	rendered := make([]string, 0, len(args))
	rendered = append(rendered, strconv.Quote(format))
	for _, group := range args[1:] {
		f, err := g.renderSequence(group)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, f)
	}
	return fmt.Sprintf("value.SprintfPerl(%s)", strings.Join(rendered, ", ")), nil
}

// renderJoin recognizes the `join sep, unpack template, $val` idiom.
// Any other join shape is unsupported.
func (g *Generator) renderJoin(args [][]tree.Node) (string, error) {
	if len(args) < 2 {
		return "", Unsupported("join with %d arguments", len(args))
	}
	sep, ok := literalString(args[0])
	if !ok {
		return "", Unsupported("join with non-literal separator")
	}
	rest := args[1]
	if len(rest) >= 2 && rest[0].IsWord("unpack") && rest[1].IsString() {
		if len(args) != 3 {
			return "", Unsupported("join-of-unpack argument count")
		}
		v, err := g.renderSequence(args[2])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("value.JoinUnpack(%s, %s, %s)",
			strconv.Quote(sep), strconv.Quote(rest[1].StringContent()), v), nil
	}
	return "", Unsupported("join over non-unpack operand")
}

func (g *Generator) renderUnpack(args [][]tree.Node) (string, error) {
	if len(args) != 2 {
		return "", Unsupported("unpack with %d arguments", len(args))
	}
	template, ok := literalString(args[0])
	if !ok {
		return "", Unsupported("unpack with non-literal template")
	}
	v, err := g.renderSequence(args[1])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("value.Array(value.Unpack(%s, %s))", strconv.Quote(template), v), nil
}

func (g *Generator) renderSubstr(args [][]tree.Node) (string, error) {
	if len(args) != 2 && len(args) != 3 {
		return "", Unsupported("substr with %d arguments", len(args))
	}
	v, err := g.renderSequence(args[0])
	if err != nil {
		return "", err
	}
	offset, err := g.renderSequence(args[1])
	if err != nil {
		return "", err
	}
	length := "value.Empty()"
	if len(args) == 3 {
		length, err = g.renderSequence(args[2])
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("value.Substr(%s, %s, %s)", v, offset, length), nil
}

// literalString extracts a single string-literal argument group.
func literalString(group []tree.Node) (string, bool) {
	if len(group) != 1 || !group[0].IsString() {
		return "", false
	}
	return group[0].StringContent(), true
}
