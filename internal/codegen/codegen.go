// Package codegen turns normalized expression trees into Go source
// fragments. Every generated fragment is a value.Value-typed expression
// over a parameter named val; the registry wraps fragments into full
// function bodies per conversion kind.
package codegen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"convgen/internal/tree"
)

// ErrUnsupported marks an expression structure no recognizer handles.
// It is the expected, common signal that routes resolution to the next
// tier, never a fatal condition.
var ErrUnsupported = errors.New("unsupported expression structure")

// Unsupported wraps ErrUnsupported with the shape that failed, so batch
// reports can group failures.
func Unsupported(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrUnsupported}, args...)...)
}

// Generator renders trees for one conversion kind.
type Generator struct {
	kind tree.ConvKind
}

// New creates a Generator for the given conversion kind
func New(kind tree.ConvKind) *Generator {
	return &Generator{kind: kind}
}

// Generate renders a whole tree into a single value.Value expression.
func (g *Generator) Generate(n tree.Node) (string, error) {
	return g.render(n)
}

// render produces the fragment for one node. Canonical kinds delegate
// to their dedicated renderer; sequence nodes render their children
// individually and hand fragments plus originals to the heuristic
// battery.
func (g *Generator) render(n tree.Node) (string, error) {
	switch n.Kind {
	case tree.Symbol:
		if n.IsVariable() {
			return "val", nil
		}
		return "", Unsupported("symbol %q", n.Content)
	case tree.Number:
		return fmt.Sprintf("value.F64(%s)", numberLiteral(n)), nil
	case tree.StringLit:
		return fmt.Sprintf("value.String(%s)", strconv.Quote(n.StringContent())), nil
	case tree.Operator, tree.Word, tree.Cast, tree.Regexp:
		// Bare tokens carry no expression by themselves; the battery
		// inspects them through the original child nodes. They must
		// never escape into output, see operand.
		return n.Content, nil
	case tree.FunctionCall:
		return g.renderCall(n)
	case tree.Ternary:
		return g.renderTernary(n)
	case tree.StringConcat:
		return g.renderConcat(n.Children)
	case tree.StringRepeat:
		return g.renderRepeat(n)
	case tree.Statement, tree.Group, tree.List:
		return g.renderSequence(n.Children)
	case tree.Structure:
		if n.Bounds == "(" {
			return g.renderSequence(n.Children)
		}
		return "", Unsupported("structure bounded by %q", n.Bounds)
	default:
		return "", Unsupported("node kind %q", n.Kind)
	}
}

// isRawToken reports node kinds that render to their source text for
// shape inspection only.
func isRawToken(k tree.Kind) bool {
	switch k {
	case tree.Operator, tree.Word, tree.Cast, tree.Regexp:
		return true
	}
	return false
}

// operand renders a node that must stand on its own as a value
// expression. Raw tokens are rejected here so source-language text
// never leaks into generated Go.
func (g *Generator) operand(n tree.Node) (string, error) {
	if isRawToken(n.Kind) {
		return "", Unsupported("bare %s %q", n.Kind, n.Content)
	}
	return g.render(n)
}

func (g *Generator) renderSequence(children []tree.Node) (string, error) {
	fragments := make([]string, len(children))
	for i, c := range children {
		f, err := g.render(c)
		if err != nil {
			return "", err
		}
		fragments[i] = f
	}
	return g.combine(fragments, children)
}

func (g *Generator) renderTernary(n tree.Node) (string, error) {
	if len(n.Children) != 3 {
		return "", Unsupported("ternary with %d children", len(n.Children))
	}
	cond, err := g.operand(n.Children[0])
	if err != nil {
		return "", err
	}
	then, err := g.operand(n.Children[1])
	if err != nil {
		return "", err
	}
	els, err := g.operand(n.Children[2])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("value.If(%s, %s, %s)", cond, then, els), nil
}

func (g *Generator) renderConcat(operands []tree.Node) (string, error) {
	fragments := make([]string, len(operands))
	for i, c := range operands {
		f, err := g.operand(c)
		if err != nil {
			return "", err
		}
		fragments[i] = f
	}
	return fmt.Sprintf("value.Concat(%s)", strings.Join(fragments, ", ")), nil
}

func (g *Generator) renderRepeat(n tree.Node) (string, error) {
	if len(n.Children) != 2 {
		return "", Unsupported("repeat with %d children", len(n.Children))
	}
	s, err := g.operand(n.Children[0])
	if err != nil {
		return "", err
	}
	count, err := g.operand(n.Children[1])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("value.Repeat(%s, %s)", s, count), nil
}

// numberLiteral renders a numeric node as Go source, preferring the raw
// content so "0.5" stays "0.5".
func numberLiteral(n tree.Node) string {
	if n.Content != "" {
		return n.Content
	}
	if n.NumValue != nil {
		return strconv.FormatFloat(*n.NumValue, 'g', -1, 64)
	}
	return "0"
}

// splitArgs partitions call arguments on top-level comma nodes.
func splitArgs(children []tree.Node) [][]tree.Node {
	var groups [][]tree.Node
	var current []tree.Node
	for _, c := range children {
		if c.IsOperator(",") || c.IsOperator("=>") {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			continue
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
