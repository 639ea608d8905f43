package codegen

import (
	"fmt"
	"strings"

	"convgen/internal/tree"
)

// binaryOps is the operator set the generic binary recognizer accepts.
var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"eq": true, "ne": true, "lt": true, "gt": true, "le": true, "ge": true,
	"&&": true, "||": true, "and": true, "or": true,
	".": true, "x": true,
}

// canonicalKinds are the normalizer's output shapes; a leading
// canonical node always wins over heuristic matching.
func isCanonical(k tree.Kind) bool {
	switch k {
	case tree.FunctionCall, tree.Ternary, tree.StringConcat, tree.StringRepeat:
		return true
	}
	return false
}

// combine resolves a child sequence into one fragment. The battery is
// ordered: the first recognizer that matches wins, and a sequence no
// recognizer claims fails with ErrUnsupported — the expected signal for
// the registry to try the next tier.
func (g *Generator) combine(fragments []string, children []tree.Node) (string, error) {
	if len(fragments) == 0 {
		return "", nil
	}
	if isCanonical(children[0].Kind) {
		return fragments[0], nil
	}
	if len(fragments) == 1 {
		if isRawToken(children[0].Kind) {
			return "", Unsupported("bare %s %q", children[0].Kind, children[0].Content)
		}
		return fragments[0], nil
	}

	first := children[0]

	// Word-led shapes the normalizer could not claim because the word
	// was not in statement position.
	if first.Kind == tree.Word {
		switch first.Content {
		case "join", "unpack", "sprintf":
			return g.renderCall(tree.NewFunctionCall(first.Content, children[1:]...))
		case "log", "length":
			if len(children) == 2 {
				arg, err := g.operand(children[1])
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s(%s)", unaryHelpers[first.Content], arg), nil
			}
		case "pack":
			return g.renderPackBitExtract(children)
		}
	}

	if out, ok, err := g.combineConcat(children); ok || err != nil {
		return out, err
	}

	if len(children) == 2 && first.IsAnyOperator() && !isRawToken(children[1].Kind) {
		switch first.Content {
		case "!", "~", "not":
			return fmt.Sprintf("value.Not(%s)", fragments[1]), nil
		case "-":
			return fmt.Sprintf("value.Negate(%s)", fragments[1]), nil
		case "+":
			return fragments[1], nil
		}
	}

	if len(children) == 3 && children[1].IsAnyOperator() && binaryOps[children[1].Content] &&
		!isRawToken(children[0].Kind) && !isRawToken(children[2].Kind) {
		// Exposure math is dominated by powers of two; give them the
		// dedicated helper instead of the generic power dispatch.
		if children[1].Content == "**" && children[0].NumberEquals(2) {
			return fmt.Sprintf("value.Pow2(%s)", fragments[2]), nil
		}
		return fmt.Sprintf("value.BinOp(%q, %s, %s)",
			children[1].Content, fragments[0], fragments[2]), nil
	}

	return "", Unsupported("sequence of %d nodes starting with %s %q",
		len(children), first.Kind, first.Content)
}

// combineConcat handles dot chains the string-op pass missed, e.g.
// sequences nested below a non-statement parent.
func (g *Generator) combineConcat(children []tree.Node) (string, bool, error) {
	var groups [][]tree.Node
	var current []tree.Node
	dots := 0
	for _, c := range children {
		if c.IsOperator(".") {
			if len(current) == 0 {
				return "", false, nil
			}
			groups = append(groups, current)
			current = nil
			dots++
			continue
		}
		current = append(current, c)
	}
	if dots == 0 || len(current) == 0 {
		return "", false, nil
	}
	groups = append(groups, current)

	rendered := make([]string, len(groups))
	for i, grp := range groups {
		f, err := g.renderSequence(grp)
		if err != nil {
			return "", true, err
		}
		rendered[i] = f
	}
	return fmt.Sprintf("value.Concat(%s)", strings.Join(rendered, ", ")), true, nil
}

// renderPackBitExtract recognizes the serial-number decoding idiom
//
//	pack "C*", map { (($val>>$_)&0x0f)+0x30 } 20,16,12,8,4,0
//
// and lifts the shift list, mask, and offset out as compile-time
// constants instead of interpreting the map block at runtime.
func (g *Generator) renderPackBitExtract(children []tree.Node) (string, error) {
	if len(children) < 4 || !children[0].IsWord("pack") {
		return "", Unsupported("pack shape")
	}
	if !children[1].IsString() || children[1].StringContent() != "C*" {
		return "", Unsupported("pack template %q", children[1].Content)
	}

	blockIdx := -1
	for i, c := range children {
		if c.IsWord("map") && i+1 < len(children) &&
			children[i+1].Kind == tree.Structure && children[i+1].Bounds == "{" {
			blockIdx = i + 1
			break
		}
	}
	if blockIdx < 0 {
		return "", Unsupported("pack without map block")
	}

	mask, offset, ok := scanBitMath(children[blockIdx])
	if !ok {
		return "", Unsupported("map block is not a bit extraction")
	}

	var shifts []string
	for _, c := range children[blockIdx+1:] {
		if c.IsOperator(",") {
			continue
		}
		if !c.IsNumber() {
			return "", Unsupported("non-numeric shift amount %q", c.Content)
		}
		shifts = append(shifts, numberLiteral(c))
	}
	if len(shifts) == 0 {
		return "", Unsupported("pack without shift amounts")
	}

	return fmt.Sprintf("value.PackBitExtract(val, []int{%s}, %s, %s)",
		strings.Join(shifts, ", "), mask, offset), nil
}

// scanBitMath walks a map block looking for (($val>>$_)&MASK)+OFFSET,
// returning the mask and offset literals. The offset defaults to 0.
func scanBitMath(block tree.Node) (mask, offset string, ok bool) {
	offset = "0"
	sawShift := false

	var walk func(n tree.Node)
	walk = func(n tree.Node) {
		for i, c := range n.Children {
			if c.IsOperator(">>") {
				sawShift = true
			}
			if c.IsOperator("&") && i+1 < len(n.Children) && n.Children[i+1].IsNumber() {
				mask = numberLiteral(n.Children[i+1])
			}
			if c.IsOperator("+") && i+1 < len(n.Children) && n.Children[i+1].IsNumber() {
				offset = numberLiteral(n.Children[i+1])
			}
			walk(c)
		}
	}
	walk(block)

	if !sawShift || mask == "" {
		return "", "", false
	}
	return mask, offset, true
}
