package normalize

import "convgen/internal/tree"

// callWords is the allow-list of bare words rewritten into canonical
// function calls. Anything else stays raw for the heuristic battery.
var callWords = map[string]bool{
	"length": true, "int": true, "sprintf": true, "substr": true,
	"index": true, "join": true, "split": true, "unpack": true,
	"pack": true, "ord": true, "chr": true, "uc": true, "lc": true,
	"abs": true, "sqrt": true, "hex": true, "oct": true,
}

// functionCallPass rewrites `sprintf "%.1f", $val` style parenless
// calls: a statement whose first child is an allow-listed word followed
// by argument nodes. A word already followed by a parenthesized list is
// left alone.
type functionCallPass struct{}

func (functionCallPass) Name() string { return "function-call" }

func (functionCallPass) Apply(n tree.Node) (tree.Node, bool) {
	if !statementLike(n) || len(n.Children) < 2 {
		return n, false
	}
	first := n.Children[0]
	if first.Kind != tree.Word || !callWords[first.Content] {
		return n, false
	}
	if n.Children[1].IsParenGroup() {
		return n, false
	}
	return tree.NewFunctionCall(first.Content, n.Children[1:]...), true
}

// splitTernary partitions a child sequence containing exactly one
// top-level ? and one : into the three sub-sequences. Any other
// arrangement fails the match.
func splitTernary(children []tree.Node) (cond, then, els []tree.Node, ok bool) {
	q, c := -1, -1
	for i, child := range children {
		switch {
		case child.IsOperator("?"):
			if q >= 0 {
				return nil, nil, nil, false
			}
			q = i
		case child.IsOperator(":"):
			if c >= 0 {
				return nil, nil, nil, false
			}
			c = i
		}
	}
	if q < 0 || c < 0 || q >= c {
		return nil, nil, nil, false
	}
	cond, then, els = children[:q], children[q+1:c], children[c+1:]
	if len(cond) == 0 || len(then) == 0 || len(els) == 0 {
		return nil, nil, nil, false
	}
	return cond, then, els, true
}

// safeDivisionPass rewrites the guarded-division idiom
// `$val ? N/$val : 0` before the general ternary pass can claim it.
type safeDivisionPass struct{}

func (safeDivisionPass) Name() string { return "safe-division" }

func (safeDivisionPass) Apply(n tree.Node) (tree.Node, bool) {
	if !statementLike(n) {
		return n, false
	}
	cond, then, els, ok := splitTernary(n.Children)
	if !ok {
		return n, false
	}
	if len(cond) != 1 || !cond[0].IsVariable() {
		return n, false
	}
	if len(els) != 1 || !els[0].NumberEquals(0) {
		return n, false
	}
	if len(then) != 3 || !then[1].IsOperator("/") || !then[2].IsVariable() {
		return n, false
	}
	numerator, denominator := then[0], then[2]
	if numerator.NumberEquals(1) {
		return tree.NewFunctionCall("safe-reciprocal", denominator), true
	}
	return tree.NewFunctionCall("safe-division", numerator, denominator), true
}

// ternaryPass rewrites any remaining ?/: shape into a canonical
// three-child conditional.
type ternaryPass struct{}

func (ternaryPass) Name() string { return "ternary" }

func (ternaryPass) Apply(n tree.Node) (tree.Node, bool) {
	if !statementLike(n) {
		return n, false
	}
	cond, then, els, ok := splitTernary(n.Children)
	if !ok {
		return n, false
	}
	return tree.NewTernary(
		tree.CollapseGroup(cond),
		tree.CollapseGroup(then),
		tree.CollapseGroup(els),
	), true
}

// stringOpPass rewrites top-level string concatenation (.) chains and
// single string repetition (x) operators.
type stringOpPass struct{}

func (stringOpPass) Name() string { return "string-op" }

func (stringOpPass) Apply(n tree.Node) (tree.Node, bool) {
	if !statementLike(n) {
		return n, false
	}
	if concat, ok := splitConcat(n.Children); ok {
		return concat, true
	}
	if repeat, ok := splitRepeat(n.Children); ok {
		return repeat, true
	}
	return n, false
}

func splitConcat(children []tree.Node) (tree.Node, bool) {
	var operands []tree.Node
	var current []tree.Node
	dots := 0
	for _, child := range children {
		if child.IsOperator(".") {
			if len(current) == 0 {
				return tree.Node{}, false
			}
			operands = append(operands, tree.CollapseGroup(current))
			current = nil
			dots++
			continue
		}
		current = append(current, child)
	}
	if dots == 0 || len(current) == 0 {
		return tree.Node{}, false
	}
	operands = append(operands, tree.CollapseGroup(current))
	return tree.NewStringConcat(operands...), true
}

func splitRepeat(children []tree.Node) (tree.Node, bool) {
	x := -1
	for i, child := range children {
		if child.IsOperator("x") {
			if x >= 0 {
				return tree.Node{}, false
			}
			x = i
		}
	}
	if x <= 0 || x == len(children)-1 {
		return tree.Node{}, false
	}
	return tree.NewStringRepeat(
		tree.CollapseGroup(children[:x]),
		tree.CollapseGroup(children[x+1:]),
	), true
}
