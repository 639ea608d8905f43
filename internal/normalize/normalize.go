// Package normalize rewrites raw expression trees into the small set of
// canonical shapes the code generator recognizes first. Traversal is
// bottom-up and owned by the engine: children are normalized before
// their parent is offered to the passes, in a fixed priority order, and
// the first pass that matches consumes the node. A replacement is never
// re-offered at the same position, which keeps pass interactions
// decidable.
package normalize

import "convgen/internal/tree"

// Pass is one rewrite rule. Apply returns the replacement node and true
// when the pass matches; a non-matching pass returns its input and
// false. Passes see nodes whose children are already normalized and
// must not mutate them.
type Pass interface {
	Name() string
	Apply(n tree.Node) (tree.Node, bool)
}

// passes holds the rules in priority order. Safe-division must run
// before the general ternary pass or the specific shape is lost.
var passes = []Pass{
	functionCallPass{},
	safeDivisionPass{},
	ternaryPass{},
	stringOpPass{},
}

// Normalize canonicalizes a tree. It is pure and total: an unmatched
// tree comes back structurally unchanged.
func Normalize(n tree.Node) tree.Node {
	if len(n.Children) > 0 {
		children := make([]tree.Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = Normalize(c)
		}
		n.Children = children
	}
	for _, p := range passes {
		if replaced, ok := p.Apply(n); ok {
			return replaced
		}
	}
	return n
}

// statementLike reports whether a node's children form an expression
// sequence the partitioning passes may inspect. Parenthesized
// structures qualify because the parens carry grouping only.
func statementLike(n tree.Node) bool {
	switch n.Kind {
	case tree.Statement, tree.Group:
		return true
	case tree.Structure:
		return n.Bounds == "("
	}
	return false
}
