// Package tree holds the generic expression-tree model shared by the
// normalizer and the code generator. Trees arrive pre-parsed from the
// table extractor as JSON; nodes are never mutated in place, every
// rewrite builds a replacement.
package tree

import (
	"encoding/json"
	"fmt"
	"io"
)

// Kind tags a node with its syntactic or canonical role. The first
// group comes straight from the extractor; the canonical kinds are
// produced only by the normalizer.
type Kind string

const (
	Statement Kind = "statement"
	Operator  Kind = "operator"
	Symbol    Kind = "symbol"
	Number    Kind = "number"
	StringLit Kind = "string"
	Word      Kind = "word"
	Structure Kind = "structure"
	List      Kind = "list"
	Cast      Kind = "cast"
	Regexp    Kind = "regexp"

	FunctionCall Kind = "function-call"
	Ternary      Kind = "ternary"
	StringConcat Kind = "string-concat"
	StringRepeat Kind = "string-repeat"
	Group        Kind = "group"
)

// Node is one immutable expression-tree node. Content carries the raw
// source text; NumValue and StrValue carry the typed literal when the
// extractor resolved one. Children are order-significant. SymbolKind
// classifies symbol nodes ("val", "self"); Bounds records the
// delimiter of structure nodes ("(", "[", "{").
type Node struct {
	Kind       Kind     `json:"kind"`
	Content    string   `json:"content,omitempty"`
	NumValue   *float64 `json:"number,omitempty"`
	StrValue   *string  `json:"string,omitempty"`
	Children   []Node   `json:"children,omitempty"`
	SymbolKind string   `json:"symbol,omitempty"`
	Bounds     string   `json:"bounds,omitempty"`
}

// Decode reads one JSON-encoded tree.
func Decode(r io.Reader) (Node, error) {
	var n Node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&n); err != nil {
		return Node{}, fmt.Errorf("decoding expression tree: %w", err)
	}
	return n, nil
}

// DecodeBytes reads one JSON-encoded tree from a byte slice.
func DecodeBytes(b []byte) (Node, error) {
	var n Node
	if err := json.Unmarshal(b, &n); err != nil {
		return Node{}, fmt.Errorf("decoding expression tree: %w", err)
	}
	return n, nil
}

// CanonicalJSON is the stable serialization hashed for function
// identity. Field order follows the struct, so equal trees always
// serialize identically.
func (n Node) CanonicalJSON() ([]byte, error) {
	return json.Marshal(n)
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsVariable reports whether the node is the $val variable reference.
func (n Node) IsVariable() bool {
	return n.Kind == Symbol && (n.SymbolKind == "val" || n.Content == "$val")
}

// IsSelfReference reports whether the node references another tag via
// the reader object ($$self{Field}).
func (n Node) IsSelfReference() bool {
	return n.Kind == Symbol && (n.SymbolKind == "self" || n.Content == "$$self" || n.Content == "$self")
}

// SelfField returns the field name of a reader-object reference: the
// subscript of the following structure child, or "" when absent.
func (n Node) SelfField() string {
	if !n.IsSelfReference() {
		return ""
	}
	if len(n.Children) == 1 && n.Children[0].Kind == Word {
		return n.Children[0].Content
	}
	return ""
}

// IsOperator reports whether the node is the given operator token.
func (n Node) IsOperator(op string) bool {
	return n.Kind == Operator && n.Content == op
}

// IsAnyOperator reports whether the node is any operator token.
func (n Node) IsAnyOperator() bool { return n.Kind == Operator }

// IsNumber reports whether the node is a numeric literal.
func (n Node) IsNumber() bool { return n.Kind == Number }

// NumberEquals reports whether the node is the given numeric literal,
// by typed value when present, else by content text.
func (n Node) NumberEquals(f float64) bool {
	if n.Kind != Number {
		return false
	}
	if n.NumValue != nil {
		return *n.NumValue == f
	}
	return n.Content == fmt.Sprintf("%g", f)
}

// IsString reports whether the node is a string literal.
func (n Node) IsString() bool { return n.Kind == StringLit }

// StringContent returns the literal text of a string node, preferring
// the typed value over the raw (quoted) content.
func (n Node) StringContent() string {
	if n.StrValue != nil {
		return *n.StrValue
	}
	return n.Content
}

// IsWord reports whether the node is the given bare word.
func (n Node) IsWord(w string) bool { return n.Kind == Word && n.Content == w }

// IsParenGroup reports whether the node is a parenthesized structure.
func (n Node) IsParenGroup() bool { return n.Kind == Structure && n.Bounds == "(" }

// Canonical constructors, used by the normalizer.

// NewFunctionCall builds a canonical call node; args keep their order.
func NewFunctionCall(name string, args ...Node) Node {
	return Node{Kind: FunctionCall, Content: name, Children: args}
}

// NewTernary builds a canonical conditional with exactly three children.
func NewTernary(cond, then, els Node) Node {
	return Node{Kind: Ternary, Children: []Node{cond, then, els}}
}

// NewStringConcat builds a canonical concatenation over the operand
// groups in left-to-right order.
func NewStringConcat(operands ...Node) Node {
	return Node{Kind: StringConcat, Children: operands}
}

// NewStringRepeat builds a canonical repetition (string, count).
func NewStringRepeat(s, count Node) Node {
	return Node{Kind: StringRepeat, Children: []Node{s, count}}
}

// NewGroup wraps a multi-node operand sub-sequence.
func NewGroup(children []Node) Node {
	return Node{Kind: Group, Children: children}
}

// CollapseGroup returns the single node of a one-element sub-sequence,
// or wraps longer sequences in a group node.
func CollapseGroup(nodes []Node) Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return NewGroup(nodes)
}

// NewNumber builds a numeric literal node.
func NewNumber(f float64) Node {
	v := f
	return Node{Kind: Number, Content: fmt.Sprintf("%g", f), NumValue: &v}
}

// NewString builds a string literal node.
func NewString(s string) Node {
	v := s
	return Node{Kind: StringLit, Content: s, StrValue: &v}
}

// NewVariable builds the $val reference.
func NewVariable() Node {
	return Node{Kind: Symbol, Content: "$val", SymbolKind: "val"}
}
