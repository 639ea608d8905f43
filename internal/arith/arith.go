// Package arith compiles the narrow arithmetic subset of conversion
// expressions directly to Go, bypassing the tree pipeline. It accepts
// + - * /, parentheses, the functions int, exp and log, numeric
// literals, and the $val variable; everything else is rejected so the
// caller falls through to the general pipeline.
package arith

import "strings"

// CompiledExpression is the result of a successful fast-path compile.
// GoExpr is a float64-typed expression over a variable named v, fully
// parenthesized; UsesMath reports whether it references the math
// package.
type CompiledExpression struct {
	Source   string
	RPN      []Token
	GoExpr   string
	UsesMath bool
}

// rejected lists substrings the subset can never handle. The scan is a
// cheap pre-filter so batch compilation fails fast without tokenizing
// the (very common) non-arithmetic expressions.
var rejected = []string{
	"?",
	"**",
	"&",
	"|",
	"^",
	"~",
	"<<",
	">>",
	"abs",
	"=~",
	"!~",
	"IsFloat",
}

// IsCompilable reports whether expr is worth attempting on the fast
// path. A true result does not guarantee Compile succeeds; a false
// result guarantees it would fail.
func IsCompilable(expr string) bool {
	for _, s := range rejected {
		if strings.Contains(expr, s) {
			return false
		}
	}
	return true
}

// Compile translates an arithmetic expression into a Go expression
// string. Tokenization fails on unrecognized characters, parsing on
// unbalanced parentheses or dangling operators.
func Compile(expr string) (*CompiledExpression, error) {
	tokens, err := NewTokenizer(expr).Tokenize()
	if err != nil {
		return nil, err
	}
	rpn, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	goExpr, usesMath, err := generate(rpn)
	if err != nil {
		return nil, err
	}
	return &CompiledExpression{
		Source:   expr,
		RPN:      rpn,
		GoExpr:   goExpr,
		UsesMath: usesMath,
	}, nil
}
