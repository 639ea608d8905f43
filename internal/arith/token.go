package arith

import "fmt"

// TokenType represents the type of an arithmetic token
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	VARIABLE // $val
	NUMBER   // 123, 123.45

	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	FUNC // int, exp, log

	LPAREN // (
	RPAREN // )
)

// Token represents a lexical token of the arithmetic subset
type Token struct {
	Type    TokenType
	Literal string
	Column  int
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case VARIABLE:
		return "VARIABLE"
	case NUMBER:
		return "NUMBER"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case STAR:
		return "STAR"
	case SLASH:
		return "SLASH"
	case FUNC:
		return "FUNC"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	default:
		return fmt.Sprintf("TokenType(%d)", t)
	}
}

// isOperator reports whether the token is one of the four binary operators.
func (t Token) isOperator() bool {
	switch t.Type {
	case PLUS, MINUS, STAR, SLASH:
		return true
	}
	return false
}

// precedence returns the binding strength used by the Shunting-Yard
// parser. All four operators are left-associative.
func (t Token) precedence() int {
	switch t.Type {
	case STAR, SLASH:
		return 2
	case PLUS, MINUS:
		return 1
	}
	return 0
}
