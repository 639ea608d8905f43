package arith

import "fmt"

// goFuncs maps the subset's math functions to their Go renderings.
var goFuncs = map[string]string{
	"int": "math.Trunc",
	"exp": "math.Exp",
	"log": "math.Log",
}

// generate walks the postfix sequence left to right with a stack of
// rendered sub-expressions and yields one fully parenthesized float64
// expression over a variable named v. A malformed stream here is a
// parser defect, surfaced as an error rather than a panic.
func generate(rpn []Token) (goExpr string, usesMath bool, err error) {
	var stack []string

	for _, tok := range rpn {
		switch tok.Type {
		case VARIABLE:
			stack = append(stack, "v")
		case NUMBER:
			stack = append(stack, tok.Literal)
		case PLUS, MINUS, STAR, SLASH:
			if len(stack) < 2 {
				return "", false, fmt.Errorf("postfix stream underflow at operator %q", tok.Literal)
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, fmt.Sprintf("(%s %s %s)", left, tok.Literal, right))
		case FUNC:
			if len(stack) < 1 {
				return "", false, fmt.Errorf("postfix stream underflow at function %q", tok.Literal)
			}
			arg := stack[len(stack)-1]
			stack[len(stack)-1] = fmt.Sprintf("%s(%s)", goFuncs[tok.Literal], arg)
			usesMath = true
		default:
			return "", false, fmt.Errorf("unexpected token %s in postfix stream", tok.Type)
		}
	}

	if len(stack) != 1 {
		return "", false, fmt.Errorf("postfix stream left %d values on the stack", len(stack))
	}
	return stack[0], usesMath, nil
}
