package arith

import "fmt"

// parse converts an infix token stream into reverse-Polish order using
// Shunting-Yard. All operators are left-associative with standard
// precedence. The returned sequence is validated so the generator can
// treat a malformed stream as a defect rather than a user error.
func parse(tokens []Token) ([]Token, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	if tokens[0].isOperator() {
		return nil, fmt.Errorf("expression starts with operator %q", tokens[0].Literal)
	}
	if last := tokens[len(tokens)-1]; last.isOperator() {
		return nil, fmt.Errorf("expression ends with operator %q", last.Literal)
	}

	var output []Token
	var ops []Token

	for _, tok := range tokens {
		switch tok.Type {
		case NUMBER, VARIABLE:
			output = append(output, tok)
		case FUNC:
			ops = append(ops, tok)
		case PLUS, MINUS, STAR, SLASH:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Type == LPAREN || top.precedence() < tok.precedence() {
					break
				}
				output = append(output, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
		case LPAREN:
			ops = append(ops, tok)
		case RPAREN:
			found := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.Type == LPAREN {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, fmt.Errorf("unbalanced parenthesis at column %d", tok.Column)
			}
			if len(ops) > 0 && ops[len(ops)-1].Type == FUNC {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
		default:
			return nil, fmt.Errorf("unexpected token %s", tok.Type)
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.Type == LPAREN {
			return nil, fmt.Errorf("unbalanced parenthesis at column %d", top.Column)
		}
		output = append(output, top)
	}

	if err := validateRPN(output); err != nil {
		return nil, err
	}
	return output, nil
}

// validateRPN simulates stack depth over the postfix sequence: every
// operand pushes one, every binary operator nets minus one, every
// function keeps depth. A well-formed expression ends at depth one.
func validateRPN(rpn []Token) error {
	depth := 0
	for _, tok := range rpn {
		switch tok.Type {
		case NUMBER, VARIABLE:
			depth++
		case FUNC:
			if depth < 1 {
				return fmt.Errorf("function %q has no argument", tok.Literal)
			}
		case PLUS, MINUS, STAR, SLASH:
			if depth < 2 {
				return fmt.Errorf("operator %q missing operand", tok.Literal)
			}
			depth--
		default:
			return fmt.Errorf("unexpected token %s in postfix stream", tok.Type)
		}
	}
	if depth != 1 {
		return fmt.Errorf("expression does not reduce to a single value")
	}
	return nil
}
