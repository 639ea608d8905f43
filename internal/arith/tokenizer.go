package arith

import "fmt"

// funcNames is the fixed set of math functions the arithmetic subset
// accepts. Everything else routes through the general tree pipeline.
var funcNames = map[string]bool{
	"int": true,
	"exp": true,
	"log": true,
}

// Tokenizer scans an arithmetic expression and produces tokens
type Tokenizer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	column       int  // current column number

	prev TokenType // last emitted token type, for unary-minus detection
}

// NewTokenizer creates a new Tokenizer instance
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{input: input, prev: ILLEGAL}
	t.readChar()
	return t
}

// readChar reads the next character and advances the position
func (t *Tokenizer) readChar() {
	if t.readPosition >= len(t.input) {
		t.ch = 0
	} else {
		t.ch = t.input[t.readPosition]
	}
	t.position = t.readPosition
	t.readPosition++
	t.column++
}

// peekChar returns the next character without advancing the position
func (t *Tokenizer) peekChar() byte {
	if t.readPosition >= len(t.input) {
		return 0
	}
	return t.input[t.readPosition]
}

func (t *Tokenizer) skipWhitespace() {
	for t.ch == ' ' || t.ch == '\t' {
		t.readChar()
	}
}

// readNumber reads a numeric literal (integer or decimal)
func (t *Tokenizer) readNumber() string {
	position := t.position
	for isDigit(t.ch) {
		t.readChar()
	}
	if t.ch == '.' && isDigit(t.peekChar()) {
		t.readChar()
		for isDigit(t.ch) {
			t.readChar()
		}
	}
	return t.input[position:t.position]
}

// readWord reads a function name
func (t *Tokenizer) readWord() string {
	position := t.position
	for isLetter(t.ch) {
		t.readChar()
	}
	return t.input[position:t.position]
}

// atOperandPosition reports whether a minus sign here starts a negative
// literal rather than a subtraction.
func (t *Tokenizer) atOperandPosition() bool {
	switch t.prev {
	case ILLEGAL, PLUS, MINUS, STAR, SLASH, LPAREN:
		return true
	}
	return false
}

// NextToken returns the next token from the input
func (t *Tokenizer) NextToken() Token {
	var tok Token

	t.skipWhitespace()
	tok.Column = t.column

	switch t.ch {
	case '+':
		tok = Token{Type: PLUS, Literal: "+", Column: tok.Column}
	case '-':
		if isDigit(t.peekChar()) && t.atOperandPosition() {
			t.readChar()
			tok = Token{Type: NUMBER, Literal: "-" + t.readNumber(), Column: tok.Column}
			t.prev = tok.Type
			return tok
		}
		tok = Token{Type: MINUS, Literal: "-", Column: tok.Column}
	case '*':
		tok = Token{Type: STAR, Literal: "*", Column: tok.Column}
	case '/':
		tok = Token{Type: SLASH, Literal: "/", Column: tok.Column}
	case '(':
		tok = Token{Type: LPAREN, Literal: "(", Column: tok.Column}
	case ')':
		tok = Token{Type: RPAREN, Literal: ")", Column: tok.Column}
	case '$':
		if t.peekChar() == 'v' {
			t.readChar()
			word := t.readWord()
			if word == "val" {
				tok = Token{Type: VARIABLE, Literal: "$val", Column: tok.Column}
				t.prev = tok.Type
				return tok
			}
			tok = Token{Type: ILLEGAL, Literal: "$" + word, Column: tok.Column}
			t.prev = tok.Type
			return tok
		}
		tok = Token{Type: ILLEGAL, Literal: "$", Column: tok.Column}
	case 0:
		tok = Token{Type: EOF, Literal: "", Column: tok.Column}
	default:
		if isDigit(t.ch) {
			tok = Token{Type: NUMBER, Literal: t.readNumber(), Column: tok.Column}
			t.prev = tok.Type
			return tok
		}
		if isLetter(t.ch) {
			word := t.readWord()
			if funcNames[word] {
				tok = Token{Type: FUNC, Literal: word, Column: tok.Column}
			} else {
				tok = Token{Type: ILLEGAL, Literal: word, Column: tok.Column}
			}
			t.prev = tok.Type
			return tok
		}
		tok = Token{Type: ILLEGAL, Literal: string(t.ch), Column: tok.Column}
	}

	t.readChar()
	t.prev = tok.Type
	return tok
}

// Tokenize returns all tokens from the input, or an error on the first
// unrecognized character.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := t.NextToken()
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("unrecognized token %q at column %d", tok.Literal, tok.Column)
		}
		if tok.Type == EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
