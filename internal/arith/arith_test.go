package arith

import "testing"

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"division", "$val / 8", []TokenType{VARIABLE, SLASH, NUMBER}},
		{"parens and funcs", "int($val * 100)", []TokenType{FUNC, LPAREN, VARIABLE, STAR, NUMBER, RPAREN}},
		{"decimal literal", "$val * 0.5", []TokenType{VARIABLE, STAR, NUMBER}},
		{"negative literal", "$val + -3", []TokenType{VARIABLE, PLUS, NUMBER}},
		{"subtraction not negation", "$val -3", []TokenType{VARIABLE, MINUS, NUMBER}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if len(tokens) != len(tt.want) {
				t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(tt.want), tokens)
			}
			for i, tok := range tokens {
				if tok.Type != tt.want[i] {
					t.Errorf("token %d = %s, want %s", i, tok.Type, tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, input := range []string{
		"$val{0}",
		"$self",
		"sprintf($val)",
		"$val . 'x'",
	} {
		if _, err := NewTokenizer(input).Tokenize(); err == nil {
			t.Errorf("Tokenize(%q) should fail", input)
		}
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple division", "$val / 8", "(v / 8)"},
		{"precedence", "$val + 2 * 3", "(v + (2 * 3))"},
		{"left associative", "$val - 1 - 2", "((v - 1) - 2)"},
		{"parens override", "($val + 2) * 3", "((v + 2) * 3)"},
		{"int function", "int($val / 32)", "math.Trunc((v / 32))"},
		{"exp of scaled value", "exp($val / 32 * log(2))", "math.Exp(((v / 32) * math.Log(2)))"},
		{"bare number", "25", "25"},
		{"decimal", "$val * 0.125", "(v * 0.125)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, err := Compile(tt.input)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.input, err)
			}
			if ce.GoExpr != tt.want {
				t.Errorf("GoExpr = %q, want %q", ce.GoExpr, tt.want)
			}
		})
	}
}

func TestCompileUsesMath(t *testing.T) {
	ce, err := Compile("log($val)")
	if err != nil {
		t.Fatal(err)
	}
	if !ce.UsesMath {
		t.Error("log should set UsesMath")
	}
	ce, err = Compile("$val / 8")
	if err != nil {
		t.Fatal(err)
	}
	if ce.UsesMath {
		t.Error("plain division should not set UsesMath")
	}
}

func TestCompileErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"$val +",
		"* $val",
		"($val / 8",
		"$val / 8)",
		"int()",
		"$val $val",
	} {
		if _, err := Compile(input); err == nil {
			t.Errorf("Compile(%q) should fail", input)
		}
	}
}

func TestIsCompilable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"$val / 8", true},
		{"int($val * 100 + 0.5) / 100", true},
		{"2**($val/384-1)", false},
		{"$val ? 1/$val : 0", false},
		{"$val & 0xff", false},
		{"abs($val)", false},
		{"$val =~ /EOS/", false},
		{"IsFloat($val) && $val < 100", false},
		{"$val >> 4", false},
	}
	for _, tt := range tests {
		if got := IsCompilable(tt.input); got != tt.want {
			t.Errorf("IsCompilable(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
