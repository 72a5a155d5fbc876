package parser

import "testing"

// tokenize fails the test on a lex error
func tokenize(t *testing.T, input string) []Token {
	t.Helper()
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", input, err)
	}
	return toks
}

// Test single tokens across every category
func TestNextToken(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		value string
	}{
		{"counter", TOKEN_IDENT, "counter"},
		{"int", TOKEN_INT, "int"},
		{"float", TOKEN_FLOAT, "float"},
		{"string", TOKEN_STRING, "string"},
		{"object", TOKEN_OBJECT, "object"},
		{"vector", TOKEN_VECTOR, "vector"},
		{"void", TOKEN_VOID, "void"},
		{"action", TOKEN_ACTION, "action"},
		{"struct", TOKEN_STRUCT, "struct"},
		{"if", TOKEN_IF, "if"},
		{"else", TOKEN_ELSE, "else"},
		{"while", TOKEN_WHILE, "while"},
		{"do", TOKEN_DO, "do"},
		{"for", TOKEN_FOR, "for"},
		{"switch", TOKEN_SWITCH, "switch"},
		{"case", TOKEN_CASE, "case"},
		{"default", TOKEN_DEFAULT, "default"},
		{"break", TOKEN_BREAK, "break"},
		{"continue", TOKEN_CONTINUE, "continue"},
		{"return", TOKEN_RETURN, "return"},
		{"+", TOKEN_PLUS, "+"},
		{"-", TOKEN_MINUS, "-"},
		{"*", TOKEN_STAR, "*"},
		{"/", TOKEN_SLASH, "/"},
		{"%", TOKEN_PERCENT, "%"},
		{"=", TOKEN_ASSIGN, "="},
		{"==", TOKEN_EQ, "=="},
		{"!=", TOKEN_NE, "!="},
		{"<", TOKEN_LT, "<"},
		{"<=", TOKEN_LE, "<="},
		{">", TOKEN_GT, ">"},
		{">=", TOKEN_GE, ">="},
		{"&&", TOKEN_AND, "&&"},
		{"||", TOKEN_OR, "||"},
		{"&", TOKEN_BITAND, "&"},
		{"|", TOKEN_BITOR, "|"},
		{"^", TOKEN_BITXOR, "^"},
		{"<<", TOKEN_LSHIFT, "<<"},
		{">>", TOKEN_RSHIFT, ">>"},
		{"!", TOKEN_NOT, "!"},
		{"~", TOKEN_BITNOT, "~"},
		{"+=", TOKEN_PLUS_ASSIGN, "+="},
		{"-=", TOKEN_MINUS_ASSIGN, "-="},
		{"*=", TOKEN_STAR_ASSIGN, "*="},
		{"/=", TOKEN_SLASH_ASSIGN, "/="},
		{"++", TOKEN_INC, "++"},
		{"--", TOKEN_DEC, "--"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := tokenize(t, tt.input)
			if len(toks) != 2 || toks[1].Type != TOKEN_EOF {
				t.Fatalf("Expected one token plus EOF, got %d tokens", len(toks))
			}
			if toks[0].Type != tt.typ {
				t.Errorf("Expected type %s, got %s", tt.typ, toks[0].Type)
			}
			if toks[0].Value != tt.value {
				t.Errorf("Expected value %q, got %q", tt.value, toks[0].Value)
			}
		})
	}
}

// Test numeric literal forms
func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input    string
		typ      TokenType
		intVal   int
		floatVal float64
	}{
		{"42", TOKEN_INT_LIT, 42, 0},
		{"0", TOKEN_INT_LIT, 0, 0},
		{"0x1F", TOKEN_INT_LIT, 31, 0},
		{"0xff", TOKEN_INT_LIT, 255, 0},
		{"3.5", TOKEN_FLOAT_LIT, 0, 3.5},
		{"2.0", TOKEN_FLOAT_LIT, 0, 2.0},
		{"7f", TOKEN_FLOAT_LIT, 0, 7.0},
		{"1.5f", TOKEN_FLOAT_LIT, 0, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := tokenize(t, tt.input)
			if toks[0].Type != tt.typ {
				t.Fatalf("Expected %s, got %s", tt.typ, toks[0].Type)
			}
			if tt.typ == TOKEN_INT_LIT && toks[0].IntVal != tt.intVal {
				t.Errorf("Expected %d, got %d", tt.intVal, toks[0].IntVal)
			}
			if tt.typ == TOKEN_FLOAT_LIT && toks[0].FloatVal != tt.floatVal {
				t.Errorf("Expected %g, got %g", tt.floatVal, toks[0].FloatVal)
			}
		})
	}
}

// Test string literals and escapes
func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := tokenize(t, tt.input)
			if toks[0].Type != TOKEN_STRING_LIT {
				t.Fatalf("Expected string literal, got %s", toks[0].Type)
			}
			if toks[0].Value != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, toks[0].Value)
			}
		})
	}
}

// Test an unterminated string is a lex error
func TestUnterminatedString(t *testing.T) {
	if _, err := Tokenize(`"no closing quote`); err == nil {
		t.Error("Expected error for unterminated string")
	}
}

// Test comments are skipped and line numbers advance
func TestCommentsAndLines(t *testing.T) {
	input := "int a; // trailing\n/* block\ncomment */ int b;"
	toks := tokenize(t, input)

	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	expected := []TokenType{TOKEN_INT, TOKEN_IDENT, TOKEN_SEMICOLON, TOKEN_INT, TOKEN_IDENT, TOKEN_SEMICOLON, TOKEN_EOF}
	if len(kinds) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(kinds))
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("Token %d: expected %s, got %s", i, expected[i], kinds[i])
		}
	}

	// "int b" sits on line 3
	if toks[3].Line != 3 {
		t.Errorf("Expected second decl on line 3, got %d", toks[3].Line)
	}
}

// Test an unterminated block comment is a lex error
func TestUnterminatedBlockComment(t *testing.T) {
	if _, err := Tokenize("int a; /* never closed"); err == nil {
		t.Error("Expected error for unterminated block comment")
	}
}

// Test include and noop directives
func TestDirectives(t *testing.T) {
	toks := tokenize(t, "#include \"shared\"\n#noop")
	if toks[0].Type != TOKEN_INCLUDE {
		t.Fatalf("Expected include directive, got %s", toks[0].Type)
	}
	if toks[1].Type != TOKEN_STRING_LIT || toks[1].Value != "shared" {
		t.Errorf("Expected include name token, got %s %q", toks[1].Type, toks[1].Value)
	}
	if toks[2].Type != TOKEN_NOOP {
		t.Errorf("Expected noop directive, got %s", toks[2].Type)
	}
}

// Test operator tokens carry their operator table
func TestOperatorTokensCarryTables(t *testing.T) {
	toks := tokenize(t, "a + b += c == d")
	for _, tok := range toks {
		switch tok.Type {
		case TOKEN_PLUS, TOKEN_PLUS_ASSIGN, TOKEN_EQ:
			if tok.Ops == nil {
				t.Errorf("Token %q has no operator table", tok.Value)
			}
		}
	}
}
