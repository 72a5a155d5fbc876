package parser

import (
	"fmt"
	"strconv"
	"strings"

	"nwsc/code"
)

// LexError is a lexical error with its 1-based source line
type LexError struct {
	Message string
	Line    int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Lexer tokenizes script source code
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
}

// NewLexer creates a new Lexer instance
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch == '\n' {
		l.line++
	}
}

// peekChar returns the next character without advancing
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespaceAndComments skips whitespace, // line comments and
// /* */ block comments.
func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			start := l.line
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == 0 {
					return &LexError{Message: "unterminated block comment", Line: start}
				}
				l.readChar()
			}
			l.readChar()
			l.readChar()
		default:
			return nil
		}
	}
}

// operatorToken builds an operator token and attaches its
// operand-combination table when one exists.
func (l *Lexer) operatorToken(t TokenType, text string, line int) Token {
	tok := Token{Type: t, Value: text, Line: line}
	if table, ok := code.OperatorFor(text); ok {
		tok.Ops = table
	}
	return tok
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	line := l.line

	switch {
	case l.ch == 0:
		return Token{Type: TOKEN_EOF, Line: line}, nil
	case l.ch == '#':
		return l.readDirective()
	case isLetter(l.ch):
		ident := l.readIdentifier()
		return Token{Type: LookupKeyword(ident), Value: ident, Line: line}, nil
	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		return l.readNumber()
	case l.ch == '"':
		return l.readString()
	}

	// Multi-character operators use longest match
	two := ""
	if l.peekChar() != 0 {
		two = string(l.ch) + string(l.peekChar())
	}
	if t, ok := twoCharOps[two]; ok {
		l.readChar()
		l.readChar()
		return l.operatorToken(t, two, line), nil
	}
	if t, ok := oneCharOps[string(l.ch)]; ok {
		text := string(l.ch)
		l.readChar()
		return l.operatorToken(t, text, line), nil
	}

	ch := l.ch
	l.readChar()
	return Token{}, &LexError{Message: fmt.Sprintf("unexpected character %q", string(ch)), Line: line}
}

var twoCharOps = map[string]TokenType{
	"==": TOKEN_EQ,
	"!=": TOKEN_NE,
	"<=": TOKEN_LE,
	">=": TOKEN_GE,
	"&&": TOKEN_AND,
	"||": TOKEN_OR,
	"<<": TOKEN_LSHIFT,
	">>": TOKEN_RSHIFT,
	"+=": TOKEN_PLUS_ASSIGN,
	"-=": TOKEN_MINUS_ASSIGN,
	"*=": TOKEN_STAR_ASSIGN,
	"/=": TOKEN_SLASH_ASSIGN,
	"++": TOKEN_INC,
	"--": TOKEN_DEC,
}

var oneCharOps = map[string]TokenType{
	"+": TOKEN_PLUS,
	"-": TOKEN_MINUS,
	"*": TOKEN_STAR,
	"/": TOKEN_SLASH,
	"%": TOKEN_PERCENT,
	"<": TOKEN_LT,
	">": TOKEN_GT,
	"!": TOKEN_NOT,
	"&": TOKEN_BITAND,
	"|": TOKEN_BITOR,
	"^": TOKEN_BITXOR,
	"~": TOKEN_BITNOT,
	"=": TOKEN_ASSIGN,
	"(": TOKEN_LPAREN,
	")": TOKEN_RPAREN,
	"{": TOKEN_LBRACE,
	"}": TOKEN_RBRACE,
	"[": TOKEN_LBRACKET,
	"]": TOKEN_RBRACKET,
	",": TOKEN_COMMA,
	";": TOKEN_SEMICOLON,
	".": TOKEN_DOT,
	":": TOKEN_COLON,
}

// readDirective reads #include or the #noop debug marker
func (l *Lexer) readDirective() (Token, error) {
	line := l.line
	l.readChar() // skip '#'
	start := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.position]
	switch word {
	case "include":
		return Token{Type: TOKEN_INCLUDE, Value: "#include", Line: line}, nil
	case "noop":
		return Token{Type: TOKEN_NOOP, Value: "#noop", Line: line}, nil
	default:
		return Token{}, &LexError{Message: fmt.Sprintf("unknown directive #%s", word), Line: line}
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads int, hex and float literals. A trailing 'f' marks
// a float ("1.5f" and "2f" are both floats).
func (l *Lexer) readNumber() (Token, error) {
	line := l.line
	start := l.position

	// Hex literal
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		digits := l.position
		for isHexDigit(l.ch) {
			l.readChar()
		}
		if l.position == digits {
			return Token{}, &LexError{Message: "malformed hex literal", Line: line}
		}
		text := l.input[start:l.position]
		v, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			return Token{}, &LexError{Message: fmt.Sprintf("malformed hex literal %s", text), Line: line}
		}
		return Token{Type: TOKEN_INT_LIT, Value: text, Line: line, IntVal: int(v)}, nil
	}

	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	} else if l.ch == '.' && !isLetter(l.peekChar()) {
		// "1." form
		isFloat = true
		l.readChar()
	}
	text := l.input[start:l.position]
	if l.ch == 'f' || l.ch == 'F' {
		isFloat = true
		l.readChar()
	}

	if isFloat {
		v, err := strconv.ParseFloat(strings.TrimSuffix(text, "."), 64)
		if err != nil {
			return Token{}, &LexError{Message: fmt.Sprintf("malformed float literal %s", text), Line: line}
		}
		return Token{Type: TOKEN_FLOAT_LIT, Value: text, Line: line, FloatVal: v}, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, &LexError{Message: fmt.Sprintf("malformed integer literal %s", text), Line: line}
	}
	return Token{Type: TOKEN_INT_LIT, Value: text, Line: line, IntVal: int(v)}, nil
}

// readString reads a double-quoted string literal with \n, \t, \",
// and \\ escapes.
func (l *Lexer) readString() (Token, error) {
	line := l.line
	l.readChar() // skip opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return Token{}, &LexError{Message: "unterminated string literal", Line: line}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				return Token{}, &LexError{Message: fmt.Sprintf("unknown escape \\%s", string(l.ch)), Line: line}
			}
			l.readChar()
			continue
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar() // skip closing quote
	s := sb.String()
	return Token{Type: TOKEN_STRING_LIT, Value: s, Line: line, Literal: s}, nil
}

// Tokenize scans the whole input into a token slice ending with EOF
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == TOKEN_EOF {
			return toks, nil
		}
	}
}

// isLetter returns true if the character is a letter or underscore
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit returns true if the character is a digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
