package parser

import "nwsc/code"

// TokenType represents different types of lexical tokens
type TokenType int

const (
	// Special tokens
	TOKEN_EOF TokenType = iota
	TOKEN_ILLEGAL

	// Literals
	TOKEN_INT_LIT    // 42, 0x2A
	TOKEN_FLOAT_LIT  // 3.14, 2.0f
	TOKEN_STRING_LIT // "hello"

	// Identifiers
	TOKEN_IDENT

	// Type keywords
	TOKEN_VOID
	TOKEN_INT
	TOKEN_FLOAT
	TOKEN_STRING
	TOKEN_OBJECT
	TOKEN_VECTOR
	TOKEN_STRUCT
	TOKEN_ACTION

	// Statement keywords
	TOKEN_IF
	TOKEN_ELSE
	TOKEN_WHILE
	TOKEN_DO
	TOKEN_FOR
	TOKEN_SWITCH
	TOKEN_CASE
	TOKEN_DEFAULT
	TOKEN_RETURN
	TOKEN_BREAK
	TOKEN_CONTINUE

	// Directives
	TOKEN_INCLUDE // #include
	TOKEN_NOOP    // #noop debug marker

	// Operators
	TOKEN_PLUS    // +
	TOKEN_MINUS   // -
	TOKEN_STAR    // *
	TOKEN_SLASH   // /
	TOKEN_PERCENT // %

	TOKEN_EQ // ==
	TOKEN_NE // !=
	TOKEN_LT // <
	TOKEN_GT // >
	TOKEN_LE // <=
	TOKEN_GE // >=

	TOKEN_AND // &&
	TOKEN_OR  // ||
	TOKEN_NOT // !

	TOKEN_BITAND // &
	TOKEN_BITOR  // |
	TOKEN_BITXOR // ^
	TOKEN_BITNOT // ~
	TOKEN_LSHIFT // <<
	TOKEN_RSHIFT // >>

	TOKEN_ASSIGN       // =
	TOKEN_PLUS_ASSIGN  // +=
	TOKEN_MINUS_ASSIGN // -=
	TOKEN_STAR_ASSIGN  // *=
	TOKEN_SLASH_ASSIGN // /=
	TOKEN_INC          // ++
	TOKEN_DEC          // --

	// Delimiters
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_LBRACE    // {
	TOKEN_RBRACE    // }
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;
	TOKEN_DOT       // .
	TOKEN_COLON     // :
)

// Token represents a lexical token. Operator tokens carry the
// pre-built operand-combination table attached at scan time so every
// use site consults the same mapping.
type Token struct {
	Type     TokenType
	Value    string
	Line     int
	IntVal   int                 // decoded value for TOKEN_INT_LIT
	FloatVal float64             // decoded value for TOKEN_FLOAT_LIT
	Literal  string              // decoded string for TOKEN_STRING_LIT
	Ops      *code.OperatorTable // operand table for operator tokens
}

// tokenNames gives readable names for diagnostics
var tokenNames = map[TokenType]string{
	TOKEN_EOF:          "EOF",
	TOKEN_ILLEGAL:      "ILLEGAL",
	TOKEN_INT_LIT:      "INT",
	TOKEN_FLOAT_LIT:    "FLOAT",
	TOKEN_STRING_LIT:   "STRING",
	TOKEN_IDENT:        "IDENT",
	TOKEN_VOID:         "void",
	TOKEN_INT:          "int",
	TOKEN_FLOAT:        "float",
	TOKEN_STRING:       "string",
	TOKEN_OBJECT:       "object",
	TOKEN_VECTOR:       "vector",
	TOKEN_STRUCT:       "struct",
	TOKEN_ACTION:       "action",
	TOKEN_IF:           "if",
	TOKEN_ELSE:         "else",
	TOKEN_WHILE:        "while",
	TOKEN_DO:           "do",
	TOKEN_FOR:          "for",
	TOKEN_SWITCH:       "switch",
	TOKEN_CASE:         "case",
	TOKEN_DEFAULT:      "default",
	TOKEN_RETURN:       "return",
	TOKEN_BREAK:        "break",
	TOKEN_CONTINUE:     "continue",
	TOKEN_INCLUDE:      "#include",
	TOKEN_NOOP:         "#noop",
	TOKEN_PLUS:         "+",
	TOKEN_MINUS:        "-",
	TOKEN_STAR:         "*",
	TOKEN_SLASH:        "/",
	TOKEN_PERCENT:      "%",
	TOKEN_EQ:           "==",
	TOKEN_NE:           "!=",
	TOKEN_LT:           "<",
	TOKEN_GT:           ">",
	TOKEN_LE:           "<=",
	TOKEN_GE:           ">=",
	TOKEN_AND:          "&&",
	TOKEN_OR:           "||",
	TOKEN_NOT:          "!",
	TOKEN_BITAND:       "&",
	TOKEN_BITOR:        "|",
	TOKEN_BITXOR:       "^",
	TOKEN_BITNOT:       "~",
	TOKEN_LSHIFT:       "<<",
	TOKEN_RSHIFT:       ">>",
	TOKEN_ASSIGN:       "=",
	TOKEN_PLUS_ASSIGN:  "+=",
	TOKEN_MINUS_ASSIGN: "-=",
	TOKEN_STAR_ASSIGN:  "*=",
	TOKEN_SLASH_ASSIGN: "/=",
	TOKEN_INC:          "++",
	TOKEN_DEC:          "--",
	TOKEN_LPAREN:       "(",
	TOKEN_RPAREN:       ")",
	TOKEN_LBRACE:       "{",
	TOKEN_RBRACE:       "}",
	TOKEN_LBRACKET:     "[",
	TOKEN_RBRACKET:     "]",
	TOKEN_COMMA:        ",",
	TOKEN_SEMICOLON:    ";",
	TOKEN_DOT:          ".",
	TOKEN_COLON:        ":",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"void":     TOKEN_VOID,
	"int":      TOKEN_INT,
	"float":    TOKEN_FLOAT,
	"string":   TOKEN_STRING,
	"object":   TOKEN_OBJECT,
	"vector":   TOKEN_VECTOR,
	"struct":   TOKEN_STRUCT,
	"action":   TOKEN_ACTION,
	"if":       TOKEN_IF,
	"else":     TOKEN_ELSE,
	"while":    TOKEN_WHILE,
	"do":       TOKEN_DO,
	"for":      TOKEN_FOR,
	"switch":   TOKEN_SWITCH,
	"case":     TOKEN_CASE,
	"default":  TOKEN_DEFAULT,
	"return":   TOKEN_RETURN,
	"break":    TOKEN_BREAK,
	"continue": TOKEN_CONTINUE,
}

// LookupKeyword checks if an identifier is a keyword
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENT
}

// IsTypeToken reports whether the token starts a type name
func IsTypeToken(t TokenType) bool {
	switch t {
	case TOKEN_VOID, TOKEN_INT, TOKEN_FLOAT, TOKEN_STRING, TOKEN_OBJECT, TOKEN_VECTOR, TOKEN_STRUCT, TOKEN_ACTION:
		return true
	}
	return false
}
