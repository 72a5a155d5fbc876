package parser

import (
	"fmt"

	"nwsc/types"
)

// ParseError is a syntax error with its 1-based source line
type ParseError struct {
	Message string
	Line    int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser turns a token stream into a CompileUnit
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over a scanned token slice
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses a source string in one step
func Parse(source string) (*CompileUnit, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return NewParser(toks).ParseUnit()
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TOKEN_EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TOKEN_EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != t {
		return tok, p.errorf("expected %s, found %s", t, describe(tok))
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Line: p.current().Line}
}

func describe(tok Token) string {
	switch tok.Type {
	case TOKEN_EOF:
		return "end of input"
	case TOKEN_IDENT, TOKEN_INT_LIT, TOKEN_FLOAT_LIT:
		return fmt.Sprintf("%s %q", tok.Type, tok.Value)
	default:
		return fmt.Sprintf("%q", tok.Value)
	}
}

// ParseUnit parses a whole compile unit
func (p *Parser) ParseUnit() (*CompileUnit, error) {
	unit := &CompileUnit{}
	for p.current().Type != TOKEN_EOF {
		decl, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		unit.Decls = append(unit.Decls, decl)
	}
	return unit, nil
}

func (p *Parser) parseTopLevel() (TopLevel, error) {
	tok := p.current()
	switch {
	case tok.Type == TOKEN_INCLUDE:
		p.advance()
		name, err := p.expect(TOKEN_STRING_LIT)
		if err != nil {
			return nil, err
		}
		return &IncludeDecl{Line: tok.Line, Name: name.Literal}, nil

	case tok.Type == TOKEN_STRUCT && p.peek().Type == TOKEN_IDENT && p.at(2) == TOKEN_LBRACE:
		return p.parseStructDecl()

	case IsTypeToken(tok.Type):
		return p.parseTypedTopLevel()

	default:
		return nil, p.errorf("expected declaration, found %s", describe(tok))
	}
}

// at returns the token type n positions ahead
func (p *Parser) at(n int) TokenType {
	if p.pos+n >= len(p.tokens) {
		return TOKEN_EOF
	}
	return p.tokens[p.pos+n].Type
}

// parseType parses a type name: a builtin keyword or "struct Name"
func (p *Parser) parseType() (types.DataType, error) {
	tok := p.advance()
	switch tok.Type {
	case TOKEN_VOID:
		return types.Void, nil
	case TOKEN_INT:
		return types.Int, nil
	case TOKEN_FLOAT:
		return types.Float, nil
	case TOKEN_STRING:
		return types.String, nil
	case TOKEN_OBJECT:
		return types.Object, nil
	case TOKEN_VECTOR:
		return types.Vector, nil
	case TOKEN_ACTION:
		return types.Action, nil
	case TOKEN_STRUCT:
		name, err := p.expect(TOKEN_IDENT)
		if err != nil {
			return types.Void, err
		}
		return types.StructType(name.Value), nil
	default:
		return types.Void, &ParseError{Message: fmt.Sprintf("expected type name, found %s", describe(tok)), Line: tok.Line}
	}
}

// parseStructDecl parses: struct Name { type member; ... };
func (p *Parser) parseStructDecl() (TopLevel, error) {
	structTok := p.advance() // struct
	name, err := p.expect(TOKEN_IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LBRACE); err != nil {
		return nil, err
	}
	s := &types.Struct{Name: name.Value}
	for p.current().Type != TOKEN_RBRACE {
		mt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		mname, err := p.expect(TOKEN_IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
			return nil, err
		}
		s.Members = append(s.Members, types.StructMember{Name: mname.Value, Type: mt})
	}
	p.advance() // }
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &StructDecl{Line: structTok.Line, Struct: s}, nil
}

// parseTypedTopLevel parses a global variable, a function prototype or
// a function definition, all of which begin with a type name.
func (p *Parser) parseTypedTopLevel() (TopLevel, error) {
	line := p.current().Line
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TOKEN_IDENT)
	if err != nil {
		return nil, err
	}

	if p.current().Type == TOKEN_LPAREN {
		return p.parseFuncDecl(line, typ, name.Value)
	}

	// Global variable
	var init Expr
	if p.current().Type == TOKEN_ASSIGN {
		p.advance()
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &GlobalDecl{Line: line, Type: typ, Name: name.Value, Init: init}, nil
}

func (p *Parser) parseFuncDecl(line int, returns types.DataType, name string) (TopLevel, error) {
	p.advance() // (
	var params []Param
	for p.current().Type != TOKEN_RPAREN {
		pt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pname, err := p.expect(TOKEN_IDENT)
		if err != nil {
			return nil, err
		}
		param := Param{Name: pname.Value, Type: pt}
		if p.current().Type == TOKEN_ASSIGN {
			p.advance()
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if p.current().Type == TOKEN_COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}

	decl := &FuncDecl{Line: line, Name: name, Returns: returns, Params: params}
	if p.current().Type == TOKEN_SEMICOLON {
		p.advance()
		return decl, nil // forward declaration
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	decl.Body = body
	return decl, nil
}
