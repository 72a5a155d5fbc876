package parser

// Binary operator precedence, low to high. Higher binds tighter.
var precedence = map[TokenType]int{
	TOKEN_OR:      1,
	TOKEN_AND:     2,
	TOKEN_BITOR:   3,
	TOKEN_BITXOR:  4,
	TOKEN_BITAND:  5,
	TOKEN_EQ:      6,
	TOKEN_NE:      6,
	TOKEN_LT:      7,
	TOKEN_GT:      7,
	TOKEN_LE:      7,
	TOKEN_GE:      7,
	TOKEN_LSHIFT:  8,
	TOKEN_RSHIFT:  8,
	TOKEN_PLUS:    9,
	TOKEN_MINUS:   9,
	TOKEN_STAR:    10,
	TOKEN_SLASH:   10,
	TOKEN_PERCENT: 10,
}

func isAssignOp(t TokenType) bool {
	switch t {
	case TOKEN_ASSIGN, TOKEN_PLUS_ASSIGN, TOKEN_MINUS_ASSIGN, TOKEN_STAR_ASSIGN, TOKEN_SLASH_ASSIGN:
		return true
	}
	return false
}

func isLvalue(e Expr) bool {
	switch e.(type) {
	case *Ident, *FieldAccess:
		return true
	}
	return false
}

// parseExpr parses a full expression including assignment
func (p *Parser) parseExpr() (Expr, error) {
	left, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if isAssignOp(p.current().Type) {
		op := p.advance()
		if !isLvalue(left) {
			return nil, &ParseError{Message: "left side of assignment is not assignable", Line: op.Line}
		}
		// Right-associative
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignExpr{Line: op.Line, Target: left, Op: op, Value: value}, nil
	}
	return left, nil
}

// parseBinary climbs operator precedence starting at minPrec
func (p *Parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := precedence[p.current().Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		op := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: op.Line, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	tok := p.current()
	switch tok.Type {
	case TOKEN_MINUS, TOKEN_NOT, TOKEN_BITNOT:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Line: tok.Line, Op: tok, Operand: operand}, nil
	case TOKEN_INC, TOKEN_DEC:
		p.advance()
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !isLvalue(target) {
			return nil, &ParseError{Message: "operand of ++/-- is not assignable", Line: tok.Line}
		}
		return &IncDecExpr{Line: tok.Line, Target: target, Inc: tok.Type == TOKEN_INC, Prefix: true}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().Type {
		case TOKEN_DOT:
			dot := p.advance()
			member, err := p.expect(TOKEN_IDENT)
			if err != nil {
				return nil, err
			}
			expr = &FieldAccess{Line: dot.Line, Target: expr, Member: member.Value}
		case TOKEN_INC, TOKEN_DEC:
			tok := p.advance()
			if !isLvalue(expr) {
				return nil, &ParseError{Message: "operand of ++/-- is not assignable", Line: tok.Line}
			}
			expr = &IncDecExpr{Line: tok.Line, Target: expr, Inc: tok.Type == TOKEN_INC, Prefix: false}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.current()
	switch tok.Type {
	case TOKEN_INT_LIT:
		p.advance()
		return &IntLit{Line: tok.Line, Value: tok.IntVal}, nil
	case TOKEN_FLOAT_LIT:
		p.advance()
		return &FloatLit{Line: tok.Line, Value: tok.FloatVal}, nil
	case TOKEN_STRING_LIT:
		p.advance()
		return &StringLit{Line: tok.Line, Value: tok.Literal}, nil
	case TOKEN_LBRACKET:
		return p.parseVectorLit()
	case TOKEN_IDENT:
		p.advance()
		if p.current().Type == TOKEN_LPAREN {
			return p.parseCallArgs(tok)
		}
		return &Ident{Line: tok.Line, Name: tok.Value}, nil
	case TOKEN_LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf("expected expression, found %s", describe(tok))
	}
}

// parseVectorLit parses [x, y, z] with constant float components
func (p *Parser) parseVectorLit() (Expr, error) {
	open := p.advance() // [
	lit := &VectorLit{Line: open.Line}
	parts := []*float64{&lit.X, &lit.Y, &lit.Z}
	for i, part := range parts {
		if i > 0 {
			if _, err := p.expect(TOKEN_COMMA); err != nil {
				return nil, err
			}
		}
		v, err := p.parseVectorComponent()
		if err != nil {
			return nil, err
		}
		*part = v
	}
	if _, err := p.expect(TOKEN_RBRACKET); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseVectorComponent() (float64, error) {
	neg := false
	if p.current().Type == TOKEN_MINUS {
		neg = true
		p.advance()
	}
	tok := p.current()
	var v float64
	switch tok.Type {
	case TOKEN_FLOAT_LIT:
		v = tok.FloatVal
	case TOKEN_INT_LIT:
		v = float64(tok.IntVal)
	default:
		return 0, p.errorf("expected numeric vector component, found %s", describe(tok))
	}
	p.advance()
	if neg {
		v = -v
	}
	return v, nil
}

func (p *Parser) parseCallArgs(name Token) (Expr, error) {
	p.advance() // (
	call := &CallExpr{Line: name.Line, Name: name.Value}
	for p.current().Type != TOKEN_RPAREN {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.current().Type == TOKEN_COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
