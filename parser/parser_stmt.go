package parser

// parseBlock parses a braced statement list
func (p *Parser) parseBlock() (*BlockStmt, error) {
	open, err := p.expect(TOKEN_LBRACE)
	if err != nil {
		return nil, err
	}
	block := &BlockStmt{Line: open.Line}
	for p.current().Type != TOKEN_RBRACE {
		if p.current().Type == TOKEN_EOF {
			return nil, p.errorf("unterminated block")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	p.advance() // }
	return block, nil
}

func (p *Parser) parseStmt() (Stmt, error) {
	tok := p.current()
	switch {
	case tok.Type == TOKEN_LBRACE:
		return p.parseBlock()
	case tok.Type == TOKEN_IF:
		return p.parseIf()
	case tok.Type == TOKEN_WHILE:
		return p.parseWhile()
	case tok.Type == TOKEN_DO:
		return p.parseDoWhile()
	case tok.Type == TOKEN_FOR:
		return p.parseFor()
	case tok.Type == TOKEN_SWITCH:
		return p.parseSwitch()
	case tok.Type == TOKEN_RETURN:
		return p.parseReturn()
	case tok.Type == TOKEN_BREAK:
		p.advance()
		if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
			return nil, err
		}
		return &BreakStmt{Line: tok.Line}, nil
	case tok.Type == TOKEN_CONTINUE:
		p.advance()
		if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
			return nil, err
		}
		return &ContinueStmt{Line: tok.Line}, nil
	case tok.Type == TOKEN_NOOP:
		// A directive, so no terminating semicolon.
		p.advance()
		return &NoopStmt{Line: tok.Line}, nil
	case IsTypeToken(tok.Type):
		return p.parseDecl()
	default:
		return p.parseExprStmt()
	}
}

// parseDecl parses a local variable declaration
func (p *Parser) parseDecl() (Stmt, error) {
	line := p.current().Line
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TOKEN_IDENT)
	if err != nil {
		return nil, err
	}
	decl := &DeclStmt{Line: line, Type: typ, Name: name.Value}
	if p.current().Type == TOKEN_ASSIGN {
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseExprStmt() (Stmt, error) {
	line := p.current().Line
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &ExprStmt{Line: line, Expr: expr}, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	tok := p.advance() // if
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Line: tok.Line, Cond: cond, Then: then}
	if p.current().Type == TOKEN_ELSE {
		p.advance()
		els, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	tok := p.advance() // while
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Line: tok.Line, Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhile() (Stmt, error) {
	tok := p.advance() // do
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_WHILE); err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &DoWhileStmt{Line: tok.Line, Body: body, Cond: cond}, nil
}

// parseFor parses for(init; cond; post) body; each head expression is
// optional.
func (p *Parser) parseFor() (Stmt, error) {
	tok := p.advance() // for
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	stmt := &ForStmt{Line: tok.Line}
	var err error
	if p.current().Type != TOKEN_SEMICOLON {
		stmt.Init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	if p.current().Type != TOKEN_SEMICOLON {
		stmt.Cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	if p.current().Type != TOKEN_RPAREN {
		stmt.Post, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	stmt.Body, err = p.parseStmt()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseSwitch() (Stmt, error) {
	tok := p.advance() // switch
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LBRACE); err != nil {
		return nil, err
	}

	stmt := &SwitchStmt{Line: tok.Line, Value: value}
	seenDefault := false
	for p.current().Type != TOKEN_RBRACE {
		c := &SwitchCase{Line: p.current().Line}
		switch p.current().Type {
		case TOKEN_CASE:
			p.advance()
			c.Value, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		case TOKEN_DEFAULT:
			if seenDefault {
				return nil, p.errorf("duplicate default label")
			}
			seenDefault = true
			p.advance()
		default:
			return nil, p.errorf("expected case or default, found %s", describe(p.current()))
		}
		if _, err := p.expect(TOKEN_COLON); err != nil {
			return nil, err
		}
		for {
			t := p.current().Type
			if t == TOKEN_CASE || t == TOKEN_DEFAULT || t == TOKEN_RBRACE {
				break
			}
			if t == TOKEN_EOF {
				return nil, p.errorf("unterminated switch")
			}
			body, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			c.Body = append(c.Body, body)
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.advance() // }
	return stmt, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	tok := p.advance() // return
	stmt := &ReturnStmt{Line: tok.Line}
	if p.current().Type != TOKEN_SEMICOLON {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}
