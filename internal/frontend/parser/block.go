package parser

import (
	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/tokens"
)

// parseBlock: { stmt* }
func (p *Parser) parseBlock() *ast.Block {
	start := p.expectError(tokens.OPEN_CURLY, "expected block brace").Start

	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()

	block := &ast.Block{}
	for !p.match(tokens.CLOSE_CURLY) {
		if p.isAtEnd() {
			p.failAt(p.peek(), diagnostics.ErrExpectedToken, "expected '}' to close block")
		}
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	p.advance()

	block.Location = p.makeLocation(start)
	return block
}

// parseStmt dispatches on the leading tokens of a statement.
func (p *Parser) parseStmt() ast.Statement {
	tok := p.peek()

	switch tok.Kind {
	case tokens.LET_TOKEN:
		return p.parseVarDecl()
	case tokens.OPEN_CURLY:
		return p.parseBlock()
	case tokens.IF_TOKEN:
		return p.parseConditional()
	case tokens.WHILE_TOKEN:
		return p.parseWhile()
	case tokens.RETURN_TOKEN:
		return p.parseReturn()
	case tokens.POINTER_TOKEN:
		return p.parseAssign()
	case tokens.IDENTIFIER_TOKEN:
		switch {
		case p.isCall():
			return p.parseCallStmt()
		case p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN):
			return p.parseVarDecl()
		}
		switch p.peekAt(1).Kind {
		case tokens.EQUALS_TOKEN, tokens.OPEN_BRACKET, tokens.DOT_TOKEN:
			return p.parseAssign()
		}
	}

	p.failAt(tok, diagnostics.ErrInvalidStatement, "expected statement")
	return nil
}

// parseVarDecl: let x: T = e;  The let keyword is optional.
func (p *Parser) parseVarDecl() *ast.VarDecl {
	start := p.peek().Start
	p.optional(tokens.LET_TOKEN)

	nameTok := p.expectError(tokens.IDENTIFIER_TOKEN, "expected variable name")
	p.expectError(tokens.COLON_TOKEN, "expected ':' for variable type")
	typ := p.parseType()
	p.expectError(tokens.EQUALS_TOKEN, "expected '=' in variable declaration")
	value := p.parseExpr()
	p.expectError(tokens.SEMICOLON_TOKEN, "expected ';' after declaration")

	return &ast.VarDecl{
		Name:     nameTok.Value,
		Type:     typ,
		Value:    value,
		Location: p.makeLocation(start),
	}
}

// parseAssign: lvalue = e;
func (p *Parser) parseAssign() *ast.Assign {
	start := p.peek().Start

	target := p.parseExpr()
	p.expectError(tokens.EQUALS_TOKEN, "expected '=' in assignment")
	value := p.parseExpr()
	p.expectError(tokens.SEMICOLON_TOKEN, "expected ';' after assignment")

	return &ast.Assign{
		Target:   target,
		Value:    value,
		Location: p.makeLocation(start),
	}
}

func (p *Parser) parseCallStmt() *ast.CallStmt {
	start := p.peek().Start
	call := p.parseCallExpr()
	p.expectError(tokens.SEMICOLON_TOKEN, "expected ';' after call")

	return &ast.CallStmt{
		Call:     call,
		Location: p.makeLocation(start),
	}
}

// parseConditional: if c { } else if d { } else { }
func (p *Parser) parseConditional() *ast.Conditional {
	start := p.expect(tokens.IF_TOKEN).Start

	cond := &ast.Conditional{}
	for {
		test := p.parseCondition()
		body := p.parseBlock()
		cond.Arms = append(cond.Arms, ast.CondArm{Cond: test, Body: body})

		if !p.optional(tokens.ELSE_TOKEN) {
			break
		}
		if p.optional(tokens.IF_TOKEN) {
			continue
		}
		cond.Arms = append(cond.Arms, ast.CondArm{Body: p.parseBlock()})
		break
	}

	cond.Location = p.makeLocation(start)
	return cond
}

// parseWhile: while c { }
func (p *Parser) parseWhile() *ast.While {
	start := p.expect(tokens.WHILE_TOKEN).Start
	test := p.parseCondition()
	body := p.parseBlock()

	return &ast.While{
		Cond:     test,
		Body:     body,
		Location: p.makeLocation(start),
	}
}

// parseReturn: return; or return e;
func (p *Parser) parseReturn() *ast.Return {
	start := p.expect(tokens.RETURN_TOKEN).Start

	var value ast.Expression
	if !p.match(tokens.SEMICOLON_TOKEN) {
		value = p.parseExpr()
	}
	p.expectError(tokens.SEMICOLON_TOKEN, "expected ';' after return")

	return &ast.Return{
		Value:    value,
		Location: p.makeLocation(start),
	}
}

// parseCondition parses the test of an if or while. A struct literal there
// must be parenthesized.
func (p *Parser) parseCondition() ast.Expression {
	saved := p.noStructLit
	p.noStructLit = true
	defer func() { p.noStructLit = saved }()
	return p.parseExpr()
}
