package parser

import (
	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/utils/numeric"
)

const maxUnaryDepth = 100

func (p *Parser) parseExpr() ast.Expression {
	return p.parseBinary(0)
}

// parseBinary is precedence climbing over tokens.Precedence. Operators of
// equal precedence associate to the left.
func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		op := p.peek()
		prec := tokens.Precedence(op.Kind)
		if prec < 0 || prec < minPrec {
			return left
		}
		p.advance()

		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{
			X:        left,
			Op:       op.Kind,
			Y:        right,
			Location: source.NewLocation(p.filepath, left.Loc().Start, right.Loc().End),
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	return p.parseUnaryDepth(0)
}

// parseUnaryDepth handles prefix !, -, & and ^.
func (p *Parser) parseUnaryDepth(depth int) ast.Expression {
	if depth >= maxUnaryDepth {
		p.failAt(p.peek(), diagnostics.ErrInvalidExpression, "too many nested unary operators (maximum 100)")
	}

	if p.match(tokens.NOT_TOKEN, tokens.MINUS_TOKEN, tokens.REFERENCE_TOKEN, tokens.POINTER_TOKEN) {
		op := p.advance()
		x := p.parseUnaryDepth(depth + 1)
		return &ast.UnaryExpr{
			Op:       op.Kind,
			X:        x,
			Location: source.NewLocation(p.filepath, op.Start, x.Loc().End),
		}
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()

	switch tok.Kind {
	case tokens.INT_TOKEN:
		p.advance()
		value, err := numeric.StringToInteger(tok.Value)
		if err != nil {
			p.failAt(tok, diagnostics.ErrInvalidNumber, "integer literal out of range")
		}
		return &ast.IntLit{Value: value, Location: p.tokenLoc(tok)}

	case tokens.STRING_TOKEN:
		p.advance()
		return &ast.StringLit{Value: tok.Value, Location: p.tokenLoc(tok)}

	case tokens.TRUE_TOKEN, tokens.FALSE_TOKEN:
		p.advance()
		return &ast.BoolLit{Value: tok.Kind == tokens.TRUE_TOKEN, Location: p.tokenLoc(tok)}

	case tokens.CHAR_TOKEN:
		if len(tok.Value) != 1 {
			p.failAt(tok, diagnostics.ErrInvalidExpression, "character literal must be a single byte")
		}
		p.advance()
		return &ast.CharLit{Value: tok.Value[0], Location: p.tokenLoc(tok)}

	case tokens.NULL_TOKEN:
		p.advance()
		return &ast.NullLit{Location: p.tokenLoc(tok)}

	case tokens.AT_TOKEN:
		return p.parseBuiltinCall()

	case tokens.OPEN_PAREN:
		p.advance()
		saved := p.noStructLit
		p.noStructLit = false
		expr := p.parseExpr()
		p.noStructLit = saved
		p.expectError(tokens.CLOSE_PAREN, "expected ')' after expression")
		return expr

	case tokens.OPEN_BRACKET:
		return p.parseArrayLiteral()

	case tokens.IDENTIFIER_TOKEN:
		return p.parseIdentifierExpr()
	}

	p.failAt(tok, diagnostics.ErrInvalidExpression, "expected expression")
	return nil
}

// isCall reports whether a call starts here: f(, m:f( or m.f(
func (p *Parser) isCall() bool {
	return p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.OPEN_PAREN) ||
		p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.OPEN_PAREN) ||
		p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.DOT_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.OPEN_PAREN)
}

func (p *Parser) isStructLiteral() bool {
	if p.noStructLit {
		return false
	}
	return p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.OPEN_CURLY) ||
		p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.OPEN_CURLY)
}

// parseIdentifierExpr parses calls, struct literals, variables and access paths.
func (p *Parser) parseIdentifierExpr() ast.Expression {
	if p.isCall() {
		return p.parseCallExpr()
	}
	if p.isStructLiteral() {
		return p.parseStructLiteral()
	}

	nameTok := p.advance()

	var steps []ast.AccessStep
	for p.match(tokens.OPEN_BRACKET, tokens.DOT_TOKEN) {
		open := p.advance()
		if open.Kind == tokens.OPEN_BRACKET {
			saved := p.noStructLit
			p.noStructLit = false
			index := p.parseExpr()
			p.noStructLit = saved
			p.expectError(tokens.CLOSE_BRACKET, "expected ']' after index")
			steps = append(steps, &ast.IndexStep{Index: index, Location: p.makeLocation(open.Start)})
			continue
		}
		field := p.expectError(tokens.IDENTIFIER_TOKEN, "expected field name after '.'")
		steps = append(steps, &ast.FieldStep{Name: field.Value, Location: p.makeLocation(open.Start)})
	}

	if len(steps) == 0 {
		return &ast.Variable{Name: nameTok.Value, Location: p.tokenLoc(nameTok)}
	}
	return &ast.VariableAccess{
		Name:     nameTok.Value,
		Steps:    steps,
		Location: p.makeLocation(nameTok.Start),
	}
}

// parseCallExpr: f(args), m:f(args) or m.f(args)
func (p *Parser) parseCallExpr() *ast.CallExpr {
	start := p.peek().Start

	module := p.module
	if p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN) || p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.DOT_TOKEN) {
		module = p.advance().Value
		p.advance()
	}
	name := p.expectError(tokens.IDENTIFIER_TOKEN, "provide an identifier for the function call")

	p.expectError(tokens.OPEN_PAREN, "expected opening function paren")
	saved := p.noStructLit
	p.noStructLit = false

	var args []ast.Expression
	for !p.match(tokens.CLOSE_PAREN) {
		args = append(args, p.parseExpr())
		if !p.match(tokens.CLOSE_PAREN) {
			p.expectError(tokens.COMMA_TOKEN, "expected ',' or ')' in argument list")
		}
	}
	p.noStructLit = saved
	p.expectError(tokens.CLOSE_PAREN, "expected closing function paren")

	return &ast.CallExpr{
		Module:   module,
		Name:     name.Value,
		Args:     args,
		Location: p.makeLocation(start),
	}
}

// parseStructLiteral: Name{a: e, b: e} or m:Name{...}
func (p *Parser) parseStructLiteral() *ast.StructLit {
	start := p.peek().Start

	module := p.module
	if p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN) {
		module = p.advance().Value
		p.advance()
	}
	name := p.expectError(tokens.IDENTIFIER_TOKEN, "expected struct name")
	p.expectError(tokens.OPEN_CURLY, "expected '{' in struct literal")

	lit := &ast.StructLit{Module: module, Name: name.Value}
	for !p.match(tokens.CLOSE_CURLY) {
		field := p.expectError(tokens.IDENTIFIER_TOKEN, "expected field name")
		p.expectError(tokens.COLON_TOKEN, "expected ':' after field name")
		value := p.parseExpr()
		lit.Fields = append(lit.Fields, ast.FieldInit{
			Name:     field.Value,
			Value:    value,
			Location: p.makeLocation(field.Start),
		})

		if !p.match(tokens.CLOSE_CURLY) {
			p.expectError(tokens.COMMA_TOKEN, "expected ',' or '}' in struct literal")
		}
	}
	p.expectError(tokens.CLOSE_CURLY, "expected '}' to close struct literal")

	lit.Location = p.makeLocation(start)
	return lit
}

// parseArrayLiteral: [a, b, c]
func (p *Parser) parseArrayLiteral() *ast.ArrayLit {
	start := p.expect(tokens.OPEN_BRACKET).Start
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()

	lit := &ast.ArrayLit{}
	for !p.match(tokens.CLOSE_BRACKET) {
		lit.Elems = append(lit.Elems, p.parseExpr())
		if !p.match(tokens.CLOSE_BRACKET) {
			p.expectError(tokens.COMMA_TOKEN, "expected ',' or ']' in array literal")
		}
	}
	end := p.advance()

	if len(lit.Elems) == 0 {
		p.failAt(end, diagnostics.ErrInvalidExpression, "array literal needs at least one element")
	}

	lit.Location = p.makeLocation(start)
	return lit
}

// parseBuiltinCall: @cast(T, e)
func (p *Parser) parseBuiltinCall() ast.Expression {
	start := p.expect(tokens.AT_TOKEN).Start
	name := p.expectError(tokens.IDENTIFIER_TOKEN, "expected builtin name after '@'")
	if name.Value != "cast" {
		p.failAt(name, diagnostics.ErrInvalidExpression, "unknown builtin @"+name.Value)
	}

	p.expectError(tokens.OPEN_PAREN, "expected opening paren")
	saved := p.noStructLit
	p.noStructLit = false
	typ := p.parseType()
	p.expectError(tokens.COMMA_TOKEN, "expected ',' after cast type")
	x := p.parseExpr()
	p.noStructLit = saved
	p.expectError(tokens.CLOSE_PAREN, "expected closing paren")

	return &ast.CastExpr{
		Type:     typ,
		X:        x,
		Location: p.makeLocation(start),
	}
}
