package parser

import (
	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/utils/numeric"
)

// maxArrayLen is the largest accepted array size.
const maxArrayLen = 1 << 31

// parseType parses ^^T, [T; N], module:Name, builtin names and local struct names.
func (p *Parser) parseType() ast.TypeNode {
	start := p.peek().Start

	depth := 0
	for p.match(tokens.POINTER_TOKEN) {
		p.advance()
		depth++
	}

	if p.match(tokens.OPEN_BRACKET) {
		p.advance()
		elem := p.parseType()
		p.expectError(tokens.SEMICOLON_TOKEN, "expected ';' in array type")
		sizeTok := p.expectError(tokens.INT_TOKEN, "expected array size")
		size, err := numeric.StringToInteger(sizeTok.Value)
		if err != nil || size <= 0 || size > maxArrayLen {
			p.failAt(sizeTok, diagnostics.ErrInvalidNumber, "array size must be a positive integer")
		}
		p.expectError(tokens.CLOSE_BRACKET, "expected ']' to close array type")

		return &ast.ArrayType{
			Elem:     elem,
			Size:     int(size),
			Depth:    depth,
			Location: p.makeLocation(start),
		}
	}

	nameTok := p.expectError(tokens.IDENTIFIER_TOKEN, "expected type identifier")

	if p.lookahead(tokens.COLON_TOKEN, tokens.IDENTIFIER_TOKEN) {
		p.advance()
		structTok := p.advance()
		return &ast.StructType{
			Module:   nameTok.Value,
			Name:     structTok.Value,
			Depth:    depth,
			Location: p.makeLocation(start),
		}
	}

	if !tokens.IsBuiltinType(nameTok.Value) {
		return &ast.StructType{
			Module:   p.module,
			Name:     nameTok.Value,
			Depth:    depth,
			Location: p.makeLocation(start),
		}
	}

	return &ast.BasicType{
		Name:     nameTok.Value,
		Depth:    depth,
		Location: p.makeLocation(start),
	}
}
