package parser

import (
	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/tokens"
)

// parseFile: module "name"; followed by imports and global declarations in any order
func (p *Parser) parseFile() *ast.File {
	start := p.peek().Start

	p.file = &ast.File{
		Path:      p.filepath,
		Functions: make(map[string]bool),
		Structs:   make(map[string]bool),
	}

	p.expectError(tokens.MODULE_TOKEN, "expected module header")
	name := p.expectError(tokens.STRING_TOKEN, "expected module name")
	p.optional(tokens.SEMICOLON_TOKEN)

	p.module = name.Value
	p.file.Module = name.Value

	for !p.isAtEnd() {
		if p.match(tokens.IMPORT_TOKEN) {
			p.file.Imports = append(p.file.Imports, p.parseImport())
			continue
		}
		p.file.Decls = append(p.file.Decls, p.parseGlobal())
	}

	p.file.Location = p.makeLocation(start)
	return p.file
}

// parseImport: import "path";
// The imported file is parsed through the handler before this file continues.
func (p *Parser) parseImport() *ast.Import {
	start := p.expect(tokens.IMPORT_TOKEN).Start
	target := p.expectError(tokens.STRING_TOKEN, "expected file to import")
	p.optional(tokens.SEMICOLON_TOKEN)

	imp := &ast.Import{
		Target:   target.Value,
		Location: p.makeLocation(start),
	}

	if p.imports != nil {
		path, err := p.imports(p.filepath, target.Value, p.tokenLoc(target))
		if err != nil {
			p.fail(err)
		}
		imp.Path = path
	}

	return imp
}

// parseGlobal dispatches on the token three positions ahead:
// name :: ( is a function, name :: struct is a struct.
func (p *Parser) parseGlobal() ast.Decl {
	extern := false
	if p.match(tokens.EXTERN_TOKEN) {
		p.advance()
		extern = true
	}

	if p.lookahead(tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN, tokens.COLON_TOKEN) {
		switch p.peekAt(3).Kind {
		case tokens.OPEN_PAREN:
			return p.parseFunction(extern)
		case tokens.STRUCT_TOKEN:
			if !extern {
				return p.parseStruct()
			}
		}
	}

	p.failAt(p.peek(), diagnostics.ErrInvalidDeclaration, "expected function or struct declaration")
	return nil
}

// parseFunction: name :: (a: T, b: U) -> R { ... }
// A semicolon instead of a body declares a function defined elsewhere.
func (p *Parser) parseFunction(extern bool) *ast.FuncDef {
	nameTok := p.expectError(tokens.IDENTIFIER_TOKEN, "expected function name")
	start := nameTok.Start
	p.expectDoubleColon()
	p.expectError(tokens.OPEN_PAREN, "expected opening function paren")

	fn := &ast.FuncDef{
		Name:   nameTok.Value,
		Module: p.module,
		Extern: extern,
	}

	for !p.match(tokens.CLOSE_PAREN) {
		if p.match(tokens.THREE_DOT_TOKEN) {
			dots := p.advance()
			fn.Variadic = true
			if !p.match(tokens.CLOSE_PAREN) {
				p.failAt(dots, diagnostics.ErrInvalidDeclaration, "'...' must be the last parameter")
			}
			break
		}

		fn.Params = append(fn.Params, p.parseParam())

		if !p.match(tokens.CLOSE_PAREN) {
			p.expectError(tokens.COMMA_TOKEN, "expected ',' or ')' in parameter list")
		}
	}
	p.expectError(tokens.CLOSE_PAREN, "expected closing function paren")

	if p.match(tokens.ARROW_TOKEN) {
		p.advance()
		fn.Return = p.parseType()
	} else {
		end := p.previous()
		fn.Return = &ast.BasicType{
			Name:     tokens.TYPE_VOID,
			Location: p.tokenLoc(end),
		}
	}

	if extern || p.match(tokens.SEMICOLON_TOKEN) {
		p.expectError(tokens.SEMICOLON_TOKEN, "expected ';' after external declaration")
	} else {
		fn.Body = p.parseBlock()
	}

	if fn.Variadic && fn.Body != nil {
		p.fail(diagnostics.NewError("only external declarations can be variadic").
			WithCode(diagnostics.ErrInvalidDeclaration).
			WithPrimaryLabel(p.tokenLoc(nameTok), "has a body"))
	}

	fn.Location = p.makeLocation(start)
	p.file.Functions[fn.Name] = true
	return fn
}

// parseStruct: Name :: struct { a: T, b: U }
func (p *Parser) parseStruct() *ast.StructDef {
	nameTok := p.expectError(tokens.IDENTIFIER_TOKEN, "expected struct name")
	p.expectDoubleColon()
	p.expect(tokens.STRUCT_TOKEN)
	p.expectError(tokens.OPEN_CURLY, "expected '{' after struct")

	def := &ast.StructDef{
		Name:   nameTok.Value,
		Module: p.module,
	}

	for !p.match(tokens.CLOSE_CURLY) {
		def.Fields = append(def.Fields, p.parseParam())

		if !p.match(tokens.CLOSE_CURLY) {
			p.expectError(tokens.COMMA_TOKEN, "expected ',' or '}' after field")
		}
	}
	p.expectError(tokens.CLOSE_CURLY, "expected '}' to close struct")

	def.Location = p.makeLocation(nameTok.Start)
	p.file.Structs[def.Name] = true
	return def
}

// parseParam: name: type
func (p *Parser) parseParam() *ast.Param {
	nameTok := p.expectError(tokens.IDENTIFIER_TOKEN, "expected name")
	p.expectError(tokens.COLON_TOKEN, "expected ':' after name")
	typ := p.parseType()

	return &ast.Param{
		Name:     nameTok.Value,
		Type:     typ,
		Location: p.makeLocation(nameTok.Start),
	}
}

func (p *Parser) expectDoubleColon() {
	p.expectError(tokens.COLON_TOKEN, "expected global definition (::)")
	p.expectError(tokens.COLON_TOKEN, "expected global definition (::)")
}

// optional consumes a token of kind if it is next.
func (p *Parser) optional(kind tokens.TOKEN) bool {
	if p.match(kind) {
		p.advance()
		return true
	}
	return false
}
