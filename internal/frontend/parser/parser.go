package parser

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
)

// ImportHandler is called for every `import "target";` in the order the
// imports appear. It must make sure the target file is parsed (or already was)
// before returning, and reports the absolute path it resolved to.
type ImportHandler func(importer, target string, loc source.Location) (string, error)

// Parser holds temporary state during parsing of a single file.
// The first unmet expectation aborts the whole file; no partial tree is returned.
type Parser struct {
	tokens   []tokens.Token
	current  int
	filepath string
	module   string
	imports  ImportHandler
	file     *ast.File

	// noStructLit is set while parsing an if/while condition, where
	// `name {` opens the body instead of a struct literal.
	noStructLit bool
}

// bailout carries the fatal error from deep in the descent back to Parse.
type bailout struct {
	err error
}

// Parse builds the tree of one file. imports may be nil, in which case import
// lines are recorded but not followed.
func Parse(toks []tokens.Token, filepath string, imports ImportHandler) (file *ast.File, err error) {
	if len(toks) == 0 || toks[len(toks)-1].Kind != tokens.EOF_TOKEN {
		toks = append(toks, tokens.Token{Kind: tokens.EOF_TOKEN})
	}

	p := &Parser{
		tokens:   toks,
		filepath: filepath,
		imports:  imports,
	}

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			file, err = nil, b.err
		}
	}()

	return p.parseFile(), nil
}

// fail aborts parsing with err.
func (p *Parser) fail(err error) {
	panic(bailout{err: err})
}

// failAt aborts with a syntax error at tok.
func (p *Parser) failAt(tok tokens.Token, code, msg string) {
	if tok.Kind == tokens.UNKNOWN_TOKEN {
		p.fail(diagnostics.NewError("unrecognized input").
			WithCode(diagnostics.ErrUnexpectedCharacter).
			WithReceived(tok.Value).
			WithPrimaryLabel(p.tokenLoc(tok), msg))
	}
	p.fail(diagnostics.NewError(msg).
		WithCode(code).
		WithReceived(received(tok)).
		WithPrimaryLabel(p.tokenLoc(tok), ""))
}

func received(tok tokens.Token) string {
	if tok.Kind == tokens.EOF_TOKEN {
		return "end of file"
	}
	return tok.Value
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == tokens.EOF_TOKEN
}

func (p *Parser) peek() tokens.Token {
	return p.peekAt(0)
}

// peekAt looks offset tokens past the current one. Past the end it keeps
// returning the EOF token.
func (p *Parser) peekAt(offset int) tokens.Token {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() tokens.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() tokens.Token {
	tok := p.peek()
	if tok.Kind != tokens.EOF_TOKEN {
		p.current++
	}
	return tok
}

func (p *Parser) match(kinds ...tokens.TOKEN) bool {
	for _, kind := range kinds {
		if p.peek().Kind == kind {
			return true
		}
	}
	return false
}

// lookahead reports whether the tokens starting at the current one have
// exactly the given kinds.
func (p *Parser) lookahead(kinds ...tokens.TOKEN) bool {
	for i, kind := range kinds {
		if p.peekAt(i).Kind != kind {
			return false
		}
	}
	return true
}

func (p *Parser) expect(kind tokens.TOKEN) tokens.Token {
	return p.expectError(kind, fmt.Sprintf("expected %s", kind))
}

func (p *Parser) expectError(kind tokens.TOKEN, msg string) tokens.Token {
	if p.match(kind) {
		return p.advance()
	}
	p.failAt(p.peek(), diagnostics.ErrExpectedToken, msg)
	return tokens.Token{}
}

func (p *Parser) tokenLoc(tok tokens.Token) source.Location {
	return source.NewLocation(p.filepath, tok.Start, tok.End)
}

func (p *Parser) makeLocation(start source.Position) source.Location {
	return source.NewLocation(p.filepath, start, p.previous().End)
}
