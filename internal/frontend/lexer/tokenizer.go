package lexer

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/utils/numeric"
)

type regexHandler func(lex *Lexer, regex *regexp.Regexp)

type regexPattern struct {
	regex   *regexp.Regexp
	handler regexHandler
}

type Lexer struct {
	Tokens     []tokens.Token
	Position   source.Position
	sourceCode string
	FilePath   string
}

// patterns are tried in order; the first one matching at the cursor wins.
var patterns = []regexPattern{
	{regexp.MustCompile(`^\s+`), skipHandler},                          // whitespace
	{regexp.MustCompile(`^//[^\n]*`), skipHandler},                     // line comments
	{regexp.MustCompile(`^"(\\.|[^"\\\n])*"`), stringHandler},          // string literals
	{regexp.MustCompile(`^'(\\.|[^'\\\n])'`), charHandler},             // char literals
	{regexp.MustCompile(`^` + numeric.IntegerPattern), numberHandler},  // integers
	{regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*`), identifierHandler}, // identifiers and keywords
	{regexp.MustCompile(`^\.\.\.`), defaultHandler(tokens.THREE_DOT_TOKEN)},
	{regexp.MustCompile(`^->`), defaultHandler(tokens.ARROW_TOKEN)},
	{regexp.MustCompile(`^==`), defaultHandler(tokens.DOUBLE_EQUAL_TOKEN)},
	{regexp.MustCompile(`^!=`), defaultHandler(tokens.NOT_EQUAL_TOKEN)},
	{regexp.MustCompile(`^<=`), defaultHandler(tokens.LESS_EQUAL_TOKEN)},
	{regexp.MustCompile(`^>=`), defaultHandler(tokens.GREATER_EQUAL_TOKEN)},
	{regexp.MustCompile(`^&&`), defaultHandler(tokens.AND_TOKEN)},
	{regexp.MustCompile(`^\|\|`), defaultHandler(tokens.OR_TOKEN)},
	{regexp.MustCompile(`^&`), defaultHandler(tokens.REFERENCE_TOKEN)},
	{regexp.MustCompile(`^\^`), defaultHandler(tokens.POINTER_TOKEN)},
	{regexp.MustCompile(`^!`), defaultHandler(tokens.NOT_TOKEN)},
	{regexp.MustCompile(`^-`), defaultHandler(tokens.MINUS_TOKEN)},
	{regexp.MustCompile(`^\+`), defaultHandler(tokens.PLUS_TOKEN)},
	{regexp.MustCompile(`^\*`), defaultHandler(tokens.MUL_TOKEN)},
	{regexp.MustCompile(`^/`), defaultHandler(tokens.DIV_TOKEN)},
	{regexp.MustCompile(`^%`), defaultHandler(tokens.MOD_TOKEN)},
	{regexp.MustCompile(`^<`), defaultHandler(tokens.LESS_TOKEN)},
	{regexp.MustCompile(`^>`), defaultHandler(tokens.GREATER_TOKEN)},
	{regexp.MustCompile(`^=`), defaultHandler(tokens.EQUALS_TOKEN)},
	{regexp.MustCompile(`^:`), defaultHandler(tokens.COLON_TOKEN)},
	{regexp.MustCompile(`^;`), defaultHandler(tokens.SEMICOLON_TOKEN)},
	{regexp.MustCompile(`^\(`), defaultHandler(tokens.OPEN_PAREN)},
	{regexp.MustCompile(`^\)`), defaultHandler(tokens.CLOSE_PAREN)},
	{regexp.MustCompile(`^\[`), defaultHandler(tokens.OPEN_BRACKET)},
	{regexp.MustCompile(`^\]`), defaultHandler(tokens.CLOSE_BRACKET)},
	{regexp.MustCompile(`^\{`), defaultHandler(tokens.OPEN_CURLY)},
	{regexp.MustCompile(`^\}`), defaultHandler(tokens.CLOSE_CURLY)},
	{regexp.MustCompile(`^,`), defaultHandler(tokens.COMMA_TOKEN)},
	{regexp.MustCompile(`^\.`), defaultHandler(tokens.DOT_TOKEN)},
	{regexp.MustCompile(`^@`), defaultHandler(tokens.AT_TOKEN)},
}

func New(filepath, content string) *Lexer {
	return &Lexer{
		Tokens:     make([]tokens.Token, 0),
		Position:   source.Start(),
		sourceCode: content,
		FilePath:   filepath,
	}
}

func (lex *Lexer) advance(match string) {
	lex.Position.Advance(match)
}

func (lex *Lexer) push(token tokens.Token) {
	lex.Tokens = append(lex.Tokens, token)
}

func (lex *Lexer) remainder() string {
	return lex.sourceCode[lex.Position.Index:]
}

func (lex *Lexer) atEOF() bool {
	return lex.Position.Index >= len(lex.sourceCode)
}

// emit consumes match and pushes a token of kind carrying value.
func (lex *Lexer) emit(kind tokens.TOKEN, value, match string) {
	start := lex.Position
	lex.advance(match)
	lex.push(tokens.NewToken(kind, value, start, lex.Position))
}

func defaultHandler(token tokens.TOKEN) regexHandler {
	return func(lex *Lexer, _ *regexp.Regexp) {
		lex.emit(token, string(token), string(token))
	}
}

func identifierHandler(lex *Lexer, regex *regexp.Regexp) {
	identifier := regex.FindString(lex.remainder())
	if tokens.IsKeyword(identifier) {
		lex.emit(tokens.TOKEN(identifier), identifier, identifier)
		return
	}
	lex.emit(tokens.IDENTIFIER_TOKEN, identifier, identifier)
}

func numberHandler(lex *Lexer, regex *regexp.Regexp) {
	match := regex.FindString(lex.remainder())
	lex.emit(tokens.INT_TOKEN, match, match)
}

func stringHandler(lex *Lexer, regex *regexp.Regexp) {
	match := regex.FindString(lex.remainder())
	value, ok := unescape(match[1 : len(match)-1])
	if !ok {
		lex.emit(tokens.UNKNOWN_TOKEN, match, match)
		return
	}
	lex.emit(tokens.STRING_TOKEN, value, match)
}

func charHandler(lex *Lexer, regex *regexp.Regexp) {
	match := regex.FindString(lex.remainder())
	value, ok := unescape(match[1 : len(match)-1])
	if !ok || len(value) != 1 {
		lex.emit(tokens.UNKNOWN_TOKEN, match, match)
		return
	}
	lex.emit(tokens.CHAR_TOKEN, value, match)
}

// skipHandler processes a token that should be skipped by the lexer.
func skipHandler(lex *Lexer, regex *regexp.Regexp) {
	lex.advance(regex.FindString(lex.remainder()))
}

func unescape(raw string) (string, bool) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, true
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			b.WriteByte(raw[i])
			continue
		}
		i++
		if i >= len(raw) {
			return "", false
		}
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(raw[i])
		default:
			return "", false
		}
	}
	return b.String(), true
}

// Tokenize scans the whole input. Characters no pattern accepts become UNKNOWN
// tokens; the parser reports them. The stream always ends with EOF.
func (lex *Lexer) Tokenize(debug io.Writer) []tokens.Token {
	for !lex.atEOF() {
		matched := false
		rest := lex.remainder()
		for _, pattern := range patterns {
			if pattern.regex.MatchString(rest) {
				pattern.handler(lex, pattern.regex)
				matched = true
				break
			}
		}

		if !matched {
			_, size := utf8.DecodeRuneInString(rest)
			bad := rest[:size]
			if strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, "'") {
				// unterminated literal: swallow the rest of the line
				if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
					bad = rest[:idx]
				} else {
					bad = rest
				}
			}
			lex.emit(tokens.UNKNOWN_TOKEN, bad, bad)
		}
	}

	lex.push(tokens.NewToken(tokens.EOF_TOKEN, "end of file", lex.Position, lex.Position))

	if debug != nil {
		for _, token := range lex.Tokens {
			token.Debug(debug, lex.FilePath)
		}
	}

	return lex.Tokens
}

// Tokenize is a convenience wrapper around New(...).Tokenize(nil).
func Tokenize(filepath, content string) []tokens.Token {
	return New(filepath, content).Tokenize(nil)
}
