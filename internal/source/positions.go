package source

import (
	"fmt"
	"unicode/utf8"
)

// Position represents a specific location in the source code with line, column, and index information.
type Position struct {
	Line   int // Line number in the source code, 1-based.
	Column int // Column number in the source code, 1-based.
	Index  int // Byte offset in the source code.
}

// Start is the position of the first byte of a file.
func Start() Position {
	return Position{Line: 1, Column: 1}
}

// Advance moves the position past the bytes in toSkip.
// A newline starts a new line; every other rune advances the column by one.
// An invalid byte counts as one column and one byte.
func (p *Position) Advance(toSkip string) *Position {
	for len(toSkip) > 0 {
		char, size := utf8.DecodeRuneInString(toSkip)
		toSkip = toSkip[size:]
		p.Index += size
		if char == '\n' {
			p.Line++
			p.Column = 1
			continue
		}
		p.Column++
	}
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
