package source

import (
	"fmt"
	"strings"
)

// Location represents a span of source code with start and end positions
type Location struct {
	Filename string
	Start    Position
	End      Position
}

// NewLocation creates a new Location with the given start and end positions
func NewLocation(filename string, start, end Position) Location {
	return Location{
		Filename: filename,
		Start:    start,
		End:      end,
	}
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.Start.Line == 0
}

// String renders the location as path:row:col.
func (l Location) String() string {
	if l.IsZero() {
		return l.Filename
	}
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Start.Line, l.Start.Column)
}

// Line returns the 1-based line of content, without its newline.
func Line(content string, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	for i := 1; i < line; i++ {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			return "", false
		}
		content = content[idx+1:]
	}
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSuffix(content, "\r"), true
}
