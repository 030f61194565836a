package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/source"
)

const (
	STR_MULTIPLIER = "%*d | "
	LINE_POS       = "%s--> %s\n"
)

// SourceCache caches source file contents for error reporting
type SourceCache struct {
	files map[string]string
}

func NewSourceCache() *SourceCache {
	return &SourceCache{
		files: make(map[string]string),
	}
}

// AddSource registers in-memory content for a path.
func (sc *SourceCache) AddSource(filepath, content string) {
	sc.files[filepath] = content
}

// GetLine retrieves a specific line from a source file
func (sc *SourceCache) GetLine(filepath string, line int) (string, error) {
	content, ok := sc.files[filepath]
	if !ok {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return "", err
		}
		content = string(data)
		sc.files[filepath] = content
	}
	text, ok := source.Line(content, line)
	if !ok {
		return "", fmt.Errorf("line %d out of range", line)
	}
	return text, nil
}

// Emitter handles the rendering and output of diagnostics
type Emitter struct {
	cache  *SourceCache
	writer io.Writer
}

// NewEmitter creates an emitter that writes to a specific writer
func NewEmitter(w io.Writer, cache *SourceCache) *Emitter {
	if cache == nil {
		cache = NewSourceCache()
	}
	return &Emitter{
		cache:  cache,
		writer: w,
	}
}

func (e *Emitter) Emit(diag *Diagnostic) {
	e.printHeader(diag)

	for _, label := range diag.Labels {
		e.printLabel(label, diag.Severity)
	}

	for _, note := range diag.Notes {
		colors.GREY.Fprint(e.writer, "  = ")
		fmt.Fprintf(e.writer, "note: %s\n", note)
	}

	if diag.Help != "" {
		colors.GREY.Fprint(e.writer, "  = ")
		colors.GREEN.Fprintf(e.writer, "help: %s\n", diag.Help)
	}

	fmt.Fprintln(e.writer)
}

func (e *Emitter) printHeader(diag *Diagnostic) {
	color := colors.BOLD_RED
	switch diag.Severity {
	case Warning:
		color = colors.BOLD_YELLOW
	case Info:
		color = colors.BOLD_CYAN
	}

	color.Fprint(e.writer, diag.Severity.String())
	if diag.Code != "" {
		fmt.Fprintf(e.writer, "[%s]", diag.Code)
	}
	fmt.Fprint(e.writer, ": ")
	fmt.Fprintln(e.writer, diag.Error())
}

// printLabel shows the source line under the location with a pointer to the column.
func (e *Emitter) printLabel(label Label, severity Severity) {
	loc := label.Location
	if loc.IsZero() {
		return
	}

	width := len(fmt.Sprintf("%d", loc.Start.Line))
	pad := strings.Repeat(" ", width)
	colors.BLUE.Fprintf(e.writer, LINE_POS, pad, loc.String())

	line, err := e.cache.GetLine(loc.Filename, loc.Start.Line)
	if err != nil {
		return
	}

	fmt.Fprint(e.writer, pad)
	colors.GREY.Fprintln(e.writer, " |")
	colors.GREY.Fprintf(e.writer, STR_MULTIPLIER, width, loc.Start.Line)
	fmt.Fprintln(e.writer, line)

	length := 1
	if loc.End.Line == loc.Start.Line && loc.End.Column > loc.Start.Column {
		length = loc.End.Column - loc.Start.Column
	}

	marker, color := "^", colors.RED
	if label.Style == Secondary {
		marker, color = "-", colors.BLUE
	} else if severity == Warning {
		color = colors.YELLOW
	}

	fmt.Fprint(e.writer, pad)
	colors.GREY.Fprint(e.writer, " | ")
	fmt.Fprint(e.writer, strings.Repeat(" ", max(loc.Start.Column-1, 0)))
	color.Fprint(e.writer, strings.Repeat(marker, length))
	if label.Message != "" {
		color.Fprint(e.writer, " "+label.Message)
	}
	fmt.Fprintln(e.writer)
}
