package diagnostics

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vasiltop/compiler/colors"
	utilstrings "github.com/vasiltop/compiler/internal/utils/strings"
)

const (
	compileFailedMsg          = "Compilation failed with %s"
	andWarningMsg             = " and %s"
	compileSuccessWithWarning = "Compilation succeeded with %s\n"
)

// DiagnosticBag collects diagnostics during compilation
type DiagnosticBag struct {
	diagnostics []*Diagnostic
	errorCount  int
	warnCount   int
	sourceCache *SourceCache
}

// NewDiagnosticBag creates an empty bag
func NewDiagnosticBag() *DiagnosticBag {
	return &DiagnosticBag{
		sourceCache: NewSourceCache(),
	}
}

// AddSourceContent adds source content for a file path (for in-memory compilation)
func (db *DiagnosticBag) AddSourceContent(filepath, content string) {
	db.sourceCache.AddSource(filepath, content)
}

// Add adds a diagnostic to the bag
func (db *DiagnosticBag) Add(diag *Diagnostic) {
	db.diagnostics = append(db.diagnostics, diag)

	switch diag.Severity {
	case Error:
		db.errorCount++
	case Warning:
		db.warnCount++
	}
}

// AddError records err. Diagnostics keep their location; any other error becomes a bare message.
func (db *DiagnosticBag) AddError(err error) {
	if err == nil {
		return
	}
	if diag, ok := err.(*Diagnostic); ok {
		db.Add(diag)
		return
	}
	db.Add(NewError(err.Error()))
}

// HasErrors returns true if there are any errors
func (db *DiagnosticBag) HasErrors() bool {
	return db.errorCount > 0
}

// ErrorCount returns the number of errors
func (db *DiagnosticBag) ErrorCount() int {
	return db.errorCount
}

// WarningCount returns the number of warnings
func (db *DiagnosticBag) WarningCount() int {
	return db.warnCount
}

// Diagnostics returns a copy of all diagnostics
func (db *DiagnosticBag) Diagnostics() []*Diagnostic {
	result := make([]*Diagnostic, len(db.diagnostics))
	copy(result, db.diagnostics)
	return result
}

// EmitAll writes every diagnostic followed by a summary line.
func (db *DiagnosticBag) EmitAll(w io.Writer) {
	emitter := NewEmitter(w, db.sourceCache)
	for _, diag := range db.diagnostics {
		emitter.Emit(diag)
	}
	db.printSummary(w)
}

// EmitAllToString emits all diagnostics to a string with ANSI codes
func (db *DiagnosticBag) EmitAllToString() string {
	var buf bytes.Buffer
	db.EmitAll(&buf)
	return buf.String()
}

func (db *DiagnosticBag) printSummary(w io.Writer) {
	if db.errorCount > 0 {
		colors.RED.Fprintf(w, compileFailedMsg, utilstrings.Count(db.errorCount, "error", "errors"))
		if db.warnCount > 0 {
			colors.RED.Fprintf(w, andWarningMsg, utilstrings.Count(db.warnCount, "warning", "warnings"))
		}
		fmt.Fprintln(w)
	} else if db.warnCount > 0 {
		colors.ORANGE.Fprintf(w, compileSuccessWithWarning, utilstrings.Count(db.warnCount, "warning", "warnings"))
	}
}

// Clear removes all diagnostics
func (db *DiagnosticBag) Clear() {
	db.diagnostics = nil
	db.errorCount = 0
	db.warnCount = 0
}
