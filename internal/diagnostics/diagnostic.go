package diagnostics

import (
	"fmt"
	"strings"

	"github.com/vasiltop/compiler/internal/source"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Label represents a labeled section of code in a diagnostic
type Label struct {
	Location source.Location
	Message  string
	Style    LabelStyle
}

type LabelStyle int

const (
	Primary   LabelStyle = iota // The main error location (uses ^^^)
	Secondary                   // Additional context (uses ---)
)

// Diagnostic represents a compiler diagnostic. It doubles as the error value
// returned by the parser and the generator.
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string // Error code like "P0001"
	FilePath string // Source file for this diagnostic
	Received string // Offending token text, if any
	Labels   []Label
	Notes    []string
	Help     string // Suggestion for fixing the error
}

// NewError creates a new error diagnostic
func NewError(message string) *Diagnostic {
	return &Diagnostic{
		Severity: Error,
		Message:  message,
	}
}

// NewWarning creates a new warning diagnostic
func NewWarning(message string) *Diagnostic {
	return &Diagnostic{
		Severity: Warning,
		Message:  message,
	}
}

// Errorf creates an error diagnostic with a formatted message.
func Errorf(format string, args ...any) *Diagnostic {
	return NewError(fmt.Sprintf(format, args...))
}

// WithCode sets the error code
func (d *Diagnostic) WithCode(code string) *Diagnostic {
	d.Code = code
	return d
}

// WithReceived records the text of the token that was found instead.
func (d *Diagnostic) WithReceived(value string) *Diagnostic {
	d.Received = value
	return d
}

// WithPrimaryLabel sets the main location. A second primary label is ignored.
func (d *Diagnostic) WithPrimaryLabel(loc source.Location, message string) *Diagnostic {
	for _, label := range d.Labels {
		if label.Style == Primary {
			return d
		}
	}
	if d.FilePath == "" {
		d.FilePath = loc.Filename
	}
	d.Labels = append([]Label{{Location: loc, Message: message, Style: Primary}}, d.Labels...)
	return d
}

// WithSecondaryLabel adds a context location. A primary label must exist first.
func (d *Diagnostic) WithSecondaryLabel(loc source.Location, message string) *Diagnostic {
	if _, ok := d.Primary(); !ok {
		panic("Cannot add secondary label without primary label. Call WithPrimaryLabel first.")
	}
	d.Labels = append(d.Labels, Label{Location: loc, Message: message, Style: Secondary})
	return d
}

// WithNote adds a note to the diagnostic
func (d *Diagnostic) WithNote(message string) *Diagnostic {
	d.Notes = append(d.Notes, message)
	return d
}

// WithHelp sets helpful suggestion for fixing the error
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	d.Help = help
	return d
}

// Primary returns the primary label, if any.
func (d *Diagnostic) Primary() (Label, bool) {
	for _, label := range d.Labels {
		if label.Style == Primary {
			return label, true
		}
	}
	return Label{}, false
}

// Error renders the one-line form: path:row:col: message, received: value
func (d *Diagnostic) Error() string {
	var b strings.Builder
	if label, ok := d.Primary(); ok {
		b.WriteString(label.Location.String())
		b.WriteString(": ")
	} else if d.FilePath != "" {
		b.WriteString(d.FilePath)
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	if d.Received != "" {
		b.WriteString(", received: ")
		b.WriteString(d.Received)
	}
	return b.String()
}
