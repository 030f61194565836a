package diagnostics

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/source"
)

// Common diagnostic builders for the parser and the generator

// Expected creates the syntax error for an unmet token expectation.
func Expected(loc source.Location, message, received string) *Diagnostic {
	return NewError(message).
		WithCode(ErrExpectedToken).
		WithReceived(received).
		WithPrimaryLabel(loc, "")
}

// UndefinedSymbol creates a diagnostic for undefined symbol
func UndefinedSymbol(loc source.Location, kind, name string) *Diagnostic {
	code := ErrUndefinedSymbol
	switch kind {
	case "function":
		code = ErrUndefinedFunction
	case "struct":
		code = ErrUndefinedStruct
	case "module":
		code = ErrUndefinedModule
	}
	return NewError(fmt.Sprintf("undefined %s: %s", kind, name)).
		WithCode(code).
		WithPrimaryLabel(loc, "not found in this scope")
}

// RedeclaredSymbol creates a diagnostic for redeclared symbol
func RedeclaredSymbol(newLoc, prevLoc source.Location, name string) *Diagnostic {
	return NewError(name+" is already declared in this scope").
		WithCode(ErrRedeclaredSymbol).
		WithPrimaryLabel(newLoc, "redeclared here").
		WithSecondaryLabel(prevLoc, "previously declared here").
		WithHelp("use a different name or declare it in a nested block")
}

// WrongArgumentCount creates a diagnostic for wrong number of arguments
func WrongArgumentCount(loc source.Location, name string, expected, found int) *Diagnostic {
	return NewError(fmt.Sprintf("wrong number of arguments to %s", name)).
		WithCode(ErrWrongArgumentCount).
		WithPrimaryLabel(loc, fmt.Sprintf("expected %d arguments, found %d", expected, found))
}

// FieldNotFound creates a diagnostic for field not found
func FieldNotFound(loc source.Location, fieldName, typeName string) *Diagnostic {
	return NewError("field "+fieldName+" not found").
		WithCode(ErrFieldNotFound).
		WithPrimaryLabel(loc, typeName+" has no field "+fieldName).
		WithHelp("check the field name spelling")
}

// TypeMismatch creates a diagnostic for a value used at an incompatible type.
func TypeMismatch(loc source.Location, got, want string) *Diagnostic {
	return NewError(fmt.Sprintf("cannot use %s as %s", got, want)).
		WithCode(ErrTypeMismatch).
		WithPrimaryLabel(loc, "")
}
