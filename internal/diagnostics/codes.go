package diagnostics

// Error codes
const (
	// Lexer errors (L prefix)
	ErrUnexpectedCharacter = "L0001"
	ErrUnterminatedString  = "L0002"
	ErrInvalidEscape       = "L0003"

	// Parser errors (P prefix)
	ErrUnexpectedToken    = "P0001"
	ErrExpectedToken      = "P0002"
	ErrInvalidExpression  = "P0003"
	ErrInvalidStatement   = "P0004"
	ErrInvalidDeclaration = "P0005"
	ErrInvalidNumber      = "P0006"

	// Resolution and type errors (T prefix)
	ErrTypeMismatch       = "T0001"
	ErrUndefinedSymbol    = "T0002"
	ErrRedeclaredSymbol   = "T0003"
	ErrInvalidOperation   = "T0004"
	ErrUndefinedFunction  = "T0005"
	ErrWrongArgumentCount = "T0006"
	ErrInvalidAssignment  = "T0007"
	ErrNotIndexable       = "T0008"
	ErrUndefinedStruct    = "T0009"
	ErrFieldNotFound      = "T0010"
	ErrUndefinedModule    = "T0011"
	ErrCircularDependency = "T0013"
	ErrInvalidCast        = "T0014"
	ErrInvalidReturn      = "T0016"
	ErrInvalidType        = "T0021"

	// Module/Import errors (M prefix)
	ErrModuleNotFound    = "M0001"
	ErrInvalidImportPath = "M0003"
	ErrDuplicateModule   = "M0004"
)
