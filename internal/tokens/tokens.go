package tokens

import (
	"fmt"
	"io"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/source"
)

type TOKEN string

const (
	//keywords
	LET_TOKEN    TOKEN = "let"
	IF_TOKEN     TOKEN = "if"
	ELSE_TOKEN   TOKEN = "else"
	WHILE_TOKEN  TOKEN = "while"
	FOR_TOKEN    TOKEN = "for"
	RETURN_TOKEN TOKEN = "return"
	EXTERN_TOKEN TOKEN = "extern"
	STRUCT_TOKEN TOKEN = "struct"
	IMPORT_TOKEN TOKEN = "import"
	MODULE_TOKEN TOKEN = "module"
	TRUE_TOKEN   TOKEN = "true"
	FALSE_TOKEN  TOKEN = "false"
	NULL_TOKEN   TOKEN = "null"

	IDENTIFIER_TOKEN TOKEN = "identifier"
	//literals
	INT_TOKEN    TOKEN = "integer literal"
	STRING_TOKEN TOKEN = "string literal"
	CHAR_TOKEN   TOKEN = "char literal"
	//arithmetic operators
	PLUS_TOKEN  TOKEN = "+"
	MINUS_TOKEN TOKEN = "-"
	MUL_TOKEN   TOKEN = "*"
	DIV_TOKEN   TOKEN = "/"
	MOD_TOKEN   TOKEN = "%"
	//comparison operators
	DOUBLE_EQUAL_TOKEN  TOKEN = "=="
	NOT_EQUAL_TOKEN     TOKEN = "!="
	LESS_TOKEN          TOKEN = "<"
	GREATER_TOKEN       TOKEN = ">"
	LESS_EQUAL_TOKEN    TOKEN = "<="
	GREATER_EQUAL_TOKEN TOKEN = ">="
	//logical operators
	AND_TOKEN TOKEN = "&&"
	OR_TOKEN  TOKEN = "||"
	NOT_TOKEN TOKEN = "!"
	//pointers
	POINTER_TOKEN   TOKEN = "^"
	REFERENCE_TOKEN TOKEN = "&"
	//assignment
	EQUALS_TOKEN TOKEN = "="
	//delimiters
	OPEN_PAREN      TOKEN = "("
	CLOSE_PAREN     TOKEN = ")"
	OPEN_BRACKET    TOKEN = "["
	CLOSE_BRACKET   TOKEN = "]"
	OPEN_CURLY      TOKEN = "{"
	CLOSE_CURLY     TOKEN = "}"
	COMMA_TOKEN     TOKEN = ","
	DOT_TOKEN       TOKEN = "."
	THREE_DOT_TOKEN TOKEN = "..."
	COLON_TOKEN     TOKEN = ":"
	SEMICOLON_TOKEN TOKEN = ";"
	ARROW_TOKEN     TOKEN = "->"
	AT_TOKEN        TOKEN = "@"

	UNKNOWN_TOKEN TOKEN = "unknown"
	EOF_TOKEN     TOKEN = "end_of_file"
)

var keyWordsMap = map[TOKEN]bool{
	LET_TOKEN:    true,
	IF_TOKEN:     true,
	ELSE_TOKEN:   true,
	WHILE_TOKEN:  true,
	FOR_TOKEN:    true,
	RETURN_TOKEN: true,
	EXTERN_TOKEN: true,
	STRUCT_TOKEN: true,
	IMPORT_TOKEN: true,
	MODULE_TOKEN: true,
	TRUE_TOKEN:   true,
	FALSE_TOKEN:  true,
	NULL_TOKEN:   true,
}

// Builtin type names. Everything else in type position names a struct.
const (
	TYPE_I64    = "i64"
	TYPE_U64    = "u64"
	TYPE_I32    = "i32"
	TYPE_U32    = "u32"
	TYPE_I16    = "i16"
	TYPE_U16    = "u16"
	TYPE_I8     = "i8"
	TYPE_U8     = "u8"
	TYPE_F64    = "f64"
	TYPE_F32    = "f32"
	TYPE_BOOL   = "bool"
	TYPE_VOID   = "void"
	TYPE_STRING = "string"
	TYPE_CHAR   = "char"
)

var builtinTypes = map[string]bool{
	TYPE_I64:    true,
	TYPE_U64:    true,
	TYPE_I32:    true,
	TYPE_U32:    true,
	TYPE_I16:    true,
	TYPE_U16:    true,
	TYPE_I8:     true,
	TYPE_U8:     true,
	TYPE_F64:    true,
	TYPE_F32:    true,
	TYPE_BOOL:   true,
	TYPE_VOID:   true,
	TYPE_STRING: true,
	TYPE_CHAR:   true,
}

func IsKeyword(token string) bool {
	return keyWordsMap[TOKEN(token)]
}

func IsBuiltinType(token string) bool {
	return builtinTypes[token]
}

// Precedence returns the binding power of a binary operator, or -1 for anything else.
func Precedence(kind TOKEN) int {
	switch kind {
	case MUL_TOKEN, DIV_TOKEN, MOD_TOKEN:
		return 5
	case PLUS_TOKEN, MINUS_TOKEN:
		return 4
	case LESS_TOKEN, GREATER_TOKEN, LESS_EQUAL_TOKEN, GREATER_EQUAL_TOKEN:
		return 3
	case DOUBLE_EQUAL_TOKEN, NOT_EQUAL_TOKEN:
		return 2
	case AND_TOKEN:
		return 1
	case OR_TOKEN:
		return 0
	default:
		return -1
	}
}

type Token struct {
	Kind  TOKEN
	Value string
	Start source.Position
	End   source.Position
}

func (t *Token) Debug(w io.Writer, filename string) {
	colors.GREY.Fprintf(w, "%s:%d:%d ", filename, t.Start.Line, t.Start.Column)
	if t.Value == string(t.Kind) {
		fmt.Fprintf(w, "%q\n", t.Value)
	} else {
		fmt.Fprintf(w, "%q ('%v')\n", t.Value, t.Kind)
	}
}

func NewToken(kind TOKEN, value string, start source.Position, end source.Position) Token {
	return Token{
		Kind:  kind,
		Value: value,
		Start: start,
		End:   end,
	}
}
