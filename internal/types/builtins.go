package types

import "github.com/vasiltop/compiler/internal/tokens"

var (
	Void = Type{Kind: KindVoid}
	Bool = Type{Kind: KindBool}

	I8  = Int(8, true)
	I16 = Int(16, true)
	I32 = Int(32, true)
	I64 = Int(64, true)
	U8  = Int(8, false)
	U16 = Int(16, false)
	U32 = Int(32, false)
	U64 = Int(64, false)

	F32 = Float(32)
	F64 = Float(64)

	// String is a pointer to the first byte of a NUL terminated sequence.
	String = U8.PointerTo()
	Char   = U8

	// Null is the type of the null literal: an opaque pointer that converts
	// to every pointer type.
	Null = Void.PointerTo()
)

// DefaultInt is the type of an integer literal that fits in it.
var DefaultInt = I32

var builtins = map[string]Type{
	tokens.TYPE_I64:    I64,
	tokens.TYPE_U64:    U64,
	tokens.TYPE_I32:    I32,
	tokens.TYPE_U32:    U32,
	tokens.TYPE_I16:    I16,
	tokens.TYPE_U16:    U16,
	tokens.TYPE_I8:     I8,
	tokens.TYPE_U8:     U8,
	tokens.TYPE_F64:    F64,
	tokens.TYPE_F32:    F32,
	tokens.TYPE_BOOL:   Bool,
	tokens.TYPE_VOID:   Void,
	tokens.TYPE_STRING: String,
	tokens.TYPE_CHAR:   Char,
}

// Builtin returns the lowered type for a builtin type name.
func Builtin(name string) (Type, bool) {
	t, ok := builtins[name]
	return t, ok
}

// LiteralType picks the type of an integer literal: i32 when it fits, else i64.
func LiteralType(v int64) Type {
	if v >= -1<<31 && v <= 1<<31-1 {
		return DefaultInt
	}
	return I64
}
