// Package types holds the lowered form of source types. A Type is a plain
// value: an element kind plus a pointer depth. Every pointer, whatever its
// depth and element, is one opaque machine pointer in the backend; the full
// shape is kept here so loads and pointer arithmetic know what they point at.
package types

import (
	"fmt"
	"strings"
)

// Kind is the element kind of a type, before any pointer indirection.
type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindArray
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Type is a lowered type. Depth counts pointer levels on top of the element
// described by the other fields.
type Type struct {
	Kind   Kind
	Bits   int     // KindInt and KindFloat
	Signed bool    // KindInt
	Elem   *Type   // KindArray
	Len    int     // KindArray
	Struct *Struct // KindStruct
	Depth  int
}

// Int returns the integer type of the given width and signedness.
func Int(bits int, signed bool) Type {
	return Type{Kind: KindInt, Bits: bits, Signed: signed}
}

// Float returns the floating point type of the given width.
func Float(bits int) Type {
	return Type{Kind: KindFloat, Bits: bits}
}

// ArrayOf returns the fixed-size array [elem; n].
func ArrayOf(elem Type, n int) Type {
	return Type{Kind: KindArray, Elem: &elem, Len: n}
}

// StructOf returns the by-value type of s.
func StructOf(s *Struct) Type {
	return Type{Kind: KindStruct, Struct: s}
}

// PointerTo adds one level of indirection.
func (t Type) PointerTo() Type {
	t.Depth++
	return t
}

// Deref removes one level of indirection. It panics on a non-pointer.
func (t Type) Deref() Type {
	if t.Depth == 0 {
		panic(fmt.Sprintf("types: dereference of non-pointer %s", t))
	}
	t.Depth--
	return t
}

func (t Type) IsPointer() bool { return t.Depth > 0 }
func (t Type) IsVoid() bool    { return t.Depth == 0 && t.Kind == KindVoid }
func (t Type) IsBool() bool    { return t.Depth == 0 && t.Kind == KindBool }
func (t Type) IsInteger() bool { return t.Depth == 0 && t.Kind == KindInt }
func (t Type) IsFloat() bool   { return t.Depth == 0 && t.Kind == KindFloat }
func (t Type) IsArray() bool   { return t.Depth == 0 && t.Kind == KindArray }
func (t Type) IsStruct() bool  { return t.Depth == 0 && t.Kind == KindStruct }

// IsAggregate reports whether values of t live in memory and are handled by address.
func (t Type) IsAggregate() bool { return t.IsArray() || t.IsStruct() }

// IsScalar reports whether t fits in a register.
func (t Type) IsScalar() bool {
	return t.IsPointer() || t.IsBool() || t.IsInteger() || t.IsFloat()
}

// Equal is structural equality. Structs compare by identity.
func (t Type) Equal(u Type) bool {
	if t.Kind != u.Kind || t.Depth != u.Depth {
		return false
	}
	switch t.Kind {
	case KindInt:
		return t.Bits == u.Bits && t.Signed == u.Signed
	case KindFloat:
		return t.Bits == u.Bits
	case KindArray:
		return t.Len == u.Len && t.Elem.Equal(*u.Elem)
	case KindStruct:
		return t.Struct == u.Struct
	default:
		return true
	}
}

func (t Type) String() string {
	return strings.Repeat("^", t.Depth) + t.elemString()
}

func (t Type) elemString() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		if t.Signed {
			return fmt.Sprintf("i%d", t.Bits)
		}
		return fmt.Sprintf("u%d", t.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Bits)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	case KindStruct:
		if t.Struct == nil {
			return "<struct>"
		}
		return t.Struct.QualifiedName()
	default:
		return "<invalid>"
	}
}
