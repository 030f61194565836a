package types

// Wider returns whichever integer type has more bits. On a tie the unsigned
// one wins.
func Wider(a, b Type) Type {
	if a.Bits > b.Bits {
		return a
	}
	if b.Bits > a.Bits {
		return b
	}
	if a.Signed && b.Signed {
		return a
	}
	if !a.Signed {
		return a
	}
	return b
}

// EmbeddedStructs lists the structs t holds by value, looking through arrays.
func EmbeddedStructs(t Type) []*Struct {
	if t.Depth > 0 {
		return nil
	}
	switch t.Kind {
	case KindArray:
		return EmbeddedStructs(*t.Elem)
	case KindStruct:
		return []*Struct{t.Struct}
	}
	return nil
}
