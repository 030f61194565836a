package mir

import "github.com/vasiltop/compiler/internal/types"

// DataLayout provides target-specific size and alignment information.
type DataLayout struct {
	PointerSize  int
	PointerAlign int
}

// NewDataLayout constructs a layout with a target pointer size (bytes).
func NewDataLayout(pointerSize int) *DataLayout {
	if pointerSize <= 0 {
		pointerSize = 8
	}
	return &DataLayout{
		PointerSize:  pointerSize,
		PointerAlign: pointerSize,
	}
}

// SizeOf returns the size in bytes of t.
func (d *DataLayout) SizeOf(t types.Type) int {
	if t.IsPointer() {
		return d.PointerSize
	}
	switch t.Kind {
	case types.KindVoid:
		return 0
	case types.KindBool:
		return 1
	case types.KindInt, types.KindFloat:
		return t.Bits / 8
	case types.KindArray:
		return d.SizeOf(*t.Elem) * t.Len
	case types.KindStruct:
		return d.LayoutStruct(t.Struct).Size
	}
	return 0
}

// AlignOf returns the alignment in bytes of t.
func (d *DataLayout) AlignOf(t types.Type) int {
	if t.IsPointer() {
		return d.PointerAlign
	}
	switch t.Kind {
	case types.KindInt, types.KindFloat:
		return clampAlign(t.Bits/8, d.PointerAlign)
	case types.KindArray:
		return d.AlignOf(*t.Elem)
	case types.KindStruct:
		return d.LayoutStruct(t.Struct).Align
	}
	return 1
}

// LayoutStruct computes field offsets, size and alignment of s and records
// them on s. The result is cached on the struct.
func (d *DataLayout) LayoutStruct(s *types.Struct) *types.Struct {
	if s.LaidOut() {
		return s
	}
	offsets := make([]int, len(s.Fields))
	align := 1
	offset := 0
	for i, field := range s.Fields {
		fieldAlign := d.AlignOf(field.Type)
		offset = alignTo(offset, fieldAlign)
		offsets[i] = offset
		offset += d.SizeOf(field.Type)
		align = max(align, fieldAlign)
	}
	s.SetLayout(offsets, alignTo(offset, align), align)
	return s
}

// FieldOffset returns the byte offset of field index of s.
func (d *DataLayout) FieldOffset(s *types.Struct, index int) int {
	return d.LayoutStruct(s).Fields[index].Offset
}

func alignTo(value, alignment int) int {
	if alignment <= 1 {
		return value
	}
	rem := value % alignment
	if rem == 0 {
		return value
	}
	return value + (alignment - rem)
}

func clampAlign(size, maxAlign int) int {
	if size <= 0 {
		return 1
	}
	if size > maxAlign {
		return maxAlign
	}
	return size
}
