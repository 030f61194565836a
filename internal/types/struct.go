package types

// Struct is a registered struct: its name and fields in declaration order.
// Offsets and size are filled in by the data layout once every field type
// is known.
type Struct struct {
	ID     int
	Module string
	Name   string
	Fields []Field

	Size    int
	Align   int
	laidOut bool

	index map[string]int
}

// Field is one struct member.
type Field struct {
	Name   string
	Type   Type
	Offset int
}

func NewStruct(id int, module, name string) *Struct {
	return &Struct{ID: id, Module: module, Name: name, index: make(map[string]int)}
}

// QualifiedName is module:Name.
func (s *Struct) QualifiedName() string {
	return s.Module + ":" + s.Name
}

// AddField appends a field. It reports false if the name is already taken.
func (s *Struct) AddField(name string, t Type) bool {
	if _, dup := s.index[name]; dup {
		return false
	}
	s.index[name] = len(s.Fields)
	s.Fields = append(s.Fields, Field{Name: name, Type: t})
	return true
}

// FieldIndex resolves a field name to its position.
func (s *Struct) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// LaidOut reports whether offsets and size have been computed.
func (s *Struct) LaidOut() bool { return s.laidOut }

// SetLayout records the computed layout.
func (s *Struct) SetLayout(offsets []int, size, align int) {
	for i := range s.Fields {
		s.Fields[i].Offset = offsets[i]
	}
	s.Size = size
	s.Align = align
	s.laidOut = true
}
