package ast

import (
	"fmt"
	"strings"

	"github.com/vasiltop/compiler/internal/source"
)

func pointerPrefix(depth int) string {
	return strings.Repeat("^", depth)
}

// BasicType is a builtin scalar such as i32, bool or string.
type BasicType struct {
	Name  string
	Depth int
	source.Location
}

func (b *BasicType) INode()                {} // Implements Node interface
func (b *BasicType) TypeExpr()             {} // Type nodes implement TypeExpr
func (b *BasicType) Pointers() int         { return b.Depth }
func (b *BasicType) Loc() *source.Location { return &b.Location }
func (b *BasicType) String() string        { return pointerPrefix(b.Depth) + b.Name }

// ArrayType is [Elem; Size].
type ArrayType struct {
	Elem  TypeNode
	Size  int
	Depth int
	source.Location
}

func (a *ArrayType) INode()                {} // Implements Node interface
func (a *ArrayType) TypeExpr()             {} // Type nodes implement TypeExpr
func (a *ArrayType) Pointers() int         { return a.Depth }
func (a *ArrayType) Loc() *source.Location { return &a.Location }
func (a *ArrayType) String() string {
	return fmt.Sprintf("%s[%s; %d]", pointerPrefix(a.Depth), a.Elem, a.Size)
}

// StructType names a struct in Module. A bare struct name gets the current module.
type StructType struct {
	Module string
	Name   string
	Depth  int
	source.Location
}

func (s *StructType) INode()                {} // Implements Node interface
func (s *StructType) TypeExpr()             {} // Type nodes implement TypeExpr
func (s *StructType) Pointers() int         { return s.Depth }
func (s *StructType) Loc() *source.Location { return &s.Location }
func (s *StructType) String() string {
	return fmt.Sprintf("%s%s:%s", pointerPrefix(s.Depth), s.Module, s.Name)
}
