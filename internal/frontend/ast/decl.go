package ast

import "github.com/vasiltop/compiler/internal/source"

// Param is a `name: type` pair, used for parameters and struct fields.
type Param struct {
	Name string
	Type TypeNode
	source.Location
}

func (p *Param) INode()                {} // Implements Node interface
func (p *Param) Loc() *source.Location { return &p.Location }

// FuncDef is `name :: (params) -> ret` followed by a block or a semicolon.
type FuncDef struct {
	Name     string
	Module   string
	Params   []*Param
	Return   TypeNode
	Body     *Block // nil for forward and external declarations
	Extern   bool
	Variadic bool
	source.Location
}

func (f *FuncDef) INode()                {} // Implements Node interface
func (f *FuncDef) Decl()                 {} // Decl is a marker interface for all declarations
func (f *FuncDef) Loc() *source.Location { return &f.Location }

// StructDef is `Name :: struct { field: type, ... }`.
type StructDef struct {
	Name   string
	Module string
	Fields []*Param
	source.Location
}

func (s *StructDef) INode()                {} // Implements Node interface
func (s *StructDef) Decl()                 {} // Decl is a marker interface for all declarations
func (s *StructDef) Loc() *source.Location { return &s.Location }
