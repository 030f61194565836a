package ast

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vasiltop/compiler/internal/source"
)

// File is one parsed source file. Each file names its module in its header.
type File struct {
	Path    string // absolute path of the file
	Module  string // name from the module header
	Imports []*Import
	Decls   []Decl

	// Names declared at the top level of this file.
	Functions map[string]bool
	Structs   map[string]bool

	source.Location
}

func (f *File) INode()                {} // Implements Node interface
func (f *File) Loc() *source.Location { return &f.Location }

// FuncDefs returns the function declarations in source order.
func (f *File) FuncDefs() []*FuncDef {
	var out []*FuncDef
	for _, d := range f.Decls {
		if fn, ok := d.(*FuncDef); ok {
			out = append(out, fn)
		}
	}
	return out
}

// StructDefs returns the struct declarations in source order.
func (f *File) StructDefs() []*StructDef {
	var out []*StructDef
	for _, d := range f.Decls {
		if st, ok := d.(*StructDef); ok {
			out = append(out, st)
		}
	}
	return out
}

// SaveAST writes the tree as indented JSON next to the source file.
func (f *File) SaveAST() error {
	file, err := os.Create(f.Path + ".ast.json")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ") // pretty-print
	if err := encoder.Encode(f); err != nil {
		return fmt.Errorf("failed to encode AST to JSON: %w", err)
	}
	return nil
}

// Import is an `import "target";` line. Path is the resolved absolute file.
type Import struct {
	Target string
	Path   string
	source.Location
}

func (i *Import) INode()                {} // Implements Node interface
func (i *Import) Loc() *source.Location { return &i.Location }
