package mirgen

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/table"
	"github.com/vasiltop/compiler/internal/types"
)

// lowerType resolves a source type. Struct names go through the struct
// table; pointer depth is carried over unchanged.
func (g *Generator) lowerType(node ast.TypeNode) (types.Type, error) {
	var t types.Type
	switch n := node.(type) {
	case *ast.BasicType:
		builtin, ok := types.Builtin(n.Name)
		if !ok {
			return t, diagnostics.NewError(fmt.Sprintf("unknown type %s", n.Name)).
				WithCode(diagnostics.ErrInvalidType).
				WithPrimaryLabel(n.Location, "")
		}
		t = builtin
	case *ast.ArrayType:
		elem, err := g.lowerType(n.Elem)
		if err != nil {
			return t, err
		}
		if elem.IsVoid() {
			return t, invalidType(n.Location, "array of void")
		}
		t = types.ArrayOf(elem, n.Size)
	case *ast.StructType:
		st, err := g.lookupStruct(n.Module, n.Name, n.Location)
		if err != nil {
			return t, err
		}
		t = types.StructOf(st.Type)
	default:
		return t, fmt.Errorf("unsupported type node %T", node)
	}
	for i := 0; i < node.Pointers(); i++ {
		t = t.PointerTo()
	}
	return t, nil
}

// lowerValueType is lowerType for places that need storage: fields,
// parameters and variables cannot be void.
func (g *Generator) lowerValueType(node ast.TypeNode) (types.Type, error) {
	t, err := g.lowerType(node)
	if err != nil {
		return t, err
	}
	if t.IsVoid() {
		return t, invalidType(*node.Loc(), "void value")
	}
	return t, nil
}

func (g *Generator) lookupStruct(module, name string, loc source.Location) (*table.Struct, error) {
	if !g.tables.Modules[module] {
		return nil, diagnostics.UndefinedSymbol(loc, "module", module)
	}
	st, ok := g.tables.Structs.Lookup(table.Key{Module: module, Name: name})
	if !ok {
		return nil, diagnostics.UndefinedSymbol(loc, "struct", module+":"+name)
	}
	return st, nil
}

func invalidType(loc source.Location, what string) error {
	return diagnostics.NewError(fmt.Sprintf("invalid type: %s", what)).
		WithCode(diagnostics.ErrInvalidType).
		WithPrimaryLabel(loc, "")
}
