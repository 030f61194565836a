// Package mirgen lowers parsed files into the block IR of package mir.
//
// Generation runs in two passes over every file. The definitions pass
// registers structs and function signatures in the global tables, so the
// bodies pass can call any function and use any struct regardless of the
// order files and declarations appear in.
package mirgen

import (
	"errors"
	"fmt"

	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/table"
	"github.com/vasiltop/compiler/internal/types"
)

// EntryFunction is the function left unmangled in the entry module.
const EntryFunction = "main"

// Generator lowers a set of files into one mir.Module.
type Generator struct {
	files  []*ast.File
	tables *table.Tables
	b      *mir.Builder
	funcs  []*mir.Function // backend function per interned SymbolID
	entry  string // module of the first file

	// State of the function being lowered.
	file   *ast.File
	fn     *table.Function
	scopes *ScopeArena
	scope  ScopeID
}

// Generate lowers files, the first of which is the entry file. Files are
// lowered in the order given.
func Generate(files []*ast.File) (*mir.Module, error) {
	g, err := newGenerator(files)
	if err != nil {
		return nil, err
	}
	if err := g.defineAll(); err != nil {
		return nil, err
	}
	if err := g.lowerBodies(); err != nil {
		return nil, err
	}
	return g.b.Module, nil
}

func newGenerator(files []*ast.File) (*Generator, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to generate")
	}
	return &Generator{
		files:  files,
		tables: table.New(),
		b:      mir.NewBuilder(files[0].Module, nil),
		entry:  files[0].Module,
	}, nil
}

// Tables exposes the symbol tables after generation, for tests and dumps.
func (g *Generator) Tables() *table.Tables { return g.tables }

func (g *Generator) defineAll() error {
	for _, file := range g.files {
		g.tables.Modules[file.Module] = true
	}
	if err := g.registerStructs(); err != nil {
		return err
	}
	if err := g.defineFields(); err != nil {
		return err
	}
	if err := g.checkStructCycles(); err != nil {
		return err
	}
	for _, key := range g.tables.Structs.Keys() {
		st, _ := g.tables.Structs.Lookup(key)
		g.b.DeclareStruct(st.Type)
	}
	if err := g.registerFunctions(); err != nil {
		return err
	}
	g.tables.Intern()
	return g.declareFunctions()
}

func (g *Generator) registerStructs() error {
	for _, file := range g.files {
		for _, def := range file.StructDefs() {
			key := table.Key{Module: file.Module, Name: def.Name}
			entry := &table.Struct{
				Key:  key,
				Type: types.NewStruct(g.tables.Structs.Len(), file.Module, def.Name),
				Decl: def,
			}
			if err := g.tables.Structs.Declare(key, entry); err != nil {
				prev, _ := g.tables.Structs.Lookup(key)
				return diagnostics.RedeclaredSymbol(def.Location, prev.Decl.Location, "struct "+key.String())
			}
		}
	}
	return nil
}

func (g *Generator) defineFields() error {
	for _, key := range g.tables.Structs.Keys() {
		st, _ := g.tables.Structs.Lookup(key)
		for _, field := range st.Decl.Fields {
			t, err := g.lowerValueType(field.Type)
			if err != nil {
				return err
			}
			if !st.Type.AddField(field.Name, t) {
				return diagnostics.NewError(fmt.Sprintf("duplicate field %s in struct %s", field.Name, key)).
					WithCode(diagnostics.ErrRedeclaredSymbol).
					WithPrimaryLabel(field.Location, "")
			}
		}
	}
	return nil
}

// checkStructCycles rejects structs that contain themselves by value,
// directly or through other structs and arrays.
func (g *Generator) checkStructCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*types.Struct]int)

	var visit func(st *types.Struct) *types.Struct
	visit = func(st *types.Struct) *types.Struct {
		switch state[st] {
		case visiting:
			return st
		case done:
			return nil
		}
		state[st] = visiting
		for _, field := range st.Fields {
			for _, inner := range types.EmbeddedStructs(field.Type) {
				if cyc := visit(inner); cyc != nil {
					return cyc
				}
			}
		}
		state[st] = done
		return nil
	}

	for _, key := range g.tables.Structs.Keys() {
		st, _ := g.tables.Structs.Lookup(key)
		if cyc := visit(st.Type); cyc != nil {
			entry, _ := g.tables.Structs.Lookup(table.Key{Module: cyc.Module, Name: cyc.Name})
			return diagnostics.NewError(fmt.Sprintf("struct %s contains itself", cyc.QualifiedName())).
				WithCode(diagnostics.ErrCircularDependency).
				WithPrimaryLabel(entry.Decl.Location, "").
				WithHelp("hold the inner value through a pointer")
		}
	}
	return nil
}

// registerFunctions records every signature. The first declaration of a
// name wins, except that a body-less declaration is completed by a later
// definition with the same signature.
func (g *Generator) registerFunctions() error {
	for _, file := range g.files {
		for _, def := range file.FuncDefs() {
			key := table.Key{Module: file.Module, Name: def.Name}
			fn, err := g.signature(key, def)
			if err != nil {
				return err
			}
			prev, exists := g.tables.Functions.Lookup(key)
			if !exists {
				if err := g.tables.Functions.Declare(key, fn); err != nil {
					return err
				}
				continue
			}
			if prev.Decl.Body != nil || def.Body == nil {
				continue
			}
			if !sameSignature(prev, fn) {
				return diagnostics.NewError(fmt.Sprintf("definition of %s does not match its declaration", key)).
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(def.Location, "").
					WithSecondaryLabel(prev.Decl.Location, "declared here")
			}
			prev.Decl = def
			prev.External = false
			prev.LinkName = fn.LinkName
		}
	}
	return nil
}

func (g *Generator) signature(key table.Key, def *ast.FuncDef) (*table.Function, error) {
	fn := &table.Function{
		Key:      key,
		Variadic: def.Variadic,
		External: def.Body == nil,
		Decl:     def,
	}
	for _, param := range def.Params {
		t, err := g.lowerValueType(param.Type)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, t)
	}
	ret, err := g.lowerType(def.Return)
	if err != nil {
		return nil, err
	}
	fn.Return = ret
	fn.LinkName = g.linkName(key, fn.External)
	return fn, nil
}

// linkName is the symbol a function is emitted under: module.name, except
// for external functions and the entry module's main.
func (g *Generator) linkName(key table.Key, external bool) string {
	if external || (key.Module == g.entry && key.Name == EntryFunction) {
		return key.Name
	}
	return key.Module + "." + key.Name
}

func sameSignature(a, b *table.Function) bool {
	if len(a.Params) != len(b.Params) || a.Variadic != b.Variadic || !a.Return.Equal(b.Return) {
		return false
	}
	for i := range a.Params {
		if !a.Params[i].Equal(b.Params[i]) {
			return false
		}
	}
	return true
}

// declareFunctions puts every interned signature on the backend module.
// External declarations sharing a symbol share one backend function.
func (g *Generator) declareFunctions() error {
	g.funcs = make([]*mir.Function, g.tables.Functions.Len())
	for _, key := range g.tables.Functions.Keys() {
		fn := g.tables.Functions.Get(g.tables.Functions.ID(key))
		if existing, ok := g.b.Module.Function(fn.LinkName); ok && existing.External && fn.External {
			g.funcs[fn.ID] = existing
			continue
		}
		params := make([]mir.Param, len(fn.Params))
		for i, t := range fn.Params {
			p := fn.Decl.Params[i]
			params[i] = mir.Param{Name: p.Name, Type: t, Location: p.Location}
		}
		irFn, err := g.b.DeclareFunction(fn.LinkName, params, fn.Return, fn.Variadic, fn.External, fn.Decl.Location)
		if err != nil {
			return diagnostics.NewError(err.Error()).
				WithCode(diagnostics.ErrRedeclaredSymbol).
				WithPrimaryLabel(fn.Decl.Location, "")
		}
		g.funcs[fn.ID] = irFn
	}
	return nil
}

func (g *Generator) lowerBodies() error {
	for _, file := range g.files {
		for _, def := range file.FuncDefs() {
			if def.Body == nil {
				continue
			}
			fn, _ := g.tables.Functions.Lookup(table.Key{Module: file.Module, Name: def.Name})
			if fn.Decl != def {
				continue
			}
			if err := g.lowerFunction(file, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) lowerFunction(file *ast.File, fn *table.Function) error {
	irFn := g.funcs[fn.ID]
	g.file, g.fn = file, fn
	g.scopes = NewScopeArena()
	g.scope = g.scopes.Root()
	defer func() {
		g.file, g.fn, g.scopes = nil, nil, nil
	}()

	g.b.BeginFunction(irFn)
	for i, param := range irFn.Params {
		slot := g.b.Alloca(param.Type, param.Location)
		g.b.Store(slot, param.ID, param.Type, param.Location)
		if err := g.declareLocal(param.Name, slot, param.Type, fn.Decl.Params[i].Location); err != nil {
			return err
		}
	}

	if err := g.lowerBlock(fn.Decl.Body); err != nil {
		return err
	}
	if fn.Return.IsVoid() && !g.b.Terminated() {
		g.b.RetVoid(fn.Decl.Body.Location)
	}
	g.b.EndFunction()
	return nil
}

func (g *Generator) declareLocal(name string, slot mir.ValueID, t types.Type, loc source.Location) error {
	prev, ok := g.scopes.Declare(g.scope, &Local{Name: name, Slot: slot, Type: t, Location: loc})
	if !ok {
		return diagnostics.RedeclaredSymbol(loc, prev.Location, name)
	}
	return nil
}
