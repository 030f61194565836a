// Package table holds the global symbol tables of one compilation: functions
// and structs keyed by (module, name). Tables are filled during the
// definitions pass and then interned, after which every entry also has a
// dense SymbolID and no more entries may be declared.
package table

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/types"
)

// Key names a global symbol.
type Key struct {
	Module string
	Name   string
}

func (k Key) String() string { return k.Module + ":" + k.Name }

// SymbolID is the interned form of a Key.
type SymbolID int32

const InvalidSymbol SymbolID = -1

// SymbolTable is a two-level table: module name, then symbol name.
type SymbolTable[T any] struct {
	modules map[string]map[string]T
	order   []Key

	ids      map[Key]SymbolID
	byID     []T
	interned bool
}

// NewSymbolTable creates an empty table
func NewSymbolTable[T any]() *SymbolTable[T] {
	return &SymbolTable[T]{
		modules: make(map[string]map[string]T),
	}
}

// Declare adds a symbol. It returns an error if the key is already declared
// or the table has been interned.
func (st *SymbolTable[T]) Declare(key Key, value T) error {
	if st.interned {
		return fmt.Errorf("symbol '%s' declared after interning", key)
	}
	names, ok := st.modules[key.Module]
	if !ok {
		names = make(map[string]T)
		st.modules[key.Module] = names
	}
	if _, exists := names[key.Name]; exists {
		return fmt.Errorf("symbol '%s' already declared", key)
	}
	names[key.Name] = value
	st.order = append(st.order, key)
	return nil
}

// Lookup finds a symbol by key
func (st *SymbolTable[T]) Lookup(key Key) (T, bool) {
	value, ok := st.modules[key.Module][key.Name]
	return value, ok
}

// Keys returns the keys in declaration order.
func (st *SymbolTable[T]) Keys() []Key {
	return append([]Key(nil), st.order...)
}

func (st *SymbolTable[T]) Len() int {
	return len(st.order)
}

// Intern assigns SymbolIDs in declaration order and freezes the table.
func (st *SymbolTable[T]) Intern() {
	if st.interned {
		return
	}
	st.ids = make(map[Key]SymbolID, len(st.order))
	st.byID = make([]T, len(st.order))
	for i, key := range st.order {
		st.ids[key] = SymbolID(i)
		st.byID[i], _ = st.Lookup(key)
	}
	st.interned = true
}

// ID returns the interned id of key. It is InvalidSymbol before Intern.
func (st *SymbolTable[T]) ID(key Key) SymbolID {
	if id, ok := st.ids[key]; ok {
		return id
	}
	return InvalidSymbol
}

// Get returns the symbol with the given id.
func (st *SymbolTable[T]) Get(id SymbolID) T {
	return st.byID[id]
}

// Function is a registered function signature.
type Function struct {
	Key
	ID       SymbolID
	Params   []types.Type
	Return   types.Type
	Variadic bool
	External bool   // declared without a body here; defined elsewhere
	LinkName string // symbol name in the output
	Decl     *ast.FuncDef
}

// Struct is a registered struct.
type Struct struct {
	Key
	ID   SymbolID
	Type *types.Struct
	Decl *ast.StructDef
}

// Tables bundles the global tables the generator consults.
type Tables struct {
	Functions *SymbolTable[*Function]
	Structs   *SymbolTable[*Struct]

	// Modules named by a file header, whether or not they declare anything.
	Modules map[string]bool
}

func New() *Tables {
	return &Tables{
		Functions: NewSymbolTable[*Function](),
		Structs:   NewSymbolTable[*Struct](),
		Modules:   make(map[string]bool),
	}
}

// Intern freezes both tables and stores each entry's id on the entry.
func (t *Tables) Intern() {
	t.Functions.Intern()
	t.Structs.Intern()
	for _, key := range t.Functions.Keys() {
		fn, _ := t.Functions.Lookup(key)
		fn.ID = t.Functions.ID(key)
	}
	for _, key := range t.Structs.Keys() {
		st, _ := t.Structs.Lookup(key)
		st.ID = t.Structs.ID(key)
	}
}
