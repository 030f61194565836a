package mir

import (
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/types"
)

// ValueID identifies a value within a function.
type ValueID uint32

// BlockID identifies a basic block within a function.
type BlockID uint32

const (
	InvalidValue ValueID = 0
	InvalidBlock BlockID = 0
)

// Module is the IR root for one compilation. All files lower into it.
type Module struct {
	Name      string
	Structs   []*types.Struct
	Functions []*Function
	Data      []*Data

	funcs map[string]*Function
	data  map[string]*Data
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:  name,
		funcs: make(map[string]*Function),
		data:  make(map[string]*Data),
	}
}

// Function looks up a declared function by link name.
func (m *Module) Function(name string) (*Function, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

// DataNamed looks up a data entry by name.
func (m *Module) DataNamed(name string) (*Data, bool) {
	d, ok := m.data[name]
	return d, ok
}

// Function is a typed IR function. External functions have no blocks.
type Function struct {
	Name     string // link name
	Params   []Param
	Return   types.Type
	Variadic bool
	External bool
	Blocks   []*Block
	Location source.Location

	// Values records the type of every value the function defines.
	Values map[ValueID]types.Type

	nextValue ValueID
	nextBlock BlockID
}

// TypeOf returns the type of a value defined in fn.
func (fn *Function) TypeOf(id ValueID) types.Type {
	return fn.Values[id]
}

// Block returns the block with the given id, or nil. Blocks are numbered
// from 1 in creation order.
func (fn *Function) Block(id BlockID) *Block {
	if id == InvalidBlock || int(id) > len(fn.Blocks) {
		return nil
	}
	return fn.Blocks[id-1]
}

// NumValues is one more than the highest value id defined in fn.
func (fn *Function) NumValues() int {
	return int(fn.nextValue) + 1
}

// Param describes a function parameter value.
type Param struct {
	ID       ValueID
	Name     string
	Type     types.Type
	Location source.Location
}

// Block is a basic block with a list of instructions and a terminator.
type Block struct {
	ID       BlockID
	Name     string
	Instrs   []Instr
	Term     Term
	Location source.Location
}

// Data is a constant byte string placed in read-only memory. Bytes include
// the terminating NUL.
type Data struct {
	Name  string
	Bytes []byte
}
