package mir

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

// Builder appends instructions to a Module. It is the only way the
// generator talks to the backend: declarations, blocks and the insertion
// point, then one method per instruction and terminator.
//
// Instructions emitted while the insertion block is already terminated are
// dropped, so code after a return never reaches the output.
type Builder struct {
	Module *Module
	Layout *DataLayout

	fn      *Function
	current *Block
	strings map[string]string
}

// NewBuilder creates a builder for a fresh module.
func NewBuilder(name string, layout *DataLayout) *Builder {
	if layout == nil {
		layout = NewDataLayout(8)
	}
	return &Builder{
		Module:  NewModule(name),
		Layout:  layout,
		strings: make(map[string]string),
	}
}

// DeclareStruct lays out s and adds it to the module.
func (b *Builder) DeclareStruct(s *types.Struct) {
	b.Layout.LayoutStruct(s)
	b.Module.Structs = append(b.Module.Structs, s)
}

// DeclareFunction adds a function signature. Defined functions get their
// parameter values numbered from 1.
func (b *Builder) DeclareFunction(name string, params []Param, ret types.Type, variadic, external bool, loc source.Location) (*Function, error) {
	if _, dup := b.Module.funcs[name]; dup {
		return nil, fmt.Errorf("function %s declared twice", name)
	}
	fn := &Function{
		Name:     name,
		Params:   append([]Param(nil), params...),
		Return:   ret,
		Variadic: variadic,
		External: external,
		Location: loc,
		Values:   make(map[ValueID]types.Type),
	}
	if !external {
		for i := range fn.Params {
			fn.Params[i].ID = fn.newValue(fn.Params[i].Type)
		}
	}
	b.Module.funcs[name] = fn
	b.Module.Functions = append(b.Module.Functions, fn)
	return fn, nil
}

// BeginFunction starts emitting fn's body and returns its entry block.
func (b *Builder) BeginFunction(fn *Function) *Block {
	b.fn = fn
	entry := b.NewBlock("entry", fn.Location)
	b.SetInsertPoint(entry)
	return entry
}

// EndFunction closes the current function. A block left without a
// terminator returns for void functions and is unreachable otherwise.
func (b *Builder) EndFunction() {
	for _, block := range b.fn.Blocks {
		if block.Term != nil {
			continue
		}
		if b.fn.Return.IsVoid() {
			block.Term = &Return{Location: block.Location}
		} else {
			block.Term = &Unreachable{Location: block.Location}
		}
	}
	b.fn = nil
	b.current = nil
}

// NewBlock creates a named block at the end of the current function.
func (b *Builder) NewBlock(name string, loc source.Location) *Block {
	b.fn.nextBlock++
	block := &Block{
		ID:       b.fn.nextBlock,
		Name:     name,
		Location: loc,
	}
	b.fn.Blocks = append(b.fn.Blocks, block)
	return block
}

// SetInsertPoint makes block the target of subsequent instructions.
func (b *Builder) SetInsertPoint(block *Block) {
	b.current = block
}

// Terminated reports whether the insertion block already has a terminator.
func (b *Builder) Terminated() bool {
	return b.current == nil || b.current.Term != nil
}

// TypeOf returns the type of a value of the current function.
func (b *Builder) TypeOf(id ValueID) types.Type {
	return b.fn.TypeOf(id)
}

func (fn *Function) newValue(t types.Type) ValueID {
	fn.nextValue++
	fn.Values[fn.nextValue] = t
	return fn.nextValue
}

func (b *Builder) emitInstr(instr Instr) {
	if b.Terminated() {
		return
	}
	b.current.Instrs = append(b.current.Instrs, instr)
}

func (b *Builder) setTerm(term Term) {
	if b.Terminated() {
		return
	}
	b.current.Term = term
}

// Const emits an integer, bool or pointer constant.
func (b *Builder) Const(t types.Type, v int64, loc source.Location) ValueID {
	id := b.fn.newValue(t)
	b.emitInstr(&Const{Result: id, Type: t, Value: v, Location: loc})
	return id
}

// String emits the address of a NUL terminated copy of s. Equal literals
// share one data entry.
func (b *Builder) String(s string, loc source.Location) ValueID {
	name, ok := b.strings[s]
	if !ok {
		name = fmt.Sprintf("str.%d", len(b.Module.Data))
		b.strings[s] = name
		data := &Data{Name: name, Bytes: append([]byte(s), 0)}
		b.Module.Data = append(b.Module.Data, data)
		b.Module.data[name] = data
	}
	id := b.fn.newValue(types.String)
	b.emitInstr(&DataAddr{Result: id, Name: name, Location: loc})
	return id
}

// Alloca reserves a stack slot for t and returns its address.
func (b *Builder) Alloca(t types.Type, loc source.Location) ValueID {
	id := b.fn.newValue(t.PointerTo())
	b.emitInstr(&Alloca{Result: id, Type: t, Location: loc})
	return id
}

// Load reads a scalar of type t from addr.
func (b *Builder) Load(addr ValueID, t types.Type, loc source.Location) ValueID {
	id := b.fn.newValue(t)
	b.emitInstr(&Load{Result: id, Addr: addr, Type: t, Location: loc})
	return id
}

// Store writes value to addr. Aggregates are copied from the address value
// holds.
func (b *Builder) Store(addr, value ValueID, t types.Type, loc source.Location) {
	if t.IsAggregate() {
		b.emitInstr(&Copy{Dst: addr, Src: value, Type: t, Location: loc})
		return
	}
	b.emitInstr(&Store{Addr: addr, Value: value, Type: t, Location: loc})
}

// ElemAddr returns the address of element index of the array at base.
func (b *Builder) ElemAddr(base, index ValueID, array types.Type, loc source.Location) ValueID {
	elem := *array.Elem
	id := b.fn.newValue(elem.PointerTo())
	b.emitInstr(&ElemAddr{Result: id, Base: base, Index: index, Elem: elem, Location: loc})
	return id
}

// FieldAddr returns the address of field index of the struct at base.
func (b *Builder) FieldAddr(base ValueID, s *types.Struct, index int, loc source.Location) ValueID {
	id := b.fn.newValue(s.Fields[index].Type.PointerTo())
	b.emitInstr(&FieldAddr{Result: id, Base: base, Struct: s, Index: index, Location: loc})
	return id
}

// PtrOffset advances the pointer base of type ptr by offset elements.
func (b *Builder) PtrOffset(base, offset ValueID, ptr types.Type, loc source.Location) ValueID {
	id := b.fn.newValue(ptr)
	b.emitInstr(&PtrOffset{Result: id, Base: base, Offset: offset, Elem: ptr.Deref(), Location: loc})
	return id
}

// Binary emits op on two operands of type t.
func (b *Builder) Binary(op tokens.TOKEN, left, right ValueID, t types.Type, loc source.Location) ValueID {
	result := t
	if IsComparison(op) || op == tokens.AND_TOKEN || op == tokens.OR_TOKEN {
		result = types.Bool
	}
	id := b.fn.newValue(result)
	b.emitInstr(&Binary{Result: id, Op: op, Left: left, Right: right, Type: t, Location: loc})
	return id
}

// Unary emits negation or logical not.
func (b *Builder) Unary(op tokens.TOKEN, x ValueID, t types.Type, loc source.Location) ValueID {
	id := b.fn.newValue(t)
	b.emitInstr(&Unary{Result: id, Op: op, X: x, Type: t, Location: loc})
	return id
}

// Cast converts x to the type to. Converting to the same type returns x.
func (b *Builder) Cast(x ValueID, to types.Type, loc source.Location) (ValueID, error) {
	from := b.TypeOf(x)
	if from.Equal(to) {
		return x, nil
	}
	op, err := ClassifyCast(from, to)
	if err != nil {
		return InvalidValue, err
	}
	id := b.fn.newValue(to)
	b.emitInstr(&Cast{Result: id, Op: op, X: x, From: from, To: to, Location: loc})
	return id, nil
}

// Convert is Cast for implicit conversions: a widening integer conversion
// keeps the value, extending by the signedness of the source.
func (b *Builder) Convert(x ValueID, to types.Type, loc source.Location) (ValueID, error) {
	from := b.TypeOf(x)
	if !from.IsInteger() || !to.IsInteger() || from.Bits >= to.Bits {
		return b.Cast(x, to, loc)
	}
	op := CastZeroExt
	if from.Signed {
		op = CastSignExt
	}
	id := b.fn.newValue(to)
	b.emitInstr(&Cast{Result: id, Op: op, X: x, From: from, To: to, Location: loc})
	return id, nil
}

// Call emits a direct call. It returns InvalidValue for void callees.
func (b *Builder) Call(fn *Function, args []ValueID, loc source.Location) ValueID {
	id := InvalidValue
	if !fn.Return.IsVoid() {
		id = b.fn.newValue(fn.Return)
	}
	b.emitInstr(&Call{Result: id, Target: fn, Args: args, Type: fn.Return, Location: loc})
	return id
}

// Br ends the insertion block with a jump.
func (b *Builder) Br(target *Block, loc source.Location) {
	b.setTerm(&Br{Target: target.ID, Location: loc})
}

// CondBr ends the insertion block with a two-way branch on cond.
func (b *Builder) CondBr(cond ValueID, then, els *Block, loc source.Location) {
	b.setTerm(&CondBr{Cond: cond, Then: then.ID, Else: els.ID, Location: loc})
}

// Ret returns value from the current function.
func (b *Builder) Ret(value ValueID, loc source.Location) {
	b.setTerm(&Return{Value: value, HasValue: true, Location: loc})
}

// RetVoid returns from a void function.
func (b *Builder) RetVoid(loc source.Location) {
	b.setTerm(&Return{Location: loc})
}

// IsComparison reports whether op produces a bool from two operands.
func IsComparison(op tokens.TOKEN) bool {
	switch op {
	case tokens.DOUBLE_EQUAL_TOKEN, tokens.NOT_EQUAL_TOKEN,
		tokens.LESS_TOKEN, tokens.LESS_EQUAL_TOKEN,
		tokens.GREATER_TOKEN, tokens.GREATER_EQUAL_TOKEN:
		return true
	}
	return false
}

func binaryName(op tokens.TOKEN) string {
	switch op {
	case tokens.PLUS_TOKEN:
		return "add"
	case tokens.MINUS_TOKEN:
		return "sub"
	case tokens.MUL_TOKEN:
		return "mul"
	case tokens.DIV_TOKEN:
		return "div"
	case tokens.MOD_TOKEN:
		return "rem"
	case tokens.DOUBLE_EQUAL_TOKEN:
		return "eq"
	case tokens.NOT_EQUAL_TOKEN:
		return "ne"
	case tokens.LESS_TOKEN:
		return "lt"
	case tokens.LESS_EQUAL_TOKEN:
		return "le"
	case tokens.GREATER_TOKEN:
		return "gt"
	case tokens.GREATER_EQUAL_TOKEN:
		return "ge"
	case tokens.AND_TOKEN:
		return "and"
	case tokens.OR_TOKEN:
		return "or"
	}
	return string(op)
}

func unaryName(op tokens.TOKEN) string {
	switch op {
	case tokens.MINUS_TOKEN:
		return "neg"
	case tokens.NOT_TOKEN:
		return "not"
	}
	return string(op)
}
