// Package interp executes a lowered module directly. It backs the -run flag
// and lets tests observe what generated code does without a native
// toolchain.
//
// Memory is one flat byte slice: a null guard, the string data, then a bump
// stack that is rewound when a call returns. Every value is carried as a
// uint64; integers are normalized to their lowered width and signedness
// after each operation, floats are carried as float64 bits.
package interp

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

const (
	defaultMemory    = 1 << 20
	defaultStepLimit = 10_000_000
	maxCallDepth     = 10_000
)

// Interpreter runs functions of one module.
type Interpreter struct {
	mod    *mir.Module
	layout *mir.DataLayout
	mem    *memory
	data   map[string]uint64

	// Output receives everything the program prints. If nil, os.Stdout is used.
	Output io.Writer

	steps     int
	stepLimit int
	depth     int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput redirects program output.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.Output = w }
}

// WithMemory sets the size of the flat memory in bytes.
func WithMemory(size int) Option {
	return func(in *Interpreter) { in.mem = newMemory(size) }
}

// WithStepLimit bounds the number of executed blocks.
func WithStepLimit(n int) Option {
	return func(in *Interpreter) { in.stepLimit = n }
}

// New prepares mod for execution.
func New(mod *mir.Module, opts ...Option) *Interpreter {
	in := &Interpreter{
		mod:       mod,
		layout:    mir.NewDataLayout(8),
		mem:       newMemory(defaultMemory),
		data:      make(map[string]uint64),
		stepLimit: defaultStepLimit,
	}
	for _, opt := range opts {
		opt(in)
	}
	for _, d := range mod.Data {
		in.data[d.Name] = in.mem.place(d.Bytes)
	}
	return in
}

// exitError carries the status passed to exit() up the Go call stack.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Run calls the parameterless function entry and returns its result as an
// exit status. A call to exit() ends the run with its argument.
func (in *Interpreter) Run(entry string) (int, error) {
	fn, ok := in.mod.Function(entry)
	if !ok {
		return 0, fmt.Errorf("function %s not found", entry)
	}
	if fn.External {
		return 0, fmt.Errorf("function %s has no body", entry)
	}
	v, err := in.Call(fn)
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code, nil
	}
	if err != nil {
		return 0, err
	}
	if fn.Return.IsVoid() {
		return 0, nil
	}
	return int(int64(v)), nil
}

// Call invokes fn with scalar arguments and returns its raw result.
func (in *Interpreter) Call(fn *mir.Function, args ...uint64) (uint64, error) {
	argTypes := make([]types.Type, len(args))
	for i := range args {
		if i < len(fn.Params) {
			argTypes[i] = fn.Params[i].Type
		} else {
			argTypes[i] = types.I64
		}
	}
	return in.call(fn, args, argTypes)
}

func (in *Interpreter) output() io.Writer {
	if in.Output != nil {
		return in.Output
	}
	return os.Stdout
}

type frame struct {
	fn   *mir.Function
	vals []uint64
}

func (in *Interpreter) call(fn *mir.Function, args []uint64, argTypes []types.Type) (uint64, error) {
	if fn.External {
		return in.callHost(fn, args, argTypes)
	}
	if len(args) != len(fn.Params) {
		return 0, fmt.Errorf("%s: expected %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > maxCallDepth {
		return 0, fmt.Errorf("call stack overflow in %s", fn.Name)
	}

	saved := in.mem.sp
	f := &frame{fn: fn, vals: make([]uint64, fn.NumValues())}
	for i, p := range fn.Params {
		f.vals[p.ID] = args[i]
	}

	block := fn.Block(1)
	for block != nil {
		in.steps++
		if in.steps > in.stepLimit {
			return 0, fmt.Errorf("step limit of %d exceeded", in.stepLimit)
		}
		for _, instr := range block.Instrs {
			if err := in.exec(f, instr); err != nil {
				if loc := instr.Loc(); !loc.IsZero() {
					return 0, fmt.Errorf("%s: %w", loc, err)
				}
				return 0, err
			}
		}
		switch t := block.Term.(type) {
		case *mir.Br:
			block = fn.Block(t.Target)
		case *mir.CondBr:
			if f.vals[t.Cond] != 0 {
				block = fn.Block(t.Then)
			} else {
				block = fn.Block(t.Else)
			}
		case *mir.Return:
			if !t.HasValue {
				in.mem.sp = saved
				return 0, nil
			}
			return in.returnValue(fn, f.vals[t.Value], saved)
		case *mir.Unreachable:
			return 0, fmt.Errorf("reached unreachable code in %s", fn.Name)
		default:
			return 0, fmt.Errorf("block b%d of %s has no terminator", block.ID, fn.Name)
		}
	}
	return 0, fmt.Errorf("%s: branch to a missing block", fn.Name)
}

// returnValue releases the callee frame. An aggregate result lives in that
// frame, so it is copied into fresh storage of the caller.
func (in *Interpreter) returnValue(fn *mir.Function, v, saved uint64) (uint64, error) {
	if !fn.Return.IsAggregate() {
		in.mem.sp = saved
		return v, nil
	}
	size := in.layout.SizeOf(fn.Return)
	if err := in.mem.check(v, size); err != nil {
		return 0, err
	}
	buf := append([]byte(nil), in.mem.bytes[v:v+uint64(size)]...)
	in.mem.sp = saved
	dst, err := in.mem.alloc(size, in.layout.AlignOf(fn.Return))
	if err != nil {
		return 0, err
	}
	copy(in.mem.bytes[dst:], buf)
	return dst, nil
}

func (in *Interpreter) exec(f *frame, instr mir.Instr) error {
	vals := f.vals
	switch i := instr.(type) {
	case *mir.Const:
		vals[i.Result] = normalize(uint64(i.Value), i.Type)
	case *mir.DataAddr:
		addr, ok := in.data[i.Name]
		if !ok {
			return fmt.Errorf("unknown data %s", i.Name)
		}
		vals[i.Result] = addr
	case *mir.Alloca:
		addr, err := in.mem.alloc(in.layout.SizeOf(i.Type), in.layout.AlignOf(i.Type))
		if err != nil {
			return err
		}
		vals[i.Result] = addr
	case *mir.Load:
		raw, err := in.mem.read(vals[i.Addr], in.layout.SizeOf(i.Type))
		if err != nil {
			return err
		}
		vals[i.Result] = fromMemory(raw, i.Type)
	case *mir.Store:
		return in.mem.write(vals[i.Addr], in.layout.SizeOf(i.Type), toMemory(vals[i.Value], i.Type))
	case *mir.Copy:
		return in.mem.move(vals[i.Dst], vals[i.Src], in.layout.SizeOf(i.Type))
	case *mir.FieldAddr:
		vals[i.Result] = vals[i.Base] + uint64(in.layout.FieldOffset(i.Struct, i.Index))
	case *mir.ElemAddr:
		vals[i.Result] = vals[i.Base] + uint64(int64(vals[i.Index])*int64(in.layout.SizeOf(i.Elem)))
	case *mir.PtrOffset:
		vals[i.Result] = vals[i.Base] + uint64(int64(vals[i.Offset])*int64(in.layout.SizeOf(i.Elem)))
	case *mir.Binary:
		v, err := binaryOp(i.Op, vals[i.Left], vals[i.Right], i.Type)
		if err != nil {
			return err
		}
		vals[i.Result] = v
	case *mir.Unary:
		vals[i.Result] = unaryOp(i.Op, vals[i.X], i.Type)
	case *mir.Cast:
		vals[i.Result] = castOp(i.Op, vals[i.X], i.From, i.To)
	case *mir.Call:
		args := make([]uint64, len(i.Args))
		argTypes := make([]types.Type, len(i.Args))
		for n, a := range i.Args {
			args[n] = vals[a]
			argTypes[n] = f.fn.TypeOf(a)
		}
		v, err := in.call(i.Target, args, argTypes)
		if err != nil {
			return err
		}
		if i.Result != mir.InvalidValue {
			vals[i.Result] = v
		}
	default:
		return fmt.Errorf("unsupported instruction %T", instr)
	}
	return nil
}

// normalize truncates v to the width of t and re-extends it according to
// t's signedness.
func normalize(v uint64, t types.Type) uint64 {
	if t.IsPointer() {
		return v
	}
	switch t.Kind {
	case types.KindBool:
		if v != 0 {
			return 1
		}
		return 0
	case types.KindInt:
		return extend(v, t.Bits, t.Signed)
	case types.KindFloat:
		if t.Bits == 32 {
			return math.Float64bits(float64(float32(math.Float64frombits(v))))
		}
	}
	return v
}

func extend(v uint64, bits int, signed bool) uint64 {
	if bits >= 64 {
		return v
	}
	mask := uint64(1)<<bits - 1
	v &= mask
	if signed && v&(uint64(1)<<(bits-1)) != 0 {
		v |= ^mask
	}
	return v
}

func fromMemory(raw uint64, t types.Type) uint64 {
	if t.IsFloat() && t.Bits == 32 {
		return math.Float64bits(float64(math.Float32frombits(uint32(raw))))
	}
	return normalize(raw, t)
}

func toMemory(v uint64, t types.Type) uint64 {
	if t.IsFloat() && t.Bits == 32 {
		return uint64(math.Float32bits(float32(math.Float64frombits(v))))
	}
	return v
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func binaryOp(op tokens.TOKEN, a, b uint64, t types.Type) (uint64, error) {
	switch op {
	case tokens.AND_TOKEN:
		return boolValue(a != 0 && b != 0), nil
	case tokens.OR_TOKEN:
		return boolValue(a != 0 || b != 0), nil
	}
	if t.IsFloat() {
		return floatBinary(op, math.Float64frombits(a), math.Float64frombits(b), t)
	}
	signed := t.IsInteger() && t.Signed
	if mir.IsComparison(op) {
		return compare(op, a, b, signed), nil
	}

	var r uint64
	switch op {
	case tokens.PLUS_TOKEN:
		r = a + b
	case tokens.MINUS_TOKEN:
		r = a - b
	case tokens.MUL_TOKEN:
		r = a * b
	case tokens.DIV_TOKEN, tokens.MOD_TOKEN:
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		switch {
		case signed && op == tokens.DIV_TOKEN:
			r = uint64(int64(a) / int64(b))
		case signed:
			r = uint64(int64(a) % int64(b))
		case op == tokens.DIV_TOKEN:
			r = a / b
		default:
			r = a % b
		}
	default:
		return 0, fmt.Errorf("unsupported operator %s on %s", op, t)
	}
	return normalize(r, t), nil
}

func compare(op tokens.TOKEN, a, b uint64, signed bool) uint64 {
	if signed {
		x, y := int64(a), int64(b)
		switch op {
		case tokens.LESS_TOKEN:
			return boolValue(x < y)
		case tokens.LESS_EQUAL_TOKEN:
			return boolValue(x <= y)
		case tokens.GREATER_TOKEN:
			return boolValue(x > y)
		case tokens.GREATER_EQUAL_TOKEN:
			return boolValue(x >= y)
		}
	}
	switch op {
	case tokens.DOUBLE_EQUAL_TOKEN:
		return boolValue(a == b)
	case tokens.NOT_EQUAL_TOKEN:
		return boolValue(a != b)
	case tokens.LESS_TOKEN:
		return boolValue(a < b)
	case tokens.LESS_EQUAL_TOKEN:
		return boolValue(a <= b)
	case tokens.GREATER_TOKEN:
		return boolValue(a > b)
	default:
		return boolValue(a >= b)
	}
}

func floatBinary(op tokens.TOKEN, x, y float64, t types.Type) (uint64, error) {
	var r float64
	switch op {
	case tokens.PLUS_TOKEN:
		r = x + y
	case tokens.MINUS_TOKEN:
		r = x - y
	case tokens.MUL_TOKEN:
		r = x * y
	case tokens.DIV_TOKEN:
		r = x / y
	case tokens.DOUBLE_EQUAL_TOKEN:
		return boolValue(x == y), nil
	case tokens.NOT_EQUAL_TOKEN:
		return boolValue(x != y), nil
	case tokens.LESS_TOKEN:
		return boolValue(x < y), nil
	case tokens.LESS_EQUAL_TOKEN:
		return boolValue(x <= y), nil
	case tokens.GREATER_TOKEN:
		return boolValue(x > y), nil
	case tokens.GREATER_EQUAL_TOKEN:
		return boolValue(x >= y), nil
	default:
		return 0, fmt.Errorf("unsupported operator %s on %s", op, t)
	}
	return normalize(math.Float64bits(r), t), nil
}

func unaryOp(op tokens.TOKEN, v uint64, t types.Type) uint64 {
	if op == tokens.NOT_TOKEN {
		return boolValue(v == 0)
	}
	if t.IsFloat() {
		return normalize(math.Float64bits(-math.Float64frombits(v)), t)
	}
	return normalize(-v, t)
}

func castOp(op mir.CastOp, v uint64, from, to types.Type) uint64 {
	switch op {
	case mir.CastSignExt:
		return normalize(extend(v, from.Bits, true), to)
	case mir.CastZeroExt:
		if from.IsBool() {
			return normalize(v, to)
		}
		return normalize(extend(v, from.Bits, false), to)
	}
	return normalize(v, to)
}
