package mirgen

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/table"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

// Context says whether the caller of lowerExpr wants a value or the
// address of the storage holding it.
type Context int

const (
	// ValueCtx yields the value. Arrays and structs live in memory, so
	// for them the value is their address.
	ValueCtx Context = iota
	// AddressCtx yields an address. Values without storage are spilled
	// to a temporary slot first.
	AddressCtx
)

func (c Context) String() string {
	if c == AddressCtx {
		return "address"
	}
	return "value"
}

// isAddressable reports whether expr names storage: a variable, an access
// path or a dereference.
func isAddressable(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Variable, *ast.VariableAccess:
		return true
	case *ast.UnaryExpr:
		return e.Op == tokens.POINTER_TOKEN
	}
	return false
}

// lowerExpr lowers expr in ctx and returns the result with the type of
// the expression itself.
func (g *Generator) lowerExpr(expr ast.Expression, ctx Context) (mir.ValueID, types.Type, error) {
	switch e := expr.(type) {
	case *ast.Variable:
		local, err := g.resolve(e.Name, e.Location)
		if err != nil {
			return mir.InvalidValue, types.Void, err
		}
		return g.access(local.Slot, local.Type, ctx, e.Location), local.Type, nil
	case *ast.VariableAccess:
		return g.lowerAccess(e, ctx)
	case *ast.UnaryExpr:
		if e.Op == tokens.POINTER_TOKEN {
			return g.lowerDeref(e, ctx)
		}
	}

	v, t, err := g.lowerRValue(expr)
	if err != nil || ctx == ValueCtx {
		return v, t, err
	}
	if t.IsVoid() {
		return mir.InvalidValue, t, diagnostics.NewError("void value has no address").
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(*expr.Loc(), "")
	}
	return g.spill(v, t, *expr.Loc()), t, nil
}

// access turns the address of a t into what ctx asks for.
func (g *Generator) access(addr mir.ValueID, t types.Type, ctx Context, loc source.Location) mir.ValueID {
	if ctx == AddressCtx || t.IsAggregate() {
		return addr
	}
	return g.b.Load(addr, t, loc)
}

func (g *Generator) spill(v mir.ValueID, t types.Type, loc source.Location) mir.ValueID {
	if t.IsAggregate() {
		return v
	}
	slot := g.b.Alloca(t, loc)
	g.b.Store(slot, v, t, loc)
	return slot
}

func (g *Generator) resolve(name string, loc source.Location) (*Local, error) {
	local, ok := g.scopes.Resolve(g.scope, name)
	if !ok {
		return nil, diagnostics.UndefinedSymbol(loc, "variable", name)
	}
	return local, nil
}

func (g *Generator) lowerRValue(expr ast.Expression) (mir.ValueID, types.Type, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		t := types.LiteralType(e.Value)
		return g.b.Const(t, e.Value, e.Location), t, nil
	case *ast.StringLit:
		return g.b.String(e.Value, e.Location), types.String, nil
	case *ast.BoolLit:
		var v int64
		if e.Value {
			v = 1
		}
		return g.b.Const(types.Bool, v, e.Location), types.Bool, nil
	case *ast.CharLit:
		return g.b.Const(types.Char, int64(e.Value), e.Location), types.Char, nil
	case *ast.NullLit:
		return g.b.Const(types.Null, 0, e.Location), types.Null, nil
	case *ast.ArrayLit:
		return g.lowerArrayLit(e)
	case *ast.StructLit:
		return g.lowerStructLit(e)
	case *ast.UnaryExpr:
		return g.lowerUnary(e)
	case *ast.BinaryExpr:
		return g.lowerBinary(e)
	case *ast.CastExpr:
		return g.lowerCast(e)
	case *ast.CallExpr:
		return g.lowerCall(e)
	}
	return mir.InvalidValue, types.Void, fmt.Errorf("%s: unsupported expression %T", expr.Loc(), expr)
}

// lowerAccess walks an access path from the variable's slot, keeping the
// address of the current element and its type.
func (g *Generator) lowerAccess(e *ast.VariableAccess, ctx Context) (mir.ValueID, types.Type, error) {
	local, err := g.resolve(e.Name, e.Location)
	if err != nil {
		return mir.InvalidValue, types.Void, err
	}
	addr, cur := local.Slot, local.Type

	for _, step := range e.Steps {
		switch s := step.(type) {
		case *ast.IndexStep:
			idx, it, err := g.lowerExpr(s.Index, ValueCtx)
			if err != nil {
				return mir.InvalidValue, cur, err
			}
			if !it.IsInteger() {
				return mir.InvalidValue, cur, diagnostics.TypeMismatch(*s.Index.Loc(), it.String(), "an index")
			}
			idx = g.index(idx, it, s.Location)
			switch {
			case cur.IsPointer():
				ptr := g.b.Load(addr, cur, s.Location)
				elem := cur.Deref()
				if elem.IsVoid() {
					return mir.InvalidValue, cur, notIndexable(s.Location, cur)
				}
				if elem.IsArray() {
					addr = g.b.ElemAddr(ptr, idx, elem, s.Location)
					cur = *elem.Elem
				} else {
					addr = g.b.PtrOffset(ptr, idx, cur, s.Location)
					cur = elem
				}
			case cur.IsArray():
				addr = g.b.ElemAddr(addr, idx, cur, s.Location)
				cur = *cur.Elem
			default:
				return mir.InvalidValue, cur, notIndexable(s.Location, cur)
			}
		case *ast.FieldStep:
			if cur.Depth == 1 && cur.Deref().IsStruct() {
				addr = g.b.Load(addr, cur, s.Location)
				cur = cur.Deref()
			}
			if !cur.IsStruct() {
				return mir.InvalidValue, cur, diagnostics.FieldNotFound(s.Location, s.Name, cur.String())
			}
			index, ok := cur.Struct.FieldIndex(s.Name)
			if !ok {
				return mir.InvalidValue, cur, diagnostics.FieldNotFound(s.Location, s.Name, cur.String())
			}
			addr = g.b.FieldAddr(addr, cur.Struct, index, s.Location)
			cur = cur.Struct.Fields[index].Type
		}
	}
	return g.access(addr, cur, ctx, e.Location), cur, nil
}

func notIndexable(loc source.Location, t types.Type) error {
	return diagnostics.NewError(fmt.Sprintf("cannot index %s", t)).
		WithCode(diagnostics.ErrNotIndexable).
		WithPrimaryLabel(loc, "")
}

// index widens an integer to 64 bits for address arithmetic.
func (g *Generator) index(v mir.ValueID, t types.Type, loc source.Location) mir.ValueID {
	if t.Bits == 64 {
		return v
	}
	to := types.I64
	if !t.Signed {
		to = types.U64
	}
	v, _ = g.b.Convert(v, to, loc)
	return v
}

func (g *Generator) lowerDeref(e *ast.UnaryExpr, ctx Context) (mir.ValueID, types.Type, error) {
	p, pt, err := g.lowerExpr(e.X, ValueCtx)
	if err != nil {
		return mir.InvalidValue, pt, err
	}
	if !pt.IsPointer() || pt.Deref().IsVoid() {
		return mir.InvalidValue, pt, diagnostics.NewError(fmt.Sprintf("cannot dereference %s", pt)).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(e.Location, "")
	}
	elem := pt.Deref()
	return g.access(p, elem, ctx, e.Location), elem, nil
}

func (g *Generator) lowerUnary(e *ast.UnaryExpr) (mir.ValueID, types.Type, error) {
	switch e.Op {
	case tokens.REFERENCE_TOKEN:
		addr, t, err := g.lowerExpr(e.X, AddressCtx)
		if err != nil {
			return mir.InvalidValue, t, err
		}
		return addr, t.PointerTo(), nil
	case tokens.NOT_TOKEN:
		c, err := g.lowerCondition(e.X)
		if err != nil {
			return mir.InvalidValue, types.Bool, err
		}
		return g.b.Unary(tokens.NOT_TOKEN, c, types.Bool, e.Location), types.Bool, nil
	case tokens.MINUS_TOKEN:
		v, t, err := g.lowerExpr(e.X, ValueCtx)
		if err != nil {
			return mir.InvalidValue, t, err
		}
		if !t.IsInteger() && !t.IsFloat() {
			return mir.InvalidValue, t, invalidOperation(e.Location, fmt.Sprintf("-%s", t))
		}
		return g.b.Unary(tokens.MINUS_TOKEN, v, t, e.Location), t, nil
	}
	return mir.InvalidValue, types.Void, invalidOperation(e.Location, string(e.Op))
}

func (g *Generator) lowerBinary(e *ast.BinaryExpr) (mir.ValueID, types.Type, error) {
	if e.Op == tokens.AND_TOKEN || e.Op == tokens.OR_TOKEN {
		l, err := g.lowerCondition(e.X)
		if err != nil {
			return mir.InvalidValue, types.Bool, err
		}
		r, err := g.lowerCondition(e.Y)
		if err != nil {
			return mir.InvalidValue, types.Bool, err
		}
		return g.b.Binary(e.Op, l, r, types.Bool, e.Location), types.Bool, nil
	}

	l, lt, err := g.lowerExpr(e.X, ValueCtx)
	if err != nil {
		return mir.InvalidValue, lt, err
	}
	r, rt, err := g.lowerExpr(e.Y, ValueCtx)
	if err != nil {
		return mir.InvalidValue, rt, err
	}

	var t types.Type
	switch {
	case lt.IsPointer() && rt.IsInteger() && (e.Op == tokens.PLUS_TOKEN || e.Op == tokens.MINUS_TOKEN):
		return g.pointerOffset(l, lt, r, rt, e.Op, e.Location)
	case lt.IsInteger() && rt.IsPointer() && e.Op == tokens.PLUS_TOKEN:
		return g.pointerOffset(r, rt, l, lt, e.Op, e.Location)
	case lt.IsPointer() && rt.IsPointer() && mir.IsComparison(e.Op):
		if !lt.Equal(rt) && !isOpaque(lt) && !isOpaque(rt) {
			return mir.InvalidValue, lt, diagnostics.TypeMismatch(e.Location, rt.String(), lt.String())
		}
		t = lt
	case lt.IsInteger() && rt.IsInteger():
		t = types.Wider(lt, rt)
	case lt.IsFloat() && rt.IsFloat() && e.Op != tokens.MOD_TOKEN:
		t = lt
		if rt.Bits > lt.Bits {
			t = rt
		}
	case lt.IsBool() && rt.IsBool() && (e.Op == tokens.DOUBLE_EQUAL_TOKEN || e.Op == tokens.NOT_EQUAL_TOKEN):
		t = types.Bool
	default:
		return mir.InvalidValue, lt, invalidOperation(e.Location, fmt.Sprintf("%s %s %s", lt, e.Op, rt))
	}

	if !t.IsPointer() {
		if l, err = g.coerce(l, lt, t, *e.X.Loc()); err != nil {
			return mir.InvalidValue, t, err
		}
		if r, err = g.coerce(r, rt, t, *e.Y.Loc()); err != nil {
			return mir.InvalidValue, t, err
		}
	}
	v := g.b.Binary(e.Op, l, r, t, e.Location)
	return v, g.b.TypeOf(v), nil
}

// pointerOffset lowers p + n and p - n, scaled by the pointee size.
func (g *Generator) pointerOffset(p mir.ValueID, pt types.Type, n mir.ValueID, nt types.Type, op tokens.TOKEN, loc source.Location) (mir.ValueID, types.Type, error) {
	if pt.Deref().IsVoid() {
		return mir.InvalidValue, pt, invalidOperation(loc, fmt.Sprintf("arithmetic on %s", pt))
	}
	idx := g.index(n, nt, loc)
	if op == tokens.MINUS_TOKEN {
		idx = g.b.Unary(tokens.MINUS_TOKEN, idx, g.b.TypeOf(idx), loc)
	}
	return g.b.PtrOffset(p, idx, pt, loc), pt, nil
}

func (g *Generator) lowerCast(e *ast.CastExpr) (mir.ValueID, types.Type, error) {
	to, err := g.lowerType(e.Type)
	if err != nil {
		return mir.InvalidValue, to, err
	}
	v, from, err := g.lowerExpr(e.X, ValueCtx)
	if err != nil {
		return mir.InvalidValue, to, err
	}
	r, err := g.b.Cast(v, to, e.Location)
	if err != nil {
		return mir.InvalidValue, to, diagnostics.NewError(fmt.Sprintf("unsupported cast from %s to %s", from, to)).
			WithCode(diagnostics.ErrInvalidCast).
			WithPrimaryLabel(e.Location, "")
	}
	return r, to, nil
}

func (g *Generator) lowerCall(e *ast.CallExpr) (mir.ValueID, types.Type, error) {
	if !g.tables.Modules[e.Module] {
		return mir.InvalidValue, types.Void, diagnostics.UndefinedSymbol(e.Location, "module", e.Module)
	}
	key := table.Key{Module: e.Module, Name: e.Name}
	id := g.tables.Functions.ID(key)
	if id == table.InvalidSymbol {
		return mir.InvalidValue, types.Void, diagnostics.UndefinedSymbol(e.Location, "function", key.String())
	}
	fn := g.tables.Functions.Get(id)
	if len(e.Args) < len(fn.Params) || (!fn.Variadic && len(e.Args) > len(fn.Params)) {
		return mir.InvalidValue, fn.Return, diagnostics.WrongArgumentCount(e.Location, key.String(), len(fn.Params), len(e.Args))
	}

	args := make([]mir.ValueID, len(e.Args))
	for i, arg := range e.Args {
		v, t, err := g.lowerExpr(arg, ValueCtx)
		if err != nil {
			return mir.InvalidValue, fn.Return, err
		}
		if i < len(fn.Params) {
			v, err = g.coerce(v, t, fn.Params[i], *arg.Loc())
		} else {
			v, err = g.promote(v, t, *arg.Loc())
		}
		if err != nil {
			return mir.InvalidValue, fn.Return, err
		}
		args[i] = v
	}
	return g.b.Call(g.funcs[id], args, e.Location), fn.Return, nil
}

// coerce converts v for use where a to is expected. Integers convert to
// each other, bool converts to integers, floats to floats, and the opaque
// pointer (null) to and from any pointer.
func (g *Generator) coerce(v mir.ValueID, from, to types.Type, loc source.Location) (mir.ValueID, error) {
	if from.Equal(to) {
		return v, nil
	}
	ok := from.IsInteger() && to.IsInteger() ||
		from.IsBool() && to.IsInteger() ||
		from.IsFloat() && to.IsFloat() ||
		from.IsPointer() && to.IsPointer() && (isOpaque(from) || isOpaque(to))
	if !ok {
		return mir.InvalidValue, diagnostics.TypeMismatch(loc, from.String(), to.String())
	}
	r, err := g.b.Convert(v, to, loc)
	if err != nil {
		return mir.InvalidValue, diagnostics.TypeMismatch(loc, from.String(), to.String())
	}
	return r, nil
}

// promote applies the C default argument promotions to a variadic argument.
func (g *Generator) promote(v mir.ValueID, t types.Type, loc source.Location) (mir.ValueID, error) {
	switch {
	case t.IsInteger() && t.Bits < 32, t.IsBool():
		return g.b.Convert(v, types.I32, loc)
	case t.IsFloat() && t.Bits < 64:
		return g.b.Convert(v, types.F64, loc)
	case !t.IsScalar():
		return mir.InvalidValue, diagnostics.TypeMismatch(loc, t.String(), "a variadic argument")
	}
	return v, nil
}

func isOpaque(t types.Type) bool {
	return t.Depth == 1 && t.Kind == types.KindVoid
}

func invalidOperation(loc source.Location, what string) error {
	return diagnostics.NewError("invalid operation: " + what).
		WithCode(diagnostics.ErrInvalidOperation).
		WithPrimaryLabel(loc, "")
}

// lowerArrayLit builds an array literal in a temporary slot. The first
// element decides the element type.
func (g *Generator) lowerArrayLit(e *ast.ArrayLit) (mir.ValueID, types.Type, error) {
	vals := make([]mir.ValueID, len(e.Elems))
	elemTypes := make([]types.Type, len(e.Elems))
	for i, elem := range e.Elems {
		v, t, err := g.lowerExpr(elem, ValueCtx)
		if err != nil {
			return mir.InvalidValue, t, err
		}
		vals[i], elemTypes[i] = v, t
	}
	elemType := elemTypes[0]
	if elemType.IsVoid() {
		return mir.InvalidValue, elemType, invalidType(e.Location, "array of void")
	}
	arr := types.ArrayOf(elemType, len(vals))
	slot := g.b.Alloca(arr, e.Location)
	for i, v := range vals {
		loc := *e.Elems[i].Loc()
		v, err := g.coerce(v, elemTypes[i], elemType, loc)
		if err != nil {
			return mir.InvalidValue, arr, err
		}
		addr := g.b.ElemAddr(slot, g.b.Const(types.I64, int64(i), loc), arr, loc)
		g.b.Store(addr, v, elemType, loc)
	}
	return slot, arr, nil
}

// lowerArrayLitInto stores the elements of lit straight into the array of
// type t at addr.
func (g *Generator) lowerArrayLitInto(addr mir.ValueID, t types.Type, lit *ast.ArrayLit) error {
	if len(lit.Elems) != t.Len {
		return diagnostics.TypeMismatch(lit.Location, fmt.Sprintf("array literal of %d elements", len(lit.Elems)), t.String())
	}
	for i, elem := range lit.Elems {
		loc := *elem.Loc()
		elemAddr := g.b.ElemAddr(addr, g.b.Const(types.I64, int64(i), loc), t, loc)
		if err := g.storeInto(elemAddr, *t.Elem, elem); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) lowerStructLit(e *ast.StructLit) (mir.ValueID, types.Type, error) {
	st, err := g.lookupStruct(e.Module, e.Name, e.Location)
	if err != nil {
		return mir.InvalidValue, types.Void, err
	}
	s := st.Type
	t := types.StructOf(s)
	slot := g.b.Alloca(t, e.Location)
	seen := make(map[string]bool, len(e.Fields))
	for _, field := range e.Fields {
		index, ok := s.FieldIndex(field.Name)
		if !ok {
			return mir.InvalidValue, t, diagnostics.FieldNotFound(field.Location, field.Name, s.QualifiedName())
		}
		if seen[field.Name] {
			return mir.InvalidValue, t, diagnostics.NewError(fmt.Sprintf("field %s initialized twice", field.Name)).
				WithCode(diagnostics.ErrRedeclaredSymbol).
				WithPrimaryLabel(field.Location, "")
		}
		seen[field.Name] = true
		addr := g.b.FieldAddr(slot, s, index, field.Location)
		if err := g.storeInto(addr, s.Fields[index].Type, field.Value); err != nil {
			return mir.InvalidValue, t, err
		}
	}
	return slot, t, nil
}
