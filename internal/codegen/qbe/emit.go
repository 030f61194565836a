package qbe

import (
	"fmt"
	"math"
	"strings"

	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

func (g *Generator) emitInstr(instr mir.Instr) {
	switch i := instr.(type) {
	case *mir.Const:
		g.emitConst(i)
	case *mir.DataAddr:
		g.emitLine(fmt.Sprintf("%s =l copy $%s", valueName(i.Result), symbol(i.Name)))
	case *mir.Binary:
		g.emitBinary(i)
	case *mir.Unary:
		g.emitUnary(i)
	case *mir.Cast:
		g.emitCast(i)
	case *mir.Alloca:
		g.emitAlloca(i)
	case *mir.Load:
		g.emitLine(fmt.Sprintf("%s =%s %s %s", valueName(i.Result), baseType(i.Type), loadOp(i.Type), valueName(i.Addr)))
	case *mir.Store:
		g.emitLine(fmt.Sprintf("%s %s, %s", storeOp(i.Type), valueName(i.Value), valueName(i.Addr)))
	case *mir.Copy:
		g.emitLine(fmt.Sprintf("blit %s, %s, %d", valueName(i.Src), valueName(i.Dst), g.layout.SizeOf(i.Type)))
	case *mir.FieldAddr:
		g.layout.LayoutStruct(i.Struct)
		g.emitLine(fmt.Sprintf("%s =l add %s, %d", valueName(i.Result), valueName(i.Base), g.layout.FieldOffset(i.Struct, i.Index)))
	case *mir.ElemAddr:
		g.emitScaledAdd(i.Result, i.Base, i.Index, i.Elem)
	case *mir.PtrOffset:
		g.emitScaledAdd(i.Result, i.Base, i.Offset, i.Elem)
	case *mir.Call:
		g.emitCall(i)
	default:
		g.fail(fmt.Errorf("%s: unsupported instruction %T", instr.Loc(), instr))
	}
}

func (g *Generator) emitConst(c *mir.Const) {
	var value string
	switch {
	case c.Type.IsFloat() && c.Type.Bits == 32:
		value = fmt.Sprintf("s_%v", float32(math.Float64frombits(uint64(c.Value))))
	case c.Type.IsFloat():
		value = fmt.Sprintf("d_%v", math.Float64frombits(uint64(c.Value)))
	case c.Type.IsInteger() && c.Type.Bits < 64:
		value = fmt.Sprint(truncate(c.Value, c.Type.Bits, c.Type.Signed))
	case c.Type.IsBool():
		if c.Value != 0 {
			value = "1"
		} else {
			value = "0"
		}
	default:
		value = fmt.Sprint(c.Value)
	}
	g.emitLine(fmt.Sprintf("%s =%s copy %s", valueName(c.Result), baseType(c.Type), value))
}

func (g *Generator) emitBinary(b *mir.Binary) {
	left, right := valueName(b.Left), valueName(b.Right)
	result := valueName(b.Result)

	switch {
	case mir.IsComparison(b.Op):
		op, err := compareOp(b.Op, b.Type)
		if err != nil {
			g.fail(err)
			return
		}
		g.emitLine(fmt.Sprintf("%s =w %s %s, %s", result, op, left, right))
	case b.Op == tokens.AND_TOKEN:
		g.emitLine(fmt.Sprintf("%s =w and %s, %s", result, left, right))
	case b.Op == tokens.OR_TOKEN:
		g.emitLine(fmt.Sprintf("%s =w or %s, %s", result, left, right))
	default:
		op, err := binaryOp(b.Op, b.Type)
		if err != nil {
			g.fail(err)
			return
		}
		g.emitNormalized(result, b.Type, fmt.Sprintf("%s %s, %s", op, left, right))
	}
}

func (g *Generator) emitUnary(u *mir.Unary) {
	switch u.Op {
	case tokens.MINUS_TOKEN:
		g.emitNormalized(valueName(u.Result), u.Type, "neg "+valueName(u.X))
	case tokens.NOT_TOKEN:
		g.emitLine(fmt.Sprintf("%s =w ceqw %s, 0", valueName(u.Result), valueName(u.X)))
	default:
		g.fail(fmt.Errorf("unsupported unary op %s", u.Op))
	}
}

func (g *Generator) emitCast(c *mir.Cast) {
	result, x := valueName(c.Result), valueName(c.X)
	to := baseType(c.To)

	switch c.Op {
	case mir.CastFloatExt:
		g.emitLine(fmt.Sprintf("%s =d exts %s", result, x))
	case mir.CastFloatTrunc:
		g.emitLine(fmt.Sprintf("%s =s truncd %s", result, x))
	case mir.CastSignExt, mir.CastZeroExt:
		if c.From.IsBool() {
			op := "copy"
			if to == "l" {
				op = "extuw"
			}
			g.emitLine(fmt.Sprintf("%s =%s %s %s", result, to, op, x))
			return
		}
		g.emitNormalized(result, c.To, extOp(c.From.Bits, c.Op == mir.CastSignExt)+" "+x)
	default:
		// Nop and Trunc: a long used as a word keeps its low bits, and
		// normalization fixes up sub-word results.
		if subWord(c.To) {
			g.emitLine(fmt.Sprintf("%s =w %s %s", result, extOp(c.To.Bits, c.To.Signed), x))
			return
		}
		g.emitLine(fmt.Sprintf("%s =%s copy %s", result, to, x))
	}
}

// emitNormalized emits `result = expr` for a value of type t, re-extending
// sub-word integers afterwards.
func (g *Generator) emitNormalized(result string, t types.Type, expr string) {
	if !subWord(t) {
		g.emitLine(fmt.Sprintf("%s =%s %s", result, baseType(t), expr))
		return
	}
	tmp := g.newTemp()
	g.emitLine(fmt.Sprintf("%s =w %s", tmp, expr))
	g.emitLine(fmt.Sprintf("%s =w %s %s", result, extOp(t.Bits, t.Signed), tmp))
}

func (g *Generator) emitAlloca(a *mir.Alloca) {
	size := g.layout.SizeOf(a.Type)
	align := g.layout.AlignOf(a.Type)
	op := "alloc4"
	if align > 4 && align <= 8 {
		op = "alloc8"
	} else if align > 8 {
		op = "alloc16"
	}
	g.emitLine(fmt.Sprintf("%s =l %s %d", valueName(a.Result), op, size))
}

// emitScaledAdd computes base + index * sizeof(elem). The index is 64-bit.
func (g *Generator) emitScaledAdd(result, base, index mir.ValueID, elem types.Type) {
	offset := valueName(index)
	if size := g.layout.SizeOf(elem); size != 1 {
		offset = g.newTemp()
		g.emitLine(fmt.Sprintf("%s =l mul %s, %d", offset, valueName(index), size))
	}
	g.emitLine(fmt.Sprintf("%s =l add %s, %s", valueName(result), valueName(base), offset))
}

func (g *Generator) emitCall(c *mir.Call) {
	target := c.Target
	args := make([]string, 0, len(c.Args)+1)
	for i, arg := range c.Args {
		if i == len(target.Params) && target.Variadic {
			args = append(args, "...")
		}
		t := g.fn.TypeOf(arg)
		if i < len(target.Params) {
			t = target.Params[i].Type
		}
		args = append(args, g.abiType(t)+" "+valueName(arg))
	}
	if target.Variadic && len(c.Args) <= len(target.Params) {
		args = append(args, "...")
	}

	call := fmt.Sprintf("call $%s(%s)", symbol(target.Name), strings.Join(args, ", "))
	if c.Result == mir.InvalidValue {
		g.emitLine(call)
		return
	}
	g.emitLine(fmt.Sprintf("%s =%s %s", valueName(c.Result), g.abiType(c.Type), call))
}

// baseType is the QBE class of a temporary holding a value of t. Aggregates
// are carried by address.
func baseType(t types.Type) string {
	switch {
	case t.IsPointer(), t.IsAggregate():
		return "l"
	case t.IsFloat() && t.Bits == 32:
		return "s"
	case t.IsFloat():
		return "d"
	case t.IsInteger() && t.Bits == 64:
		return "l"
	}
	return "w"
}

// abiType is the type used in signatures and calls: sub-word integers
// keep their width and signedness, aggregates use their type definition.
func (g *Generator) abiType(t types.Type) string {
	switch {
	case t.IsBool():
		return "ub"
	case subWord(t):
		return extType(t.Bits, t.Signed)
	case t.IsStruct():
		return g.structType(t.Struct)
	case t.IsArray():
		return g.arrayType(t)
	}
	return baseType(t)
}

// memType is the width of t in memory, as used in aggregate definitions.
func memType(t types.Type) string {
	switch {
	case t.IsBool():
		return "b"
	case t.IsInteger() && t.Bits == 8:
		return "b"
	case t.IsInteger() && t.Bits == 16:
		return "h"
	}
	return baseType(t)
}

func loadOp(t types.Type) string {
	switch {
	case t.IsBool():
		return "loadub"
	case subWord(t):
		return "load" + extType(t.Bits, t.Signed)
	case t.IsFloat() && t.Bits == 32:
		return "loads"
	case t.IsFloat():
		return "loadd"
	case baseType(t) == "l":
		return "loadl"
	}
	return "loadw"
}

func storeOp(t types.Type) string {
	return "store" + memType(t)
}

func subWord(t types.Type) bool {
	return t.IsInteger() && t.Bits < 32
}

// extType is the sub-word type name: sb, ub, sh or uh.
func extType(bits int, signed bool) string {
	sign := "u"
	if signed {
		sign = "s"
	}
	switch bits {
	case 8:
		return sign + "b"
	case 16:
		return sign + "h"
	}
	return sign + "w"
}

// extOp extends a value of the given width to the destination class.
func extOp(bits int, signed bool) string {
	return "ext" + extType(bits, signed)
}

func binaryOp(op tokens.TOKEN, t types.Type) (string, error) {
	unsigned := t.IsInteger() && !t.Signed
	switch op {
	case tokens.PLUS_TOKEN:
		return "add", nil
	case tokens.MINUS_TOKEN:
		return "sub", nil
	case tokens.MUL_TOKEN:
		return "mul", nil
	case tokens.DIV_TOKEN:
		if unsigned {
			return "udiv", nil
		}
		return "div", nil
	case tokens.MOD_TOKEN:
		if t.IsFloat() {
			break
		}
		if unsigned {
			return "urem", nil
		}
		return "rem", nil
	}
	return "", fmt.Errorf("unsupported binary op %s on %s", op, t)
}

func compareOp(op tokens.TOKEN, t types.Type) (string, error) {
	class := baseType(t)
	if op == tokens.DOUBLE_EQUAL_TOKEN {
		return "ceq" + class, nil
	}
	if op == tokens.NOT_EQUAL_TOKEN {
		return "cne" + class, nil
	}

	var cond string
	switch op {
	case tokens.LESS_TOKEN:
		cond = "lt"
	case tokens.LESS_EQUAL_TOKEN:
		cond = "le"
	case tokens.GREATER_TOKEN:
		cond = "gt"
	case tokens.GREATER_EQUAL_TOKEN:
		cond = "ge"
	default:
		return "", fmt.Errorf("unsupported compare %s", op)
	}
	switch {
	case t.IsFloat():
		return "c" + cond + class, nil
	case t.IsInteger() && t.Signed:
		return "cs" + cond + class, nil
	}
	return "cu" + cond + class, nil
}

// truncate reduces v to bits, extended by signedness.
func truncate(v int64, bits int, signed bool) int64 {
	shift := 64 - bits
	if signed {
		return v << shift >> shift
	}
	return int64(uint64(v) << shift >> shift)
}
