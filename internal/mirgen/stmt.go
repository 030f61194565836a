package mirgen

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

// lowerBlock lowers stmts in a child scope. Statements after a
// terminator are not lowered.
func (g *Generator) lowerBlock(block *ast.Block) error {
	parent := g.scope
	g.scope = g.scopes.Push(parent)
	defer func() { g.scope = parent }()

	for _, stmt := range block.Stmts {
		if err := g.lowerStmt(stmt); err != nil {
			return err
		}
		if g.b.Terminated() {
			return nil
		}
	}
	return nil
}

func (g *Generator) lowerStmt(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return g.lowerBlock(s)
	case *ast.VarDecl:
		return g.lowerVarDecl(s)
	case *ast.Assign:
		return g.lowerAssign(s)
	case *ast.Conditional:
		return g.lowerConditional(s)
	case *ast.While:
		return g.lowerWhile(s)
	case *ast.Return:
		return g.lowerReturn(s)
	case *ast.CallStmt:
		_, _, err := g.lowerCall(s.Call)
		return err
	default:
		return fmt.Errorf("%s: unsupported statement %T", stmt.Loc(), stmt)
	}
}

func (g *Generator) lowerVarDecl(decl *ast.VarDecl) error {
	t, err := g.lowerValueType(decl.Type)
	if err != nil {
		return err
	}
	slot := g.b.Alloca(t, decl.Location)
	if err := g.storeInto(slot, t, decl.Value); err != nil {
		return err
	}
	// The name is bound after its initializer, so `x: i32 = x;` sees an
	// outer x.
	return g.declareLocal(decl.Name, slot, t, decl.Location)
}

func (g *Generator) lowerAssign(assign *ast.Assign) error {
	if !isAddressable(assign.Target) {
		return diagnostics.NewError("cannot assign to this expression").
			WithCode(diagnostics.ErrInvalidAssignment).
			WithPrimaryLabel(*assign.Target.Loc(), "")
	}
	addr, t, err := g.lowerExpr(assign.Target, AddressCtx)
	if err != nil {
		return err
	}
	return g.storeInto(addr, t, assign.Value)
}

// storeInto evaluates value, converts it to t and stores it at addr.
// Array literals are built in place so their elements take t's element
// type.
func (g *Generator) storeInto(addr mir.ValueID, t types.Type, value ast.Expression) error {
	if lit, ok := value.(*ast.ArrayLit); ok && t.IsArray() {
		return g.lowerArrayLitInto(addr, t, lit)
	}
	v, vt, err := g.lowerExpr(value, ValueCtx)
	if err != nil {
		return err
	}
	v, err = g.coerce(v, vt, t, *value.Loc())
	if err != nil {
		return err
	}
	g.b.Store(addr, v, t, *value.Loc())
	return nil
}

// lowerConditional lowers an if / else if / else chain. Every arm body
// jumps to one merge block created up front.
func (g *Generator) lowerConditional(stmt *ast.Conditional) error {
	merge := g.b.NewBlock("if.end", stmt.Location)

	for _, arm := range stmt.Arms {
		then := g.b.NewBlock("if.then", arm.Body.Location)
		if arm.Cond == nil {
			g.b.Br(then, arm.Body.Location)
			g.b.SetInsertPoint(then)
			if err := g.lowerBlock(arm.Body); err != nil {
				return err
			}
			g.b.Br(merge, arm.Body.Location)
			g.b.SetInsertPoint(merge)
			return nil
		}

		condBlock := g.b.NewBlock("if.cond", *arm.Cond.Loc())
		els := g.b.NewBlock("if.else", *arm.Cond.Loc())
		g.b.Br(condBlock, *arm.Cond.Loc())
		g.b.SetInsertPoint(condBlock)
		cond, err := g.lowerCondition(arm.Cond)
		if err != nil {
			return err
		}
		g.b.CondBr(cond, then, els, *arm.Cond.Loc())

		g.b.SetInsertPoint(then)
		if err := g.lowerBlock(arm.Body); err != nil {
			return err
		}
		g.b.Br(merge, arm.Body.Location)
		g.b.SetInsertPoint(els)
	}

	g.b.Br(merge, stmt.Location)
	g.b.SetInsertPoint(merge)
	return nil
}

func (g *Generator) lowerWhile(stmt *ast.While) error {
	condBlock := g.b.NewBlock("while.cond", stmt.Location)
	body := g.b.NewBlock("while.body", stmt.Body.Location)
	end := g.b.NewBlock("while.end", stmt.Location)

	g.b.Br(condBlock, stmt.Location)
	g.b.SetInsertPoint(condBlock)
	cond, err := g.lowerCondition(stmt.Cond)
	if err != nil {
		return err
	}
	g.b.CondBr(cond, body, end, *stmt.Cond.Loc())

	g.b.SetInsertPoint(body)
	if err := g.lowerBlock(stmt.Body); err != nil {
		return err
	}
	g.b.Br(condBlock, stmt.Body.Location)

	g.b.SetInsertPoint(end)
	return nil
}

func (g *Generator) lowerReturn(stmt *ast.Return) error {
	want := g.fn.Return
	if stmt.Value == nil {
		if !want.IsVoid() {
			return diagnostics.NewError(fmt.Sprintf("missing return value of type %s", want)).
				WithCode(diagnostics.ErrInvalidReturn).
				WithPrimaryLabel(stmt.Location, "")
		}
		g.b.RetVoid(stmt.Location)
		return nil
	}
	if want.IsVoid() {
		return diagnostics.NewError(fmt.Sprintf("function %s does not return a value", g.fn.Name)).
			WithCode(diagnostics.ErrInvalidReturn).
			WithPrimaryLabel(*stmt.Value.Loc(), "")
	}

	v, t, err := g.lowerExpr(stmt.Value, ValueCtx)
	if err != nil {
		return err
	}
	v, err = g.coerce(v, t, want, *stmt.Value.Loc())
	if err != nil {
		return err
	}
	g.b.Ret(v, stmt.Location)
	return nil
}

// lowerCondition produces a bool. Integers and pointers test against zero.
func (g *Generator) lowerCondition(expr ast.Expression) (mir.ValueID, error) {
	v, t, err := g.lowerExpr(expr, ValueCtx)
	if err != nil {
		return mir.InvalidValue, err
	}
	return g.truth(v, t, *expr.Loc())
}

func (g *Generator) truth(v mir.ValueID, t types.Type, loc source.Location) (mir.ValueID, error) {
	switch {
	case t.IsBool():
		return v, nil
	case t.IsInteger(), t.IsPointer():
		zero := g.b.Const(t, 0, loc)
		return g.b.Binary(tokens.NOT_EQUAL_TOKEN, v, zero, t, loc), nil
	}
	return mir.InvalidValue, diagnostics.TypeMismatch(loc, t.String(), "a condition")
}
