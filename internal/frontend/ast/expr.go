package ast

import (
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
)

// IntLit represents an integer literal
type IntLit struct {
	Value int64
	source.Location
}

func (i *IntLit) INode()                {} // Implements Node interface
func (i *IntLit) Expr()                 {} // Expr is a marker interface for all expressions
func (i *IntLit) Loc() *source.Location { return &i.Location }

// StringLit represents a string literal, escapes already decoded
type StringLit struct {
	Value string
	source.Location
}

func (s *StringLit) INode()                {} // Implements Node interface
func (s *StringLit) Expr()                 {} // Expr is a marker interface for all expressions
func (s *StringLit) Loc() *source.Location { return &s.Location }

// BoolLit represents true or false
type BoolLit struct {
	Value bool
	source.Location
}

func (b *BoolLit) INode()                {} // Implements Node interface
func (b *BoolLit) Expr()                 {} // Expr is a marker interface for all expressions
func (b *BoolLit) Loc() *source.Location { return &b.Location }

// CharLit represents a single byte character literal
type CharLit struct {
	Value byte
	source.Location
}

func (c *CharLit) INode()                {} // Implements Node interface
func (c *CharLit) Expr()                 {} // Expr is a marker interface for all expressions
func (c *CharLit) Loc() *source.Location { return &c.Location }

// NullLit is the null pointer
type NullLit struct {
	source.Location
}

func (n *NullLit) INode()                {} // Implements Node interface
func (n *NullLit) Expr()                 {} // Expr is a marker interface for all expressions
func (n *NullLit) Loc() *source.Location { return &n.Location }

// ArrayLit represents [a, b, c]
type ArrayLit struct {
	Elems []Expression
	source.Location
}

func (a *ArrayLit) INode()                {} // Implements Node interface
func (a *ArrayLit) Expr()                 {} // Expr is a marker interface for all expressions
func (a *ArrayLit) Loc() *source.Location { return &a.Location }

// FieldInit is one `name: value` entry of a struct literal
type FieldInit struct {
	Name  string
	Value Expression
	source.Location
}

// StructLit represents Name{a: 1, b: 2} or module:Name{...}
type StructLit struct {
	Module string
	Name   string
	Fields []FieldInit
	source.Location
}

func (s *StructLit) INode()                {} // Implements Node interface
func (s *StructLit) Expr()                 {} // Expr is a marker interface for all expressions
func (s *StructLit) Loc() *source.Location { return &s.Location }

// Variable is a bare identifier
type Variable struct {
	Name string
	source.Location
}

func (v *Variable) INode()                {} // Implements Node interface
func (v *Variable) Expr()                 {} // Expr is a marker interface for all expressions
func (v *Variable) Loc() *source.Location { return &v.Location }

// VariableAccess is a variable followed by index and field steps: a[i].f
type VariableAccess struct {
	Name  string
	Steps []AccessStep
	source.Location
}

func (v *VariableAccess) INode()                {} // Implements Node interface
func (v *VariableAccess) Expr()                 {} // Expr is a marker interface for all expressions
func (v *VariableAccess) Loc() *source.Location { return &v.Location }

// IndexStep is [Index]
type IndexStep struct {
	Index Expression
	source.Location
}

func (i *IndexStep) INode()                {} // Implements Node interface
func (i *IndexStep) Step()                 {} // Step is a marker interface for access steps
func (i *IndexStep) Loc() *source.Location { return &i.Location }

// FieldStep is .Name
type FieldStep struct {
	Name string
	source.Location
}

func (f *FieldStep) INode()                {} // Implements Node interface
func (f *FieldStep) Step()                 {} // Step is a marker interface for access steps
func (f *FieldStep) Loc() *source.Location { return &f.Location }

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	X  Expression   // left operand
	Op tokens.TOKEN // operator
	Y  Expression   // right operand
	source.Location
}

func (b *BinaryExpr) INode()                {} // Implements Node interface
func (b *BinaryExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (b *BinaryExpr) Loc() *source.Location { return &b.Location }

// UnaryExpr represents !x, -x, &x (address-of) and ^x (dereference)
type UnaryExpr struct {
	Op tokens.TOKEN
	X  Expression
	source.Location
}

func (u *UnaryExpr) INode()                {} // Implements Node interface
func (u *UnaryExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (u *UnaryExpr) Loc() *source.Location { return &u.Location }

// CastExpr represents @cast(Type, X)
type CastExpr struct {
	Type TypeNode
	X    Expression
	source.Location
}

func (c *CastExpr) INode()                {} // Implements Node interface
func (c *CastExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (c *CastExpr) Loc() *source.Location { return &c.Location }

// CallExpr calls Module's function Name. Module is always filled in by the parser.
type CallExpr struct {
	Module string
	Name   string
	Args   []Expression
	source.Location
}

func (c *CallExpr) INode()                {} // Implements Node interface
func (c *CallExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (c *CallExpr) Loc() *source.Location { return &c.Location }
