package ast

import "github.com/vasiltop/compiler/internal/source"

// Block represents a braced list of statements
type Block struct {
	Stmts []Statement
	source.Location
}

func (b *Block) INode()                {} // Implements Node interface
func (b *Block) Stmt()                 {} // Stmt is a marker interface for all statements
func (b *Block) Loc() *source.Location { return &b.Location }

// VarDecl represents `let name: type = value;` (the let keyword is optional)
type VarDecl struct {
	Name  string
	Type  TypeNode
	Value Expression
	source.Location
}

func (v *VarDecl) INode()                {} // Implements Node interface
func (v *VarDecl) Stmt()                 {} // Stmt is a marker interface for all statements
func (v *VarDecl) Loc() *source.Location { return &v.Location }

// Assign stores Value into the location named by Target
type Assign struct {
	Target Expression
	Value  Expression
	source.Location
}

func (a *Assign) INode()                {} // Implements Node interface
func (a *Assign) Stmt()                 {} // Stmt is a marker interface for all statements
func (a *Assign) Loc() *source.Location { return &a.Location }

// CondArm is one `if cond { }` arm; Cond is nil for the final else.
type CondArm struct {
	Cond Expression
	Body *Block
}

// Conditional is an if / else if / else chain
type Conditional struct {
	Arms []CondArm
	source.Location
}

func (c *Conditional) INode()                {} // Implements Node interface
func (c *Conditional) Stmt()                 {} // Stmt is a marker interface for all statements
func (c *Conditional) Loc() *source.Location { return &c.Location }

// While represents `while cond { body }`
type While struct {
	Cond Expression
	Body *Block
	source.Location
}

func (w *While) INode()                {} // Implements Node interface
func (w *While) Stmt()                 {} // Stmt is a marker interface for all statements
func (w *While) Loc() *source.Location { return &w.Location }

// Return represents `return;` or `return value;`
type Return struct {
	Value Expression // nil for a bare return
	source.Location
}

func (r *Return) INode()                {} // Implements Node interface
func (r *Return) Stmt()                 {} // Stmt is a marker interface for all statements
func (r *Return) Loc() *source.Location { return &r.Location }

// CallStmt is a call evaluated for its effect
type CallStmt struct {
	Call *CallExpr
	source.Location
}

func (c *CallStmt) INode()                {} // Implements Node interface
func (c *CallStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (c *CallStmt) Loc() *source.Location { return &c.Location }
