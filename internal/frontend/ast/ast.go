package ast

import (
	"github.com/vasiltop/compiler/internal/source"
)

// Node is the base interface for all AST nodes
type Node interface {
	INode()
	Loc() *source.Location
}

// Expression represents any node that produces a value
type Expression interface {
	Node
	Expr()
}

// TypeNode represents a source-level type annotation.
type TypeNode interface {
	Node
	TypeExpr()
	// Pointers is the number of ^ sigils applied to the type.
	Pointers() int
	String() string
}

// Statement represents any node that performs an action
type Statement interface {
	Node
	Stmt()
}

// Decl represents a top-level declaration (function or struct)
type Decl interface {
	Node
	Decl()
}

// AccessStep is one link of a VariableAccess chain: an index or a field.
type AccessStep interface {
	Node
	Step()
}
