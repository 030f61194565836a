package mir

import "github.com/vasiltop/compiler/internal/source"

// Term is the base interface for block terminators.
type Term interface {
	mirTerm()
	Loc() *source.Location
}

// Return exits the current function.
type Return struct {
	Value    ValueID
	HasValue bool
	Location source.Location
}

func (r *Return) mirTerm()              {}
func (r *Return) Loc() *source.Location { return &r.Location }

// Br jumps unconditionally to another block.
type Br struct {
	Target   BlockID
	Location source.Location
}

func (b *Br) mirTerm()              {}
func (b *Br) Loc() *source.Location { return &b.Location }

// CondBr jumps to Then when Cond is non-zero, else to Else.
type CondBr struct {
	Cond     ValueID
	Then     BlockID
	Else     BlockID
	Location source.Location
}

func (c *CondBr) mirTerm()              {}
func (c *CondBr) Loc() *source.Location { return &c.Location }

// Unreachable marks a path control never takes, such as the end of a
// non-void function without a return.
type Unreachable struct {
	Location source.Location
}

func (u *Unreachable) mirTerm()              {}
func (u *Unreachable) Loc() *source.Location { return &u.Location }
