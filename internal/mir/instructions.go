package mir

import (
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

// Instr is the base interface for IR instructions.
type Instr interface {
	mirInstr()
	Loc() *source.Location
}

// Const defines an integer, bool or null pointer constant.
type Const struct {
	Result   ValueID
	Type     types.Type
	Value    int64
	Location source.Location
}

func (c *Const) mirInstr()             {}
func (c *Const) Loc() *source.Location { return &c.Location }

// DataAddr yields the address of a module data entry.
type DataAddr struct {
	Result   ValueID
	Name     string
	Location source.Location
}

func (d *DataAddr) mirInstr()             {}
func (d *DataAddr) Loc() *source.Location { return &d.Location }

// Binary performs a binary operation on two operands of Type. Comparisons
// produce a bool; everything else produces Type.
type Binary struct {
	Result   ValueID
	Op       tokens.TOKEN
	Left     ValueID
	Right    ValueID
	Type     types.Type
	Location source.Location
}

func (b *Binary) mirInstr()             {}
func (b *Binary) Loc() *source.Location { return &b.Location }

// Unary performs negation (MINUS) or logical not (NOT).
type Unary struct {
	Result   ValueID
	Op       tokens.TOKEN
	X        ValueID
	Type     types.Type
	Location source.Location
}

func (u *Unary) mirInstr()             {}
func (u *Unary) Loc() *source.Location { return &u.Location }

// Cast converts X from From to To using Op.
type Cast struct {
	Result   ValueID
	Op       CastOp
	X        ValueID
	From     types.Type
	To       types.Type
	Location source.Location
}

func (c *Cast) mirInstr()             {}
func (c *Cast) Loc() *source.Location { return &c.Location }

// Alloca reserves stack storage for a value of Type and yields its address.
type Alloca struct {
	Result   ValueID
	Type     types.Type
	Location source.Location
}

func (a *Alloca) mirInstr()             {}
func (a *Alloca) Loc() *source.Location { return &a.Location }

// Load reads a scalar of Type from an address.
type Load struct {
	Result   ValueID
	Addr     ValueID
	Type     types.Type
	Location source.Location
}

func (l *Load) mirInstr()             {}
func (l *Load) Loc() *source.Location { return &l.Location }

// Store writes a scalar of Type to an address.
type Store struct {
	Addr     ValueID
	Value    ValueID
	Type     types.Type
	Location source.Location
}

func (s *Store) mirInstr()             {}
func (s *Store) Loc() *source.Location { return &s.Location }

// Copy copies an aggregate of Type from Src to Dst.
type Copy struct {
	Dst      ValueID
	Src      ValueID
	Type     types.Type
	Location source.Location
}

func (c *Copy) mirInstr()             {}
func (c *Copy) Loc() *source.Location { return &c.Location }

// FieldAddr computes the address of field Index of the struct at Base.
type FieldAddr struct {
	Result   ValueID
	Base     ValueID
	Struct   *types.Struct
	Index    int
	Location source.Location
}

func (f *FieldAddr) mirInstr()             {}
func (f *FieldAddr) Loc() *source.Location { return &f.Location }

// ElemAddr computes the address of element Index of the array at Base.
type ElemAddr struct {
	Result   ValueID
	Base     ValueID
	Index    ValueID
	Elem     types.Type
	Location source.Location
}

func (e *ElemAddr) mirInstr()             {}
func (e *ElemAddr) Loc() *source.Location { return &e.Location }

// PtrOffset advances a pointer to Elem by Offset elements.
type PtrOffset struct {
	Result   ValueID
	Base     ValueID
	Offset   ValueID
	Elem     types.Type
	Location source.Location
}

func (p *PtrOffset) mirInstr()             {}
func (p *PtrOffset) Loc() *source.Location { return &p.Location }

// Call represents a direct function call. Result is InvalidValue for void
// callees.
type Call struct {
	Result   ValueID
	Target   *Function
	Args     []ValueID
	Type     types.Type
	Location source.Location
}

func (c *Call) mirInstr()             {}
func (c *Call) Loc() *source.Location { return &c.Location }
