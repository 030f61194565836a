package mir

import (
	"fmt"

	"github.com/vasiltop/compiler/internal/types"
)

// CastOp is the machine operation a cast lowers to.
type CastOp int

const (
	CastNop CastOp = iota
	CastSignExt
	CastZeroExt
	CastTrunc
	CastFloatExt
	CastFloatTrunc
)

func (op CastOp) String() string {
	switch op {
	case CastNop:
		return "nop"
	case CastSignExt:
		return "sext"
	case CastZeroExt:
		return "zext"
	case CastTrunc:
		return "trunc"
	case CastFloatExt:
		return "fext"
	case CastFloatTrunc:
		return "ftrunc"
	}
	return "cast?"
}

// ClassifyCast picks the operation converting from into to.
func ClassifyCast(from, to types.Type) (CastOp, error) {
	switch {
	case from.Equal(to):
		return CastNop, nil
	case from.IsInteger() && to.IsInteger():
		switch {
		case from.Bits == to.Bits:
			return CastNop, nil
		case from.Bits > to.Bits:
			return CastTrunc, nil
		case to.Signed:
			return CastSignExt, nil
		default:
			return CastZeroExt, nil
		}
	case from.IsPointer() && to.IsPointer():
		return CastNop, nil
	case from.IsPointer() && to.IsInteger() && to.Bits == 64,
		from.IsInteger() && from.Bits == 64 && to.IsPointer():
		return CastNop, nil
	case from.IsBool() && to.IsInteger():
		return CastZeroExt, nil
	case from.IsFloat() && to.IsFloat():
		if from.Bits < to.Bits {
			return CastFloatExt, nil
		}
		return CastFloatTrunc, nil
	}
	return CastNop, fmt.Errorf("unsupported cast from %s to %s", from, to)
}
