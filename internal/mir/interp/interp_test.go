package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

var loc source.Location

func declare(t *testing.T, b *mir.Builder, name string, params []mir.Param, ret types.Type, variadic, external bool) *mir.Function {
	t.Helper()
	fn, err := b.DeclareFunction(name, params, ret, variadic, external, loc)
	if err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestCasts(t *testing.T) {
	tests := []struct {
		name string
		from types.Type
		v    int64
		to   types.Type
		want int
	}{
		{"u8 to u32", types.U8, 250, types.U32, 250},
		{"i8 to i32", types.I8, -6, types.I32, -6},
		{"i32 to u8", types.I32, 300, types.U8, 44},
		{"i32 to i8", types.I32, 200, types.I8, -56},
		{"u8 to i32 sign extends", types.U8, 250, types.I32, -6},
		{"i32 to u32", types.I32, -1, types.U32, 4294967295},
		{"bool to i64", types.Bool, 1, types.I64, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mir.NewBuilder("main", nil)
			fn := declare(t, b, "main", nil, types.I64, false, false)
			b.BeginFunction(fn)
			v, err := b.Cast(b.Const(tt.from, tt.v, loc), tt.to, loc)
			if err != nil {
				t.Fatal(err)
			}
			if tt.to.Bits < 64 {
				// widen without changing the value so Run sees it
				if tt.to.Signed {
					v, _ = b.Cast(v, types.I64, loc)
				} else {
					v, _ = b.Cast(v, types.U64, loc)
				}
			}
			b.Ret(v, loc)
			b.EndFunction()

			got, err := New(b.Module).Run("main")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoop(t *testing.T) {
	b := mir.NewBuilder("main", nil)
	fn := declare(t, b, "main", nil, types.I32, false, false)
	b.BeginFunction(fn)

	i := b.Alloca(types.I32, loc)
	sum := b.Alloca(types.I32, loc)
	b.Store(i, b.Const(types.I32, 1, loc), types.I32, loc)
	b.Store(sum, b.Const(types.I32, 0, loc), types.I32, loc)

	cond := b.NewBlock("while.cond", loc)
	body := b.NewBlock("while.body", loc)
	end := b.NewBlock("while.end", loc)
	b.Br(cond, loc)

	b.SetInsertPoint(cond)
	le := b.Binary(tokens.LESS_EQUAL_TOKEN, b.Load(i, types.I32, loc), b.Const(types.I32, 10, loc), types.I32, loc)
	b.CondBr(le, body, end, loc)

	b.SetInsertPoint(body)
	iv := b.Load(i, types.I32, loc)
	b.Store(sum, b.Binary(tokens.PLUS_TOKEN, b.Load(sum, types.I32, loc), iv, types.I32, loc), types.I32, loc)
	b.Store(i, b.Binary(tokens.PLUS_TOKEN, iv, b.Const(types.I32, 1, loc), types.I32, loc), types.I32, loc)
	b.Br(cond, loc)

	b.SetInsertPoint(end)
	b.Ret(b.Load(sum, types.I32, loc), loc)
	b.EndFunction()

	got, err := New(b.Module).Run("main")
	if err != nil {
		t.Fatal(err)
	}
	if got != 55 {
		t.Errorf("sum = %d, want 55", got)
	}
}

func TestHostFunctions(t *testing.T) {
	b := mir.NewBuilder("main", nil)
	printf := declare(t, b, "printf", []mir.Param{{Name: "fmt", Type: types.String}}, types.I32, true, true)
	putchar := declare(t, b, "putchar", []mir.Param{{Name: "c", Type: types.I32}}, types.I32, false, true)
	puts := declare(t, b, "puts", []mir.Param{{Name: "s", Type: types.String}}, types.I32, false, true)
	fn := declare(t, b, "main", nil, types.I32, false, false)

	b.BeginFunction(fn)
	b.Call(printf, []mir.ValueID{
		b.String("x=%d %s %c%% %lu %x\n", loc),
		b.Const(types.I32, -42, loc),
		b.String("hi", loc),
		b.Const(types.U8, 'A', loc),
		b.Const(types.U64, 1<<40, loc),
		b.Const(types.I32, 255, loc),
	}, loc)
	b.Call(putchar, []mir.ValueID{b.Const(types.I32, 'z', loc)}, loc)
	b.Call(puts, []mir.ValueID{b.String("", loc)}, loc)
	b.Ret(b.Const(types.I32, 0, loc), loc)
	b.EndFunction()

	var out bytes.Buffer
	if _, err := New(b.Module, WithOutput(&out)).Run("main"); err != nil {
		t.Fatal(err)
	}
	if want := "x=-42 hi A% 1099511627776 ff\nz\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestExit(t *testing.T) {
	b := mir.NewBuilder("main", nil)
	exit := declare(t, b, "exit", []mir.Param{{Name: "code", Type: types.I32}}, types.Void, false, true)
	fn := declare(t, b, "main", nil, types.I32, false, false)
	b.BeginFunction(fn)
	b.Call(exit, []mir.ValueID{b.Const(types.I32, 3, loc)}, loc)
	b.Ret(b.Const(types.I32, 0, loc), loc)
	b.EndFunction()

	got, err := New(b.Module).Run("main")
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("status = %d, want 3", got)
	}
}

func TestAggregateReturn(t *testing.T) {
	b := mir.NewBuilder("main", nil)
	pair := types.NewStruct(0, "main", "Pair")
	pair.AddField("a", types.I32)
	pair.AddField("b", types.I64)
	b.DeclareStruct(pair)
	pairType := types.StructOf(pair)

	mk := declare(t, b, "main.mk", []mir.Param{{Name: "n", Type: types.I64}}, pairType, false, false)
	fn := declare(t, b, "main", nil, types.I32, false, false)

	b.BeginFunction(mk)
	slot := b.Alloca(pairType, loc)
	b.Store(b.FieldAddr(slot, pair, 0, loc), b.Const(types.I32, 7, loc), types.I32, loc)
	b.Store(b.FieldAddr(slot, pair, 1, loc), mk.Params[0].ID, types.I64, loc)
	b.Ret(slot, loc)
	b.EndFunction()

	b.BeginFunction(fn)
	first := b.Call(mk, []mir.ValueID{b.Const(types.I64, 30, loc)}, loc)
	kept := b.Alloca(pairType, loc)
	b.Store(kept, first, pairType, loc)
	b.Call(mk, []mir.ValueID{b.Const(types.I64, 99, loc)}, loc)
	a := b.Load(b.FieldAddr(kept, pair, 0, loc), types.I32, loc)
	bv := b.Load(b.FieldAddr(kept, pair, 1, loc), types.I64, loc)
	a64, _ := b.Cast(a, types.I64, loc)
	b.Ret(b.Binary(tokens.PLUS_TOKEN, a64, bv, types.I64, loc), loc)
	b.EndFunction()

	got, err := New(b.Module).Run("main")
	if err != nil {
		t.Fatal(err)
	}
	if got != 37 {
		t.Errorf("got %d, want 37", got)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *mir.Builder, fn *mir.Function)
		want  string
	}{
		{
			name: "division by zero",
			build: func(b *mir.Builder, fn *mir.Function) {
				b.Ret(b.Binary(tokens.DIV_TOKEN, b.Const(types.I32, 1, loc), b.Const(types.I32, 0, loc), types.I32, loc), loc)
			},
			want: "division by zero",
		},
		{
			name:  "unreachable",
			build: func(b *mir.Builder, fn *mir.Function) {},
			want:  "reached unreachable code in main",
		},
		{
			name: "null load",
			build: func(b *mir.Builder, fn *mir.Function) {
				b.Ret(b.Load(b.Const(types.I32.PointerTo(), 0, loc), types.I32, loc), loc)
			},
			want: "null pointer dereference",
		},
		{
			name: "unknown extern",
			build: func(b *mir.Builder, fn *mir.Function) {
				b.Ret(b.Call(b.Module.Functions[0], nil, loc), loc)
			},
			want: "external function rand is not available",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mir.NewBuilder("main", nil)
			declare(t, b, "rand", nil, types.I32, false, true)
			fn := declare(t, b, "main", nil, types.I32, false, false)
			b.BeginFunction(fn)
			tt.build(b, fn)
			b.EndFunction()

			_, err := New(b.Module).Run("main")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestStepLimit(t *testing.T) {
	b := mir.NewBuilder("main", nil)
	fn := declare(t, b, "main", nil, types.I32, false, false)
	b.BeginFunction(fn)
	loop := b.NewBlock("loop", loc)
	b.Br(loop, loc)
	b.SetInsertPoint(loop)
	b.Br(loop, loc)
	b.EndFunction()

	_, err := New(b.Module, WithStepLimit(100)).Run("main")
	if err == nil || !strings.Contains(err.Error(), "step limit") {
		t.Errorf("error = %v, want a step limit error", err)
	}
}
