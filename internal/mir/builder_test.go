package mir

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
	"github.com/vasiltop/compiler/internal/types"
)

var noLoc source.Location

func TestFormatModule(t *testing.T) {
	b := NewBuilder("main", nil)

	puts, err := b.DeclareFunction("puts", []Param{{Name: "s", Type: types.String}}, types.I32, false, true, noLoc)
	if err != nil {
		t.Fatal(err)
	}
	add, err := b.DeclareFunction("main.add", []Param{{Name: "a", Type: types.I32}, {Name: "b", Type: types.I32}}, types.I32, false, false, noLoc)
	if err != nil {
		t.Fatal(err)
	}
	mainFn, err := b.DeclareFunction("main", nil, types.I32, false, false, noLoc)
	if err != nil {
		t.Fatal(err)
	}

	b.BeginFunction(add)
	sum := b.Binary(tokens.PLUS_TOKEN, add.Params[0].ID, add.Params[1].ID, types.I32, noLoc)
	b.Ret(sum, noLoc)
	b.EndFunction()

	b.BeginFunction(mainFn)
	b.Call(puts, []ValueID{b.String("hi", noLoc)}, noLoc)
	b.Call(puts, []ValueID{b.String("hi", noLoc)}, noLoc)
	b.Ret(b.Const(types.I32, 0, noLoc), noLoc)
	b.EndFunction()

	want := `module main
data str.0 = "hi"

extern fn puts(s: ^u8) -> i32

fn main.add(%t1 a: i32, %t2 b: i32) -> i32 {
  block b1 entry:
    %t3 = add i32 %t1, %t2
    ret %t3
}

fn main() -> i32 {
  block b1 entry:
    %t1 = data_addr str.0
    %t2 = call puts(%t1) : i32
    %t3 = data_addr str.0
    %t4 = call puts(%t3) : i32
    %t5 = const i32 0
    ret %t5
}
`
	if diff := cmp.Diff(want, FormatModule(b.Module)); diff != "" {
		t.Errorf("FormatModule mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclareFunctionTwice(t *testing.T) {
	b := NewBuilder("main", nil)
	if _, err := b.DeclareFunction("f", nil, types.Void, false, false, noLoc); err != nil {
		t.Fatal(err)
	}
	if _, err := b.DeclareFunction("f", nil, types.Void, false, false, noLoc); err == nil {
		t.Error("expected an error for a duplicate function")
	}
}

func TestTerminatedBlockDropsInstructions(t *testing.T) {
	b := NewBuilder("main", nil)
	fn, _ := b.DeclareFunction("f", nil, types.Void, false, false, noLoc)
	entry := b.BeginFunction(fn)
	b.RetVoid(noLoc)
	b.Const(types.I32, 1, noLoc)
	b.Ret(b.Const(types.I32, 2, noLoc), noLoc)

	if len(entry.Instrs) != 0 {
		t.Errorf("entry has %d instructions, want 0", len(entry.Instrs))
	}
	if _, ok := entry.Term.(*Return); !ok {
		t.Errorf("entry terminator = %T, want *Return", entry.Term)
	}
}

func TestEndFunctionTerminatesOpenBlocks(t *testing.T) {
	tests := []struct {
		name string
		ret  types.Type
		want string
	}{
		{"void", types.Void, "*mir.Return"},
		{"value", types.I32, "*mir.Unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder("main", nil)
			fn, _ := b.DeclareFunction("f", nil, tt.ret, false, false, noLoc)
			b.BeginFunction(fn)
			b.NewBlock("dangling", noLoc)
			b.EndFunction()
			for _, block := range fn.Blocks {
				if got := fmt.Sprintf("%T", block.Term); got != tt.want {
					t.Errorf("block %s terminator = %s, want %s", block.Name, got, tt.want)
				}
			}
		})
	}
}

func TestValueTypes(t *testing.T) {
	b := NewBuilder("main", nil)
	point := types.NewStruct(0, "main", "Point")
	point.AddField("x", types.I32)
	point.AddField("y", types.I64)
	b.DeclareStruct(point)

	fn, _ := b.DeclareFunction("f", nil, types.Void, false, false, noLoc)
	b.BeginFunction(fn)
	slot := b.Alloca(types.StructOf(point), noLoc)
	y := b.FieldAddr(slot, point, 1, noLoc)
	arr := b.Alloca(types.ArrayOf(types.U8, 4), noLoc)
	elem := b.ElemAddr(arr, b.Const(types.I32, 2, noLoc), types.ArrayOf(types.U8, 4), noLoc)
	cmpv := b.Binary(tokens.LESS_TOKEN, b.Const(types.I32, 1, noLoc), b.Const(types.I32, 2, noLoc), types.I32, noLoc)

	tests := []struct {
		name string
		id   ValueID
		want string
	}{
		{"alloca", slot, "^main:Point"},
		{"field", y, "^i64"},
		{"elem", elem, "^u8"},
		{"compare", cmpv, "bool"},
	}
	for _, tt := range tests {
		if got := fn.TypeOf(tt.id).String(); got != tt.want {
			t.Errorf("%s: type = %s, want %s", tt.name, got, tt.want)
		}
	}
}
