package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/frontend/lexer"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/tokens"
)

var ignoreLocations = cmpopts.IgnoreTypes(source.Location{})

func parseString(src string) (*ast.File, error) {
	return Parse(lexer.Tokenize("main.pl", src), "main.pl", nil)
}

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := parseString(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return file
}

// parseReturnExpr parses expr as the value of a return statement.
func parseReturnExpr(t *testing.T, expr string) ast.Expression {
	t.Helper()
	file := mustParse(t, "module \"m\";\nf :: () -> i32 { return "+expr+"; }")
	fn := file.FuncDefs()[0]
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected return statement, got %T", fn.Body.Stmts[0])
	}
	return ret.Value
}

func num(v int64) *ast.IntLit { return &ast.IntLit{Value: v} }

func ident(name string) *ast.Variable { return &ast.Variable{Name: name} }

func bin(x ast.Expression, op tokens.TOKEN, y ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{X: x, Op: op, Y: y}
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Expression
	}{
		{"mul binds tighter", "1 + 2 * 3", bin(num(1), tokens.PLUS_TOKEN, bin(num(2), tokens.MUL_TOKEN, num(3)))},
		{"left associative", "10 - 3 - 2", bin(bin(num(10), tokens.MINUS_TOKEN, num(3)), tokens.MINUS_TOKEN, num(2))},
		{"parens", "(1 + 2) * 3", bin(bin(num(1), tokens.PLUS_TOKEN, num(2)), tokens.MUL_TOKEN, num(3))},
		{"modulo", "a % 2 == 0", bin(bin(ident("a"), tokens.MOD_TOKEN, num(2)), tokens.DOUBLE_EQUAL_TOKEN, num(0))},
		{
			"logical ladder",
			"a || b && c == d",
			bin(ident("a"), tokens.OR_TOKEN, bin(ident("b"), tokens.AND_TOKEN, bin(ident("c"), tokens.DOUBLE_EQUAL_TOKEN, ident("d")))),
		},
		{
			"relational over equality",
			"a < b != c >= d",
			bin(bin(ident("a"), tokens.LESS_TOKEN, ident("b")), tokens.NOT_EQUAL_TOKEN, bin(ident("c"), tokens.GREATER_EQUAL_TOKEN, ident("d"))),
		},
		{
			"unary before binary",
			"-x * 2",
			bin(&ast.UnaryExpr{Op: tokens.MINUS_TOKEN, X: ident("x")}, tokens.MUL_TOKEN, num(2)),
		},
		{
			"deref of address",
			"^(&e)",
			&ast.UnaryExpr{Op: tokens.POINTER_TOKEN, X: &ast.UnaryExpr{Op: tokens.REFERENCE_TOKEN, X: ident("e")}},
		},
		{
			"not",
			"!done",
			&ast.UnaryExpr{Op: tokens.NOT_TOKEN, X: ident("done")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseReturnExpr(t, tt.input)
			if diff := cmp.Diff(tt.want, got, ignoreLocations); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrimaries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Expression
	}{
		{"hex", "0xff", num(255)},
		{"binary with separators", "0b1000_0000", num(128)},
		{"string", `"hi\n"`, &ast.StringLit{Value: "hi\n"}},
		{"char", `'a'`, &ast.CharLit{Value: 'a'}},
		{"bool", "true", &ast.BoolLit{Value: true}},
		{"null", "null", &ast.NullLit{}},
		{"array", "[1, 2, 3,]", &ast.ArrayLit{Elems: []ast.Expression{num(1), num(2), num(3)}}},
		{"call", "add(1, x)", &ast.CallExpr{Module: "m", Name: "add", Args: []ast.Expression{num(1), ident("x")}}},
		{"module call", "io:print(1)", &ast.CallExpr{Module: "io", Name: "print", Args: []ast.Expression{num(1)}}},
		{"dotted call", "io.print()", &ast.CallExpr{Module: "io", Name: "print"}},
		{
			"cast",
			"@cast(u8, x)",
			&ast.CastExpr{Type: &ast.BasicType{Name: "u8"}, X: ident("x")},
		},
		{
			"struct literal",
			"Point{x: 1, y: 2}",
			&ast.StructLit{Module: "m", Name: "Point", Fields: []ast.FieldInit{
				{Name: "x", Value: num(1)},
				{Name: "y", Value: num(2)},
			}},
		},
		{
			"qualified struct literal",
			"geo:Point{x: 1}",
			&ast.StructLit{Module: "geo", Name: "Point", Fields: []ast.FieldInit{{Name: "x", Value: num(1)}}},
		},
		{
			"access path",
			"a[i].f[0]",
			&ast.VariableAccess{Name: "a", Steps: []ast.AccessStep{
				&ast.IndexStep{Index: ident("i")},
				&ast.FieldStep{Name: "f"},
				&ast.IndexStep{Index: num(0)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseReturnExpr(t, tt.input)
			if diff := cmp.Diff(tt.want, got, ignoreLocations); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTypes(t *testing.T) {
	file := mustParse(t, `module "m";
f :: (a: ^^i32, b: [Point; 4], c: geo:Shape, d: ^[u8; 16]) -> ^Point;
`)
	fn := file.FuncDefs()[0]

	want := []ast.TypeNode{
		&ast.BasicType{Name: "i32", Depth: 2},
		&ast.ArrayType{Elem: &ast.StructType{Module: "m", Name: "Point"}, Size: 4},
		&ast.StructType{Module: "geo", Name: "Shape"},
		&ast.ArrayType{Elem: &ast.BasicType{Name: "u8"}, Size: 16, Depth: 1},
	}
	var got []ast.TypeNode
	for _, param := range fn.Params {
		got = append(got, param.Type)
	}
	if diff := cmp.Diff(want, got, ignoreLocations); diff != "" {
		t.Errorf("param types mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&ast.StructType{Module: "m", Name: "Point", Depth: 1}, fn.Return, ignoreLocations); diff != "" {
		t.Errorf("return type mismatch (-want +got):\n%s", diff)
	}
	if fn.Body != nil {
		t.Error("declaration without body should have nil Body")
	}
}

func TestStatements(t *testing.T) {
	file := mustParse(t, `module "m";
f :: () {
	let a: i32 = 1;
	b : i32 = 2;
	a = b;
	arr[0] = 1;
	p.x = 2;
	^ptr = 3;
	g(1);
	io:put(2);
	io.put(3);
	{ c : i8 = 1; }
	while a < 10 { a = a + 1; }
	return;
}
`)
	stmts := file.FuncDefs()[0].Body.Stmts

	wantKinds := []string{
		"*ast.VarDecl", "*ast.VarDecl",
		"*ast.Assign", "*ast.Assign", "*ast.Assign", "*ast.Assign",
		"*ast.CallStmt", "*ast.CallStmt", "*ast.CallStmt",
		"*ast.Block", "*ast.While", "*ast.Return",
	}
	if len(stmts) != len(wantKinds) {
		t.Fatalf("expected %d statements, got %d", len(wantKinds), len(stmts))
	}
	for i, stmt := range stmts {
		if got := fmt.Sprintf("%T", stmt); got != wantKinds[i] {
			t.Errorf("statement %d: expected %s, got %s", i, wantKinds[i], got)
		}
	}

	deref := stmts[5].(*ast.Assign)
	if diff := cmp.Diff(&ast.UnaryExpr{Op: tokens.POINTER_TOKEN, X: ident("ptr")}, deref.Target, ignoreLocations); diff != "" {
		t.Errorf("deref target mismatch (-want +got):\n%s", diff)
	}

	calls := []*ast.CallExpr{stmts[6].(*ast.CallStmt).Call, stmts[7].(*ast.CallStmt).Call, stmts[8].(*ast.CallStmt).Call}
	for i, want := range []string{"m", "io", "io"} {
		if calls[i].Module != want {
			t.Errorf("call %d: expected module %s, got %s", i, want, calls[i].Module)
		}
	}

	if ret := stmts[11].(*ast.Return); ret.Value != nil {
		t.Errorf("bare return should have no value, got %T", ret.Value)
	}
}

func TestConditionalChain(t *testing.T) {
	file := mustParse(t, `module "m";
f :: (a: bool, b: bool) {
	if a { x : i32 = 1; } else if b { x : i32 = 2; } else { x : i32 = 3; }
}
`)
	cond, ok := file.FuncDefs()[0].Body.Stmts[0].(*ast.Conditional)
	if !ok {
		t.Fatalf("expected conditional")
	}
	if len(cond.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(cond.Arms))
	}
	if cond.Arms[0].Cond == nil || cond.Arms[1].Cond == nil {
		t.Error("if and else-if arms need conditions")
	}
	if cond.Arms[2].Cond != nil {
		t.Error("else arm must have no condition")
	}
}

func TestConditionIsNotStructLiteral(t *testing.T) {
	file := mustParse(t, `module "m";
f :: (ok: bool) {
	if ok { ok = false; }
	while ok { p : Point = Point{x: 1}; }
}
`)
	stmts := file.FuncDefs()[0].Body.Stmts
	if diff := cmp.Diff(ident("ok"), stmts[0].(*ast.Conditional).Arms[0].Cond, ignoreLocations); diff != "" {
		t.Errorf("if condition mismatch (-want +got):\n%s", diff)
	}
	body := stmts[1].(*ast.While).Body
	decl := body.Stmts[0].(*ast.VarDecl)
	if _, ok := decl.Value.(*ast.StructLit); !ok {
		t.Errorf("struct literal inside a loop body should parse, got %T", decl.Value)
	}
}

func TestDeclarations(t *testing.T) {
	file := mustParse(t, `module "geo";
extern printf :: (fmt: string, ...) -> i32;
puts :: (s: string) -> i32;
Point :: struct { x: i32, y: i32, }
Line :: struct { a: Point, b: Point }
main :: () -> i32 { return 0; }
`)

	if file.Module != "geo" {
		t.Errorf("expected module geo, got %s", file.Module)
	}

	fns := file.FuncDefs()
	if len(fns) != 3 {
		t.Fatalf("expected 3 functions, got %d", len(fns))
	}
	if !fns[0].Extern || !fns[0].Variadic || fns[0].Body != nil {
		t.Errorf("printf should be an external variadic declaration: %+v", fns[0])
	}
	if fns[1].Extern || fns[1].Body != nil {
		t.Errorf("puts should be a bodyless declaration without extern")
	}
	if fns[2].Body == nil || fns[2].Module != "geo" {
		t.Errorf("main should have a body in module geo")
	}

	structs := file.StructDefs()
	if len(structs) != 2 || len(structs[0].Fields) != 2 {
		t.Fatalf("unexpected structs: %+v", structs)
	}

	wantFuncs := map[string]bool{"printf": true, "puts": true, "main": true}
	wantStructs := map[string]bool{"Point": true, "Line": true}
	if diff := cmp.Diff(wantFuncs, file.Functions); diff != "" {
		t.Errorf("function names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantStructs, file.Structs); diff != "" {
		t.Errorf("struct names mismatch (-want +got):\n%s", diff)
	}
}

func TestVoidReturnDefault(t *testing.T) {
	file := mustParse(t, "module \"m\"\nf :: () { }")
	ret, ok := file.FuncDefs()[0].Return.(*ast.BasicType)
	if !ok || ret.Name != "void" || ret.Depth != 0 {
		t.Errorf("expected void return, got %v", file.FuncDefs()[0].Return)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	src := `module "m";
import "other";
S :: struct { a: [i32; 3], b: ^S }
f :: (s: ^S) -> i32 {
	x : i32 = s.a[1] + @cast(i32, 'c') * 2;
	if x > 3 && !false { return x; } else { return -x; }
}
`
	first := mustParse(t, src)
	second := mustParse(t, src)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("parsing twice gave different trees (-first +second):\n%s", diff)
	}
}

func TestImportHandler(t *testing.T) {
	var seen []string
	handler := func(importer, target string, loc source.Location) (string, error) {
		seen = append(seen, target)
		if importer != "main.pl" {
			t.Errorf("unexpected importer %s", importer)
		}
		if loc.Start.Line == 0 {
			t.Error("import location not set")
		}
		return "/abs/" + target + ".pl", nil
	}

	src := `module "main";
import "a";
f :: () { }
import "std:io"
`
	file, err := Parse(lexer.Tokenize("main.pl", src), "main.pl", handler)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a", "std:io"}, seen); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}
	if file.Imports[1].Path != "/abs/std:io.pl" {
		t.Errorf("resolved path not recorded: %s", file.Imports[1].Path)
	}
}

func TestImportHandlerErrorStopsParsing(t *testing.T) {
	handler := func(importer, target string, loc source.Location) (string, error) {
		return "", errBoom
	}
	_, err := Parse(lexer.Tokenize("main.pl", "module \"m\";\nimport \"x\";\n"), "main.pl", handler)
	if err != errBoom {
		t.Errorf("expected handler error to propagate, got %v", err)
	}
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom error = boomError{}

func TestWideCharToken(t *testing.T) {
	toks := lexer.Tokenize("main.pl", "module \"m\";\nf :: () -> u8 { return 'a'; }")
	for i := range toks {
		if toks[i].Kind == tokens.CHAR_TOKEN {
			toks[i].Value = "é"
		}
	}
	_, err := Parse(toks, "main.pl", nil)
	if err == nil || !strings.Contains(err.Error(), "character literal must be a single byte") {
		t.Errorf("expected single-byte error, got %v", err)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"missing semicolon",
			"module \"main\";\nmain :: () -> i32 {\n\tx : i32 = 5\n}\n",
			"main.pl:4:1: expected ';' after declaration, received: }",
		},
		{
			"missing header",
			"main :: () { }",
			"main.pl:1:1: expected module header, received: main",
		},
		{
			"bad global",
			"module \"m\";\n42",
			"main.pl:2:1: expected function or struct declaration, received: 42",
		},
		{
			"unknown character",
			"module \"m\";\nf :: () { x : i32 = $; }",
			"main.pl:2:21: unrecognized input, received: $",
		},
		{
			"unterminated block",
			"module \"m\";\nf :: () { x : i32 = 1;",
			"expected '}' to close block, received: end of file",
		},
		{
			"bad statement",
			"module \"m\";\nf :: () { 5; }",
			"main.pl:2:11: expected statement, received: 5",
		},
		{
			"variadic with body",
			"module \"m\";\nf :: (a: i32, ...) { }",
			"only external declarations can be variadic",
		},
		{
			"dots not last",
			"module \"m\";\nf :: (..., a: i32);",
			"'...' must be the last parameter",
		},
		{
			"zero array size",
			"module \"m\";\nf :: (a: [i32; 0]);",
			"array size must be a positive integer",
		},
		{
			"unknown builtin",
			"module \"m\";\nf :: () -> i32 { return @size(i32); }",
			"unknown builtin @size",
		},
		{
			"empty array literal",
			"module \"m\";\nf :: () { a : [i32; 1] = []; }",
			"array literal needs at least one element",
		},
		{
			"multi-byte char literal",
			"module \"m\";\nf :: () -> u8 { return 'é'; }",
			"main.pl:2:24: unrecognized input, received: 'é'",
		},
		{
			"extern with body",
			"module \"m\";\nextern f :: () { }",
			"expected ';' after external declaration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parseString(tt.input)
			if err == nil {
				t.Fatalf("expected error, got tree %+v", file)
			}
			if file != nil {
				t.Error("no tree should be returned on error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}
