package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vasiltop/compiler/internal/context_v2"
	"github.com/vasiltop/compiler/internal/mir/interp"
	"github.com/vasiltop/compiler/internal/phase"
	"github.com/vasiltop/compiler/internal/testutil"
)

// newContext extracts archive and points a fresh context at main.pl.
func newContext(t *testing.T, archive string) (*context_v2.CompilerContext, string) {
	t.Helper()
	dir := testutil.TempArchive(t, archive)
	ctx := context_v2.New(&context_v2.Config{}, false)
	if err := ctx.SetEntryPoint(filepath.Join(dir, "main.pl")); err != nil {
		t.Fatalf("SetEntryPoint: %v", err)
	}
	return ctx, dir
}

func diagnosticText(ctx *context_v2.CompilerContext) string {
	var msgs []string
	for _, d := range ctx.Diagnostics.Diagnostics() {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

func TestPipelineBasic(t *testing.T) {
	ctx, _ := newContext(t, `
-- main.pl --
module "main";

main :: () -> i32 {
	return 40 + 2;
}
`)

	p := New(ctx)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, diagnosticText(ctx))
	}
	if ctx.ModuleCount() != 1 {
		t.Errorf("expected 1 file, got %d", ctx.ModuleCount())
	}
	if got := ctx.GetModulePhase(ctx.EntryPoint); got != phase.PhaseLowered {
		t.Errorf("entry at %v, want %v", got, phase.PhaseLowered)
	}

	status, err := interp.New(p.Module()).Run("main")
	if err != nil {
		t.Fatal(err)
	}
	if status != 42 {
		t.Errorf("status = %d, want 42", status)
	}
}

// A imports B and C, B imports C: C is parsed once, and files are ordered
// by first encounter.
func TestImportGraph(t *testing.T) {
	ctx, dir := newContext(t, `
-- main.pl --
module "main";
import "b";
import "lib/c";

main :: () -> i32 {
	return b:twice() + c:value();
}
-- b.pl --
module "b";
import "lib/c";

twice :: () -> i32 {
	return c:value() * 2;
}
-- lib/c.pl --
module "c";

value :: () -> i32 {
	return 2;
}
`)

	p := New(ctx)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, diagnosticText(ctx))
	}

	want := []string{
		filepath.Join(dir, "main.pl"),
		filepath.Join(dir, "b.pl"),
		filepath.Join(dir, "lib", "c.pl"),
	}
	if diff := cmp.Diff(want, ctx.Paths()); diff != "" {
		t.Errorf("claim order mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, f := range ctx.Files() {
		names = append(names, f.Module)
	}
	if diff := cmp.Diff([]string{"main", "b", "c"}, names); diff != "" {
		t.Errorf("module names mismatch (-want +got):\n%s", diff)
	}

	for _, path := range ctx.Paths() {
		module, _ := ctx.GetModule(path)
		if module.AST == nil {
			t.Errorf("%s has no AST", path)
		}
		if module.Phase != phase.PhaseLowered {
			t.Errorf("%s at %v, want %v", path, module.Phase, phase.PhaseLowered)
		}
	}

	status, err := interp.New(p.Module()).Run("main")
	if err != nil {
		t.Fatal(err)
	}
	if status != 6 {
		t.Errorf("status = %d, want 6", status)
	}
}

func TestCircularImport(t *testing.T) {
	ctx, _ := newContext(t, `
-- main.pl --
module "main";
import "other";

main :: () -> i32 {
	return other:get();
}

seven :: () -> i32 {
	return 7;
}
-- other.pl --
module "other";
import "main";

get :: () -> i32 {
	return main:seven();
}
`)

	p := New(ctx)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, diagnosticText(ctx))
	}
	if ctx.ModuleCount() != 2 {
		t.Errorf("expected 2 files, got %d", ctx.ModuleCount())
	}

	status, err := interp.New(p.Module()).Run("main")
	if err != nil {
		t.Fatal(err)
	}
	if status != 7 {
		t.Errorf("status = %d, want 7", status)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		want    string
	}{
		{
			name: "missing import",
			archive: `
-- main.pl --
module "main";
import "nowhere";
`,
			want: "module not found",
		},
		{
			name: "syntax error in import",
			archive: `
-- main.pl --
module "main";
import "broken";
-- broken.pl --
module "broken";
f :: () -> i32 { return 1 }
`,
			want: "broken.pl:2:",
		},
		{
			name: "undefined variable",
			archive: `
-- main.pl --
module "main";

main :: () -> i32 {
	return x;
}
`,
			want: "undefined variable: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newContext(t, tt.archive)
			err := New(ctx).Run()
			if !errors.Is(err, ErrFailed) {
				t.Fatalf("expected ErrFailed, got %v", err)
			}
			if got := diagnosticText(ctx); !strings.Contains(got, tt.want) {
				t.Errorf("diagnostics %q do not contain %q", got, tt.want)
			}
			if ctx.Diagnostics.ErrorCount() != 1 {
				t.Errorf("expected exactly one error, got %d", ctx.Diagnostics.ErrorCount())
			}
		})
	}
}

func TestMissingImportLocation(t *testing.T) {
	ctx, dir := newContext(t, `
-- main.pl --
module "main";
import "nowhere";
`)

	_ = New(ctx).Run()
	diags := ctx.Diagnostics.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(diags))
	}
	prefix := filepath.Join(dir, "main.pl") + ":2:"
	if got := diags[0].Error(); !strings.HasPrefix(got, prefix) {
		t.Errorf("diagnostic %q does not start with %q", got, prefix)
	}
}

func TestOverlayEntry(t *testing.T) {
	dir := testutil.TempArchive(t, `
-- util.pl --
module "util";

inc :: (n: i32) -> i32 {
	return n + 1;
}
`)

	ctx := context_v2.New(&context_v2.Config{}, false)
	code := "module \"main\";\nimport \"util\";\nmain :: () -> i32 { return util:inc(4); }\n"
	if err := ctx.SetEntryPointWithCode(code, filepath.Join(dir, "virtual.pl")); err != nil {
		t.Fatal(err)
	}

	p := New(ctx)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, diagnosticText(ctx))
	}
	status, err := interp.New(p.Module()).Run("main")
	if err != nil {
		t.Fatal(err)
	}
	if status != 5 {
		t.Errorf("status = %d, want 5", status)
	}
}

func TestBuildRequiresMain(t *testing.T) {
	ctx, _ := newContext(t, `
-- main.pl --
module "main";

helper :: () -> i32 {
	return 1;
}
`)

	p := New(ctx)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, diagnosticText(ctx))
	}
	if _, err := p.Build(); !errors.Is(err, errNoMain) {
		t.Fatalf("expected errNoMain, got %v", err)
	}
	if !strings.Contains(diagnosticText(ctx), "function 'main' not found") {
		t.Errorf("missing diagnostic, got %q", diagnosticText(ctx))
	}
}

func TestBuildBeforeGenerate(t *testing.T) {
	ctx, _ := newContext(t, `
-- main.pl --
module "main";
`)
	if _, err := New(ctx).Build(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestEmitQBE(t *testing.T) {
	ctx, dir := newContext(t, `
-- main.pl --
module "main";
import "lib";

main :: () -> i32 {
	return lib:one();
}
-- lib.pl --
module "lib";

one :: () -> i32 {
	return 1;
}
`)

	p := New(ctx)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, diagnosticText(ctx))
	}
	out := filepath.Join(dir, "main.ssa")
	if err := p.EmitQBE(out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"export function w $main()", "export function w $lib.one()", "call $lib.one()"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output lacks %q:\n%s", want, data)
		}
	}
}

func TestSaveAST(t *testing.T) {
	ctx, dir := newContext(t, `
-- main.pl --
module "main";

main :: () -> i32 {
	return 0;
}
`)
	ctx.Config.SaveAST = true

	if err := New(ctx).Run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, diagnosticText(ctx))
	}
	data, err := os.ReadFile(filepath.Join(dir, "main.ast.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Module": "main"`) {
		t.Errorf("unexpected AST dump:\n%s", data)
	}
}
