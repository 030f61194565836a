package context_v2

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/phase"
	"github.com/vasiltop/compiler/internal/testutil"
)

func TestNewContextDefaults(t *testing.T) {
	t.Setenv("COMPILER_STD", "")
	ctx := New(nil, false)

	if ctx.Config.Extension != ".pl" {
		t.Errorf("Expected extension '.pl', got %q", ctx.Config.Extension)
	}
	if ctx.Config.StdRoot != DefaultStdRoot {
		t.Errorf("Expected std root %q, got %q", DefaultStdRoot, ctx.Config.StdRoot)
	}
	if ctx.Config.Target == "" {
		t.Error("Expected a default target")
	}
}

func TestStdRootFromEnvironment(t *testing.T) {
	t.Setenv("COMPILER_STD", "/custom/std")
	ctx := New(&Config{}, false)
	if ctx.Config.StdRoot != "/custom/std" {
		t.Errorf("Expected std root from environment, got %q", ctx.Config.StdRoot)
	}
}

func TestResolveImport(t *testing.T) {
	dir := testutil.TempArchive(t, `
-- main.pl --
module "main";
-- lib/util.pl --
module "util";
-- std/io.pl --
module "io";
`)
	ctx := New(&Config{StdRoot: filepath.Join(dir, "std")}, false)
	importer := filepath.Join(dir, "main.pl")

	tests := []struct {
		name   string
		target string
		want   string
		kind   ModuleType
	}{
		{"relative", "lib/util", filepath.Join(dir, "lib", "util.pl"), ModuleLocal},
		{"dot relative", "./lib/../lib/util", filepath.Join(dir, "lib", "util.pl"), ModuleLocal},
		{"std", "std:io", filepath.Join(dir, "std", "io.pl"), ModuleBuiltin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind, err := ctx.ResolveImport(importer, tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
			if kind != tt.kind {
				t.Errorf("Expected kind %v, got %v", tt.kind, kind)
			}
		})
	}
}

func TestResolveImportMissing(t *testing.T) {
	dir := t.TempDir()
	ctx := New(nil, false)

	_, _, err := ctx.ResolveImport(filepath.Join(dir, "main.pl"), "nothere")
	if err == nil || !strings.Contains(err.Error(), "module not found") {
		t.Fatalf("Expected module not found error, got %v", err)
	}
}

func TestResolveImportOverlay(t *testing.T) {
	ctx := New(nil, false)
	path := filepath.Join(t.TempDir(), "virtual.pl")
	ctx.Config.Overlay[path] = `module "virtual";`

	got, _, err := ctx.ResolveImport(filepath.Join(filepath.Dir(path), "main.pl"), "virtual")
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}
}

func TestClaimIsIdempotent(t *testing.T) {
	ctx := New(nil, false)

	if !ctx.Claim("/a.pl", ModuleLocal) {
		t.Fatal("first claim should succeed")
	}
	if !ctx.Claim("/b.pl", ModuleLocal) {
		t.Fatal("claim of a new path should succeed")
	}
	if ctx.Claim("/a.pl", ModuleLocal) {
		t.Error("second claim of the same path should fail")
	}
	if ctx.ModuleCount() != 2 {
		t.Errorf("Expected 2 modules, got %d", ctx.ModuleCount())
	}

	paths := ctx.Paths()
	if paths[0] != "/a.pl" || paths[1] != "/b.pl" {
		t.Errorf("Expected claim order, got %v", paths)
	}
}

func TestFilesInClaimOrder(t *testing.T) {
	ctx := New(nil, false)
	for _, p := range []string{"/c.pl", "/a.pl", "/b.pl"} {
		ctx.Claim(p, ModuleLocal)
		ctx.SetAST(p, &ast.File{Path: p, Module: strings.TrimSuffix(filepath.Base(p), ".pl")})
	}

	files := ctx.Files()
	var got []string
	for _, f := range files {
		got = append(got, f.Module)
	}
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("Expected c,a,b, got %v", got)
	}
	if ctx.ModuleName("/a.pl") != "a" {
		t.Errorf("Expected module name a, got %q", ctx.ModuleName("/a.pl"))
	}
}

func TestReadSourceUsesOverlay(t *testing.T) {
	ctx := New(nil, false)
	path := filepath.Join(t.TempDir(), "main.pl")
	if err := ctx.SetEntryPointWithCode(`module "main";`, path); err != nil {
		t.Fatal(err)
	}
	ctx.Claim(ctx.EntryPoint, ModuleLocal)

	content, err := ctx.ReadSource(ctx.EntryPoint)
	if err != nil {
		t.Fatal(err)
	}
	if content != `module "main";` {
		t.Errorf("unexpected content %q", content)
	}
}

func TestSetEntryPointMissing(t *testing.T) {
	ctx := New(nil, false)
	if err := ctx.SetEntryPoint(filepath.Join(t.TempDir(), "missing.pl")); err == nil {
		t.Error("Expected error for missing entry point")
	}
}

func TestModulePhaseTracking(t *testing.T) {
	ctx := New(nil, false)
	ctx.Claim("/m.pl", ModuleLocal)

	phases := []phase.ModulePhase{
		phase.PhaseNotStarted,
		phase.PhaseLexed,
		phase.PhaseParsed,
		phase.PhaseDefined,
		phase.PhaseLowered,
		phase.PhaseCodeGen,
	}

	for i := 1; i < len(phases); i++ {
		if got := ctx.GetModulePhase("/m.pl"); got != phases[i-1] {
			t.Fatalf("Expected phase %v, got %v", phases[i-1], got)
		}
		if i < len(phases)-1 && ctx.AdvanceModulePhase("/m.pl", phase.PhaseCodeGen) {
			t.Fatalf("skipping to CodeGen from %v should fail", phases[i-1])
		}
		if !ctx.AdvanceModulePhase("/m.pl", phases[i]) {
			t.Fatalf("Expected to advance to %v", phases[i])
		}
	}
}

func TestOutputPath(t *testing.T) {
	ctx := New(&Config{OutputPath: "/tmp/out"}, false)
	if ctx.OutputPath() != "/tmp/out" {
		t.Errorf("Expected configured output path, got %q", ctx.OutputPath())
	}
}
