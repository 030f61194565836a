package diagnostics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/source"
)

func at(file string, line, col int) source.Location {
	return source.NewLocation(file,
		source.Position{Line: line, Column: col},
		source.Position{Line: line, Column: col + 1})
}

func TestDiagnosticError(t *testing.T) {
	tests := []struct {
		name string
		diag *Diagnostic
		want string
	}{
		{
			name: "expected token",
			diag: Expected(at("main.pl", 2, 14), "expected ';'", "}"),
			want: "main.pl:2:14: expected ';', received: }",
		},
		{
			name: "no received value",
			diag: UndefinedSymbol(at("lib.pl", 7, 3), "variable", "x"),
			want: "lib.pl:7:3: undefined variable: x",
		},
		{
			name: "file only",
			diag: &Diagnostic{Message: "cannot read", FilePath: "gone.pl"},
			want: "gone.pl: cannot read",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.diag.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUndefinedSymbolCodes(t *testing.T) {
	loc := at("a.pl", 1, 1)
	cases := map[string]string{
		"function": ErrUndefinedFunction,
		"struct":   ErrUndefinedStruct,
		"module":   ErrUndefinedModule,
		"variable": ErrUndefinedSymbol,
	}
	for kind, code := range cases {
		if got := UndefinedSymbol(loc, kind, "x").Code; got != code {
			t.Errorf("UndefinedSymbol(%s).Code = %s, want %s", kind, got, code)
		}
	}
}

func TestSecondaryLabelRequiresPrimary(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when adding a secondary label first")
		}
	}()
	NewError("x").WithSecondaryLabel(at("a.pl", 1, 1), "")
}

func TestPrimaryLabelIsKeptFirst(t *testing.T) {
	d := NewError("x").WithPrimaryLabel(at("a.pl", 1, 1), "first")
	d.WithPrimaryLabel(at("a.pl", 9, 9), "second")
	if len(d.Labels) != 1 || d.Labels[0].Message != "first" {
		t.Errorf("labels = %+v", d.Labels)
	}
}

func TestEmitterPointsAtColumn(t *testing.T) {
	old := colors.Enabled
	colors.Enabled = false
	defer func() { colors.Enabled = old }()

	bag := NewDiagnosticBag()
	bag.AddSourceContent("main.pl", "module \"main\";\nlet x: i32 = 5\n}")
	bag.Add(Expected(at("main.pl", 2, 15), "expected ';'", "}"))

	out := bag.EmitAllToString()
	for _, want := range []string{
		"error[P0002]: main.pl:2:15: expected ';', received: }",
		"--> main.pl:2:15",
		"2 | let x: i32 = 5",
		"  |               ^",
		"Compilation failed with 1 error",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSourceCacheReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.pl")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	line, err := NewSourceCache().GetLine(path, 2)
	if err != nil || line != "two" {
		t.Errorf("GetLine = %q, %v", line, err)
	}
}
