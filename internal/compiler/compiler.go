package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/codegen"
	"github.com/vasiltop/compiler/internal/codegen/qbe"
	"github.com/vasiltop/compiler/internal/context_v2"
	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/mir/interp"
	"github.com/vasiltop/compiler/internal/mirgen"
	"github.com/vasiltop/compiler/internal/pipeline"
	utilsfs "github.com/vasiltop/compiler/internal/utils/fs"
)

// Mode selects how far compilation goes and what it leaves behind.
type Mode int

const (
	Build    Mode = iota // Link an executable
	Check                // Parse and generate IR, write nothing
	EmitIR               // Write the textual IR (.mir)
	EmitQBE              // Write QBE input (.ssa)
	Assemble             // Write assembly (.s)
	Run                  // Interpret main in-process
)

// Options for compilation
type Options struct {
	// For file-based compilation
	EntryFile string
	// For in-memory compilation; compiled as if it lived at VirtualPath
	Code        string
	VirtualPath string

	Mode    Mode
	Debug   bool
	SaveAST bool

	StdRoot string
	// Output path; for Build the executable, otherwise the emitted file.
	// Derived from the entry file when empty.
	OutputPath        string
	KeepIntermediates bool

	// Diagnostics are written here when set.
	Diagnostics io.Writer
	// Program output in Run mode; os.Stdout when nil.
	Stdout io.Writer
}

// Result of compilation
type Result struct {
	Success bool
	// Diagnostics as plain text
	Output string
	// Files written
	Artifacts []string
	// Status returned by main in Run mode
	ExitCode int
}

// Compile compiles opts.EntryFile (or opts.Code) according to opts.Mode.
func Compile(opts Options) Result {
	config := &context_v2.Config{
		StdRoot:           opts.StdRoot,
		SaveAST:           opts.SaveAST,
		Debug:             opts.Debug,
		KeepIntermediates: opts.KeepIntermediates,
	}
	if opts.Mode == Build && opts.OutputPath != "" {
		config.OutputPath = absolute(opts.OutputPath)
	}

	ctx := context_v2.New(config, opts.Debug)

	var err error
	if opts.Code != "" {
		virtual := opts.VirtualPath
		if virtual == "" {
			virtual = "main" + ctx.Config.Extension
		}
		err = ctx.SetEntryPointWithCode(opts.Code, virtual)
	} else {
		err = ctx.SetEntryPoint(opts.EntryFile)
	}
	if err != nil {
		ctx.ReportError(fmt.Errorf("failed to set entry point: %w", err))
		return finish(ctx, opts, Result{})
	}

	p := pipeline.New(ctx)
	if err := p.Run(); err != nil {
		if !ctx.HasErrors() {
			ctx.ReportError(err)
		}
		return finish(ctx, opts, Result{})
	}
	if opts.Debug {
		p.PrintSummary()
	}

	result := Result{}
	switch opts.Mode {
	case Check:
	case EmitIR:
		out := outputFor(ctx, opts, ".mir")
		err = mir.WriteModuleFile(p.Module(), out)
		result.Artifacts = []string{out}
	case EmitQBE:
		out := outputFor(ctx, opts, ".ssa")
		err = p.EmitQBE(out)
		result.Artifacts = []string{out}
	case Assemble:
		out := outputFor(ctx, opts, ".s")
		err = assemble(ctx, p, out)
		result.Artifacts = []string{out}
	case Run:
		result.ExitCode, err = interpret(p.Module(), opts.Stdout)
	default:
		var artifacts codegen.Artifacts
		artifacts, err = p.Build()
		result.Artifacts = []string{artifacts.Executable}
		if ctx.Config.KeepIntermediates {
			result.Artifacts = append(result.Artifacts, artifacts.SSA, artifacts.Asm)
		}
	}
	if err != nil {
		result.Artifacts = nil
		if !ctx.HasErrors() {
			ctx.ReportError(err)
		}
	}
	return finish(ctx, opts, result)
}

// finish emits the diagnostics and fills in Success and Output.
func finish(ctx *context_v2.CompilerContext, opts Options, result Result) Result {
	if opts.Diagnostics != nil {
		ctx.Diagnostics.EmitAll(opts.Diagnostics)
	}
	result.Success = !ctx.HasErrors()
	if !result.Success {
		result.Output = colors.StripANSI(ctx.Diagnostics.EmitAllToString())
	}
	return result
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// outputFor is the explicit output path, or the entry file with ext.
func outputFor(ctx *context_v2.CompilerContext, opts Options, ext string) string {
	if opts.OutputPath != "" {
		return absolute(opts.OutputPath)
	}
	return utilsfs.ReplaceExt(ctx.EntryPoint, ext)
}

// assemble writes QBE text next to out and runs qbe on it.
func assemble(ctx *context_v2.CompilerContext, p *pipeline.Pipeline, out string) error {
	ssa := utilsfs.ReplaceExt(out, ".ssa")
	if err := p.EmitQBE(ssa); err != nil {
		return err
	}
	err := qbe.Run(ctx, ssa, out)
	if !ctx.Config.KeepIntermediates {
		if rmErr := os.Remove(ssa); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}

func interpret(mod *mir.Module, stdout io.Writer) (int, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	return interp.New(mod, interp.WithOutput(stdout)).Run(mirgen.EntryFunction)
}
