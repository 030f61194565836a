package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/codegen"
	"github.com/vasiltop/compiler/internal/codegen/qbe"
	"github.com/vasiltop/compiler/internal/context_v2"
	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/mirgen"
	"github.com/vasiltop/compiler/internal/phase"
)

// ErrFailed is returned once the diagnostics bag holds errors.
var ErrFailed = errors.New("compilation failed with errors")

// Pipeline coordinates the compilation process
type Pipeline struct {
	ctx    *context_v2.CompilerContext
	module *mir.Module
}

// New creates a new compilation pipeline
func New(ctx *context_v2.CompilerContext) *Pipeline {
	return &Pipeline{
		ctx: ctx,
	}
}

// Module is the generated IR, nil until Generate succeeds.
func (p *Pipeline) Module() *mir.Module {
	return p.module
}

// Run parses the entry file with everything it imports and lowers the
// result to IR.
func (p *Pipeline) Run() error {
	if err := p.Parse(); err != nil {
		return err
	}
	return p.Generate()
}

// Parse reads the entry file and, depth first, every file it imports.
// Each file is parsed exactly once.
func (p *Pipeline) Parse() error {
	if p.ctx.Debug {
		colors.CYAN.Printf("\n[Phase 1] Lex + Parse\n")
	}

	entry := p.ctx.EntryPoint
	if entry == "" {
		return errors.New("no entry point set")
	}

	p.ctx.Claim(entry, context_v2.ModuleLocal)
	if err := p.parseFile(entry); err != nil {
		p.ctx.ReportError(err)
	}

	if p.ctx.HasErrors() {
		return ErrFailed
	}
	return nil
}

// Generate defines every function and struct across the parsed files,
// then lowers the bodies.
func (p *Pipeline) Generate() error {
	if p.ctx.Debug {
		colors.CYAN.Printf("\n[Phase 2] IR Generation\n")
	}

	mod, err := mirgen.Generate(p.ctx.Files())
	if err != nil {
		p.ctx.ReportError(err)
		return ErrFailed
	}
	p.module = mod

	p.ctx.AdvanceAll(phase.PhaseDefined)
	p.ctx.AdvanceAll(phase.PhaseLowered)

	if p.ctx.Debug {
		for _, fn := range mod.Functions {
			if !fn.External {
				colors.PURPLE.Printf("  ✓ %s\n", fn.Name)
			}
		}
		colors.GREY.Println(mir.FormatModule(mod))
	}
	return nil
}

// Build turns the generated IR into an executable: QBE text, assembly,
// then a link through the C compiler.
func (p *Pipeline) Build() (codegen.Artifacts, error) {
	artifacts := codegen.ArtifactsFor(p.ctx.OutputPath())
	if p.module == nil {
		return artifacts, errors.New("nothing to build: IR was not generated")
	}
	if err := p.ensureEntryMain(); err != nil {
		return artifacts, err
	}

	if p.ctx.Debug {
		colors.CYAN.Printf("\n[Phase 3] QBE Emission\n")
	}
	if err := p.EmitQBE(artifacts.SSA); err != nil {
		return artifacts, err
	}

	if p.ctx.Debug {
		colors.CYAN.Printf("\n[Phase 4] Assemble + Link\n")
	}
	if err := qbe.Run(p.ctx, artifacts.SSA, artifacts.Asm); err != nil {
		p.ctx.ReportError(err)
		return artifacts, err
	}

	opts := codegen.DefaultBuildOptions()
	opts.OutputPath = artifacts.Executable
	opts.Debug = p.ctx.Debug
	if err := codegen.BuildExecutable(p.ctx, []string{artifacts.Asm}, opts); err != nil {
		p.ctx.ReportError(fmt.Errorf("build failed: %w", err))
		return artifacts, err
	}

	if !p.ctx.Config.KeepIntermediates {
		if err := artifacts.RemoveIntermediates(); err != nil && p.ctx.Debug {
			colors.YELLOW.Printf("  ⚠ Could not remove intermediates: %v\n", err)
		}
	} else if p.ctx.Debug {
		colors.CYAN.Printf("  ℹ Keeping %s and %s\n", artifacts.SSA, artifacts.Asm)
	}

	p.ctx.AdvanceAll(phase.PhaseCodeGen)

	if p.ctx.Debug {
		colors.GREEN.Printf("\n✓ Compilation successful! (%d files)\n", p.ctx.ModuleCount())
	}
	return artifacts, nil
}

// EmitQBE writes the generated IR as QBE text to path.
func (p *Pipeline) EmitQBE(path string) error {
	if p.module == nil {
		return errors.New("nothing to emit: IR was not generated")
	}
	text, err := qbe.New(p.module, nil).Emit()
	if err != nil {
		p.ctx.ReportError(err)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if p.ctx.Debug {
		colors.PURPLE.Printf("  ✓ %s\n", path)
	}
	return nil
}
