package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/frontend/lexer"
	"github.com/vasiltop/compiler/internal/frontend/parser"
	"github.com/vasiltop/compiler/internal/phase"
	"github.com/vasiltop/compiler/internal/source"
	utilsfs "github.com/vasiltop/compiler/internal/utils/fs"
)

// parseFile lexes and parses a claimed file. Imports are followed while the
// file is being parsed, so a file's dependencies are claimed before the
// declarations that use them.
func (p *Pipeline) parseFile(path string) error {
	content, err := p.ctx.ReadSource(path)
	if err != nil {
		return err
	}

	var tokenDump io.Writer
	if p.ctx.Debug {
		tokenDump = os.Stdout
	}
	toks := lexer.New(path, content).Tokenize(tokenDump)
	if !p.ctx.AdvanceModulePhase(path, phase.PhaseLexed) {
		return fmt.Errorf("cannot advance %s to %s", path, phase.PhaseLexed)
	}

	file, err := parser.Parse(toks, path, p.resolveImport)
	if err != nil {
		return err
	}
	p.ctx.SetAST(path, file)

	if p.ctx.Config.SaveAST {
		if err := saveAST(file); err != nil {
			return err
		}
	}

	if !p.ctx.AdvanceModulePhase(path, phase.PhaseParsed) {
		return fmt.Errorf("cannot advance %s to %s", path, phase.PhaseParsed)
	}

	if p.ctx.Debug {
		colors.PURPLE.Printf("  ✓ %s (module %s)\n", path, file.Module)
	}
	return nil
}

// resolveImport is the parser's import handler. A file seen for the first
// time is parsed before the importer continues.
func (p *Pipeline) resolveImport(importer, target string, loc source.Location) (string, error) {
	path, kind, err := p.ctx.ResolveImport(importer, target)
	if err != nil {
		return "", diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrModuleNotFound).
			WithPrimaryLabel(loc, "imported here")
	}

	if p.ctx.Claim(path, kind) {
		if err := p.parseFile(path); err != nil {
			return "", err
		}
	}
	return path, nil
}

// saveAST writes the tree next to its source as <name>.ast.json.
func saveAST(file *ast.File) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode AST of %s: %w", file.Path, err)
	}
	out := utilsfs.ReplaceExt(file.Path, ".ast.json")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}
