package pipeline

import (
	"errors"

	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/mirgen"
)

var errNoMain = errors.New("missing entry point: function 'main' not found")

// ensureEntryMain checks that the entry file defines main before anything
// is handed to the backend.
func (p *Pipeline) ensureEntryMain() error {
	module, ok := p.ctx.GetModule(p.ctx.EntryPoint)
	if !ok || module.AST == nil {
		return errNoMain
	}
	if module.AST.Functions[mirgen.EntryFunction] {
		if fn, ok := p.module.Function(mirgen.EntryFunction); ok && len(fn.Blocks) > 0 {
			return nil
		}
	}

	diag := diagnostics.NewError(errNoMain.Error()).
		WithPrimaryLabel(module.AST.Location, "").
		WithHelp("add `main :: () -> i32 { return 0; }` to " + module.Name)
	p.ctx.Diagnostics.Add(diag)
	return errNoMain
}
