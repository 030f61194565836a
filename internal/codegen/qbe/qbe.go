// Package qbe serializes a mir.Module as QBE intermediate language.
//
// Every IR value becomes a QBE temporary named after its id (%t<id>);
// helper temporaries the emitter needs are numbered separately (%q<n>).
// Integers narrower than 32 bits live in word temporaries and are kept
// extended according to their signedness, so comparisons and division see
// the same value the IR type describes.
package qbe

import (
	"fmt"
	"strings"

	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/types"
)

type Generator struct {
	mod    *mir.Module
	layout *mir.DataLayout

	typeDefs strings.Builder
	data     strings.Builder
	buf      strings.Builder

	// aggregate type names, keyed by types.Type.String()
	aggregates map[string]string
	arrayID    int

	fn     *mir.Function
	tempID int
	errs   []error
}

// New prepares a generator for mod. A nil layout uses the 64-bit default.
func New(mod *mir.Module, layout *mir.DataLayout) *Generator {
	if layout == nil {
		layout = mir.NewDataLayout(0)
	}
	return &Generator{
		mod:        mod,
		layout:     layout,
		aggregates: make(map[string]string),
	}
}

// Emit returns the QBE text of the whole module.
func (g *Generator) Emit() (string, error) {
	if g.mod == nil {
		return "", fmt.Errorf("qbe: missing MIR module")
	}

	for _, s := range g.mod.Structs {
		g.structType(s)
	}
	for _, d := range g.mod.Data {
		g.emitData(d)
	}
	for _, fn := range g.mod.Functions {
		if fn.External {
			continue
		}
		g.emitFunction(fn)
	}
	if len(g.errs) > 0 {
		return "", fmt.Errorf("qbe: %w", g.errs[0])
	}

	var out strings.Builder
	for _, part := range []*strings.Builder{&g.typeDefs, &g.data} {
		if part.Len() > 0 {
			out.WriteString(part.String())
			out.WriteString("\n")
		}
	}
	out.WriteString(g.buf.String())
	return out.String(), nil
}

// structType defines s, and every aggregate it embeds, once.
func (g *Generator) structType(s *types.Struct) string {
	key := types.StructOf(s).String()
	if name, ok := g.aggregates[key]; ok {
		return name
	}
	name := ":" + symbol(s.QualifiedName())
	g.aggregates[key] = name
	g.layout.LayoutStruct(s)

	items := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		items = append(items, g.fieldItem(field.Type))
	}
	fmt.Fprintf(&g.typeDefs, "type %s = align %d { %s }\n", name, s.Align, strings.Join(items, ", "))
	return name
}

// arrayType names an array shape for use as a parameter or return type.
func (g *Generator) arrayType(t types.Type) string {
	key := t.String()
	if name, ok := g.aggregates[key]; ok {
		return name
	}
	item := g.fieldItem(t)
	g.arrayID++
	name := fmt.Sprintf(":arr.%d", g.arrayID)
	g.aggregates[key] = name
	fmt.Fprintf(&g.typeDefs, "type %s = align %d { %s }\n", name, g.layout.AlignOf(t), item)
	return name
}

// fieldItem is the member list entry for a value of t inside an aggregate.
// Arrays flatten to their innermost element with a count.
func (g *Generator) fieldItem(t types.Type) string {
	count := 1
	for t.IsArray() {
		count *= t.Len
		t = *t.Elem
	}
	var item string
	switch {
	case t.IsStruct():
		item = g.structType(t.Struct)
	default:
		item = memType(t)
	}
	if count != 1 {
		return fmt.Sprintf("%s %d", item, count)
	}
	return item
}

func (g *Generator) emitData(d *mir.Data) {
	parts := make([]string, 0, 2)
	if text := d.Bytes[:len(d.Bytes)-1]; len(text) > 0 && printable(text) {
		parts = append(parts, fmt.Sprintf("b %q", string(text)))
	} else {
		for _, c := range text {
			parts = append(parts, fmt.Sprintf("b %d", c))
		}
	}
	parts = append(parts, "b 0")
	fmt.Fprintf(&g.data, "data $%s = { %s }\n", symbol(d.Name), strings.Join(parts, ", "))
}

func (g *Generator) emitFunction(fn *mir.Function) {
	g.fn = fn
	g.tempID = 0

	g.buf.WriteString("export function")
	if !fn.Return.IsVoid() {
		g.buf.WriteString(" " + g.abiType(fn.Return))
	}
	g.buf.WriteString(" $" + symbol(fn.Name) + "(")
	for i, param := range fn.Params {
		if i > 0 {
			g.buf.WriteString(", ")
		}
		g.buf.WriteString(g.abiType(param.Type) + " " + valueName(param.ID))
	}
	if fn.Variadic {
		if len(fn.Params) > 0 {
			g.buf.WriteString(", ")
		}
		g.buf.WriteString("...")
	}
	g.buf.WriteString(") {\n")

	// Allocas move to the entry block so a slot inside a loop body is
	// reserved once.
	var allocas []*mir.Alloca
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			if a, ok := instr.(*mir.Alloca); ok {
				allocas = append(allocas, a)
			}
		}
	}

	for i, block := range fn.Blocks {
		g.buf.WriteString(blockName(block.ID) + "\n")
		if i == 0 {
			for _, a := range allocas {
				g.emitAlloca(a)
			}
		}
		for _, instr := range block.Instrs {
			if _, ok := instr.(*mir.Alloca); ok {
				continue
			}
			g.emitInstr(instr)
		}
		g.emitTerm(block.Term)
	}
	g.buf.WriteString("}\n\n")
	g.fn = nil
}

func (g *Generator) emitTerm(term mir.Term) {
	switch t := term.(type) {
	case *mir.Return:
		if t.HasValue {
			g.emitLine(fmt.Sprintf("ret %s", valueName(t.Value)))
			return
		}
		g.emitLine("ret")
	case *mir.Br:
		g.emitLine(fmt.Sprintf("jmp %s", blockName(t.Target)))
	case *mir.CondBr:
		g.emitLine(fmt.Sprintf("jnz %s, %s, %s", valueName(t.Cond), blockName(t.Then), blockName(t.Else)))
	case *mir.Unreachable, nil:
		g.emitLine("hlt")
	default:
		g.fail(fmt.Errorf("unsupported terminator %T", term))
	}
}

func (g *Generator) emitLine(line string) {
	g.buf.WriteString("\t")
	g.buf.WriteString(line)
	g.buf.WriteString("\n")
}

func (g *Generator) newTemp() string {
	g.tempID++
	return fmt.Sprintf("%%q%d", g.tempID)
}

func (g *Generator) fail(err error) {
	if g.fn != nil {
		err = fmt.Errorf("%s: %w", g.fn.Name, err)
	}
	g.errs = append(g.errs, err)
}

func valueName(id mir.ValueID) string {
	return fmt.Sprintf("%%t%d", id)
}

func blockName(id mir.BlockID) string {
	return fmt.Sprintf("@b%d", id)
}

// symbol turns IR names into QBE identifiers. Module separators are dots.
func symbol(name string) string {
	return strings.ReplaceAll(name, ":", ".")
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c >= 0x7f || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}
