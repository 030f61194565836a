package mir

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FormatModule returns a readable text representation of the module.
func FormatModule(mod *Module) string {
	if mod == nil {
		return ""
	}

	var b strings.Builder
	if mod.Name != "" {
		fmt.Fprintf(&b, "module %s\n", mod.Name)
	} else {
		b.WriteString("module <unknown>\n")
	}

	for _, st := range mod.Structs {
		fields := make([]string, 0, len(st.Fields))
		for _, f := range st.Fields {
			fields = append(fields, fmt.Sprintf("%s: %s", f.Name, f.Type))
		}
		fmt.Fprintf(&b, "type %s = { %s }\n", st.QualifiedName(), strings.Join(fields, ", "))
	}
	for _, d := range mod.Data {
		fmt.Fprintf(&b, "data %s = %s\n", d.Name, strconv.Quote(string(d.Bytes[:len(d.Bytes)-1])))
	}

	for _, fn := range mod.Functions {
		b.WriteString("\n")
		writeFunction(&b, fn)
	}

	return b.String()
}

// WriteModuleFile writes the formatted module to disk.
func WriteModuleFile(mod *Module, path string) error {
	if mod == nil || path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(FormatModule(mod)), 0644)
}

func writeFunction(b *strings.Builder, fn *Function) {
	if fn.External {
		b.WriteString("extern ")
	}
	fmt.Fprintf(b, "fn %s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if fn.External {
			fmt.Fprintf(b, "%s: %s", param.Name, param.Type)
		} else {
			fmt.Fprintf(b, "%s %s: %s", formatValue(param.ID), param.Name, param.Type)
		}
	}
	if fn.Variadic {
		if len(fn.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	fmt.Fprintf(b, ") -> %s", fn.Return)
	if fn.External {
		b.WriteString("\n")
		return
	}
	b.WriteString(" {\n")
	for _, block := range fn.Blocks {
		writeBlock(b, block)
	}
	b.WriteString("}\n")
}

func writeBlock(b *strings.Builder, block *Block) {
	if block.Name != "" {
		fmt.Fprintf(b, "  block b%d %s:\n", block.ID, block.Name)
	} else {
		fmt.Fprintf(b, "  block b%d:\n", block.ID)
	}

	for _, instr := range block.Instrs {
		fmt.Fprintf(b, "    %s\n", formatInstr(instr))
	}

	if block.Term != nil {
		fmt.Fprintf(b, "    %s\n", formatTerm(block.Term))
	} else {
		b.WriteString("    term <nil>\n")
	}
}

func formatInstr(instr Instr) string {
	switch i := instr.(type) {
	case *Const:
		return formatAssign(i.Result, fmt.Sprintf("const %s %d", i.Type, i.Value))
	case *DataAddr:
		return formatAssign(i.Result, fmt.Sprintf("data_addr %s", i.Name))
	case *Binary:
		return formatAssign(i.Result, fmt.Sprintf("%s %s %s, %s", binaryName(i.Op), i.Type, formatValue(i.Left), formatValue(i.Right)))
	case *Unary:
		return formatAssign(i.Result, fmt.Sprintf("%s %s %s", unaryName(i.Op), i.Type, formatValue(i.X)))
	case *Cast:
		return formatAssign(i.Result, fmt.Sprintf("%s %s %s to %s", i.Op, i.From, formatValue(i.X), i.To))
	case *Alloca:
		return formatAssign(i.Result, fmt.Sprintf("alloca %s", i.Type))
	case *Load:
		return formatAssign(i.Result, fmt.Sprintf("load %s %s", i.Type, formatValue(i.Addr)))
	case *Store:
		return fmt.Sprintf("store %s %s, %s", i.Type, formatValue(i.Addr), formatValue(i.Value))
	case *Copy:
		return fmt.Sprintf("copy %s %s, %s", i.Type, formatValue(i.Dst), formatValue(i.Src))
	case *FieldAddr:
		return formatAssign(i.Result, fmt.Sprintf("field_addr %s %s, %d", i.Struct.QualifiedName(), formatValue(i.Base), i.Index))
	case *ElemAddr:
		return formatAssign(i.Result, fmt.Sprintf("elem_addr %s %s, %s", i.Elem, formatValue(i.Base), formatValue(i.Index)))
	case *PtrOffset:
		return formatAssign(i.Result, fmt.Sprintf("ptr_offset %s %s, %s", i.Elem, formatValue(i.Base), formatValue(i.Offset)))
	case *Call:
		return formatAssign(i.Result, fmt.Sprintf("call %s(%s) : %s", i.Target.Name, formatValues(i.Args), i.Type))
	default:
		return "instr <unknown>"
	}
}

func formatTerm(term Term) string {
	switch t := term.(type) {
	case *Return:
		if t.HasValue {
			return fmt.Sprintf("ret %s", formatValue(t.Value))
		}
		return "ret"
	case *Br:
		return fmt.Sprintf("br %s", formatBlock(t.Target))
	case *CondBr:
		return fmt.Sprintf("br_if %s, %s, %s", formatValue(t.Cond), formatBlock(t.Then), formatBlock(t.Else))
	case *Unreachable:
		return "unreachable"
	default:
		return "term <unknown>"
	}
}

func formatAssign(result ValueID, body string) string {
	if result == InvalidValue {
		return body
	}
	return fmt.Sprintf("%s = %s", formatValue(result), body)
}

func formatValue(id ValueID) string {
	if id == InvalidValue {
		return "%<invalid>"
	}
	return fmt.Sprintf("%%t%d", id)
}

func formatBlock(id BlockID) string {
	if id == InvalidBlock {
		return "b<invalid>"
	}
	return fmt.Sprintf("b%d", id)
}

func formatValues(values []ValueID) string {
	parts := make([]string, 0, len(values))
	for _, id := range values {
		parts = append(parts, formatValue(id))
	}
	return strings.Join(parts, ", ")
}
