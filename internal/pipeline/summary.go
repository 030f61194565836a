package pipeline

import (
	"fmt"

	"github.com/vasiltop/compiler/colors"
)

// PrintSummary prints a summary of the compilation
func (p *Pipeline) PrintSummary() {
	fmt.Println()
	colors.CYAN.Println("═══════════════════════════════════════")
	colors.CYAN.Println("        COMPILATION SUMMARY")
	colors.CYAN.Println("═══════════════════════════════════════")

	fmt.Printf("Entry File: %s\n", p.ctx.EntryPoint)
	fmt.Printf("Total Files: %d\n\n", p.ctx.ModuleCount())

	for _, path := range p.ctx.Paths() {
		if module, exists := p.ctx.GetModule(path); exists {
			fmt.Printf(" - %s [%s] (%s, %s)\n", path, module.Name, module.Type, module.Phase)
		}
	}

	if p.module != nil {
		defined := 0
		for _, fn := range p.module.Functions {
			if len(fn.Blocks) > 0 {
				defined++
			}
		}
		fmt.Printf("\nFunctions: %d defined, %d external\n", defined, len(p.module.Functions)-defined)
		fmt.Printf("Structs: %d\n", len(p.module.Structs))
	}
}
