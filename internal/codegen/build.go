package codegen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/context_v2"
	utilsfs "github.com/vasiltop/compiler/internal/utils/fs"
)

// BuildOptions configures how to build the executable
type BuildOptions struct {
	Compiler   string   // C compiler driver used to assemble and link
	Flags      []string // Flags before the inputs
	Libs       []string // Libraries after the inputs
	OutputPath string   // Output executable path
	Debug      bool
}

// DefaultBuildOptions returns default build options. The compiler driver
// comes from COMPILER_CC, then CC, then cc; COMPILER_CC_FLAGS adds flags.
func DefaultBuildOptions() *BuildOptions {
	compiler := os.Getenv("COMPILER_CC")
	if compiler == "" {
		compiler = os.Getenv("CC")
	}
	if compiler == "" {
		compiler = "cc"
	}

	var flags []string
	switch runtime.GOOS {
	case "linux":
		flags = append(flags, "-no-pie")
	case "darwin":
		flags = append(flags, "-Wl,-no_pie")
	case "openbsd":
		flags = append(flags, "-nopie")
	}
	flags = append(flags, strings.Fields(os.Getenv("COMPILER_CC_FLAGS"))...)

	return &BuildOptions{
		Compiler: compiler,
		Flags:    flags,
		Libs:     []string{"-lm"},
	}
}

// BuildExecutable assembles the QBE assembly files and links them against
// the C library.
func BuildExecutable(ctx *context_v2.CompilerContext, asmFiles []string, opts *BuildOptions) error {
	if opts == nil {
		opts = DefaultBuildOptions()
	}
	outputPath := opts.OutputPath
	if outputPath == "" {
		return fmt.Errorf("output path must be specified")
	}
	if opts.Compiler == "" {
		return fmt.Errorf("C compiler must be specified")
	}

	inputs := make([]string, 0, len(asmFiles))
	for _, asmFile := range asmFiles {
		if strings.TrimSpace(asmFile) == "" {
			continue
		}
		if !utilsfs.IsValidFile(asmFile) {
			return fmt.Errorf("assembly file not found: %s", asmFile)
		}
		inputs = append(inputs, asmFile)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("nothing to link")
	}
	if dir := filepath.Dir(outputPath); !utilsfs.IsDir(dir) {
		return fmt.Errorf("output directory does not exist: %s", dir)
	}

	args := append([]string{}, opts.Flags...)
	args = append(args, "-o", outputPath)
	args = append(args, inputs...)
	args = append(args, opts.Libs...)

	debug := opts.Debug || (ctx != nil && ctx.Debug)
	if debug {
		colors.CYAN.Printf("Linking executable: %s %v\n", opts.Compiler, args)
	}

	cmd := exec.Command(opts.Compiler, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("linking failed: %w", err)
	}

	if debug {
		colors.GREEN.Printf("  ✓ Built: %s\n", outputPath)
	}
	return nil
}
