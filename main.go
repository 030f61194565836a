package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/compiler"
)

const version = "0.1.0"

func main() {
	// Define flags
	debug := flag.Bool("d", false, "Enable debug output")
	showVersion := flag.Bool("v", false, "Show version")
	flag.BoolVar(debug, "debug", false, "Enable debug output")
	flag.BoolVar(showVersion, "version", false, "Show version")

	output := flag.String("o", "", "Output path (executable, or the emitted file)")
	emitIR := flag.Bool("emit-ir", false, "Write the textual IR (.mir) and stop")
	emitQBE := flag.Bool("emit-qbe", false, "Write the QBE input (.ssa) and stop")
	assembly := flag.Bool("S", false, "Write assembly (.s) and stop")
	run := flag.Bool("run", false, "Interpret main instead of building")
	check := flag.Bool("check", false, "Only parse and generate IR")
	stdRoot := flag.String("std", "", "Root directory for std: imports")
	keep := flag.Bool("keep", false, "Keep the .ssa and .s files after linking")
	saveAST := flag.Bool("save-ast", false, "Write <file>.ast.json for every parsed file")

	flag.Parse()

	// Handle version
	if *showVersion {
		fmt.Printf("compiler version %s\n", version)
		os.Exit(0)
	}

	// Get entry file
	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: compiler [options] <file.pl>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	mode := compiler.Build
	switch {
	case *run:
		mode = compiler.Run
	case *check:
		mode = compiler.Check
	case *emitIR:
		mode = compiler.EmitIR
	case *emitQBE:
		mode = compiler.EmitQBE
	case *assembly:
		mode = compiler.Assemble
	}

	result := compiler.Compile(compiler.Options{
		EntryFile:         args[0],
		Mode:              mode,
		Debug:             *debug,
		SaveAST:           *saveAST,
		StdRoot:           *stdRoot,
		OutputPath:        *output,
		KeepIntermediates: *keep,
		Diagnostics:       os.Stderr,
	})

	// Exit code
	if !result.Success {
		os.Exit(1)
	}
	if mode == compiler.Run {
		os.Exit(result.ExitCode)
	}
	for _, artifact := range result.Artifacts {
		colors.GREEN.Printf("wrote %s\n", artifact)
	}
}
