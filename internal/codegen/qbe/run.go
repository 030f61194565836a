package qbe

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/context_v2"
)

// Executable returns the qbe binary to run: COMPILER_QBE when set,
// otherwise qbe from PATH.
func Executable() string {
	if qbe := os.Getenv("COMPILER_QBE"); qbe != "" {
		return qbe
	}
	return "qbe"
}

// Run compiles the QBE file at inputPath into assembly at outputPath for
// the configured target.
func Run(ctx *context_v2.CompilerContext, inputPath, outputPath string) error {
	if inputPath == "" {
		return fmt.Errorf("qbe: missing input path")
	}
	if outputPath == "" {
		return fmt.Errorf("qbe: missing output path")
	}

	target := context_v2.DefaultTarget()
	if ctx != nil && ctx.Config.Target != "" {
		target = ctx.Config.Target
	}
	args := []string{"-t", target, "-o", outputPath, inputPath}
	if ctx != nil && ctx.Debug {
		colors.CYAN.Printf("Running: %s %s\n", Executable(), strings.Join(args, " "))
	}

	var stderr bytes.Buffer
	cmd := exec.Command(Executable(), args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("qbe failed: %w\n%s", err, msg)
		}
		return fmt.Errorf("qbe failed: %w", err)
	}
	return nil
}
