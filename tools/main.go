// Command tools compiles every program under examples/ twice, once through
// the interpreter and once to a native executable, and checks that both
// agree on exit status and output.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vasiltop/compiler/colors"
	"github.com/vasiltop/compiler/internal/codegen"
	"github.com/vasiltop/compiler/internal/codegen/qbe"
	"github.com/vasiltop/compiler/internal/compiler"
)

func main() {
	if err := run(); err != nil {
		colors.RED.Fprintln(os.Stderr, "examples:", err)
		os.Exit(1)
	}

	colors.GREEN.Println("all examples agree!")
}

func run() error {
	root, err := findRepoRoot()
	if err != nil {
		return err
	}

	programs, err := filepath.Glob(filepath.Join(root, "examples", "*.pl"))
	if err != nil {
		return fmt.Errorf("scan examples: %w", err)
	}
	if len(programs) == 0 {
		return fmt.Errorf("no examples found in %s", filepath.Join(root, "examples"))
	}

	native := true
	for _, tool := range []string{qbe.Executable(), codegen.DefaultBuildOptions().Compiler} {
		if _, err := exec.LookPath(tool); err != nil {
			colors.YELLOW.Printf("tool not found: %s, checking the interpreter only\n", tool)
			native = false
		}
	}

	outDir, err := os.MkdirTemp("", "compiler-examples-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	var failed []error
	for _, program := range programs {
		if err := check(program, outDir, native); err != nil {
			colors.RED.Printf("  ✗ %s: %v\n", filepath.Base(program), err)
			failed = append(failed, err)
			continue
		}
		colors.PURPLE.Printf("  ✓ %s\n", filepath.Base(program))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d examples failed", len(failed), len(programs))
	}
	return nil
}

func check(program, outDir string, native bool) error {
	var stdout bytes.Buffer
	interpreted := compiler.Compile(compiler.Options{
		EntryFile: program,
		Mode:      compiler.Run,
		Stdout:    &stdout,
	})
	if !interpreted.Success {
		return errors.New(interpreted.Output)
	}
	if !native {
		return nil
	}

	exe := filepath.Join(outDir, trimExt(filepath.Base(program)))
	built := compiler.Compile(compiler.Options{
		EntryFile:  program,
		Mode:       compiler.Build,
		OutputPath: exe,
	})
	if !built.Success {
		return errors.New(built.Output)
	}

	var nativeOut bytes.Buffer
	cmd := exec.Command(exe)
	cmd.Stdout = &nativeOut
	cmd.Stderr = os.Stderr
	status := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("run %s: %w", exe, err)
		}
		status = exitErr.ExitCode()
	}

	// Exit statuses are truncated to a byte by the OS.
	if want := interpreted.ExitCode & 0xff; status != want {
		return fmt.Errorf("exit status %d, interpreter returned %d", status, want)
	}
	if nativeOut.String() != stdout.String() {
		return fmt.Errorf("output %q, interpreter printed %q", nativeOut.String(), stdout.String())
	}
	return nil
}

func findRepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get cwd: %w", err)
	}

	dir := cwd
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}
		next := filepath.Dir(dir)
		if next == dir {
			break
		}
		dir = next
	}

	return "", fmt.Errorf("go.mod not found from %s", cwd)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
