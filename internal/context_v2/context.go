// Package context_v2 holds the state shared by every phase of one compilation:
// the configuration, the diagnostics bag and the registry of source files.
//
// Files are keyed by their absolute, cleaned path. A path is claimed before the
// file is parsed, so a file reached again through another import (or through an
// import cycle) is never parsed twice. Claim order is the order the generator
// later walks the files in.
package context_v2

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vasiltop/compiler/internal/diagnostics"
	"github.com/vasiltop/compiler/internal/frontend/ast"
	"github.com/vasiltop/compiler/internal/phase"
	"github.com/vasiltop/compiler/internal/utils/fs"
)

const (
	DefaultExtension = ".pl"
	DefaultStdRoot   = "/opt/compiler/std"

	// StdPrefix marks an import that resolves against the standard library root.
	StdPrefix = "std:"
)

// ModuleType categorizes how a file was resolved
type ModuleType int

const (
	ModuleLocal   ModuleType = iota // Relative to the importing file
	ModuleBuiltin                   // Under the standard library root
)

func (mt ModuleType) String() string {
	switch mt {
	case ModuleLocal:
		return "Local"
	case ModuleBuiltin:
		return "Builtin"
	default:
		return "Unknown"
	}
}

// Module is one source file known to the compilation.
type Module struct {
	FilePath string    // Absolute path, the registry key
	Name     string    // Name from the file's module header, set once parsed
	Type     ModuleType
	AST      *ast.File

	Phase phase.ModulePhase

	// Raw source code (for diagnostics)
	Content string
}

// Config holds compiler configuration
type Config struct {
	EntryFile  string
	Extension  string // Source file extension (default: ".pl")
	StdRoot    string // Root for "std:" imports
	OutputPath string // Executable path; derived from the entry file when empty
	Target     string // QBE target name

	KeepIntermediates bool // Keep the .ssa and .s files next to the output
	SaveAST           bool // Write <file>.ast.json after parsing
	Debug             bool

	// Overlay maps absolute paths to in-memory sources that take precedence
	// over the file system.
	Overlay map[string]string
}

// CompilerContext is the central compilation state manager
type CompilerContext struct {
	Modules map[string]*Module
	order   []string

	// Full path to entry file
	EntryPoint string

	Diagnostics *diagnostics.DiagnosticBag
	Config      *Config
	Debug       bool
}

// New creates a new compiler context, filling unset configuration with defaults.
func New(config *Config, debug bool) *CompilerContext {
	if config == nil {
		config = &Config{}
	}
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if config.StdRoot == "" {
		config.StdRoot = os.Getenv("COMPILER_STD")
	}
	if config.StdRoot == "" {
		config.StdRoot = DefaultStdRoot
	}
	if config.Target == "" {
		config.Target = DefaultTarget()
	}
	if config.Overlay == nil {
		config.Overlay = make(map[string]string)
	}

	return &CompilerContext{
		Modules:     make(map[string]*Module),
		Diagnostics: diagnostics.NewDiagnosticBag(),
		Config:      config,
		Debug:       debug || config.Debug,
	}
}

// DefaultTarget picks the QBE target for the host.
func DefaultTarget() string {
	switch runtime.GOARCH {
	case "arm64":
		if runtime.GOOS == "darwin" {
			return "arm64_apple"
		}
		return "arm64"
	case "riscv64":
		return "rv64"
	default:
		if runtime.GOOS == "darwin" {
			return "amd64_apple"
		}
		return "amd64_sysv"
	}
}

// SetEntryPoint sets the entry point for compilation
func (ctx *CompilerContext) SetEntryPoint(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve entry point: %w", err)
	}
	absPath = filepath.Clean(absPath)

	if _, ok := ctx.Config.Overlay[absPath]; !ok && !fs.IsValidFile(absPath) {
		return fmt.Errorf("entry point does not exist: %s", absPath)
	}

	ctx.EntryPoint = absPath
	ctx.Config.EntryFile = absPath
	return nil
}

// SetEntryPointWithCode compiles in-memory code as if it lived at virtualPath.
// Imports relative to it still resolve through the overlay and then the disk.
func (ctx *CompilerContext) SetEntryPointWithCode(code, virtualPath string) error {
	absPath, err := filepath.Abs(virtualPath)
	if err != nil {
		return fmt.Errorf("failed to resolve entry point: %w", err)
	}
	absPath = filepath.Clean(absPath)
	ctx.Config.Overlay[absPath] = code
	return ctx.SetEntryPoint(absPath)
}

// ResolveImport maps an import target, as written in the file at importer, to
// an absolute file path. The extension is appended to the target. The file
// must exist on disk or in the overlay.
func (ctx *CompilerContext) ResolveImport(importer, target string) (string, ModuleType, error) {
	if strings.TrimSpace(target) == "" {
		return "", ModuleLocal, fmt.Errorf("empty import path")
	}

	name := target + ctx.Config.Extension
	kind := ModuleLocal

	var path string
	if rest, ok := strings.CutPrefix(name, StdPrefix); ok {
		kind = ModuleBuiltin
		path = filepath.Join(ctx.Config.StdRoot, rest)
	} else if filepath.IsAbs(name) {
		path = name
	} else {
		path = filepath.Join(filepath.Dir(importer), name)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", kind, fmt.Errorf("cannot resolve import %q: %w", target, err)
	}
	absPath = filepath.Clean(absPath)

	if _, claimed := ctx.Modules[absPath]; claimed {
		return absPath, kind, nil
	}
	if _, ok := ctx.Config.Overlay[absPath]; ok {
		return absPath, kind, nil
	}
	if !fs.IsValidFile(absPath) {
		return "", kind, fmt.Errorf("module not found: %s", absPath)
	}
	return absPath, kind, nil
}

// Claim registers path as part of the compilation. It reports false when the
// path was already claimed, in which case the caller must not parse it again.
func (ctx *CompilerContext) Claim(path string, kind ModuleType) bool {
	if _, exists := ctx.Modules[path]; exists {
		return false
	}
	ctx.Modules[path] = &Module{
		FilePath: path,
		Type:     kind,
		Phase:    phase.PhaseNotStarted,
	}
	ctx.order = append(ctx.order, path)
	return true
}

// ReadSource returns the content of a claimed file and caches it for diagnostics.
func (ctx *CompilerContext) ReadSource(path string) (string, error) {
	module, ok := ctx.Modules[path]
	if !ok {
		return "", fmt.Errorf("file %s was not claimed", path)
	}
	if module.Content != "" {
		return module.Content, nil
	}

	content, ok := ctx.Config.Overlay[path]
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", path, err)
		}
		content = string(data)
	}

	module.Content = content
	ctx.Diagnostics.AddSourceContent(path, content)
	return content, nil
}

// SetAST records the parsed tree of a claimed file and its module name.
func (ctx *CompilerContext) SetAST(path string, file *ast.File) {
	if module, ok := ctx.Modules[path]; ok {
		module.AST = file
		module.Name = file.Module
	}
}

// GetModule retrieves a file by absolute path
func (ctx *CompilerContext) GetModule(path string) (*Module, bool) {
	module, exists := ctx.Modules[path]
	return module, exists
}

// ModuleName returns the header name of the file at path, or "" if unknown.
func (ctx *CompilerContext) ModuleName(path string) string {
	if module, ok := ctx.Modules[path]; ok {
		return module.Name
	}
	return ""
}

// Paths returns every claimed path in claim order.
func (ctx *CompilerContext) Paths() []string {
	return append([]string(nil), ctx.order...)
}

// Files returns the parsed trees in claim order.
func (ctx *CompilerContext) Files() []*ast.File {
	files := make([]*ast.File, 0, len(ctx.order))
	for _, path := range ctx.order {
		if module := ctx.Modules[path]; module.AST != nil {
			files = append(files, module.AST)
		}
	}
	return files
}

// ModuleCount returns the number of claimed files
func (ctx *CompilerContext) ModuleCount() int {
	return len(ctx.order)
}

// GetModulePhase returns the current phase of a file
func (ctx *CompilerContext) GetModulePhase(path string) phase.ModulePhase {
	if module, exists := ctx.Modules[path]; exists {
		return module.Phase
	}
	return phase.PhaseNotStarted
}

// SetModulePhase updates the phase of a file
func (ctx *CompilerContext) SetModulePhase(path string, p phase.ModulePhase) {
	if module, exists := ctx.Modules[path]; exists {
		module.Phase = p
	}
}

// AdvanceModulePhase advances a file to the next phase with validation.
// Returns false if the file is not at the prerequisite phase.
func (ctx *CompilerContext) AdvanceModulePhase(path string, target phase.ModulePhase) bool {
	if !ctx.CanProcessPhase(path, target) {
		return false
	}
	ctx.SetModulePhase(path, target)
	return true
}

// CanProcessPhase checks if a file is ready for a specific phase
func (ctx *CompilerContext) CanProcessPhase(path string, required phase.ModulePhase) bool {
	prerequisite, exists := phase.PhasePrerequisites[required]
	if !exists {
		return false
	}
	return ctx.GetModulePhase(path) == prerequisite
}

// AdvanceAll moves every file that sits at the prerequisite of target to target.
func (ctx *CompilerContext) AdvanceAll(target phase.ModulePhase) {
	for _, path := range ctx.order {
		ctx.AdvanceModulePhase(path, target)
	}
}

// HasErrors returns true if any errors have been reported
func (ctx *CompilerContext) HasErrors() bool {
	return ctx.Diagnostics.HasErrors()
}

// ReportError adds err to the diagnostics bag.
func (ctx *CompilerContext) ReportError(err error) {
	ctx.Diagnostics.AddError(err)
}

// OutputPath returns the configured executable path, or the entry file
// without its extension.
func (ctx *CompilerContext) OutputPath() string {
	if ctx.Config.OutputPath != "" {
		return ctx.Config.OutputPath
	}
	out := fs.ReplaceExt(ctx.EntryPoint, "")
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	return out
}
