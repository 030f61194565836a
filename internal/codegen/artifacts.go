package codegen

import (
	"errors"
	"os"

	utilsfs "github.com/vasiltop/compiler/internal/utils/fs"
)

// Artifacts are the files a native build writes for one executable.
type Artifacts struct {
	SSA        string // QBE input
	Asm        string // QBE output
	Executable string
}

// ArtifactsFor derives the intermediate paths from the executable path.
func ArtifactsFor(executable string) Artifacts {
	return Artifacts{
		SSA:        utilsfs.ReplaceExt(executable, ".ssa"),
		Asm:        utilsfs.ReplaceExt(executable, ".s"),
		Executable: executable,
	}
}

// RemoveIntermediates deletes the .ssa and .s files. Missing files are
// not an error.
func (a Artifacts) RemoveIntermediates() error {
	var errs []error
	for _, path := range []string{a.SSA, a.Asm} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
