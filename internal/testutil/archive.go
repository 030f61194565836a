// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// WriteArchive extracts a txtar archive into dir and returns dir. Each file
// section becomes a file; missing parent directories are created.
func WriteArchive(t testing.TB, dir, archive string) string {
	t.Helper()

	ar := txtar.Parse([]byte(archive))
	if len(ar.Files) == 0 {
		t.Fatalf("archive has no files")
	}
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TempArchive extracts archive into a fresh temporary directory.
func TempArchive(t testing.TB, archive string) string {
	t.Helper()
	return WriteArchive(t, t.TempDir(), archive)
}
