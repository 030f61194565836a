package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteArchive(t *testing.T) {
	dir := TempArchive(t, `
-- main.pl --
module "main";
-- lib/util.pl --
module "util";
`)

	data, err := os.ReadFile(filepath.Join(dir, "lib", "util.pl"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "module \"util\";\n" {
		t.Errorf("unexpected content %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "main.pl")); err != nil {
		t.Error(err)
	}
}
