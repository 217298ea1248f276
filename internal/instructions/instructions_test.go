package instructions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/tester"
)

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.txt")
	tester.NoErr(t, os.WriteFile(path, []byte("Be concise."), 0o644))

	got, err := Load(path)
	tester.NoErr(t, err)
	tester.Eq(t, got, "Be concise.")
}

func TestLoadMissingFileDegrades(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	tester.Err(t, err)
	tester.Eq(t, got, "", "degraded load must return empty instructions")
}
