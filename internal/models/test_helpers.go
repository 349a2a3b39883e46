package models

import (
	"os"
	"path/filepath"
	"testing"
)

// FixturePath resolves a file under the repository's testdata directory and
// fails the test when it is missing.
func FixturePath(t *testing.T, name string) string {
	t.Helper()

	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		t.Fatalf("resolve testdata/%s: %v", name, err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fixture testdata/%s: %v", name, err)
	}
	return path
}
