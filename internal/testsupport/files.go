package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and its parent directories) with the given content.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MakeTree creates every named file under root with placeholder content.
// Paths use forward slashes and are created relative to root.
func MakeTree(t testing.TB, root string, paths ...string) {
	t.Helper()

	for _, rel := range paths {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), []byte("fixture: "+rel))
	}
}
