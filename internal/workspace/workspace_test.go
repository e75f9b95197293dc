package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveFindsSourceFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.auto"), "")
	writeFile(t, filepath.Join(root, "pkg", "b.auto"), "")
	writeFile(t, filepath.Join(root, "pkg", "readme.md"), "")

	got, err := Resolve([]string{root}, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 .auto files, got %v", got)
	}
}

func TestResolveHonorsExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.auto"), "")
	writeFile(t, filepath.Join(root, "vendor", "b.auto"), "")

	got, err := Resolve([]string{root}, nil, []string{"vendor/**"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "a.auto" {
		t.Fatalf("expected only a.auto, got %v", got)
	}
}
