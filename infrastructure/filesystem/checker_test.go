package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChecker_Exists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewChecker()
	if !c.Exists(file) {
		t.Errorf("Exists(%q) = false", file)
	}
	if c.Exists(filepath.Join(dir, "missing.mp4")) {
		t.Error("Exists(missing) = true")
	}
}

func TestChecker_EnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	c := NewChecker()
	if err := c.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	// existing directory is fine
	if err := c.EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir() on existing dir error: %v", err)
	}
}

func TestChecker_EnsureDirOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewChecker().EnsureDir(file); err == nil {
		t.Error("EnsureDir() on a file should fail")
	}
}
