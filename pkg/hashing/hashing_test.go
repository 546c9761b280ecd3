package hashing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileHash_KnownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.txt")
	if err := os.WriteFile(path, []byte("Hello World!"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	got, err := FileHash(path)
	if err != nil {
		t.Fatalf("FileHash() error = %v", err)
	}

	const want = "7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d9069"
	if got != want {
		t.Errorf("FileHash() = %s, want %s", got, want)
	}
}

func TestFileHash_MissingFile(t *testing.T) {
	if _, err := FileHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("FileHash() on missing file: expected error, got nil")
	}
}

func TestDirectoryHash_Deterministic(t *testing.T) {
	build := func(t *testing.T) string {
		t.Helper()
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
			t.Fatalf("failed to make subdir: %v", err)
		}
		files := map[string]string{
			"a.txt":     "alpha",
			"b.txt":     "bravo",
			"sub/c.txt": "charlie",
			"sub/d.txt": "delta",
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
				t.Fatalf("failed to write %s: %v", name, err)
			}
		}
		return root
	}

	first, err := DirectoryHash(build(t))
	if err != nil {
		t.Fatalf("DirectoryHash() error = %v", err)
	}
	second, err := DirectoryHash(build(t))
	if err != nil {
		t.Fatalf("DirectoryHash() error = %v", err)
	}

	if first != second {
		t.Errorf("same tree hashed differently: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(first))
	}
}

func TestDirectoryHash_SensitiveToContentAndName(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	base, err := DirectoryHash(root)
	if err != nil {
		t.Fatalf("DirectoryHash() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("ALPHA"), 0o644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	changed, err := DirectoryHash(root)
	if err != nil {
		t.Fatalf("DirectoryHash() error = %v", err)
	}
	if changed == base {
		t.Error("digest unchanged after content change")
	}

	if err := os.Rename(filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")); err != nil {
		t.Fatalf("failed to rename file: %v", err)
	}
	renamed, err := DirectoryHash(root)
	if err != nil {
		t.Fatalf("DirectoryHash() error = %v", err)
	}
	if renamed == changed {
		t.Error("digest unchanged after rename")
	}
}

func TestDirectoryHash_EmptyDirectory(t *testing.T) {
	got, err := DirectoryHash(t.TempDir())
	if err != nil {
		t.Fatalf("DirectoryHash() error = %v", err)
	}

	// SHA-256 of no input.
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("DirectoryHash() = %s, want empty-input digest %s", got, want)
	}
}

func TestDirectoryHash_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := DirectoryHash(path); err == nil {
		t.Error("DirectoryHash() on a file: expected error, got nil")
	}
}
