package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFind_Recursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "strings.xml"), "<resources/>")
	writeFile(t, filepath.Join(root, "a", "b", "menu.xml"), "<resources/>")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(root, "top.xml"), "<resources/>")

	files, err := Find(root, ".xml")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if !filepath.IsAbs(f) {
			t.Errorf("expected absolute path, got %q", f)
		}
	}
}

func TestFind_ExtensionCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "upper.XML"), "<resources/>")

	files, err := Find(root, ".xml")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
}

func TestFind_MissingRoot(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "nope"), ".xml")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestFind_RootIsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.xml")
	writeFile(t, path, "<resources/>")

	_, err := Find(path, ".xml")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for non-directory root, got %v", err)
	}
}

func TestFind_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "two.xml"), "<resources/>")
	writeFile(t, filepath.Join(root, "a", "one.xml"), "<resources/>")

	first, err := Find(root, ".xml")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	second, err := Find(root, ".xml")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 files in each run, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("order differs at %d: %q vs %q", i, first[i], second[i])
		}
	}
	if filepath.Base(first[0]) != "one.xml" {
		t.Errorf("expected lexical order (a/ before b/), got %v", first)
	}
}
