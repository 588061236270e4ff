// Package flatten collapses a nested directory tree into a single flat
// directory, keeping only base filenames, and cleans up the emptied tree.
package flatten

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CollisionError reports that two or more source paths share a base filename
// and would overwrite each other in the flat destination. No file has been
// moved when this error is returned.
type CollisionError struct {
	Base  string
	Paths []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("base filename collision on %q: %s", e.Base, strings.Join(e.Paths, ", "))
}

// CleanupError reports that the source tree could not be removed because it
// still contained files the relocator did not move. The tree is left in
// place; callers treat this as a warning, not a failure.
type CleanupError struct {
	Root     string
	Leftover []string
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("refusing to remove %s: %d unexpected file(s) remain (first: %s)",
		e.Root, len(e.Leftover), e.Leftover[0])
}

// Move relocates every file in paths into dest using only its base filename.
// The destination directory is created if absent.
//
// All base names are checked for duplicates before any file is touched, so a
// CollisionError has no side effects. Individual moves are fail-fast: the
// first failure aborts with files moved so far left in place.
func Move(paths []string, dest string) error {
	byBase := make(map[string][]string, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		byBase[base] = append(byBase[base], p)
	}
	for base, sources := range byBase {
		if len(sources) > 1 {
			sort.Strings(sources)
			return &CollisionError{Base: base, Paths: sources}
		}
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	for _, p := range paths {
		target := filepath.Join(dest, filepath.Base(p))
		if err := moveFile(p, target); err != nil {
			return fmt.Errorf("moving %s to %s: %w", p, target, err)
		}
	}
	return nil
}

// moveFile renames src to dst, falling back to copy+remove when the rename
// crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// RemoveTree removes the directory tree rooted at root. Files for which keep
// returns true are tolerated and removed along with the tree; any other
// remaining file makes RemoveTree leave the whole tree untouched and return
// a CleanupError, so nothing is lost that the caller did not account for.
// A nil keep tolerates no files.
func RemoveTree(root string, keep func(path string) bool) error {
	var leftover []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if keep != nil && keep(path) {
			return nil
		}
		leftover = append(leftover, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", root, err)
	}
	if len(leftover) > 0 {
		return &CleanupError{Root: root, Leftover: leftover}
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("removing %s: %w", root, err)
	}
	return nil
}

// Reset removes the tree at root like RemoveTree and then recreates root as
// an empty directory, matching the pipeline convention that the todo and
// intermediate directories survive a phase as empty shells.
func Reset(root string, keep func(path string) bool) error {
	if err := RemoveTree(root, keep); err != nil {
		return err
	}
	return os.MkdirAll(root, 0755)
}
