// Package scan implements recursive discovery of resource files by extension.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NotFoundError reports that the requested root directory does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("directory not found: %s", e.Path)
}

// Find walks the directory tree rooted at root and returns the absolute
// paths of all regular files whose extension matches ext (case-insensitive,
// leading dot required, e.g. ".xml"). Paths are returned in WalkDir order,
// which is lexical per directory and therefore deterministic.
func Find(root, ext string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: root}
		}
		return nil, fmt.Errorf("checking %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Path: root}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}
	return files, nil
}
