package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// CopyFile copies src to dst, creating dst's parent directory and keeping
// the source permission bits. An existing dst is overwritten.
func CopyFile(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "copy", Path: src, Err: fs.ErrInvalid}
	}

	data, err := fsys.ReadFile(src)
	if err != nil {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	return fsys.WriteFile(dst, data, info.Mode().Perm())
}

// EnsureFile creates an empty file at path, including parent directories,
// unless something already exists there.
func EnsureFile(fsys types.FS, path string) error {
	if _, err := fsys.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return fsys.WriteFile(path, nil, 0644)
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned to the caller.
func Exists(fsys types.FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
