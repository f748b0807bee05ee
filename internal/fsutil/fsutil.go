// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether the given path exists, regardless of its kind.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyTree recursively copies the directory at src to dst, creating dst and
// any missing parents. Existing files under dst are overwritten. Permissions
// and modification times of regular files are preserved, so mtime-based
// freshness checks see the copy as exactly as old as its source; symlinks are
// not followed and return an error.
func CopyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("source %q is not readable: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("source %q is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return fmt.Errorf("unsupported file type at %q", path)
		}
		return copyFile(path, target)
	})
}

// copyFile copies a single regular file, preserving its mode bits and
// modification time. Carrying the source mtime matters: a copy stamped with
// the wall clock can land in the same clock tick as an artifact built from
// the previous copy, making a genuinely newer input look up to date.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
