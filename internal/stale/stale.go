// Package stale implements the freshness check at the heart of the pipeline:
// a stage is up to date when all of its declared outputs exist and every one
// of them is at least as new as every declared input. Inputs and outputs may
// be files or directories; directories are scanned recursively and contribute
// the newest modification time found inside them.
package stale

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// MissingInputError reports a declared input that does not exist on disk.
type MissingInputError struct {
	Path string
}

// Error implements the error interface for MissingInputError.
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input %q does not exist", e.Path)
}

// Result describes the outcome of a freshness check.
type Result struct {
	Stale  bool
	Reason string
}

// Check evaluates the freshness of a stage whose inputs and outputs are given
// as paths relative to workDir. A stage with no declared outputs is always
// considered stale. A missing input is an error, not staleness: by the time a
// stage is checked all of its dependencies have already run, so the file will
// never appear.
func Check(workDir string, inputs, outputs []string) (Result, error) {
	if len(outputs) == 0 {
		return Result{Stale: true, Reason: "no declared outputs"}, nil
	}

	oldestOutput := time.Time{}
	for _, out := range outputs {
		path := filepath.Join(workDir, out)
		mtime, err := NewestMTime(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Result{Stale: true, Reason: fmt.Sprintf("output %q is missing", out)}, nil
			}
			return Result{}, err
		}
		if oldestOutput.IsZero() || mtime.Before(oldestOutput) {
			oldestOutput = mtime
		}
	}

	for _, in := range inputs {
		path := filepath.Join(workDir, in)
		mtime, err := NewestMTime(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Result{}, &MissingInputError{Path: in}
			}
			return Result{}, err
		}
		if mtime.After(oldestOutput) {
			return Result{Stale: true, Reason: fmt.Sprintf("input %q is newer than outputs", in)}, nil
		}
	}

	return Result{Stale: false, Reason: "outputs are up to date"}, nil
}

// NewestMTime returns the newest modification time found at path. For a
// regular file that is the file's own mtime; for a directory the tree is
// walked and the newest mtime of the directory and all of its entries wins.
func NewestMTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	if !info.IsDir() {
		return info.ModTime(), nil
	}

	newest := info.ModTime()
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		entryInfo, err := d.Info()
		if err != nil {
			return err
		}
		if entryInfo.ModTime().After(newest) {
			newest = entryInfo.ModTime()
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return newest, nil
}
