// Package walk discovers source files and header directories in a tree.
package walk

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/v4l2build/internal/errs"
)

// ErrCycle is the cause reported when a symlink leads back to a directory
// that is being walked.
var ErrCycle = errors.New("symlink cycle")

// Option configures a walk.
type Option func(*walker)

// Exclude skips every entry whose path below the root contains marker as a
// whole path segment (e.g. "private" matches "lib/private/x.h" but not
// "lib/privateer/x.h").
func Exclude(marker string) Option {
	return func(w *walker) {
		if marker != "" {
			w.exclude = append(w.exclude, marker)
		}
	}
}

type walker struct {
	root    string
	ext     string
	dirs    bool
	exclude []string

	seen   map[string]bool
	list   []string
	active map[string]bool // canonical directories on the current path
}

// Files returns the canonical paths of all files under root with extension
// ext. ext may be given with or without the leading dot.
func Files(root, ext string, opts ...Option) ([]string, error) {
	return run(root, ext, false, opts)
}

// Dirs returns the canonical paths of the directories under root (root
// included) that directly contain a file with extension ext. Once a
// directory qualifies, nothing below it is examined, so no returned
// directory is nested in another one found on the same branch.
func Dirs(root, ext string, opts ...Option) ([]string, error) {
	return run(root, ext, true, opts)
}

func run(root, ext string, dirs bool, opts []Option) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errs.NotADirectory(root)
	}
	w := &walker{
		root:   root,
		ext:    "." + strings.TrimPrefix(ext, "."),
		dirs:   dirs,
		seen:   make(map[string]bool),
		active: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.walk(root); err != nil {
		return nil, err
	}
	return w.list, nil
}

func (w *walker) walk(dir string) error {
	canonical, err := Canonical(dir)
	if err != nil {
		return err
	}
	if w.active[canonical] {
		return errs.IO("walk", dir, ErrCycle)
	}
	w.active[canonical] = true
	defer delete(w.active, canonical)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errs.IO("read directory", dir, err)
	}

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if w.excluded(path) {
			continue
		}
		// Stat follows symlinks, so a linked directory is descended into.
		info, err := os.Stat(path)
		if err != nil {
			return errs.IO("stat", path, err)
		}
		if info.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if filepath.Ext(path) != w.ext {
			continue
		}
		if w.dirs {
			// dir qualifies; its subtree is not examined.
			return w.record(dir)
		}
		if err := w.record(path); err != nil {
			return err
		}
	}

	for _, sub := range subdirs {
		if err := w.walk(sub); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) record(path string) error {
	canonical, err := Canonical(path)
	if err != nil {
		return err
	}
	if !w.seen[canonical] {
		w.seen[canonical] = true
		w.list = append(w.list, canonical)
	}
	return nil
}

func (w *walker) excluded(path string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, marker := range w.exclude {
			if seg == marker {
				return true
			}
		}
	}
	return false
}

// Canonical returns the absolute, symlink-free form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.IO("canonicalize", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errs.IO("canonicalize", path, err)
	}
	return resolved, nil
}
