package workspace

import (
	"io"
	"os"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/walk"
)

// VCSDir is the version-control metadata directory never staged.
const VCSDir = ".git"

// Stage copies the tree at src into dst, keeping relative paths and file
// modes and skipping any entry named VCSDir. Directories are created before
// their contents and an existing destination file is removed before it is
// replaced, so the copy never merges with stale content.
func Stage(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return errs.NotADirectory(src)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return errs.IO("create", dst, err)
	}
	return copyTree(src, dst, make(map[string]bool))
}

// active holds the canonical source directories being copied, so a
// symlink back to one of them is reported instead of followed forever.
func copyTree(src, dst string, active map[string]bool) error {
	canonical, err := walk.Canonical(src)
	if err != nil {
		return err
	}
	if active[canonical] {
		return errs.IO("stage", src, walk.ErrCycle)
	}
	active[canonical] = true
	defer delete(active, canonical)

	entries, err := os.ReadDir(src)
	if err != nil {
		return errs.IO("read directory", src, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == VCSDir {
			continue
		}
		from := filepath.Join(src, name)
		to := filepath.Join(dst, name)

		info, err := os.Stat(from)
		if err != nil {
			return errs.IO("stat", from, err)
		}
		if info.IsDir() {
			if err := os.MkdirAll(to, 0o755); err != nil {
				return errs.IO("create", to, err)
			}
			if err := copyTree(from, to, active); err != nil {
				return err
			}
			continue
		}
		if err := os.Remove(to); err != nil && !os.IsNotExist(err) {
			return errs.IO("remove", to, err)
		}
		if err := copyFile(from, to, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

// CopyFile copies a single regular file, replacing dst.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errs.IO("stat", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errs.IO("create", filepath.Dir(dst), err)
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return errs.IO("remove", dst, err)
	}
	return copyFile(src, dst, info.Mode().Perm())
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errs.IO("open", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return errs.IO("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errs.IO("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return errs.IO("close", dst, err)
	}
	return nil
}
