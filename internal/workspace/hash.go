package workspace

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/errs"
	"golang.org/x/mod/sumdb/dirhash"
)

// Fingerprint returns the dirhash "h1:" digest of every file under dir,
// leaving out VCSDir. Two trees with the same relative paths and the same
// bytes have the same fingerprint.
func Fingerprint(dir string) (string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Name() == VCSDir && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", errs.IO("walk", dir, err)
	}
	sum, err := dirhash.Hash1(files, func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, filepath.FromSlash(name)))
	})
	if err != nil {
		return "", errs.IO("hash", dir, err)
	}
	return sum, nil
}
