// Package workspace owns the disposable build tree of one invocation.
//
// Layout under the output root:
//
//	<out>/
//	  build/            # wiped on every invocation
//	    src/            # staged copy of the vendored tree, deleted after compiling
//	    obj/<lib>/      # object files and per-library scratch
//	    gen/            # generated bindings
//	  install/          # wiped on every invocation, then kept
//	    include/
//	    lib/
//	    bin/
package workspace

import (
	"os"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/logger"
)

// Layout holds the directories of one build below an output root.
type Layout struct {
	Root    string
	Build   string
	Src     string
	Obj     string
	Gen     string
	Install string
}

// NewLayout returns the layout rooted at outDir.
func NewLayout(outDir string) Layout {
	build := filepath.Join(outDir, "build")
	return Layout{
		Root:    outDir,
		Build:   build,
		Src:     filepath.Join(build, "src"),
		Obj:     filepath.Join(build, "obj"),
		Gen:     filepath.Join(build, "gen"),
		Install: filepath.Join(outDir, "install"),
	}
}

// Reset removes any build or install directory left by a previous run,
// whatever its configuration, and creates fresh build directories.
func (l Layout) Reset() error {
	for _, dir := range []string{l.Build, l.Install} {
		if _, err := os.Lstat(dir); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errs.IO("stat", dir, err)
		}
		logger.Debug("msg", "removing stale directory", "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return errs.IO("remove", dir, err)
		}
	}
	for _, dir := range []string{l.Src, l.Obj, l.Gen} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.IO("create", dir, err)
		}
	}
	return nil
}

// DropSources deletes the staged source copy. The rest of the build
// directory is kept.
func (l Layout) DropSources() error {
	if err := os.RemoveAll(l.Src); err != nil {
		return errs.IO("remove", l.Src, err)
	}
	return nil
}
