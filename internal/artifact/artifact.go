// Package artifact installs the built libraries and tells the host build
// coordinator how to link them.
package artifact

import (
	"os"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/workspace"
	"github.com/goplus/v4l2build/pkgs/buildsys"
)

// Install directory layout:
//
//	installDir/
//	  .artifacts.json        # Record of the last successful build
//	  include/               # public headers
//	  lib/                   # static libraries
//	    pkgconfig/<name>.pc
//	  bin/
const (
	includeDir = "include"
	libDir     = "lib"
	binDir     = "bin"
)

// Artifacts describes an installed build. The zero value is empty; use
// New or Package.
type Artifacts struct {
	includeDir string
	libDir     string
	binDir     string
	libs       []string
	target     string
}

// New returns the Artifacts of the libraries libs installed under
// installDir for target.
func New(installDir, target string, libs []string) Artifacts {
	return Artifacts{
		includeDir: filepath.Join(installDir, includeDir),
		libDir:     filepath.Join(installDir, libDir),
		binDir:     filepath.Join(installDir, binDir),
		libs:       append([]string(nil), libs...),
		target:     target,
	}
}

func (a Artifacts) IncludeDir() string { return a.includeDir }
func (a Artifacts) LibDir() string     { return a.libDir }
func (a Artifacts) BinDir() string     { return a.binDir }
func (a Artifacts) Target() string     { return a.target }

// Libs returns the library names in link order.
func (a Artifacts) Libs() []string {
	return append([]string(nil), a.libs...)
}

// Package creates the install layout, copies the archives of libs into
// lib/ and headers into include/.
func Package(installDir, target string, libs []buildsys.Library, headers []string) (Artifacts, error) {
	names := make([]string, len(libs))
	for i, lib := range libs {
		names[i] = lib.Name
	}
	a := New(installDir, target, names)
	for _, dir := range []string{a.includeDir, a.libDir, a.binDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Artifacts{}, errs.IO("create directory", dir, err)
		}
	}
	for _, lib := range libs {
		dst := filepath.Join(a.libDir, filepath.Base(lib.Archive))
		if err := workspace.CopyFile(lib.Archive, dst); err != nil {
			return Artifacts{}, err
		}
	}
	for _, h := range headers {
		if err := workspace.CopyFile(h, filepath.Join(a.includeDir, filepath.Base(h))); err != nil {
			return Artifacts{}, err
		}
	}
	return a, nil
}
