package build

import (
	"fmt"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/walk"
)

// Compiler backends.
const (
	Direct = "direct" // invoke cc and ar directly
	Make   = "make"   // generate a Makefile and run the host make
)

// Binding generators.
const (
	Bindgen = "bindgen"
	Cgo     = "cgo"
)

// Config is everything a build needs. OutDir, Target, Host and SourceDir
// are mandatory.
type Config struct {
	OutDir    string
	Target    string
	Host      string
	SourceDir string // the original vendored tree, never modified

	Manifest string // manifest path; the built-in manifest if empty
	Backend  string // Direct if empty
	Jobs     int
	Bindings string // Bindgen if empty
}

// Validate reports the first missing mandatory field.
func (c Config) Validate() error {
	switch {
	case c.Target == "":
		return errs.ConfigMissing("target")
	case c.Host == "":
		return errs.ConfigMissing("host")
	case c.OutDir == "":
		return errs.ConfigMissing("out dir")
	case c.SourceDir == "":
		return errs.ConfigMissing("source dir")
	}
	switch c.Backend {
	case "", Direct, Make:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Bindings {
	case "", Bindgen, Cgo:
	default:
		return fmt.Errorf("unknown binding generator %q", c.Bindings)
	}
	return nil
}

// resolved returns c with SourceDir canonical and OutDir absolute, so no
// path handed to a tool or printed for the coordinator depends on the
// working directory.
func (c Config) resolved() (Config, error) {
	src, err := walk.Canonical(c.SourceDir)
	if err != nil {
		return c, errs.NotADirectory(c.SourceDir)
	}
	out, err := filepath.Abs(c.OutDir)
	if err != nil {
		return c, errs.IO("resolve", c.OutDir, err)
	}
	c.SourceDir, c.OutDir = src, out
	return c, nil
}
