// Copyright 2024 The llar Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gnumake compiles a build unit through a generated Makefile run
// by the host's GNU make.
package gnumake

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/hosttool"
	"github.com/goplus/v4l2build/internal/logger"
	"github.com/goplus/v4l2build/pkgs/buildsys"
	"github.com/goplus/v4l2build/x/cc"
	"github.com/kballard/go-shellquote"
)

// Driver implements buildsys.Compiler.
type Driver struct {
	// Jobs is passed to make as -j; values below 1 mean one per CPU.
	Jobs int

	Run    buildsys.Runner
	Getenv func(string) string
}

// New returns a Driver running make with -j jobs.
func New(jobs int) *Driver {
	return &Driver{Jobs: jobs}
}

var _ buildsys.Compiler = (*Driver)(nil)

// Compile writes <ObjDir>/<Name>.mk and runs make on it.
func (d *Driver) Compile(ctx context.Context, u buildsys.Unit) (buildsys.Library, error) {
	tc := cc.Select(u.Target, u.Host, d.getenv)
	objs := cc.Objects(u, tc.ObjectExt())
	for _, obj := range objs {
		if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
			return buildsys.Library{}, errs.IO("create directory", filepath.Dir(obj), err)
		}
	}
	if err := os.MkdirAll(u.OutDir, 0o755); err != nil {
		return buildsys.Library{}, errs.IO("create directory", u.OutDir, err)
	}
	archive := filepath.Join(u.OutDir, tc.ArchiveName(u.Name))
	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		return buildsys.Library{}, errs.IO("remove", archive, err)
	}

	mk := filepath.Join(u.ObjDir, u.Name+".mk")
	if err := os.WriteFile(mk, Makefile(u, tc, objs, archive), 0o644); err != nil {
		return buildsys.Library{}, errs.IO("write", mk, err)
	}

	tool := hosttool.Make(u.Host)
	if _, ok := hosttool.Lookup(tool); !ok {
		logger.Warn("msg", "make tool not found in PATH", "tool", tool)
	}
	argv := []string{tool, "-f", mk, "-j" + strconv.Itoa(d.jobs())}
	logger.Info("msg", "compiling", "lib", u.Name, "sources", len(u.Sources), "make", tool)
	if err := d.run(ctx, u.ObjDir, argv); err != nil {
		return buildsys.Library{}, err
	}
	return buildsys.Library{Name: u.Name, Target: u.Target, Archive: archive}, nil
}

// Makefile renders the rules building archive from the sources of u.
// objs[i] is the object file of u.Sources[i].
func Makefile(u buildsys.Unit, tc cc.Toolchain, objs []string, archive string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Generated by v4l2build for library %s. Do not edit.\n\n", u.Name)
	fmt.Fprintf(&b, ".PHONY: all\nall: %s\n\n", target(archive))

	deps := make([]string, len(objs))
	for i, obj := range objs {
		deps[i] = target(obj)
	}
	fmt.Fprintf(&b, "%s: %s\n\t%s\n", target(archive), strings.Join(deps, " "), recipe(tc.ArchiveArgs(archive, objs)))
	for i, src := range u.Sources {
		fmt.Fprintf(&b, "\n%s: %s\n\t%s\n", deps[i], target(src), recipe(tc.CompileArgs(u, src, objs[i])))
	}
	return b.Bytes()
}

var targetEscaper = strings.NewReplacer(" ", `\ `, "$", "$$", "#", `\#`)

func target(path string) string {
	return targetEscaper.Replace(path)
}

func recipe(argv []string) string {
	return strings.ReplaceAll(shellquote.Join(argv...), "$", "$$")
}

func (d *Driver) run(ctx context.Context, dir string, argv []string) error {
	if d.Run != nil {
		return d.Run(ctx, dir, argv)
	}
	return buildsys.Exec(ctx, dir, argv)
}

func (d *Driver) getenv(key string) string {
	if d.Getenv != nil {
		return d.Getenv(key)
	}
	return os.Getenv(key)
}

func (d *Driver) jobs() int {
	if d.Jobs < 1 {
		return runtime.NumCPU()
	}
	return d.Jobs
}
