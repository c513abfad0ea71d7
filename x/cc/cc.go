// Copyright 2024 The llar Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cc compiles a build unit by invoking the C compiler and the
// archiver directly.
package cc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/logger"
	"github.com/goplus/v4l2build/internal/par"
	"github.com/goplus/v4l2build/pkgs/buildsys"
)

// Driver implements buildsys.Compiler.
type Driver struct {
	// Jobs bounds the number of compiler processes; values below 1 mean
	// one per CPU.
	Jobs int

	// Run and Getenv default to buildsys.Exec and os.Getenv.
	Run    buildsys.Runner
	Getenv func(string) string
}

// New returns a Driver running at most jobs compilers at once.
func New(jobs int) *Driver {
	return &Driver{Jobs: jobs}
}

var _ buildsys.Compiler = (*Driver)(nil)

type job struct {
	src string
	obj string
}

// Compile compiles every source of u to an object file and archives the
// objects, in source order, into a static library in u.OutDir.
func (d *Driver) Compile(ctx context.Context, u buildsys.Unit) (buildsys.Library, error) {
	tc := Select(u.Target, u.Host, d.getenv)
	objs := Objects(u, tc.ObjectExt())

	var work par.Work[job]
	for i, src := range u.Sources {
		if err := os.MkdirAll(filepath.Dir(objs[i]), 0o755); err != nil {
			return buildsys.Library{}, errs.IO("create directory", filepath.Dir(objs[i]), err)
		}
		work.Add(job{src: src, obj: objs[i]})
	}
	logger.Info("msg", "compiling", "lib", u.Name, "sources", len(u.Sources), "cc", strings.Join(tc.CC, " "))

	err := work.Do(d.jobs(), func(j job) error {
		logger.Debug("msg", "compile", "lib", u.Name, "src", j.src)
		return d.run(ctx, u.ObjDir, tc.CompileArgs(u, j.src, j.obj))
	})
	if err != nil {
		return buildsys.Library{}, err
	}

	if err := os.MkdirAll(u.OutDir, 0o755); err != nil {
		return buildsys.Library{}, errs.IO("create directory", u.OutDir, err)
	}
	archive := filepath.Join(u.OutDir, tc.ArchiveName(u.Name))
	// ar appends to an existing archive.
	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		return buildsys.Library{}, errs.IO("remove", archive, err)
	}
	if err := d.run(ctx, u.ObjDir, tc.ArchiveArgs(archive, objs)); err != nil {
		return buildsys.Library{}, err
	}
	return buildsys.Library{Name: u.Name, Target: u.Target, Archive: archive}, nil
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

// Objects returns the object file of each source of u, in order. Objects
// live under <ObjDir>/<Name> and mirror the sources' layout below their
// common directory, so sources sharing a base name do not collide.
func Objects(u buildsys.Unit, ext string) []string {
	root := commonDir(u.Sources)
	objs := make([]string, len(u.Sources))
	for i, src := range u.Sources {
		rel, err := filepath.Rel(root, src)
		if err != nil {
			rel = fmt.Sprintf("%d_%s", i, filepath.Base(src))
		}
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
		objs[i] = filepath.Join(u.ObjDir, u.Name, rel+ext)
	}
	return objs
}

func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !within(dir, p) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return dir
			}
			dir = parent
		}
	}
	return dir
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
