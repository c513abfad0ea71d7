// Copyright 2024 The llar Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cc

import (
	"strconv"
	"strings"

	"github.com/goplus/v4l2build/pkgs/buildsys"
	"github.com/kballard/go-shellquote"
)

// Flavor is the command line dialect of a toolchain.
type Flavor int

const (
	GNU Flavor = iota
	MSVC
)

// Toolchain is a C compiler and archiver for one target.
type Toolchain struct {
	Flavor Flavor
	CC     []string
	AR     []string
}

// Select picks the toolchain for target. CC_<target>, CC, AR_<target>
// and AR in getenv override the defaults; target may be spelled with
// dashes or underscores in the variable name.
func Select(target, host string, getenv func(string) string) Toolchain {
	tc := defaults(target, host, getenv)
	if cc := override("CC", target, getenv); cc != nil {
		tc.CC = cc
	}
	if ar := override("AR", target, getenv); ar != nil {
		tc.AR = ar
	}
	return tc
}

// DefaultAndroidAPI is the API level of the NDK compiler wrapper used when
// ANDROID_PLATFORM is unset.
const DefaultAndroidAPI = 21

func defaults(target, host string, getenv func(string) string) Toolchain {
	switch {
	case strings.Contains(target, "msvc"):
		return Toolchain{Flavor: MSVC, CC: []string{"cl.exe"}, AR: []string{"lib.exe"}}
	case strings.HasPrefix(target, "wasm32"):
		return Toolchain{CC: []string{"clang", "--target=" + target}, AR: []string{"llvm-ar"}}
	case strings.Contains(target, "android"):
		return Toolchain{CC: []string{ndkClang(target, getenv("ANDROID_PLATFORM"))}, AR: []string{"llvm-ar"}}
	case target == host || strings.Contains(target, "apple"):
		return Toolchain{CC: []string{"cc"}, AR: []string{"ar"}}
	}
	prefix := strings.Replace(target, "-unknown-", "-", 1)
	if arch, _, ok := strings.Cut(target, "-"); ok && strings.HasSuffix(target, "windows-gnu") {
		prefix = arch + "-w64-mingw32"
	}
	return Toolchain{CC: []string{prefix + "-gcc"}, AR: []string{prefix + "-ar"}}
}

// ndkClang names the NDK's API-suffixed clang wrapper for target, e.g.
// aarch64-linux-android21-clang. platform is "24" or "android-24".
func ndkClang(target, platform string) string {
	api := DefaultAndroidAPI
	if n, err := strconv.Atoi(strings.TrimPrefix(platform, "android-")); err == nil && n > 0 {
		api = n
	}
	triple := strings.Replace(target, "-unknown-", "-", 1)
	if arch, rest, ok := strings.Cut(triple, "-"); ok && (arch == "armv7" || arch == "thumbv7neon") {
		triple = "armv7a-" + rest
	}
	return triple + strconv.Itoa(api) + "-clang"
}

func override(tool, target string, getenv func(string) string) []string {
	keys := []string{
		tool + "_" + target,
		tool + "_" + strings.ReplaceAll(target, "-", "_"),
		tool,
	}
	for _, key := range keys {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		words, err := shellquote.Split(v)
		if err != nil || len(words) == 0 {
			words = strings.Fields(v)
		}
		return words
	}
	return nil
}

// ObjectExt returns the object file extension, dot included.
func (tc Toolchain) ObjectExt() string {
	if tc.Flavor == MSVC {
		return ".obj"
	}
	return ".o"
}

// ArchiveName returns the file name of the static library called name.
func (tc Toolchain) ArchiveName(name string) string {
	if tc.Flavor == MSVC {
		return name + ".lib"
	}
	return "lib" + name + ".a"
}

// CompileArgs returns the command line that compiles src into obj.
func (tc Toolchain) CompileArgs(u buildsys.Unit, src, obj string) []string {
	args := append([]string(nil), tc.CC...)
	if tc.Flavor == MSVC {
		args = append(args, "/nologo", "/c", msvcOpt(u.OptLevel))
		if !u.Warnings {
			args = append(args, "/W0")
		}
		for _, inc := range u.Includes {
			args = append(args, "/I"+inc)
		}
		for _, d := range u.Defines {
			args = append(args, "/D"+d.String())
		}
		return append(args, "/Fo"+obj, src)
	}

	args = append(args, "-c", "-O"+strconv.Itoa(u.OptLevel), "-ffunction-sections", "-fdata-sections")
	if !strings.Contains(u.Target, "windows") {
		args = append(args, "-fPIC")
	}
	if !u.Warnings {
		args = append(args, "-w")
	}
	for _, inc := range u.Includes {
		args = append(args, "-I"+inc)
	}
	for _, d := range u.Defines {
		args = append(args, "-D"+d.String())
	}
	return append(args, "-o", obj, src)
}

// ArchiveArgs returns the command line that bundles objs into archive.
func (tc Toolchain) ArchiveArgs(archive string, objs []string) []string {
	args := append([]string(nil), tc.AR...)
	if tc.Flavor == MSVC {
		args = append(args, "/nologo", "/OUT:"+archive)
	} else {
		args = append(args, "crs", archive)
	}
	return append(args, objs...)
}

func msvcOpt(level int) string {
	switch {
	case level <= 0:
		return "/Od"
	case level == 1:
		return "/O1"
	}
	return "/O2"
}
