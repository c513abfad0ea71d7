package artifact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/pkgs/buildsys"
)

var names = []string{"v4l2", "v4lconvert", "v4l1"}

func directiveLines(a Artifacts) []string {
	var out []string
	for _, d := range Directives(a) {
		out = append(out, d.String())
	}
	return out
}

func TestDirectives(t *testing.T) {
	base := func(install string) []string {
		return []string{
			"cargo:rustc-link-search=native=" + filepath.Join(install, "lib"),
			"cargo:rustc-link-lib=static=v4l2",
			"cargo:rustc-link-lib=static=v4lconvert",
			"cargo:rustc-link-lib=static=v4l1",
			"cargo:include=" + filepath.Join(install, "include"),
			"cargo:lib=" + filepath.Join(install, "lib"),
		}
	}
	tests := []struct {
		target string
		extra  []string
	}{
		{"x86_64-unknown-linux-gnu", nil},
		{"x86_64-pc-windows-msvc", []string{"cargo:rustc-link-lib=user32"}},
		{"wasm32-wasi", []string{
			"cargo:rustc-link-lib=wasi-emulated-signal",
			"cargo:rustc-link-lib=wasi-emulated-process-clocks",
			"cargo:rustc-link-lib=wasi-emulated-mman",
			"cargo:rustc-link-lib=wasi-emulated-getpid",
		}},
		// Only the exact wasi triple gets the emulation libraries.
		{"wasm32-wasip1", nil},
		{"wasm32-unknown-unknown", nil},
		{"x86_64-pc-windows-gnu", nil},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			install := filepath.FromSlash("/out/install")
			got := directiveLines(New(install, tt.target, names))
			want := append(base(install), tt.extra...)
			if strings.Join(got, "\n") != strings.Join(want, "\n") {
				t.Errorf("directives:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
			}
		})
	}
}

func TestEmit(t *testing.T) {
	a := New("/out/install", "x86_64-pc-windows-msvc", []string{"v4l2"})

	var buf bytes.Buffer
	if err := Emit(&buf, a, Cargo); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 || lines[4] != "cargo:rustc-link-lib=user32" {
		t.Errorf("cargo output:\n%s", buf.String())
	}

	buf.Reset()
	if err := Emit(&buf, a, Cgo); err != nil {
		t.Fatal(err)
	}
	lib := filepath.Join("/out/install", "lib")
	inc := filepath.Join("/out/install", "include")
	want := "#cgo CFLAGS: -I" + inc + "\n#cgo LDFLAGS: -L" + lib + " -lv4l2 -luser32\n"
	if buf.String() != want {
		t.Errorf("cgo output = %q, want %q", buf.String(), want)
	}

	if err := Emit(&buf, a, "json"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestArtifactsAreImmutable(t *testing.T) {
	libs := []string{"v4l2"}
	a := New("/i", "t", libs)
	libs[0] = "changed"
	got := a.Libs()
	got[0] = "also changed"
	if a.Libs()[0] != "v4l2" {
		t.Errorf("Libs = %v", a.Libs())
	}
}

func fakeLibs(t *testing.T, dir string) []buildsys.Library {
	t.Helper()
	var libs []buildsys.Library
	for _, name := range names {
		archive := filepath.Join(dir, "lib"+name+".a")
		if err := os.WriteFile(archive, []byte("!<arch>\n"+name), 0o644); err != nil {
			t.Fatal(err)
		}
		libs = append(libs, buildsys.Library{Name: name, Target: "x86_64-unknown-linux-gnu", Archive: archive})
	}
	return libs
}

func TestPackage(t *testing.T) {
	dir := t.TempDir()
	libs := fakeLibs(t, dir)
	header := filepath.Join(dir, "libv4l2.h")
	if err := os.WriteFile(header, []byte("#pragma once\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	install := filepath.Join(dir, "install")
	a, err := Package(install, "x86_64-unknown-linux-gnu", libs, []string{header})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(a.Libs(), ",") != "v4l2,v4lconvert,v4l1" || a.Target() != "x86_64-unknown-linux-gnu" {
		t.Errorf("artifacts = %v %s", a.Libs(), a.Target())
	}
	for _, dir := range []string{a.IncludeDir(), a.LibDir(), a.BinDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s missing: %v", dir, err)
		}
	}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(a.LibDir(), "lib"+name+".a")); err != nil {
			t.Errorf("archive of %s not installed: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(a.IncludeDir(), "libv4l2.h")); err != nil {
		t.Errorf("header not installed: %v", err)
	}

	_, err = Package(install, "t", []buildsys.Library{{Name: "x", Archive: filepath.Join(dir, "none.a")}}, nil)
	if !errors.Is(err, errs.ErrIO) {
		t.Errorf("missing archive: err = %v, want ErrIO", err)
	}
}

func TestWritePkgConfig(t *testing.T) {
	install := t.TempDir()
	a := New(install, "t", []string{"v4l2", "v4l1"})
	if err := WritePkgConfig(a, "v1.22.1"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(a.LibDir(), "pkgconfig", "v4l1.pc"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Name: libv4l1\n", "Version: 1.22.1\n", "Libs: -L${libdir} -lv4l1\n", "prefix=" + filepath.ToSlash(install) + "\n"} {
		if !strings.Contains(string(b), want) {
			t.Errorf("v4l1.pc missing %q:\n%s", want, b)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	install := t.TempDir()
	a := New(install, "wasm32-wasi", names)
	r := NewRecord(a, "v1.22.1", "h1:abc=")
	if err := Save(install, r); err != nil {
		t.Fatal(err)
	}
	loaded, lr, err := Load(install)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(directiveLines(loaded), "\n") != strings.Join(directiveLines(a), "\n") {
		t.Errorf("loaded artifacts emit different directives")
	}
	if lr.Upstream != "v1.22.1" || lr.Fingerprint != "h1:abc=" || !lr.BuildTime.Equal(r.BuildTime) {
		t.Errorf("record = %+v", lr)
	}

	if _, _, err := Load(t.TempDir()); !errors.Is(err, errs.ErrIO) {
		t.Errorf("err = %v, want ErrIO", err)
	}
	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, RecordFile), []byte("invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(bad); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}
