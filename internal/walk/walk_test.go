package walk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/goplus/v4l2build/internal/errs"
)

// mktree creates the given files (relative, slash separated) under a fresh
// temp dir and returns its canonical path.
func mktree(t *testing.T, files ...string) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if strings.HasSuffix(f, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFiles(t *testing.T) {
	root := mktree(t,
		"a.c", "b.h", "x/c.c", "x/y/d.c", "x/y/e.txt", "z/", "w/f.c.bak", "w/g.C",
	)
	got, err := Files(root, "c")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.c", "x/c.c", "x/y/d.c"}
	if g := rel(t, root, got); strings.Join(g, " ") != strings.Join(want, " ") {
		t.Errorf("Files = %v, want %v", g, want)
	}

	// A leading dot selects the same extension.
	dotted, err := Files(root, ".c")
	if err != nil {
		t.Fatal(err)
	}
	if len(dotted) != len(got) {
		t.Errorf("Files(.c) = %v, want %v", dotted, got)
	}
}

// Files agrees with a manual enumeration of the tree.
func TestFilesMatchesManualEnumeration(t *testing.T) {
	root := mktree(t,
		"lib/libv4l2/libv4l2.c", "lib/libv4l2/log.c", "lib/libv4l1/log.c",
		"lib/libv4lconvert/processing/gamma.c", "lib/libv4lconvert/control/libv4lcontrol.c",
		"lib/include/libv4l2.h", "utils/qv4l2/qv4l2.cpp", "contrib/test/x.c",
	)
	got, err := Files(root, "c")
	if err != nil {
		t.Fatal(err)
	}

	var want []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".c" {
			want = append(want, path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Files mismatch\ngot:  %s\nwant: %s", spew.Sdump(got), spew.Sdump(want))
	}
}

func TestDirs(t *testing.T) {
	root := mktree(t,
		"include/linux/videodev2.h",
		"include/linux/sub/deeper.h",
		"include/media/v4l2-subdev.h",
		"lib/include/libv4l2.h",
		"lib/include/nested/ignored.h",
		"lib/libv4l2/libv4l2.c",
		"lib/libv4l2/private/priv.h",
		"empty/",
	)

	got, err := Dirs(root, "h")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"include/linux", "include/media", "lib/include", "lib/libv4l2/private"}
	if g := rel(t, root, got); strings.Join(g, " ") != strings.Join(want, " ") {
		t.Errorf("Dirs = %v, want %v", g, want)
	}

	got, err = Dirs(root, "h", Exclude("private"))
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"include/linux", "include/media", "lib/include"}
	if g := rel(t, root, got); strings.Join(g, " ") != strings.Join(want, " ") {
		t.Errorf("Dirs(Exclude) = %v, want %v", g, want)
	}
}

func TestDirsRootQualifies(t *testing.T) {
	root := mktree(t, "top.h", "sub/inner.h")
	got, err := Dirs(root, "h")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != root {
		t.Errorf("Dirs = %v, want [%s]", got, root)
	}
}

// No directory is returned twice, and none is nested under another.
func TestDirsUniqueAndNotNested(t *testing.T) {
	root := mktree(t,
		"a/1.h", "a/2.h", "a/3.h", "a/b/4.h", "c/d/5.h", "c/d/e/6.h", "c/f/7.h", "g/h/i/8.h",
	)
	got, err := Dirs(root, "h")
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, d := range got {
		if seen[d] {
			t.Errorf("duplicate directory %s", d)
		}
		seen[d] = true
	}
	for _, a := range got {
		for _, b := range got {
			if a != b && strings.HasPrefix(b, a+string(filepath.Separator)) {
				t.Errorf("%s is nested under %s", b, a)
			}
		}
	}
	if want := 4; len(got) != want {
		t.Errorf("got %d dirs, want %d: %v", len(got), want, got)
	}
}

func TestExcludeMatchesWholeSegment(t *testing.T) {
	root := mktree(t, "privateer/a.h", "private/b.h")
	got, err := Dirs(root, "h", Exclude("private"))
	if err != nil {
		t.Fatal(err)
	}
	if g := rel(t, root, got); len(g) != 1 || g[0] != "privateer" {
		t.Errorf("Dirs = %v, want [privateer]", g)
	}
}

func TestNotADirectory(t *testing.T) {
	root := mktree(t, "file.h")
	for _, p := range []string{filepath.Join(root, "missing"), filepath.Join(root, "file.h")} {
		if _, err := Files(p, "h"); !errors.Is(err, errs.ErrNotADirectory) {
			t.Errorf("Files(%s) err = %v, want ErrNotADirectory", p, err)
		}
		if _, err := Dirs(p, "h"); !errors.Is(err, errs.ErrNotADirectory) {
			t.Errorf("Dirs(%s) err = %v, want ErrNotADirectory", p, err)
		}
	}
}

func TestBrokenEntryIsIOError(t *testing.T) {
	root := mktree(t, "ok.c")
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling.c")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	got, err := Files(root, "c")
	if !errors.Is(err, errs.ErrIO) {
		t.Errorf("err = %v, want ErrIO", err)
	}
	if got != nil {
		t.Errorf("partial result returned on error: %v", got)
	}
}

func TestCanonical(t *testing.T) {
	root := mktree(t, "a/b.c")
	got, err := Canonical(filepath.Join(root, "a", "..", "a", "b.c"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "a", "b.c"); got != want {
		t.Errorf("Canonical = %q, want %q", got, want)
	}
}

func TestSymlinkCycle(t *testing.T) {
	root := mktree(t, "a/b/x.c", "shared/y.c")
	if err := os.Symlink(root, filepath.Join(root, "a", "b", "up")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	_, err := Files(root, "c")
	if !errors.Is(err, errs.ErrIO) || !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want an ErrIO caused by ErrCycle", err)
	}
}

// A link to a directory outside the current path is not a cycle.
func TestSymlinkToSibling(t *testing.T) {
	root := mktree(t, "a/x.c", "shared/y.c")
	if err := os.Symlink(filepath.Join(root, "shared"), filepath.Join(root, "a", "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	got, err := Files(root, "c")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a/x.c", "shared/y.c"}
	if g := rel(t, root, got); strings.Join(g, " ") != strings.Join(want, " ") {
		t.Errorf("Files = %v, want %v", g, want)
	}
}
