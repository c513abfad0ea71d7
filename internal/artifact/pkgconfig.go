package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/v4l2build/internal/errs"
)

// WritePkgConfig writes lib/pkgconfig/<name>.pc for every library.
// version is the vendored tree's version; it may be empty.
func WritePkgConfig(a Artifacts, version string) error {
	dir := filepath.Join(a.libDir, "pkgconfig")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.IO("create directory", dir, err)
	}
	version = strings.TrimPrefix(version, "v")
	if version == "" {
		version = "0.0.0"
	}
	prefix := filepath.Dir(a.libDir)
	for _, name := range a.libs {
		path := filepath.Join(dir, name+".pc")
		if err := os.WriteFile(path, []byte(pcFile(prefix, name, version)), 0o644); err != nil {
			return errs.IO("write", path, err)
		}
	}
	return nil
}

func pcFile(prefix, name, version string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "prefix=%s\n", filepath.ToSlash(prefix))
	b.WriteString("includedir=${prefix}/include\n")
	b.WriteString("libdir=${prefix}/lib\n\n")
	fmt.Fprintf(&b, "Name: lib%s\n", name)
	fmt.Fprintf(&b, "Description: static lib%s from the vendored v4l-utils tree\n", name)
	fmt.Fprintf(&b, "Version: %s\n", version)
	b.WriteString("Cflags: -I${includedir}\n")
	fmt.Fprintf(&b, "Libs: -L${libdir} -l%s\n", name)
	return b.String()
}
