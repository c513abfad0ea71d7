package artifact

import (
	"fmt"
	"io"
	"strings"
)

// Output formats of Emit.
const (
	Cargo = "cargo"
	Cgo   = "cgo"
)

// Directive is one key/value instruction to the host build coordinator.
type Directive struct {
	Key   string
	Value string
}

func (d Directive) String() string {
	return "cargo:" + d.Key + "=" + d.Value
}

var wasiEmulated = []string{
	"wasi-emulated-signal",
	"wasi-emulated-process-clocks",
	"wasi-emulated-mman",
	"wasi-emulated-getpid",
}

// Directives returns the link instructions for a: the native search
// path, one static link per library in order, the include and library
// directories, then the system libraries the target needs.
func Directives(a Artifacts) []Directive {
	ds := []Directive{{"rustc-link-search", "native=" + a.libDir}}
	for _, lib := range a.libs {
		ds = append(ds, Directive{"rustc-link-lib", "static=" + lib})
	}
	ds = append(ds,
		Directive{"include", a.includeDir},
		Directive{"lib", a.libDir},
	)
	switch {
	case strings.Contains(a.target, "msvc"):
		ds = append(ds, Directive{"rustc-link-lib", "user32"})
	case a.target == "wasm32-wasi":
		for _, lib := range wasiEmulated {
			ds = append(ds, Directive{"rustc-link-lib", lib})
		}
	}
	return ds
}

// Emit writes the directives of a to w in the given format.
func Emit(w io.Writer, a Artifacts, format string) error {
	switch format {
	case "", Cargo:
		for _, d := range Directives(a) {
			if _, err := fmt.Fprintln(w, d); err != nil {
				return err
			}
		}
		return nil
	case Cgo:
		_, err := io.WriteString(w, cgoFlags(Directives(a)))
		return err
	}
	return fmt.Errorf("unknown metadata format %q", format)
}

// cgoFlags renders directives as #cgo lines.
func cgoFlags(ds []Directive) string {
	var cflags, ldflags []string
	for _, d := range ds {
		switch d.Key {
		case "include":
			cflags = append(cflags, "-I"+d.Value)
		case "rustc-link-search":
			ldflags = append(ldflags, "-L"+strings.TrimPrefix(d.Value, "native="))
		case "rustc-link-lib":
			ldflags = append(ldflags, "-l"+strings.TrimPrefix(d.Value, "static="))
		}
	}
	return fmt.Sprintf("#cgo CFLAGS: %s\n#cgo LDFLAGS: %s\n",
		strings.Join(cflags, " "), strings.Join(ldflags, " "))
}
