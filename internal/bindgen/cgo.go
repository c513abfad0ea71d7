package bindgen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"strings"
)

// Cgo writes a Go file whose cgo preamble includes the umbrella header,
// for consumers binding the libraries from Go.
type Cgo struct {
	Package string // defaults to "v4l2"
}

func (g *Cgo) FileName() string { return "bindings.go" }

func (g *Cgo) Generate(_ context.Context, req Request) ([]byte, error) {
	pkg := g.Package
	if pkg == "" {
		pkg = "v4l2"
	}
	var b bytes.Buffer
	b.WriteString("// Code generated by v4l2build. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n/*\n", pkg)
	if len(req.Includes) > 0 {
		flags := make([]string, len(req.Includes))
		for i, inc := range req.Includes {
			flags[i] = "-I" + inc
		}
		fmt.Fprintf(&b, "#cgo CFLAGS: %s\n", strings.Join(flags, " "))
	}
	fmt.Fprintf(&b, "#include %q\n", req.Umbrella)
	for _, h := range req.Headers {
		fmt.Fprintf(&b, "#include %q\n", h)
	}
	b.WriteString("*/\nimport \"C\"\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}
