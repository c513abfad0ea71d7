// Package buildsys describes one compilation unit and the capability that
// turns it into a static library.
package buildsys

import (
	"context"
	"strings"
)

// Define is a preprocessor definition. An empty Value defines Name
// without a value.
type Define struct {
	Name  string
	Value string
}

// ParseDefine parses "NAME=VALUE" or "NAME".
func ParseDefine(s string) Define {
	name, value, _ := strings.Cut(s, "=")
	return Define{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
}

func (d Define) String() string {
	if d.Value == "" {
		return d.Name
	}
	return d.Name + "=" + d.Value
}

// Unit is everything needed to build one named static library.
type Unit struct {
	Name     string
	Sources  []string // canonical absolute paths, in compile order
	Includes []string
	Defines  []Define
	Target   string
	Host     string
	OptLevel int
	Warnings bool

	// ObjDir receives intermediate files; OutDir receives the archive.
	ObjDir string
	OutDir string
}

// Library is a compiled static library.
type Library struct {
	Name    string
	Target  string
	Archive string
}

// Compiler compiles and archives a Unit. Implementations block until the
// archive exists or the toolchain failed.
type Compiler interface {
	Compile(ctx context.Context, u Unit) (Library, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, u Unit) (Library, error)

func (f CompilerFunc) Compile(ctx context.Context, u Unit) (Library, error) {
	return f(ctx, u)
}
