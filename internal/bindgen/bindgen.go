// Package bindgen runs the binding generator over the curated public
// headers of the vendored tree.
package bindgen

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/logger"
)

//go:embed wrapper.h
var wrapperH []byte

// WrapperName is the file name of the built-in umbrella header.
const WrapperName = "wrapper.h"

// Request describes one generation.
type Request struct {
	// Headers are the public headers to expose, as absolute paths into
	// the original vendored tree.
	Headers []string

	// Umbrella is the header handed to the generator. When empty the
	// built-in wrapper.h is written to OutDir and used.
	Umbrella string

	Includes []string
	Target   string

	OutDir string
	Output string // file name in OutDir; the generator's default if empty
}

// Generator produces bindings source for a request.
type Generator interface {
	// FileName is the default output file name.
	FileName() string
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Invoker runs a Generator and stores its output.
type Invoker struct {
	Generator Generator
}

// Invoke generates the bindings and returns the path of the written file.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (string, error) {
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return "", errs.IO("create directory", req.OutDir, err)
	}
	if req.Umbrella == "" {
		req.Umbrella = filepath.Join(req.OutDir, WrapperName)
		if err := os.WriteFile(req.Umbrella, wrapperH, 0o644); err != nil {
			return "", errs.IO("write", req.Umbrella, err)
		}
	}
	for _, h := range req.Headers {
		if _, err := os.Stat(h); err != nil {
			return "", errs.BindingGeneration(fmt.Errorf("header %s: %w", h, err))
		}
	}
	if req.Output == "" {
		req.Output = inv.Generator.FileName()
	}

	logger.Info("msg", "generating bindings", "headers", len(req.Headers), "umbrella", req.Umbrella)
	src, err := inv.Generator.Generate(ctx, req)
	if err != nil {
		return "", errs.BindingGeneration(err)
	}
	out := filepath.Join(req.OutDir, req.Output)
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return "", errs.IO("write", out, err)
	}
	return out, nil
}
