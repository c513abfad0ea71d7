package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/v4l2build/internal/bindgen"
	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/pkgs/buildsys"
)

// mockCompiler writes an archive listing the unit's sources.
type mockCompiler struct {
	units  []buildsys.Unit
	failOn string
}

func (m *mockCompiler) Compile(_ context.Context, u buildsys.Unit) (buildsys.Library, error) {
	m.units = append(m.units, u)
	if u.Name == m.failOn {
		return buildsys.Library{}, &errs.ToolError{Command: []string{"cc", "-c", u.Sources[0]}, Status: "exit status 1"}
	}
	if err := os.MkdirAll(u.OutDir, 0o755); err != nil {
		return buildsys.Library{}, err
	}
	archive := filepath.Join(u.OutDir, "lib"+u.Name+".a")
	if err := os.WriteFile(archive, []byte(strings.Join(u.Sources, "\n")), 0o644); err != nil {
		return buildsys.Library{}, err
	}
	return buildsys.Library{Name: u.Name, Target: u.Target, Archive: archive}, nil
}

// mockGenerator returns fixed bindings.
type mockGenerator struct {
	reqs []bindgen.Request
	fail bool
}

func (m *mockGenerator) FileName() string { return "bindings.rs" }

func (m *mockGenerator) Generate(_ context.Context, req bindgen.Request) ([]byte, error) {
	m.reqs = append(m.reqs, req)
	if m.fail {
		return nil, errors.New("libv4l2.h:12: unknown type name")
	}
	return []byte("/* bindings */\n"), nil
}
