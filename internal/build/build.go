// Package build runs one build of the vendored libraries: stage, plan,
// compile, generate bindings, package.
package build

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/goplus/v4l2build/internal/artifact"
	"github.com/goplus/v4l2build/internal/bindgen"
	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/hosttool"
	"github.com/goplus/v4l2build/internal/logger"
	"github.com/goplus/v4l2build/internal/plan"
	"github.com/goplus/v4l2build/internal/workspace"
	"github.com/goplus/v4l2build/pkgs/buildsys"
	"github.com/goplus/v4l2build/x/cc"
	"github.com/goplus/v4l2build/x/gnumake"
)

// Result is what a successful build produced.
type Result struct {
	Artifacts   artifact.Artifacts
	Bindings    string // path of the generated bindings file
	Upstream    string // version declared by the vendored tree, if found
	Fingerprint string // content hash of the staged tree
}

type Builder struct {
	cfg      Config
	manifest *plan.Manifest
	compiler buildsys.Compiler
	gen      bindgen.Generator

	mu    sync.Mutex
	state State
}

// Option customizes a Builder.
type Option func(*Builder)

// WithManifest uses m instead of loading Config.Manifest.
func WithManifest(m *plan.Manifest) Option {
	return func(b *Builder) { b.manifest = m }
}

// WithCompiler replaces the compiler selected by Config.Backend.
func WithCompiler(c buildsys.Compiler) Option {
	return func(b *Builder) { b.compiler = c }
}

// WithGenerator replaces the generator selected by Config.Bindings.
func WithGenerator(g bindgen.Generator) Option {
	return func(b *Builder) { b.gen = g }
}

// New returns a Builder for cfg. The Builder keeps its own copy of cfg.
func New(cfg Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if b.compiler == nil {
		if cfg.Backend == Make {
			b.compiler = gnumake.New(cfg.Jobs)
		} else {
			b.compiler = cc.New(cfg.Jobs)
		}
	}
	if b.gen == nil {
		if cfg.Bindings == Cgo {
			b.gen = &bindgen.Cgo{}
		} else {
			b.gen = &bindgen.Command{}
		}
	}
	return b
}

// Config returns the configuration the Builder was created with.
func (b *Builder) Config() Config {
	return b.cfg
}

// State returns how far the last Build got.
func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Builder) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	logger.Debug("msg", "state", "state", s)
}

func (b *Builder) loadManifest() (*plan.Manifest, error) {
	if b.manifest != nil {
		return b.manifest, nil
	}
	if b.cfg.Manifest == "" {
		return plan.Default(), nil
	}
	return plan.Load(b.cfg.Manifest)
}

// Plan plans the build against the original vendored tree, without
// touching the output directory.
func (b *Builder) Plan() (*plan.Plan, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	cfg, err := b.cfg.resolved()
	if err != nil {
		return nil, errs.InPhase("planning", err)
	}
	m, err := b.loadManifest()
	if err != nil {
		return nil, errs.InPhase("planning", err)
	}
	p, err := plan.New(m, cfg.SourceDir).Plan(cfg.Target, cfg.Host)
	return p, errs.InPhase("planning", err)
}

// Build runs every phase in order. Any failure aborts the build and leaves
// the output directory for the next build to wipe.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	b.setState(Configured)
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	cfg, err := b.cfg.resolved()
	if err != nil {
		return nil, errs.InPhase("staging", err)
	}
	m, err := b.loadManifest()
	if err != nil {
		return nil, errs.InPhase("loading manifest", err)
	}
	logger.Info("msg", "build", "target", cfg.Target, "host", cfg.Host, "make", hosttool.Make(cfg.Host))

	layout := workspace.NewLayout(cfg.OutDir)
	if err := layout.Reset(); err != nil {
		return nil, errs.InPhase("preparing build directory", err)
	}

	if err := workspace.Stage(cfg.SourceDir, layout.Src); err != nil {
		return nil, errs.InPhase("staging", err)
	}
	fingerprint, err := workspace.Fingerprint(layout.Src)
	if err != nil {
		return nil, errs.InPhase("staging", err)
	}
	b.setState(Staged)
	upstream := plan.CheckUpstream(m, cfg.SourceDir)

	p, err := plan.New(m, layout.Src).Plan(cfg.Target, cfg.Host)
	if err != nil {
		return nil, errs.InPhase("planning", err)
	}
	b.setState(Planned)

	b.setState(Compiling)
	libs := make([]buildsys.Library, 0, len(p.Units))
	for _, u := range p.Units {
		u.ObjDir = layout.Obj
		u.OutDir = filepath.Join(layout.Obj, "lib")
		lib, err := b.compiler.Compile(ctx, u)
		if err != nil {
			return nil, errs.InPhase("compiling library "+u.Name, err)
		}
		logger.Info("msg", "compiled", "lib", lib.Name, "archive", lib.Archive)
		libs = append(libs, lib)
	}

	// Bindings come from the original tree, not the staged copy.
	req := bindgen.Request{
		Headers:  plan.Headers(cfg.SourceDir, m.Bindings.Headers),
		Includes: plan.Headers(cfg.SourceDir, m.Includes.Dirs),
		Target:   cfg.Target,
		OutDir:   layout.Gen,
		Output:   m.Bindings.Output,
	}
	if m.Bindings.Umbrella != "" {
		req.Umbrella = filepath.Join(cfg.SourceDir, filepath.FromSlash(m.Bindings.Umbrella))
	}
	bindings, err := (&bindgen.Invoker{Generator: b.gen}).Invoke(ctx, req)
	if err != nil {
		return nil, errs.InPhase("generating bindings", err)
	}
	b.setState(BindingsGenerated)

	if err := layout.DropSources(); err != nil {
		return nil, errs.InPhase("cleaning up", err)
	}

	a, err := artifact.Package(layout.Install, cfg.Target, libs, plan.Headers(cfg.SourceDir, m.Install.Headers))
	if err == nil {
		err = artifact.WritePkgConfig(a, upstream)
	}
	if err == nil {
		err = artifact.Save(layout.Install, artifact.NewRecord(a, upstream, fingerprint))
	}
	if err != nil {
		return nil, errs.InPhase("packaging", err)
	}
	b.setState(Packaged)
	logger.Info("msg", "packaged", "install", layout.Install, "libs", len(libs))

	return &Result{Artifacts: a, Bindings: bindings, Upstream: upstream, Fingerprint: fingerprint}, nil
}
