package internal

import (
	"path/filepath"

	"github.com/goplus/v4l2build/internal/build"
	"github.com/goplus/v4l2build/internal/env"
	"github.com/spf13/cobra"
)

// buildFlags are the flags shared by the commands that run or plan a build.
type buildFlags struct {
	target   string
	host     string
	outDir   string
	source   string
	manifest string
	backend  string
	jobs     int
	bindings string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.target, "target", "", "Target triple (default $"+env.TargetVar+")")
	fs.StringVar(&f.host, "host", "", "Host triple (default $"+env.HostVar+", then the running machine)")
	fs.StringVar(&f.outDir, "out-dir", "", "Output directory (default $"+env.OutDirVar+"/v4l2-build)")
	fs.StringVar(&f.source, "source", "", "Vendored v4l-utils tree (default $"+env.SourceVar+", then ./"+env.DefaultSourceDir+")")
	fs.StringVar(&f.manifest, "manifest", "", "Library manifest (default: built-in)")
	fs.StringVar(&f.backend, "backend", build.Direct, "Compiler backend: direct or make")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "Parallel compile jobs (default: number of CPUs)")
	fs.StringVar(&f.bindings, "bindgen", build.Bindgen, "Binding generator: bindgen or cgo")
}

// config merges the flags with the coordinator's environment. Flags win.
func (f *buildFlags) config(vars env.Vars) build.Config {
	cfg := build.Config{
		OutDir:    f.outDir,
		Target:    f.target,
		Host:      f.host,
		SourceDir: f.source,
		Manifest:  f.manifest,
		Backend:   f.backend,
		Jobs:      f.jobs,
		Bindings:  f.bindings,
	}
	if cfg.Target == "" {
		cfg.Target = vars.Target
	}
	if cfg.Host == "" {
		cfg.Host = vars.Host
	}
	if cfg.Host == "" {
		cfg.Host = env.HostTriple()
	}
	if cfg.OutDir == "" && vars.OutDir != "" {
		cfg.OutDir = filepath.Join(vars.OutDir, "v4l2-build")
	}
	if cfg.SourceDir == "" {
		cfg.SourceDir = vars.SourceDir
	}
	if cfg.SourceDir == "" {
		cfg.SourceDir = env.DefaultSourceDir
	}
	return cfg
}
