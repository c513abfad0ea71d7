package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/logger"
	"github.com/goplus/v4l2build/internal/walk"
	"github.com/goplus/v4l2build/pkgs/buildsys"
)

// Plan is the ordered list of units for one target.
type Plan struct {
	Target   string
	Host     string
	Includes []string
	Units    []buildsys.Unit
}

// Unit returns the unit building the named library.
func (p *Plan) Unit(name string) (buildsys.Unit, bool) {
	for _, u := range p.Units {
		if u.Name == name {
			return u, true
		}
	}
	return buildsys.Unit{}, false
}

// Planner resolves a manifest against a source tree.
type Planner struct {
	m    *Manifest
	root string
}

// New returns a Planner for the tree at root, normally the staged copy.
func New(m *Manifest, root string) *Planner {
	return &Planner{m: m, root: root}
}

// Plan produces one unit per library in manifest order. Every source is
// checked to exist and is canonicalized. ObjDir and OutDir are left for
// the caller.
func (p *Planner) Plan(target, host string) (*Plan, error) {
	root, err := walk.Canonical(p.root)
	if err != nil {
		return nil, errs.NotADirectory(p.root)
	}
	includes, err := p.includes(root)
	if err != nil {
		return nil, err
	}
	extra := p.platformSources(root, target)

	resolved := make(map[string][]string, len(p.m.Libraries))
	out := &Plan{Target: target, Host: host, Includes: includes}
	for _, lib := range p.m.Libraries {
		var sources []string
		if lib.Extends != "" {
			sources = append(sources, resolved[lib.Extends]...)
		}
		own, err := p.ownSources(root, lib)
		if err != nil {
			return nil, err
		}
		sources = append(sources, own...)
		sources = append(sources, extra[lib.Name]...)

		sources, err = canonicalize(sources)
		if err != nil {
			return nil, err
		}
		resolved[lib.Name] = sources

		defines := mergeDefines(p.m.Defines, lib.Defines)
		out.Units = append(out.Units, buildsys.Unit{
			Name:     lib.Name,
			Sources:  sources,
			Includes: append([]string(nil), includes...),
			Defines:  defines,
			Target:   target,
			Host:     host,
			OptLevel: p.m.OptLevel,
			Warnings: p.m.Warnings,
		})
		logger.Debug("msg", "planned", "lib", lib.Name, "sources", len(sources))
	}
	return out, nil
}

func (p *Planner) includes(root string) ([]string, error) {
	var dirs []string
	for _, dir := range p.m.Includes.Dirs {
		abs := filepath.Join(root, filepath.FromSlash(dir))
		if p.m.Includes.Strategy != Walk {
			dirs = append(dirs, abs)
			continue
		}
		var opts []walk.Option
		if p.m.Includes.Exclude != "" {
			opts = append(opts, walk.Exclude(p.m.Includes.Exclude))
		}
		found, err := walk.Dirs(abs, "h", opts...)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, found...)
	}
	if p.m.Includes.Strategy == Walk && len(dirs) == 0 {
		return nil, errs.NotADirectory(root)
	}

	out := make([]string, 0, len(dirs))
	seen := make(map[string]bool)
	for _, dir := range dirs {
		canonical, err := walk.Canonical(dir)
		if err != nil {
			return nil, errs.NotADirectory(dir)
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out, nil
}

// ownSources lists the sources a library declares itself, before
// exclusion patterns are applied.
func (p *Planner) ownSources(root string, lib Library) ([]string, error) {
	var sources []string
	for _, src := range lib.Sources {
		sources = append(sources, filepath.Join(root, filepath.FromSlash(src)))
	}
	for _, dir := range lib.SourceDirs {
		found, err := walk.Files(filepath.Join(root, filepath.FromSlash(dir)), "c")
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}
	if len(lib.Exclude) == 0 {
		return sources, nil
	}

	kept := sources[:0]
	for _, src := range sources {
		excluded, err := excluded(root, src, lib.Exclude)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lib.Name, err)
		}
		if !excluded {
			kept = append(kept, src)
		}
	}
	return kept, nil
}

func excluded(root, src string, patterns []string) (bool, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return false, fmt.Errorf("failed to relate %s to %s: %w", src, root, err)
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// platformSources evaluates the platform rules once for target.
func (p *Planner) platformSources(root, target string) map[string][]string {
	extra := make(map[string][]string)
	for _, r := range p.m.Platform {
		if !strings.Contains(target, r.Target) {
			continue
		}
		for _, src := range r.Sources {
			extra[r.Library] = append(extra[r.Library], filepath.Join(root, filepath.FromSlash(src)))
		}
		logger.Info("msg", "platform rule applied", "target", target, "lib", r.Library, "sources", len(r.Sources))
	}
	return extra
}

// canonicalize resolves every path and drops repeated entries, keeping
// the first occurrence.
func canonicalize(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		canonical, err := walk.Canonical(path)
		if err != nil {
			return nil, err
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out, nil
}

// mergeDefines appends the library defines to the global ones. A library
// define replaces a global one of the same name in place.
func mergeDefines(global, local []string) []buildsys.Define {
	var out []buildsys.Define
	index := make(map[string]int)
	for _, list := range [][]string{global, local} {
		for _, s := range list {
			d := buildsys.ParseDefine(s)
			if i, ok := index[d.Name]; ok {
				out[i] = d
				continue
			}
			index[d.Name] = len(out)
			out = append(out, d)
		}
	}
	return out
}

// Headers resolves manifest-relative header paths against root.
func Headers(root string, rel []string) []string {
	out := make([]string, len(rel))
	for i, h := range rel {
		out[i] = filepath.Join(root, filepath.FromSlash(h))
	}
	return out
}
