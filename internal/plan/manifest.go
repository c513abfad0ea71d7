// Package plan turns the library manifest into ordered compilation units.
package plan

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/goplus/v4l2build/internal/errs"
	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var defaultManifest []byte

// Include strategies.
const (
	Fixed = "fixed"
	Walk  = "walk"
)

// Manifest is the declarative description of the libraries to build.
type Manifest struct {
	Includes  Includes  `yaml:"includes"`
	Defines   []string  `yaml:"defines"`
	OptLevel  int       `yaml:"opt_level"`
	Warnings  bool      `yaml:"warnings"`
	Libraries []Library `yaml:"libraries"`
	Platform  []Rule    `yaml:"platform"`
	Bindings  Bindings  `yaml:"bindings"`
	Install   Install   `yaml:"install"`
	Upstream  Upstream  `yaml:"upstream"`
}

// Includes selects the include directories passed to every unit.
//
// With the fixed strategy Dirs are used as they are. With the walk
// strategy every directory below Dirs holding a header is used, except
// those below a path segment named Exclude.
type Includes struct {
	Strategy string   `yaml:"strategy"`
	Dirs     []string `yaml:"dirs"`
	Exclude  string   `yaml:"exclude"`
}

// Library is one static library. Its sources are, in order: the sources
// of the library it extends, Sources, then the C files found under
// SourceDirs. Exclude patterns (doublestar syntax, relative to the tree
// root) filter the library's own sources.
type Library struct {
	Name       string   `yaml:"name"`
	Extends    string   `yaml:"extends"`
	Sources    []string `yaml:"sources"`
	SourceDirs []string `yaml:"source_dirs"`
	Exclude    []string `yaml:"exclude"`
	Defines    []string `yaml:"defines"`
}

// Rule appends Sources to Library when the target triple contains Target.
type Rule struct {
	Target  string   `yaml:"target"`
	Library string   `yaml:"library"`
	Sources []string `yaml:"sources"`
}

type Bindings struct {
	Headers  []string `yaml:"headers"`
	Umbrella string   `yaml:"umbrella"`
	Output   string   `yaml:"output"`
}

type Install struct {
	Headers []string `yaml:"headers"`
}

type Upstream struct {
	MinVersion string `yaml:"min_version"`
}

// Default returns the built-in manifest.
func Default() *Manifest {
	m, err := Parse(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("built-in manifest: %v", err))
	}
	return m
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO("read manifest", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Manifest, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	m := &Manifest{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the relations the schema cannot express: library names
// are unique, a library extends only a library listed before it, and
// platform rules name known libraries.
func (m *Manifest) Validate() error {
	if len(m.Libraries) == 0 {
		return fmt.Errorf("manifest declares no library")
	}
	switch m.Includes.Strategy {
	case "", Fixed, Walk:
	default:
		return fmt.Errorf("unknown include strategy %q", m.Includes.Strategy)
	}
	seen := make(map[string]bool)
	for _, lib := range m.Libraries {
		if lib.Name == "" {
			return fmt.Errorf("library without a name")
		}
		if seen[lib.Name] {
			return fmt.Errorf("library %s declared twice", lib.Name)
		}
		if lib.Extends != "" && !seen[lib.Extends] {
			return fmt.Errorf("library %s extends %s, which is not declared before it", lib.Name, lib.Extends)
		}
		seen[lib.Name] = true
	}
	for _, r := range m.Platform {
		if !seen[r.Library] {
			return fmt.Errorf("platform rule for %q names unknown library %s", r.Target, r.Library)
		}
	}
	return nil
}

// LibraryNames returns the library names in build order.
func (m *Manifest) LibraryNames() []string {
	names := make([]string, len(m.Libraries))
	for i, lib := range m.Libraries {
		names[i] = lib.Name
	}
	return names
}
