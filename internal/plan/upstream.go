package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goplus/v4l2build/internal/logger"
	"golang.org/x/mod/semver"
)

var versionPatterns = []struct {
	file string
	re   *regexp.Regexp
}{
	{"configure.ac", regexp.MustCompile(`AC_INIT\(\s*\[[^\]]*\]\s*,\s*\[([0-9][^\]]*)\]`)},
	{"meson.build", regexp.MustCompile(`(?s)project\(.*?version\s*:\s*'([0-9][^']*)'`)},
}

// UpstreamVersion returns the semantic version the vendored tree at root
// declares, e.g. "v1.22.1".
func UpstreamVersion(root string) (string, error) {
	for _, p := range versionPatterns {
		data, err := os.ReadFile(filepath.Join(root, p.file))
		if err != nil {
			continue
		}
		m := p.re.FindSubmatch(data)
		if m == nil {
			continue
		}
		v := "v" + string(m[1])
		if !semver.IsValid(v) {
			return "", fmt.Errorf("%s declares version %q, which is not a semantic version", p.file, m[1])
		}
		return semver.Canonical(v), nil
	}
	return "", fmt.Errorf("no version found in %s", root)
}

// CheckUpstream compares the vendored tree's version with the manifest's
// minimum. Mismatches are logged, never fatal. It returns the detected
// version, or "" when none could be found.
func CheckUpstream(m *Manifest, root string) string {
	v, err := UpstreamVersion(root)
	if err != nil {
		logger.Warn("msg", "cannot determine vendored version", "err", err)
		return ""
	}
	if floor := m.Upstream.MinVersion; floor != "" && semver.Compare(v, floor) < 0 {
		logger.Warn("msg", "vendored tree is older than supported", "version", v, "min", floor)
	} else {
		logger.Info("msg", "vendored tree", "version", v)
	}
	return v
}
