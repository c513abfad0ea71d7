// Package hosttool picks external tool names that depend on the host.
package hosttool

import (
	"strings"

	"github.com/hairyhenderson/go-which"
)

// gmakeHosts ship a make that is not GNU make under the plain name.
var gmakeHosts = []string{"dragonfly", "freebsd", "openbsd", "solaris", "illumos"}

// Make returns the GNU make binary name for a host triple.
func Make(host string) string {
	for _, marker := range gmakeHosts {
		if strings.Contains(host, marker) {
			return "gmake"
		}
	}
	return "make"
}

// Lookup resolves name against PATH. It reports false when nothing was
// found.
func Lookup(name string) (string, bool) {
	path := which.Which(name)
	return path, path != ""
}
