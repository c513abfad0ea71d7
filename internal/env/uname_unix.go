//go:build unix

package env

import (
	"strings"

	"golang.org/x/sys/unix"
)

func uname() (arch, goos string, ok bool) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", "", false
	}
	sys := strings.ToLower(unix.ByteSliceToString(u.Sysname[:]))
	machine := unix.ByteSliceToString(u.Machine[:])

	switch sys {
	case "sunos":
		goos = "solaris"
	default:
		// linux, darwin, freebsd, openbsd, netbsd, dragonfly already
		// match the Go names.
		goos = sys
	}
	switch machine {
	case "x86_64", "amd64", "i86pc":
		arch = "amd64"
	case "aarch64", "arm64":
		arch = "arm64"
	case "i386", "i686":
		arch = "386"
	default:
		arch = machine
	}
	return arch, goos, goos != "" && arch != ""
}
