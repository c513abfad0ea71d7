// Package env reads the build coordinator's environment.
//
// Only the CLI layer calls into this package; the build core receives
// everything as an explicit build.Config.
package env

import (
	"os"
	"runtime"
)

// Version of v4l2build.
const Version = "v0.3.1"

// Names of the variables set by the host build coordinator.
const (
	TargetVar = "TARGET"
	HostVar   = "HOST"
	OutDirVar = "OUT_DIR"
	SourceVar = "V4L2BUILD_SOURCE_DIR"
)

// DefaultSourceDir is where the vendored tree lives, relative to the
// directory the tool runs from.
const DefaultSourceDir = "v4l-utils"

// Vars is a snapshot of the coordinator variables. Empty fields were not
// set.
type Vars struct {
	Target    string
	Host      string
	OutDir    string
	SourceDir string
}

// FromEnviron reads Vars from the process environment.
func FromEnviron() Vars {
	return Vars{
		Target:    os.Getenv(TargetVar),
		Host:      os.Getenv(HostVar),
		OutDir:    os.Getenv(OutDirVar),
		SourceDir: os.Getenv(SourceVar),
	}
}

// HostTriple returns the triple of the machine running the tool. It
// prefers what the kernel reports and falls back to the Go runtime's view.
func HostTriple() string {
	if arch, goos, ok := uname(); ok {
		return triple(arch, goos)
	}
	return triple(runtime.GOARCH, runtime.GOOS)
}

// triple maps Go-style arch and OS names to a target triple.
func triple(arch, goos string) string {
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "386":
		arch = "i686"
	case "arm64":
		arch = "aarch64"
	case "arm":
		arch = "armv7"
	case "ppc64le":
		arch = "powerpc64le"
	case "riscv64":
		arch = "riscv64gc"
	case "wasm":
		arch = "wasm32"
	}
	switch goos {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "android":
		return arch + "-linux-android"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	case "solaris":
		return arch + "-pc-solaris"
	case "illumos":
		return arch + "-unknown-illumos"
	case "wasip1":
		return arch + "-wasi"
	default:
		return arch + "-unknown-" + goos
	}
}
