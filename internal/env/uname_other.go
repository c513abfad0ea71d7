//go:build !unix

package env

func uname() (arch, goos string, ok bool) {
	return "", "", false
}
