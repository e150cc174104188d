//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package diagnostic

func isTerminal(fd uintptr) bool {
	return false
}
