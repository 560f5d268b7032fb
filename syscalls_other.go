//go:build !(linux || freebsd || darwin || windows)

package detour

import (
	"errors"

	"github.com/pboyd/malloc"
)

var errUnsupportedOS = errors.New("unsupported operating system")

const (
	protRW  = 0
	protRX  = 0
	protRWX = 0

	protArenaExec = 0
)

type Protection struct{}

func mapAt(hint uintptr, size int) (uintptr, error) {
	return 0, memoryError("map", hint, errUnsupportedOS)
}

func unmap(addr uintptr, size int) error { return errUnsupportedOS }

func mprotect(addr uintptr, size int, prot int) error { return errUnsupportedOS }

func unprotect(start, end uintptr) (Protection, error) {
	return Protection{}, memoryError("unprotect", start, errUnsupportedOS)
}

func reprotect(start, end uintptr, _ Protection) error { return errUnsupportedOS }

func readableLen(_ uintptr, n int) int {
	return n
}

func codeArenaBackend() (malloc.ArenaBackend, error) {
	return nil, errUnsupportedOS
}
