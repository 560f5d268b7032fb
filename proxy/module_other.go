//go:build !(linux || windows)

package proxy

import (
	"errors"
	"runtime"
)

// Open is not supported on this platform.
func Open(path string) (Module, error) {
	return nil, errors.New("opening modules is not supported on " + runtime.GOOS)
}
