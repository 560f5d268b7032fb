//go:build !(linux || windows)

package versions

import (
	"errors"
	"runtime"
)

func moduleBase(string) (uintptr, error) {
	return 0, errors.New("load base discovery is not supported on " + runtime.GOOS)
}
