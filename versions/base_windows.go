package versions

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

func moduleBase(path string) (uintptr, error) {
	var name *uint16

	// A nil name means the executable of the current process.
	if exe, err := os.Executable(); err != nil || !strings.EqualFold(filepath.Clean(exe), filepath.Clean(path)) {
		p, err := windows.UTF16PtrFromString(path)
		if err != nil {
			return 0, err
		}
		name = p
	}

	var module windows.Handle
	if err := windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, name, &module); err != nil {
		return 0, err
	}
	return uintptr(module), nil
}
