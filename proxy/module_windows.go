package proxy

import (
	"fmt"

	"github.com/pboyd/detour"
	"golang.org/x/sys/windows"
)

type library struct {
	handle windows.Handle
}

// Open loads the DLL at path. It stays loaded for the life of the process.
func Open(path string) (Module, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return &library{handle: handle}, nil
}

func (l *library) Lookup(symbol string) (uintptr, error) {
	addr, err := windows.GetProcAddress(l.handle, symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", detour.ErrUnknownSymbol, symbol, err)
	}
	return addr, nil
}
