package proxy

import (
	"fmt"
	"path/filepath"

	"github.com/pboyd/detour"
	"github.com/pboyd/detour/internal/binfile"
	"github.com/pboyd/detour/internal/procmaps"
)

type mappedModule struct {
	base    uintptr
	symbols map[string]uintptr
}

// Open returns the module at path, which must already be mapped into the
// process.
func Open(path string) (Module, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	maps, err := procmaps.Read()
	if err != nil {
		return nil, err
	}
	base, ok := procmaps.Base(maps, path)
	if !ok {
		return nil, fmt.Errorf("%s is not loaded", path)
	}

	f, err := binfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := &mappedModule{base: base, symbols: map[string]uintptr{}}
	for _, sym := range f.Symbols("") {
		m.symbols[sym.Name] = uintptr(sym.Addr-f.Base) + base
	}
	return m, nil
}

func (m *mappedModule) Lookup(symbol string) (uintptr, error) {
	addr, ok := m.symbols[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", detour.ErrUnknownSymbol, symbol)
	}
	return addr, nil
}
