package binfile

import (
	"debug/gosym"
	"fmt"

	"github.com/Binject/debug/elf"
)

// addGoFuncs adds the functions listed in the Go runtime's line table. It
// fills in for .symtab, which `go test` and `-ldflags=-s` builds leave out.
// Binaries that aren't Go have no line table and add nothing.
func (f *File) addGoFuncs(ef *elf.File) error {
	pcln := ef.Section(".gopclntab")
	text := ef.Section(".text")
	if pcln == nil || text == nil {
		return nil
	}

	data, err := pcln.Data()
	if err != nil {
		return fmt.Errorf("reading .gopclntab: %w", err)
	}
	table, err := gosym.NewTable(nil, gosym.NewLineTable(data, text.Addr))
	if err != nil {
		return fmt.Errorf("parsing .gopclntab: %w", err)
	}

	for _, fn := range table.Funcs {
		f.add(Symbol{Name: fn.Name, Addr: fn.Entry, Size: fn.End - fn.Entry})
	}
	return nil
}
