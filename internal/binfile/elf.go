package binfile

import (
	"errors"

	"github.com/Binject/debug/elf"
)

func openELF(path string) (*File, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, err
	}

	f := &File{
		Format:  ELF,
		Base:    ^uint64(0),
		symbols: map[string]Symbol{},
		closer:  ef,
	}

	for _, prog := range ef.Progs {
		if prog.Type == elf.PT_LOAD && prog.Vaddr < f.Base {
			f.Base = prog.Vaddr &^ (max(prog.Align, 1) - 1)
		}
	}
	if f.Base == ^uint64(0) {
		f.Base = 0
	}

	for _, sec := range ef.Sections {
		if sec.Type != elf.SHT_PROGBITS || sec.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		f.sections = append(f.sections, section{
			addr: sec.Addr,
			size: sec.Size,
			data: sec.Data,
		})
	}

	// A stripped binary only has dynamic symbols.
	syms, err := ef.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		ef.Close()
		return nil, err
	}
	dyn, err := ef.DynamicSymbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		ef.Close()
		return nil, err
	}

	if len(syms) == 0 {
		if err := f.addGoFuncs(ef); err != nil {
			ef.Close()
			return nil, err
		}
	}

	for _, sym := range append(syms, dyn...) {
		if sym.Section == elf.SHN_UNDEF || sym.Value == 0 {
			continue
		}
		switch elf.ST_TYPE(sym.Info) {
		case elf.STT_FUNC, elf.STT_OBJECT:
		default:
			continue
		}
		f.add(Symbol{Name: sym.Name, Addr: sym.Value, Size: sym.Size})
	}

	return f, nil
}
