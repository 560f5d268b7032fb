package binfile

import (
	"fmt"

	"github.com/Binject/debug/pe"
)

func openPE(path string) (*File, error) {
	pf, err := pe.Open(path)
	if err != nil {
		return nil, err
	}

	f := &File{
		Format:  PE,
		symbols: map[string]Symbol{},
		closer:  pf,
	}

	switch oh := pf.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		f.Base = uint64(oh.ImageBase)
	case *pe.OptionalHeader64:
		f.Base = oh.ImageBase
	default:
		pf.Close()
		return nil, fmt.Errorf("%s: unsupported PE optional header type", path)
	}

	for _, sec := range pf.Sections {
		if sec.Size == 0 {
			continue
		}
		f.sections = append(f.sections, section{
			addr: f.Base + uint64(sec.VirtualAddress),
			size: uint64(sec.VirtualSize),
			data: sec.Data,
		})
	}

	exports, err := pf.Exports()
	if err != nil {
		pf.Close()
		return nil, fmt.Errorf("%s: reading exports: %w", path, err)
	}
	for _, export := range exports {
		f.add(Symbol{Name: export.Name, Addr: f.Base + uint64(export.VirtualAddress)})
	}

	return f, nil
}
