// Package binfile reads the symbol tables of ELF and PE executables.
package binfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Format identifies the container format of a File.
type Format string

const (
	ELF Format = "elf"
	PE  Format = "pe"
)

// Symbol is a named function or object. Addr is the link-time virtual
// address. Size is zero when the format doesn't record it.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
}

// section is a range of the image backed by file data.
type section struct {
	addr uint64
	data func() ([]byte, error)
	size uint64
}

// File is an opened executable or shared library.
type File struct {
	Format Format

	// Base is the lowest address the image was linked at.
	Base uint64

	symbols  map[string]Symbol
	sections []section
	closer   io.Closer
}

var errUnknownFormat = errors.New("unrecognized executable format")

// Open reads the symbol table of the executable at path.
func Open(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(fh, magic); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch {
	case string(magic) == "\x7fELF":
		return openELF(path)
	case string(magic[:2]) == "MZ":
		return openPE(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, errUnknownFormat)
	}
}

func (f *File) add(sym Symbol) {
	if sym.Name == "" {
		return
	}
	// Prefer the entry that records a size.
	if old, ok := f.symbols[sym.Name]; ok && old.Size >= sym.Size {
		return
	}
	f.symbols[sym.Name] = sym
}

// Lookup returns the symbol called name.
func (f *File) Lookup(name string) (Symbol, bool) {
	sym, ok := f.symbols[name]
	return sym, ok
}

// Symbols returns every symbol whose name contains filter, sorted by name.
func (f *File) Symbols(filter string) []Symbol {
	syms := make([]Symbol, 0, len(f.symbols))
	for name, sym := range f.symbols {
		if strings.Contains(name, filter) {
			syms = append(syms, sym)
		}
	}
	slices.SortFunc(syms, func(a, b Symbol) int {
		return strings.Compare(a.Name, b.Name)
	})
	return syms
}

// CodeAt returns up to n bytes of the image starting at the link-time
// address addr.
func (f *File) CodeAt(addr uint64, n int) ([]byte, error) {
	for _, s := range f.sections {
		if addr < s.addr || addr >= s.addr+s.size {
			continue
		}
		data, err := s.data()
		if err != nil {
			return nil, err
		}
		off := addr - s.addr
		if off >= uint64(len(data)) {
			break
		}
		end := min(off+uint64(n), uint64(len(data)))
		return data[off:end], nil
	}
	return nil, fmt.Errorf("address %#x is not in a section with data", addr)
}

// Close releases the underlying file.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}
