package binfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Binject/debug/elf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSelf(t *testing.T) *File {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)

	f, err := Open(exe)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestOpen_Self(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("test binary is only ELF on linux")
	}

	f := openSelf(t)
	assert.Equal(t, ELF, f.Format)

	sym, ok := f.Lookup("github.com/pboyd/detour/internal/binfile.Open")
	require.True(t, ok)
	assert.NotZero(t, sym.Addr)
	assert.NotZero(t, sym.Size)
	assert.GreaterOrEqual(t, sym.Addr, f.Base)

	code, err := f.CodeAt(sym.Addr, 16)
	require.NoError(t, err)
	assert.Len(t, code, 16)

	_, ok = f.Lookup("no such symbol")
	assert.False(t, ok)
}

func TestSymbols_Filter(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("test binary is only ELF on linux")
	}

	f := openSelf(t)
	syms := f.Symbols("internal/binfile.")
	require.NotEmpty(t, syms)
	for i, sym := range syms {
		assert.Contains(t, sym.Name, "internal/binfile.")
		if i > 0 {
			assert.Less(t, syms[i-1].Name, sym.Name)
		}
	}
}

func TestOpen_Unknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk")
	require.NoError(t, os.WriteFile(path, []byte("not a binary"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, errUnknownFormat)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCodeAt_OutsideSections(t *testing.T) {
	f := &File{symbols: map[string]Symbol{}}
	_, err := f.CodeAt(0x1000, 4)
	assert.Error(t, err)
}

func TestAddGoFuncs_Self(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("test binary is only ELF on linux")
	}

	exe, err := os.Executable()
	require.NoError(t, err)
	ef, err := elf.Open(exe)
	require.NoError(t, err)
	t.Cleanup(func() { ef.Close() })

	f := &File{symbols: map[string]Symbol{}}
	require.NoError(t, f.addGoFuncs(ef))

	const name = "github.com/pboyd/detour/internal/binfile.Open"
	sym, ok := f.Lookup(name)
	require.True(t, ok)
	assert.NotZero(t, sym.Size)

	// Matches the address in the symbol table, whichever one Open used.
	full := openSelf(t)
	want, ok := full.Lookup(name)
	require.True(t, ok)
	assert.Equal(t, want.Addr, sym.Addr)
}
