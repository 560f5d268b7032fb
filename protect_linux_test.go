package detour

import (
	"testing"

	"github.com/pboyd/detour/internal/procmaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permsAt(t *testing.T, addr uintptr) string {
	t.Helper()

	maps, err := procmaps.Read()
	require.NoError(t, err)

	m := procmaps.Overlapping(maps, addr, addr+1)
	require.Len(t, m, 1)
	return m[0].Perms[:3]
}

func TestUnprotect(t *testing.T) {
	b, err := Allocate(16)
	require.NoError(t, err)
	t.Cleanup(func() { b.Free() })
	require.NoError(t, b.Prepare())

	assert.Equal(t, "r-x", permsAt(t, b.Addr()))

	prot, err := Unprotect(b.Addr()+4, 8)
	require.NoError(t, err)
	assert.Equal(t, "rwx", permsAt(t, b.Addr()))

	require.NoError(t, Reprotect(b.Addr()+4, 8, prot))
	assert.Equal(t, "r-x", permsAt(t, b.Addr()))
}

func TestWriteCode(t *testing.T) {
	b, err := Allocate(16)
	require.NoError(t, err)
	t.Cleanup(func() { b.Free() })
	copy(b.Bytes(), []byte{0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0xc3})
	require.NoError(t, b.Prepare())

	require.NoError(t, writeCode(b.Addr()+1, []byte{0xcc, 0xcc}, "test"))
	assert.Equal(t, "r-x", permsAt(t, b.Addr()))

	code := unsafeBytes(b.Addr(), 8)
	assert.Equal(t, []byte{0x90, 0xcc, 0xcc, 0x90, 0x90, 0x90, 0x90, 0xc3}, code)
}

func TestCodeArena_Protection(t *testing.T) {
	arena := NewCodeArena(4096)
	entry, err := arena.NewStub()
	require.NoError(t, err)
	t.Cleanup(func() { arena.FreeStub(entry) })

	assert.Equal(t, "r-x", permsAt(t, entry))
	require.NoError(t, arena.Mutate(func() error {
		assert.Equal(t, "rwx", permsAt(t, entry))
		return nil
	}))
	assert.Equal(t, "r-x", permsAt(t, entry))
}
