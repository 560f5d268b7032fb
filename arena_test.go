//go:build amd64 && (linux || freebsd || windows)

package detour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subtract(a, b int) int {
	return a - b
}

func TestCodeArena_Stub(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	arena := NewCodeArena(4096)

	entry, err := arena.NewStub()
	require.NoError(err)
	assert.Zero(entry % 16)
	assert.Zero(StubTarget(entry))

	fn := Func[func(int, int) int](entry)

	require.NoError(arena.SetStubTarget(entry, entryOf(t, multiply)))
	assert.Equal(entryOf(t, multiply), StubTarget(entry))
	assert.Equal(12, fn(3, 4))

	require.NoError(arena.SetStubTarget(entry, entryOf(t, subtract)))
	assert.Equal(-1, fn(3, 4))

	require.NoError(arena.SetStubTarget(entry, 0))
	assert.Zero(StubTarget(entry))

	assert.NoError(arena.FreeStub(entry))
}

func TestCodeArena_ManyStubs(t *testing.T) {
	arena := NewCodeArena(16384)

	seen := map[uintptr]bool{}
	for range 100 {
		entry, err := arena.NewStub()
		require.NoError(t, err)
		require.False(t, seen[entry])
		seen[entry] = true
	}

	for entry := range seen {
		assert.NoError(t, arena.FreeStub(entry))
	}
}

func TestCodeArena_OutsideMutate(t *testing.T) {
	arena := NewCodeArena(64)
	_, err := arena.NewStub()
	require.NoError(t, err)

	assert.Panics(t, func() { arena.Allocate(16) })
	assert.Panics(t, func() { arena.Free(nil) })
}

func TestCodeArena_StoreWordUnaligned(t *testing.T) {
	arena := NewCodeArena(64)
	entry, err := arena.NewStub()
	require.NoError(t, err)

	assert.Error(t, arena.StoreWord(entry+3, 1))
}
