//go:build amd64

package detour

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNewPatch_EndOfMapping(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	page := os.Getpagesize()
	b, err := Allocate(2 * page)
	require.NoError(err)
	t.Cleanup(func() { b.Free() })

	addr := b.Addr() + uintptr(page-len(addOne))
	copy(b.Bytes()[page-len(addOne):], addOne)
	require.NoError(b.Prepare())
	require.NoError(mprotect(b.Addr()+uintptr(page), page, unix.PROT_NONE))

	assert.Equal(len(addOne), readableLen(addr, 64))

	size, err := PrologueAt(addr)
	require.NoError(err)
	assert.Equal(8, size)

	p, err := NewPatch(addr, entryOf(t, multiply), size, "addOne")
	require.NoError(err)

	fn := Func[func(int, int) int](addr)
	assert.Equal(12, fn(3, 4))
	assert.Equal(8, Func[func(int, int) int](p.Original())(3, 4))

	require.NoError(p.Close())
	assert.Equal(8, fn(3, 4))
}
