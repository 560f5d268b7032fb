//go:build (linux || freebsd || windows) && amd64

package detour

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b, err := Allocate(10)
	require.NoError(err)
	t.Cleanup(func() { b.Free() })

	assert.Equal(os.Getpagesize(), b.Len())
	assert.Zero(b.Addr() % uintptr(os.Getpagesize()))

	buf := b.Bytes()
	copy(buf, []byte{0xc3})
	require.NoError(b.Prepare())

	assert.Panics(func() { b.Bytes() })
	assert.Panics(func() { b.Prepare() })

	assert.NoError(b.Free())
	assert.NoError(b.Free())
}

func TestAllocate_InvalidSize(t *testing.T) {
	_, err := Allocate(0)
	assert.Error(t, err)
}

func TestAllocateNear(t *testing.T) {
	entry, _, err := FuncEntry(TestAllocateNear)
	require.NoError(t, err)

	b, err := AllocateNear(entry, 100)
	require.NoError(t, err)
	t.Cleanup(func() { b.Free() })

	assert.True(t, reachable(entry, b.Addr(), b.Len()))
	_, err = EncodeJump(entry, b.Addr()+uintptr(b.Len())-1)
	assert.NoError(t, err)
}

func TestReachable(t *testing.T) {
	const from = uintptr(0x7f00_0000_0000)

	assert.True(t, reachable(from, from+0x1000, 0x1000))
	assert.True(t, reachable(from, from-0x1000, 0x1000))
	assert.False(t, reachable(from, from+1<<31, 0x1000))
	assert.False(t, reachable(from, from-1<<31, 0x1000))
}
