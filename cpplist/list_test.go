package cpplist

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/pboyd/detour/versions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAllocator struct {
	Allocator
	allocs atomic.Int64
	frees  atomic.Int64
}

func (c *countingAllocator) Alloc(size int) (uintptr, error) {
	c.allocs.Add(1)
	return c.Allocator.Alloc(size)
}

func (c *countingAllocator) Free(addr uintptr) {
	c.frees.Add(1)
	c.Allocator.Free(addr)
}

func newCounting(t *testing.T) *countingAllocator {
	t.Helper()
	a, err := NewArenaAllocator(4096)
	require.NoError(t, err)
	return &countingAllocator{Allocator: a}
}

type modInfo struct {
	ID      [16]byte
	Version int32
	Enabled bool
}

var layouts = []Layout{Itanium, MSVC}

func TestList_PushOrder(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			l, err := New[int64](newCounting(t), layout)
			require.NoError(t, err)
			defer l.Free()

			assert.Equal(t, 0, l.Len())
			assert.Empty(t, l.Values())

			require.NoError(t, l.Push(10))
			require.NoError(t, l.Push(20))
			require.NoError(t, l.Push(30))

			assert.Equal(t, 3, l.Len())
			assert.Equal(t, []int64{10, 20, 30}, l.Values())

			// Iteration can be restarted and stopped early.
			assert.Equal(t, []int64{10, 20, 30}, l.Values())
			var first []int64
			for v := range l.All() {
				first = append(first, *v)
				break
			}
			assert.Equal(t, []int64{10}, first)
		})
	}
}

func TestList_ModifyInPlace(t *testing.T) {
	l, err := New[modInfo](newCounting(t), Itanium)
	require.NoError(t, err)
	defer l.Free()

	require.NoError(t, l.Push(modInfo{Version: 1}))
	require.NoError(t, l.Push(modInfo{Version: 2}))

	for m := range l.All() {
		m.Enabled = true
	}
	for _, m := range l.Values() {
		assert.True(t, m.Enabled)
	}
}

func TestList_FreeCounts(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			alloc := newCounting(t)

			l, err := New[int32](alloc, layout)
			require.NoError(t, err)
			for i := range int32(5) {
				require.NoError(t, l.Push(i))
			}

			borrowed, err := Wrap[int32](l.Root(), layout)
			require.NoError(t, err)
			assert.Equal(t, Borrowed, borrowed.Ownership())
			assert.Equal(t, []int32{0, 1, 2, 3, 4}, borrowed.Values())

			borrowed.Free()
			assert.Zero(t, alloc.frees.Load())
			assert.Error(t, borrowed.Push(5))

			l.Free()
			assert.Equal(t, alloc.allocs.Load(), alloc.frees.Load())

			want := int64(5 + 1)
			if layout == MSVC {
				want++
			}
			assert.Equal(t, want, alloc.frees.Load())

			l.Free()
			assert.Equal(t, want, alloc.frees.Load())
			assert.Error(t, l.Push(6))
		})
	}
}

func TestList_Cleanup(t *testing.T) {
	alloc := newCounting(t)

	func() {
		l, err := New[int64](alloc, Itanium)
		require.NoError(t, err)
		require.NoError(t, l.Push(1))
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return alloc.frees.Load() == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestList_ItaniumLayout(t *testing.T) {
	if ptrSize != 8 {
		t.Skip("offsets assume 64-bit pointers")
	}

	l, err := New[int64](newCounting(t), Itanium)
	require.NoError(t, err)
	defer l.Free()

	require.NoError(t, l.Push(7))
	require.NoError(t, l.Push(8))

	root := l.Root()
	prev := *word(root)
	next := *word(root + 8)

	assert.Equal(t, int32(2), *(*int32)(unsafe.Pointer(root + 16)))
	assert.Equal(t, int64(7), *(*int64)(unsafe.Pointer(next + 16)))
	assert.Equal(t, int64(8), *(*int64)(unsafe.Pointer(prev + 16)))

	// {prev, next} of the head.
	assert.Equal(t, root, *word(next))
	assert.Equal(t, prev, *word(next + 8))
	assert.Equal(t, root, *word(prev + 8))
}

func TestList_MSVCLayout(t *testing.T) {
	if ptrSize != 8 {
		t.Skip("offsets assume 64-bit pointers")
	}

	l, err := New[int64](newCounting(t), MSVC)
	require.NoError(t, err)
	defer l.Free()

	require.NoError(t, l.Push(7))
	require.NoError(t, l.Push(8))

	header := l.Root()
	assert.Equal(t, uint32(0), *(*uint32)(unsafe.Pointer(header)))
	assert.Equal(t, int32(2), *(*int32)(unsafe.Pointer(header + 16)))

	sentinel := *word(header + 8)
	head := *word(sentinel)
	tail := *word(sentinel + 8)

	assert.Equal(t, int64(7), *(*int64)(unsafe.Pointer(head + 16)))
	assert.Equal(t, int64(8), *(*int64)(unsafe.Pointer(tail + 16)))

	// {next, prev} of the head.
	assert.Equal(t, tail, *word(head))
	assert.Equal(t, sentinel, *word(head + 8))
	assert.Equal(t, sentinel, *word(tail))
}

func TestList_PointerElements(t *testing.T) {
	type withString struct {
		Name string
	}

	_, err := New[withString](newCounting(t), Itanium)
	assert.Error(t, err)

	_, err = New[*int](newCounting(t), Itanium)
	assert.Error(t, err)

	_, err = Wrap[[]byte](0x1000, Itanium)
	assert.Error(t, err)

	_, err = Wrap[int64](0, Itanium)
	assert.Error(t, err)
}

func TestLayoutFor(t *testing.T) {
	assert.Equal(t, MSVC, LayoutFor(versions.Win32))
	assert.Equal(t, Itanium, LayoutFor(versions.Linux))
	assert.Equal(t, Itanium, LayoutFor(versions.MacOS))
}

func TestDefaultAllocator(t *testing.T) {
	l, err := New[int64](nil, Itanium)
	require.NoError(t, err)
	require.NoError(t, l.Push(1))

	def, err := DefaultAllocator()
	require.NoError(t, err)
	assert.Positive(t, def.Live())

	l.Free()
}
