package cpplist

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/pboyd/malloc"
)

// Allocator provides the memory foreign code sees. Addresses must stay
// valid until freed and must be aligned to 8 bytes.
type Allocator interface {
	Alloc(size int) (uintptr, error)
	Free(addr uintptr)
}

// ArenaAllocator allocates from a malloc arena. The arena is mapped outside
// the Go heap where the platform supports mmap.
type ArenaAllocator struct {
	mu     sync.Mutex
	arena  *malloc.Arena
	blocks map[uintptr][]uint64
}

// NewArenaAllocator returns an allocator whose arena starts at size bytes.
func NewArenaAllocator(size int) (*ArenaAllocator, error) {
	arena := malloc.NewArena(uint64(size), arenaOptions()...)
	if arena == nil {
		return nil, errors.New("unable to initialize arena")
	}
	return &ArenaAllocator{
		arena:  arena,
		blocks: map[uintptr][]uint64{},
	}, nil
}

var defaultAllocator = sync.OnceValues(func() (*ArenaAllocator, error) {
	return NewArenaAllocator(64 << 10)
})

// DefaultAllocator returns the allocator shared by lists created with a nil
// Allocator.
func DefaultAllocator() (*ArenaAllocator, error) {
	return defaultAllocator()
}

func (a *ArenaAllocator) Alloc(size int) (uintptr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	words, err := malloc.MallocSlice[uint64](a.arena, max((size+7)/8, 1))
	if err != nil {
		return 0, err
	}
	clear(words)

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(words)))
	a.blocks[addr] = words
	return addr, nil
}

func (a *ArenaAllocator) Free(addr uintptr) {
	a.mu.Lock()
	defer a.mu.Unlock()

	words, ok := a.blocks[addr]
	if !ok {
		return
	}
	delete(a.blocks, addr)
	malloc.FreeSlice(a.arena, words)
}

// Live returns the number of allocations not yet freed.
func (a *ArenaAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}
