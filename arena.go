package detour

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pboyd/malloc"
)

// CodeArena hands out small pieces of executable memory, such as forwarding
// stubs, from one malloc arena. The arena is executable at all times and
// writable only inside Mutate.
type CodeArena struct {
	arena     *malloc.Arena
	protect   func(int) error
	startSize int

	initOnce sync.Once
	initErr  error

	// mu is held for the whole of a Mutate call.
	mu      sync.Mutex
	mutable bool

	// allocations maps the aligned address handed out to the slice that
	// came from the arena.
	allocations map[uintptr][]byte
}

// DefaultArena is shared by every forwarding table in the process.
var DefaultArena = NewCodeArena(4096)

// NewCodeArena returns an arena that reserves startSize bytes on first use.
func NewCodeArena(startSize int) *CodeArena {
	return &CodeArena{
		startSize:   startSize,
		allocations: map[uintptr][]byte{},
	}
}

func (a *CodeArena) init() error {
	a.initOnce.Do(func() {
		be, err := codeArenaBackend()
		if err != nil {
			a.initErr = err
			return
		}
		if protBE, ok := be.(malloc.ProtectedArenaBackend); ok {
			a.protect = protBE.Protect
		} else {
			a.protect = func(int) error {
				return nil
			}
		}

		a.arena = malloc.NewArena(uint64(a.startSize), malloc.Backend(be))
		if a.arena == nil {
			a.initErr = errors.New("unable to initialize arena")
			return
		}
		a.mutable = true
	})
	return a.initErr
}

// Mutate makes the arena writable, calls fn and makes the arena read-only
// again. Allocate, Free and writes to allocated code must happen inside fn.
// Calls are serialized.
func (a *CodeArena) Mutate(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.init(); err != nil {
		return fmt.Errorf("error initializing arena: %w", err)
	}

	if !a.mutable {
		if err := a.protect(protRWX); err != nil {
			return memoryError("arena protect", 0, err)
		}
		a.mutable = true
	}

	fnErr := fn()

	if err := a.protect(protRX); err != nil {
		return errors.Join(fnErr, memoryError("arena protect", 0, err))
	}
	a.mutable = false
	return fnErr
}

// Allocate returns size bytes aligned to 16. It panics outside Mutate.
func (a *CodeArena) Allocate(size int) ([]byte, error) {
	if !a.mutable {
		panic("Allocate called in immutable state")
	}

	raw, err := malloc.MallocSlice[byte](a.arena, size+15)
	if err != nil {
		return nil, err
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int(alignUp(base, 16) - base)
	buf := raw[off : off+size : off+size]
	a.allocations[base+uintptr(off)] = raw
	return buf, nil
}

// Free releases memory returned by Allocate. It panics outside Mutate.
func (a *CodeArena) Free(buf []byte) {
	if !a.mutable {
		panic("Free called in immutable state")
	}

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	raw, ok := a.allocations[addr]
	if !ok {
		return
	}
	delete(a.allocations, addr)
	malloc.FreeSlice(a.arena, raw)
}

// StoreWord replaces the aligned 8-byte word at addr, which must be inside
// the arena, with one atomic store.
func (a *CodeArena) StoreWord(addr, v uintptr) error {
	if addr&7 != 0 {
		return fmt.Errorf("unaligned word at %#x", addr)
	}
	return a.Mutate(func() error {
		atomic.StoreUintptr((*uintptr)(unsafe.Pointer(addr)), v)
		return nil
	})
}

// LoadWord reads the 8-byte word at addr.
func LoadWord(addr uintptr) uintptr {
	return atomic.LoadUintptr((*uintptr)(unsafe.Pointer(addr)))
}

// NewStub allocates a forwarding stub and returns its entry. Until
// SetStubTarget is called the stub traps on an INT3.
func (a *CodeArena) NewStub() (uintptr, error) {
	var entry uintptr
	err := a.Mutate(func() error {
		buf, err := a.Allocate(StubSize)
		if err != nil {
			return err
		}
		entry = uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
		encodeStub(buf, entry+stubTrap)
		return nil
	})
	return entry, err
}

// FreeStub releases a stub from NewStub.
func (a *CodeArena) FreeStub(entry uintptr) error {
	return a.Mutate(func() error {
		a.Free(unsafe.Slice((*byte)(unsafe.Pointer(entry)), StubSize))
		return nil
	})
}

// SetStubTarget makes the stub at entry jump to target.
func (a *CodeArena) SetStubTarget(entry, target uintptr) error {
	if target == 0 {
		target = entry + stubTrap
	}
	return a.StoreWord(entry+stubSlot, target)
}

// StubTarget returns where the stub at entry jumps to. It returns zero for a
// stub that traps.
func StubTarget(entry uintptr) uintptr {
	target := LoadWord(entry + stubSlot)
	if target == entry+stubTrap {
		return 0
	}
	return target
}
