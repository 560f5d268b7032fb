package detour

import (
	"fmt"
	"math"
	"os"
	"unsafe"
)

type blockState int

const (
	blockWritable blockState = iota
	blockPrepared
	blockFreed
)

func (s blockState) String() string {
	switch s {
	case blockWritable:
		return "writable"
	case blockPrepared:
		return "prepared"
	default:
		return "freed"
	}
}

// Block is a region of memory owned by the caller that starts out writable
// and becomes executable (and read-only) after Prepare.
type Block struct {
	addr  uintptr
	size  int // mapped length, whole pages
	n     int // requested length
	state blockState
}

// Allocate reserves n bytes of read/write memory anywhere in the address
// space.
func Allocate(n int) (*Block, error) {
	return allocateAt(0, n)
}

// nearGranule is the step between candidate addresses when looking for free
// pages close to a patch site. It's a multiple of the Windows allocation
// granularity.
const nearGranule = 1 << 20

// AllocateNear reserves n bytes of read/write memory within reach of a
// rel32 displacement from addr.
func AllocateNear(addr uintptr, n int) (*Block, error) {
	if addr == 0 {
		return Allocate(n)
	}

	size := alignUp(n, os.Getpagesize())
	base := alignDown(addr, nearGranule)

	// Leave room so that every byte in the block is reachable from every
	// byte at addr.
	const maxSteps = (math.MaxInt32 - 2*nearGranule) / nearGranule
	for step := uintptr(1); step < maxSteps; step++ {
		delta := step * nearGranule
		candidates := [2]uintptr{base + delta, 0}
		if base > delta+nearGranule {
			candidates[1] = base - delta
		}

		for _, hint := range candidates {
			if hint == 0 {
				continue
			}
			p, err := mapAt(hint, size)
			if err != nil {
				continue
			}
			if reachable(addr, p, size) {
				return &Block{addr: p, size: size, n: n}, nil
			}
			// The OS treated the address as a hint and put the
			// mapping somewhere else.
			unmap(p, size)
		}
	}

	return nil, memoryError("allocate near", addr, fmt.Errorf("no free pages within 2GiB for %d bytes", n))
}

func allocateAt(hint uintptr, n int) (*Block, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid allocation size %d", n)
	}
	size := alignUp(n, os.Getpagesize())
	p, err := mapAt(hint, size)
	if err != nil {
		return nil, err
	}
	return &Block{addr: p, size: size, n: n}, nil
}

func reachable(from, p uintptr, size int) bool {
	lo := int64(p) - int64(from)
	hi := int64(p) + int64(size) - int64(from)
	return lo > math.MinInt32+jumpSize && hi < math.MaxInt32-jumpSize
}

// Addr returns the start of the block.
func (b *Block) Addr() uintptr {
	return b.addr
}

// Len returns the usable length, which is the requested length rounded up
// to whole pages.
func (b *Block) Len() int {
	return b.size
}

// Bytes returns the block's memory for writing. It panics once the block has
// been prepared.
func (b *Block) Bytes() []byte {
	if b.state != blockWritable {
		panic(fmt.Sprintf("Bytes called on %s block", b.state))
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(b.addr)), b.size)
}

// Prepare makes the block executable and read-only. It may only be called
// once.
func (b *Block) Prepare() error {
	if b.state != blockWritable {
		panic(fmt.Sprintf("Prepare called on %s block", b.state))
	}
	if err := mprotect(b.addr, b.size, protRX); err != nil {
		return memoryError("prepare", b.addr, err)
	}
	b.state = blockPrepared
	return nil
}

// Free releases the block. Calling Free again does nothing.
func (b *Block) Free() error {
	if b.state == blockFreed {
		return nil
	}
	b.state = blockFreed
	return unmap(b.addr, b.size)
}
