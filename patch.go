package detour

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/apex/log"
)

var errUnsupportedArch = errors.New("patching requires amd64")

// Patch is one redirected function. The first bytes of the function jump to
// the replacement, and the trampoline returned by Original runs the saved
// prologue before continuing with the rest of the function.
type Patch struct {
	addr  uintptr
	size  int
	label string

	// saved is the unmodified prologue. The trampoline holds a relocated
	// copy, which can differ.
	saved []byte

	block *Block
}

// NewPatch redirects the function at addr to replacement. size is the
// number of prologue bytes moved to the trampoline; it must be at least
// MinPatchSize and end on an instruction boundary. label is used in log
// messages.
func NewPatch(addr, replacement uintptr, size int, label string) (*Patch, error) {
	return NewPatchContext(addr, replacement, 0, size, label)
}

// NewPatchContext is NewPatch for a replacement that expects a closure
// context in DX, such as a Go func literal. The redirect goes through a
// relay in the trampoline block that loads closure first.
func NewPatchContext(addr, replacement, closure uintptr, size int, label string) (*Patch, error) {
	if !nativeX86 {
		return nil, errUnsupportedArch
	}
	if size < MinPatchSize {
		return nil, fmt.Errorf("%w: %s needs at least %d bytes, got %d", ErrPatchSizeTooSmall, label, MinPatchSize, size)
	}

	// Decoding may look past size to see where the last instruction ends.
	code := codeAt(addr, size+maxInstLen-1)
	if len(code) < size {
		return nil, fmt.Errorf("%w: %s has %d readable bytes, needs %d", ErrInstructionBoundary, label, len(code), size)
	}

	// Short branches grow by up to 4 bytes each when widened.
	block, err := AllocateNear(addr, 3*size+jumpSize+relaySize+16)
	if err != nil {
		return nil, err
	}

	p, err := buildPatch(block, code, addr, replacement, closure, size, label)
	if err != nil {
		block.Free()
		return nil, err
	}
	return p, nil
}

func buildPatch(block *Block, code []byte, addr, replacement, closure uintptr, size int, label string) (*Patch, error) {
	relocated, err := relocatePrologue(code, size, addr, block.Addr())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	buf := block.Bytes()
	n := copy(buf, relocated)
	if err := insertJump(buf[n:n+jumpSize], block.Addr()+uintptr(n), addr+uintptr(size)); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	n += jumpSize

	target := replacement
	if _, err := EncodeJump(addr, replacement); err != nil || closure != 0 {
		off := alignUp(n, 16)
		copy(buf[off:], encodeRelay(closure, replacement))
		target = block.Addr() + uintptr(off)
	}

	// The trampoline must be executable before anything can jump to it.
	if err := block.Prepare(); err != nil {
		return nil, err
	}

	jmp, err := EncodeJump(addr, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	log.Debugf("Writing JMP (%s) - %#x => %#x (diff: 0x%08x)", label, addr, target, uint32(int32(target-addr-jumpSize)))

	p := &Patch{
		addr:  addr,
		size:  size,
		label: label,
		saved: bytes.Clone(code[:size]),
		block: block,
	}
	if err := writeCode(addr, jmp[:], label); err != nil {
		return nil, err
	}
	return p, nil
}

// Addr returns the patched function's address.
func (p *Patch) Addr() uintptr {
	return p.addr
}

// Size returns the number of prologue bytes the patch took over.
func (p *Patch) Size() int {
	return p.size
}

// Label returns the name given to NewPatch.
func (p *Patch) Label() string {
	return p.label
}

// Saved returns a copy of the original prologue.
func (p *Patch) Saved() []byte {
	return bytes.Clone(p.saved)
}

// Original returns the address of the trampoline, which behaves like the
// function before it was patched. It's zero after Close.
func (p *Patch) Original() uintptr {
	if p.block == nil {
		return 0
	}
	return p.block.Addr()
}

// Close restores the original prologue and frees the trampoline. The
// trampoline must not be running on any thread. Calling Close again does
// nothing.
func (p *Patch) Close() error {
	if p.block == nil {
		return nil
	}

	log.Debugf("Restoring %d bytes (%s) at %#x", p.size, p.label, p.addr)
	if err := writeCode(p.addr, p.saved, p.label); err != nil {
		return err
	}

	err := p.block.Free()
	p.block = nil
	return err
}

// NewRelay returns an executable block that loads closure into DX and
// jumps to target. It lets a Go func literal stand in where only a code
// address can be stored.
func NewRelay(closure, target uintptr) (*Block, error) {
	if !nativeX86 {
		return nil, errUnsupportedArch
	}

	block, err := Allocate(relaySize)
	if err != nil {
		return nil, err
	}
	copy(block.Bytes(), encodeRelay(closure, target))
	if err := block.Prepare(); err != nil {
		block.Free()
		return nil, err
	}
	return block, nil
}

// PrologueAt returns the smallest patch size for the function at addr.
func PrologueAt(addr uintptr) (int, error) {
	return PrologueLength(codeAt(addr, MinPatchSize+maxInstLen-1), MinPatchSize)
}
