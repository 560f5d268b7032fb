package detour

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVersion means the host binary's fingerprint isn't in the
	// descriptor table. Nothing is patched.
	ErrUnknownVersion = errors.New("unknown binary version")
	// ErrUnknownSymbol means a proxied or table-based lookup target is
	// missing.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrPatchSizeTooSmall means the prologue is shorter than a redirect.
	ErrPatchSizeTooSmall = errors.New("patch size too small")
	// ErrInstructionBoundary means the prologue length splits an
	// instruction, or the prologue can't be moved.
	ErrInstructionBoundary = errors.New("prologue does not end on an instruction boundary")
	// ErrOutOfRange means a displacement doesn't fit in 32 bits.
	ErrOutOfRange = errors.New("displacement out of range")
	// ErrPlatformMemory means an allocation or protection syscall failed.
	ErrPlatformMemory = errors.New("platform memory error")
	// ErrClosed means an engine or resolver was used after Close.
	ErrClosed = errors.New("closed")
)

// MemoryError describes a failed memory syscall. It matches both
// ErrPlatformMemory and the underlying error with errors.Is.
type MemoryError struct {
	Op   string
	Addr uintptr
	Err  error
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("%s at %#x: %v", e.Op, e.Addr, e.Err)
}

func (e *MemoryError) Unwrap() []error {
	return []error{ErrPlatformMemory, e.Err}
}

func memoryError(op string, addr uintptr, err error) error {
	return &MemoryError{Op: op, Addr: addr, Err: err}
}
