package detour

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	opcodeJMP  = 0xe9 // JMP rel32
	opcodeINT3 = 0xcc

	// jumpSize is the length of JMP rel32: 1 byte opcode + 4 byte
	// displacement.
	jumpSize = 5

	// MinPatchSize is the smallest prologue that can hold a redirect.
	MinPatchSize = jumpSize
)

// EncodeJump returns a JMP rel32 placed at site that lands on target. The
// displacement is target - site - 5, as a little-endian int32.
func EncodeJump(site, target uintptr) ([jumpSize]byte, error) {
	var buf [jumpSize]byte

	diff := int64(target) - int64(site) - jumpSize
	if diff < math.MinInt32 || diff > math.MaxInt32 {
		return buf, fmt.Errorf("%w: JMP from %#x to %#x", ErrOutOfRange, site, target)
	}

	buf[0] = opcodeJMP
	binary.LittleEndian.PutUint32(buf[1:], uint32(int32(diff)))
	return buf, nil
}

// insertJump writes a JMP to dest at the start of buf, which is assumed to
// be executed from the address of its first byte. The rest of buf is padded
// with INT3.
func insertJump(buf []byte, site, dest uintptr) error {
	if len(buf) < jumpSize {
		return fmt.Errorf("%w: buffer of %d bytes can't hold a jump", ErrPatchSizeTooSmall, len(buf))
	}

	jmp, err := EncodeJump(site, dest)
	if err != nil {
		return err
	}
	copy(buf, jmp[:])

	// Pad the rest of the buffer INT3 opcodes to match what the compiler does
	for i := jumpSize; i < len(buf); i++ {
		buf[i] = opcodeINT3
	}
	return nil
}

// relaySize is the largest relay emitted by encodeRelay.
const relaySize = 10 + 6 + 8

// encodeRelay returns machine code equivalent to:
//
//	MOVQ $closure, DX
//	JMP  *target(SB)
//
// The MOVQ is left out when closure is zero. DX carries the closure context
// of a Go func value, so the relay lets a func literal be a replacement.
func encodeRelay(closure, target uintptr) []byte {
	buf := make([]byte, 0, relaySize)
	if closure != 0 {
		// REX.W MOV r64, imm64 with DX as the register
		buf = append(buf, 0x48, 0xba)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(closure))
	}

	// JMP [RIP+0] followed by the absolute target
	buf = append(buf, 0xff, 0x25, 0, 0, 0, 0)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(target))
	return buf
}

// StubSize is the length of a forwarding stub.
const StubSize = 16

const (
	stubTrap = 6 // first INT3
	stubSlot = 8 // 8-byte target
)

// encodeStub writes a forwarding stub to buf:
//
//	JMP [RIP+2]
//	INT3; INT3
//	.quad target
//
// The target is read from an aligned slot so it can be replaced with one
// store.
func encodeStub(buf []byte, target uintptr) {
	copy(buf, []byte{0xff, 0x25, 0x02, 0x00, 0x00, 0x00, opcodeINT3, opcodeINT3})
	binary.LittleEndian.PutUint64(buf[stubSlot:], uint64(target))
}
