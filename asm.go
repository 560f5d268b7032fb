package detour

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"golang.org/x/arch/x86/x86asm"
)

const (
	opcodeJMPshort = 0xeb // JMP rel8
	opcodeJccShort = 0x70 // Jcc rel8, low nibble is the condition
	opcodeTwoByte  = 0x0f
	opcodeJccNear  = 0x80 // second byte of Jcc rel32

	modRMRIP = 0x05 // mod=00 r/m=101
)

// maxInstLen is the longest legal x86 instruction.
const maxInstLen = 15

// PrologueLength returns the length of the shortest run of whole
// instructions at the start of code that is at least atLeast bytes.
func PrologueLength(code []byte, atLeast int) (int, error) {
	n := 0
	for n < atLeast {
		inst, err := x86asm.Decode(code[n:], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: decode error at offset %d: %v", ErrInstructionBoundary, n, err)
		}
		n += inst.Len
	}
	return n, nil
}

// relocatePrologue copies the first size bytes of code, which is executed
// from srcAddr, so that it can run from destAddr. code may extend past size
// so the last instruction can be decoded in full.
//
// Relative branches and RIP-relative operands are adjusted for the new
// address. Short branches are widened to rel32.
func relocatePrologue(code []byte, size int, srcAddr, destAddr uintptr) ([]byte, error) {
	out := make([]byte, 0, 2*size)
	end := srcAddr + uintptr(size)

	for i := 0; i < size; {
		inst, err := x86asm.Decode(code[i:], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: decode error at offset %d: %v", ErrInstructionBoundary, i, err)
		}
		if i+inst.Len > size {
			return nil, fmt.Errorf("%w: %d bytes splits %v at offset %d", ErrInstructionBoundary, size, inst, i)
		}

		raw := code[i : i+inst.Len]
		next := srcAddr + uintptr(i+inst.Len)

		if rel, ok := inst.Args[0].(x86asm.Rel); ok {
			target := uintptr(int64(next) + int64(rel))
			if target >= srcAddr && target < end {
				return nil, fmt.Errorf("%w: branch at offset %d lands inside the patched bytes", ErrInstructionBoundary, i)
			}
			out, err = appendBranch(out, inst, raw, target, destAddr)
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", i, err)
			}
		} else if off, rip := ripDispOffset(inst, raw); rip {
			if off < 0 {
				return nil, fmt.Errorf("%w: can't find displacement of %v", ErrInstructionBoundary, inst)
			}
			disp := int32(binary.LittleEndian.Uint32(raw[off:]))
			target := int64(next) + int64(disp)
			newDisp := target - (int64(destAddr) + int64(len(out)+inst.Len))
			if newDisp < math.MinInt32 || newDisp > math.MaxInt32 {
				return nil, fmt.Errorf("%w: RIP-relative operand at offset %d", ErrOutOfRange, i)
			}

			start := len(out)
			out = append(out, raw...)
			binary.LittleEndian.PutUint32(out[start+off:], uint32(int32(newDisp)))
		} else {
			out = append(out, raw...)
		}

		i += inst.Len
	}

	return out, nil
}

// appendBranch re-encodes a relative branch to target as a rel32 branch
// executing from destAddr plus the current length of out.
func appendBranch(out []byte, inst x86asm.Inst, raw []byte, target, destAddr uintptr) ([]byte, error) {
	var op []byte
	switch {
	case inst.PCRel == 4:
		op = raw[:inst.PCRelOff]
	case inst.PCRel == 1 && raw[inst.PCRelOff-1] == opcodeJMPshort:
		op = []byte{opcodeJMP}
	case inst.PCRel == 1 && raw[inst.PCRelOff-1]&0xf0 == opcodeJccShort:
		op = []byte{opcodeTwoByte, opcodeJccNear | raw[inst.PCRelOff-1]&0x0f}
	default:
		// LOOP, JRCXZ and 16-bit displacements have no rel32 form.
		return nil, fmt.Errorf("%w: can't relocate %v", ErrInstructionBoundary, inst)
	}

	next := destAddr + uintptr(len(out)+len(op)+4)
	diff := int64(target) - int64(next)
	if diff < math.MinInt32 || diff > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %v to %#x", ErrOutOfRange, inst.Op, target)
	}

	out = append(out, op...)
	return binary.LittleEndian.AppendUint32(out, uint32(int32(diff))), nil
}

// ripDispOffset returns the offset of the displacement of a RIP-relative
// memory operand in raw. rip is false when inst has no such operand.
func ripDispOffset(inst x86asm.Inst, raw []byte) (off int, rip bool) {
	var mem x86asm.Mem
	found := false
	for _, arg := range inst.Args {
		if m, ok := arg.(x86asm.Mem); ok && m.Base == x86asm.RIP {
			mem, found = m, true
			break
		}
	}
	if !found {
		return -1, false
	}

	if inst.PCRel == 4 {
		return inst.PCRelOff, true
	}

	// The decoder doesn't report the offset for every operand form. The
	// displacement follows a ModRM byte that selects RIP.
	for k := 1; k+4 <= len(raw); k++ {
		if raw[k-1]&0xc7 != modRMRIP {
			continue
		}
		if int64(int32(binary.LittleEndian.Uint32(raw[k:]))) == mem.Disp {
			return k, true
		}
	}
	return -1, true
}

// Disassemble formats code, which starts at addr, one instruction per line.
func Disassemble(code []byte, addr uintptr) (string, error) {
	var buf bytes.Buffer

	for i := 0; i < len(code); {
		instruction, err := x86asm.Decode(code[i:], 64)
		if err != nil {
			return buf.String(), fmt.Errorf("decode error at offset %d: %w", i, err)
		}
		fmt.Fprintf(&buf, "0x%08x\t%-20s\t%s\n", addr+uintptr(i), hex.EncodeToString(code[i:i+instruction.Len]), instruction.String())

		i += instruction.Len
	}

	return buf.String(), nil
}
