package detour

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/apex/log"
)

// protectMu serializes writes to code that this package doesn't own. Two
// patch sites can share a page, so one site's reprotect must not land in
// the middle of another site's write.
var protectMu sync.Mutex

// fatalf aborts the process. A failure after bytes at a patch site may have
// changed can't be undone safely.
var fatalf = log.Fatalf

// Unprotect makes the pages covering [addr, addr+n) readable, writable and
// executable. The returned Protection restores the exact prior permissions
// when passed to Reprotect.
//
// Callers writing code should hold no assumptions about other threads: the
// pages stay executable while writable.
func Unprotect(addr uintptr, n int) (Protection, error) {
	start, end := pageRange(addr, n)
	return unprotect(start, end)
}

// Reprotect restores permissions saved by Unprotect.
func Reprotect(addr uintptr, n int, prot Protection) error {
	start, end := pageRange(addr, n)
	return reprotect(start, end, prot)
}

// writeCode copies buf over the code at addr.
func writeCode(addr uintptr, buf []byte, reason string) error {
	protectMu.Lock()
	defer protectMu.Unlock()

	prot, err := Unprotect(addr, len(buf))
	if err != nil {
		// Nothing has been written yet.
		return err
	}

	storeCode(addr, buf)

	if err := Reprotect(addr, len(buf), prot); err != nil {
		fatalf("Unable to restore protection after writing %s at %#x: %v", reason, addr, err)
	}
	return nil
}

// storeCode writes buf at addr. When the first instruction fits in one
// aligned quadword, that quadword is written with a single atomic store so
// that a concurrent reader sees either the old or the new instruction.
func storeCode(addr uintptr, buf []byte) {
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(buf))

	off := int(addr & 7)
	k := min(8-off, len(buf))
	if k < min(len(buf), jumpSize) {
		copy(dst, buf)
		return
	}

	// Everything past the quadword first, then the quadword.
	copy(dst[k:], buf[k:])

	word := (*uint64)(unsafe.Pointer(addr - uintptr(off)))
	var cur [8]byte
	binary.LittleEndian.PutUint64(cur[:], atomic.LoadUint64(word))
	copy(cur[off:off+k], buf[:k])
	atomic.StoreUint64(word, binary.LittleEndian.Uint64(cur[:]))
}

// codeAt returns up to n bytes of code at addr, stopping early at the end
// of the mapping.
func codeAt(addr uintptr, n int) []byte {
	return unsafeBytes(addr, readableLen(addr, n))
}

func unsafeBytes(addr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
