//go:build windows

package detour

import (
	"unsafe"

	"github.com/pboyd/malloc"
	"golang.org/x/sys/windows"
)

const (
	protRW  = windows.PAGE_READWRITE
	protRX  = windows.PAGE_EXECUTE_READ
	protRWX = windows.PAGE_EXECUTE_READWRITE

	// Widened to PAGE_EXECUTE_READWRITE by malloc's mmap backend.
	protArenaExec = windows.PAGE_EXECUTE
)

// Protection is the value VirtualProtect reported before the pages were
// unprotected.
type Protection struct {
	old uint32
}

func mapAt(hint uintptr, size int) (uintptr, error) {
	p, err := windows.VirtualAlloc(hint, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, protRW)
	if err != nil {
		return 0, memoryError("VirtualAlloc", hint, err)
	}
	return p, nil
}

func unmap(addr uintptr, _ int) error {
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return memoryError("VirtualFree", addr, err)
	}
	return nil
}

func mprotect(addr uintptr, size int, prot int) error {
	var old uint32
	return windows.VirtualProtect(addr, uintptr(size), uint32(prot), &old)
}

func unprotect(start, end uintptr) (Protection, error) {
	var saved Protection
	if err := windows.VirtualProtect(start, end-start, protRWX, &saved.old); err != nil {
		return Protection{}, memoryError("unprotect", start, err)
	}
	return saved, nil
}

func reprotect(start, end uintptr, saved Protection) error {
	var old uint32
	if err := windows.VirtualProtect(start, end-start, saved.old, &old); err != nil {
		return memoryError("reprotect", start, err)
	}
	return nil
}

// readableLen returns how many of the n bytes at addr can be read without
// leaving committed memory.
func readableLen(addr uintptr, n int) int {
	end := addr
	for end < addr+uintptr(n) {
		var info windows.MemoryBasicInformation
		if err := windows.VirtualQuery(end, &info, unsafe.Sizeof(info)); err != nil {
			break
		}
		if info.State != windows.MEM_COMMIT || info.Protect&(windows.PAGE_NOACCESS|windows.PAGE_GUARD) != 0 {
			break
		}
		end = info.BaseAddress + info.RegionSize
	}
	if end == addr {
		return n
	}
	return int(min(uintptr(n), end-addr))
}

func codeArenaBackend() (malloc.ArenaBackend, error) {
	return malloc.MmapBackend(malloc.MmapProt(protArenaExec)), nil
}
