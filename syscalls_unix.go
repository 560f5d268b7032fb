//go:build linux || freebsd || darwin

package detour

import (
	"github.com/pboyd/malloc"
	"golang.org/x/sys/unix"
)

const (
	protRW  = unix.PROT_READ | unix.PROT_WRITE
	protRX  = unix.PROT_READ | unix.PROT_EXEC
	protRWX = unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC

	// Added to read+write by malloc's mmap backend.
	protArenaExec = unix.PROT_EXEC
)

// mapAt maps size bytes of anonymous read/write memory. A non-zero hint asks
// for that exact address without replacing an existing mapping.
func mapAt(hint uintptr, size int) (uintptr, error) {
	flags := unix.MAP_PRIVATE | unix.MAP_ANON
	if hint != 0 {
		flags |= mapExact
	}

	// unix.Mmap can't take an address, so go straight to the syscall.
	p, _, errno := unix.Syscall6(unix.SYS_MMAP, hint, uintptr(size), protRW, uintptr(flags), ^uintptr(0), 0)
	if errno != 0 {
		return 0, memoryError("mmap", hint, errno)
	}
	return p, nil
}

func unmap(addr uintptr, size int) error {
	// unix.Munmap only accepts slices returned by unix.Mmap.
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, uintptr(size), 0)
	if errno != 0 {
		return memoryError("munmap", addr, errno)
	}
	return nil
}

func mprotect(addr uintptr, size int, prot int) error {
	_, _, errno := unix.Syscall(unix.SYS_MPROTECT, addr, uintptr(size), uintptr(prot))
	if errno != 0 {
		return errno
	}
	return nil
}

func codeArenaBackend() (malloc.ArenaBackend, error) {
	return malloc.MmapBackend(malloc.MmapProt(protArenaExec)), nil
}
