package detour

import (
	"errors"

	"github.com/pboyd/detour/internal/procmaps"
	"golang.org/x/sys/unix"
)

// Protection records page permissions so they can be restored.
type Protection struct {
	regions []protRegion
}

type protRegion struct {
	start, end uintptr
	prot       int
}

func unprotect(start, end uintptr) (Protection, error) {
	maps, err := procmaps.Read()
	if err != nil {
		return Protection{}, memoryError("read mappings", start, err)
	}

	var saved Protection
	for _, m := range procmaps.Overlapping(maps, start, end) {
		saved.regions = append(saved.regions, protRegion{
			start: max(m.Start, start),
			end:   min(m.End, end),
			prot:  mappingProt(m),
		})
	}
	if len(saved.regions) == 0 {
		return Protection{}, memoryError("unprotect", start, errors.New("address is not mapped"))
	}

	if err := mprotect(start, int(end-start), protRWX); err != nil {
		return Protection{}, memoryError("unprotect", start, err)
	}
	return saved, nil
}

func reprotect(start, end uintptr, saved Protection) error {
	for _, r := range saved.regions {
		if err := mprotect(r.start, int(r.end-r.start), r.prot); err != nil {
			return memoryError("reprotect", r.start, err)
		}
	}
	return nil
}

func mappingProt(m procmaps.Mapping) int {
	prot := unix.PROT_NONE
	if m.Readable() {
		prot |= unix.PROT_READ
	}
	if m.Writable() {
		prot |= unix.PROT_WRITE
	}
	if m.Executable() {
		prot |= unix.PROT_EXEC
	}
	return prot
}

// readableLen returns how many of the n bytes at addr can be read without
// leaving mapped memory.
func readableLen(addr uintptr, n int) int {
	maps, err := procmaps.Read()
	if err != nil {
		return n
	}

	end := addr
	for _, m := range maps {
		if m.Start <= end && end < m.End && m.Readable() {
			end = m.End
		}
	}
	if end == addr {
		return n
	}
	return int(min(uintptr(n), end-addr))
}
