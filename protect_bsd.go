//go:build freebsd || darwin

package detour

// Protection records page permissions so they can be restored. There's no
// cheap way to read the current permissions here, so code pages always go
// back to read+exec.
type Protection struct{}

func unprotect(start, end uintptr) (Protection, error) {
	if err := mprotect(start, int(end-start), protRWX); err != nil {
		return Protection{}, memoryError("unprotect", start, err)
	}
	return Protection{}, nil
}

func reprotect(start, end uintptr, _ Protection) error {
	if err := mprotect(start, int(end-start), protRX); err != nil {
		return memoryError("reprotect", start, err)
	}
	return nil
}

func readableLen(_ uintptr, n int) int {
	return n
}
