package detour

import (
	"os"

	"golang.org/x/exp/constraints"
)

func alignUp[I constraints.Integer](a, b I) I {
	return (a + b - 1) &^ (b - 1)
}

func alignDown[I constraints.Integer](a, b I) I {
	return a &^ (b - 1)
}

// pageRange widens [addr, addr+n) to whole pages.
func pageRange(addr uintptr, n int) (start, end uintptr) {
	pageSize := uintptr(os.Getpagesize())

	// Example: addr=4196, n=10 with pageSize=4096 becomes [4096, 8192).
	start = alignDown(addr, pageSize)
	end = alignUp(addr+uintptr(n), pageSize)
	return start, end
}
