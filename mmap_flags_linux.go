//go:build linux

package detour

import "golang.org/x/sys/unix"

// mapExact makes mmap fail instead of moving a hinted mapping. Kernels
// before 4.17 ignore the flag and treat the address as a hint, which
// AllocateNear checks for.
const mapExact = unix.MAP_FIXED_NOREPLACE
