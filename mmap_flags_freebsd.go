//go:build freebsd

package detour

import "golang.org/x/sys/unix"

// mapExact makes mmap fail instead of moving a hinted mapping. MAP_EXCL
// stops MAP_FIXED from replacing what is already there.
const mapExact = unix.MAP_FIXED | unix.MAP_EXCL
