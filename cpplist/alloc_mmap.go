//go:build linux || darwin || windows || openbsd || netbsd || freebsd

package cpplist

import "github.com/pboyd/malloc"

func arenaOptions() []malloc.Opt {
	return []malloc.Opt{malloc.Backend(malloc.MmapBackend())}
}
