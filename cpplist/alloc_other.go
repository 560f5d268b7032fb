//go:build !(linux || darwin || windows || openbsd || netbsd || freebsd)

package cpplist

import "github.com/pboyd/malloc"

// Without mmap the arena is a fixed Go slice that never moves.
func arenaOptions() []malloc.Opt {
	return nil
}
