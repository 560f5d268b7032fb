// Package procmaps reads the memory map of the current process from
// /proc/self/maps.
package procmaps

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Mapping is one line of /proc/self/maps.
type Mapping struct {
	Start  uintptr
	End    uintptr
	Perms  string // e.g. "r-xp"
	Offset uintptr
	Path   string
}

func (m Mapping) Readable() bool   { return len(m.Perms) > 0 && m.Perms[0] == 'r' }
func (m Mapping) Writable() bool   { return len(m.Perms) > 1 && m.Perms[1] == 'w' }
func (m Mapping) Executable() bool { return len(m.Perms) > 2 && m.Perms[2] == 'x' }

// Read returns the current mappings.
func Read() ([]Mapping, error) {
	raw, err := os.ReadFile("/proc/self/maps")
	if err != nil {
		return nil, fmt.Errorf("read /proc/self/maps: %w", err)
	}
	return Parse(string(raw))
}

// Parse parses the contents of a maps file.
func Parse(raw string) ([]Mapping, error) {
	lines := strings.Split(raw, "\n")
	entries := make([]Mapping, 0, len(lines))
	for n, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("line %d: expected at least 5 fields, got %d", n+1, len(fields))
		}

		rangeParts := strings.SplitN(fields[0], "-", 2)
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("line %d: invalid address range %q", n+1, fields[0])
		}
		start, err := parseHex(rangeParts[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		end, err := parseHex(rangeParts[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		offset, err := parseHex(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}

		path := ""
		if len(fields) >= 6 {
			path = strings.Join(fields[5:], " ")
			path = strings.TrimSuffix(path, " (deleted)")
		}

		entries = append(entries, Mapping{
			Start:  start,
			End:    end,
			Perms:  fields[1],
			Offset: offset,
			Path:   path,
		})
	}
	return entries, nil
}

func parseHex(s string) (uintptr, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex string %q", s)
	}
	return uintptr(v), nil
}

// Overlapping returns the mappings that intersect [start, end).
func Overlapping(maps []Mapping, start, end uintptr) []Mapping {
	var out []Mapping
	for _, m := range maps {
		if m.Start < end && start < m.End {
			out = append(out, m)
		}
	}
	return out
}

// Base returns the address at which offset 0 of the file at path is mapped.
// Paths are compared after resolving symlinks.
func Base(maps []Mapping, path string) (uintptr, bool) {
	want := canonical(path)
	for _, m := range maps {
		if m.Path == "" || m.Offset != 0 {
			continue
		}
		if m.Path == path || canonical(m.Path) == want {
			return m.Start, true
		}
	}
	return 0, false
}

func canonical(path string) string {
	if p, err := filepath.EvalSymlinks(path); err == nil {
		return p
	}
	return filepath.Clean(path)
}
