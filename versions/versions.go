// Package versions identifies the host executable by fingerprint and
// resolves the patch sites recorded for that build.
package versions

import "fmt"

// Platform is the operating system a build targets.
type Platform int

const (
	Win32 Platform = iota
	MacOS
	Linux
)

func (p Platform) String() string {
	switch p {
	case Win32:
		return "win32"
	case MacOS:
		return "macos"
	case Linux:
		return "linux"
	default:
		return fmt.Sprintf("Platform(%d)", int(p))
	}
}

// Variant distinguishes executables shipped for one platform in the same
// build.
type Variant int

const (
	Generic Variant = iota
	DX9
	DX11
	Tablet
)

func (v Variant) String() string {
	switch v {
	case Generic:
		return "generic"
	case DX9:
		return "dx9"
	case DX11:
		return "dx11"
	case Tablet:
		return "tablet"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Locator describes how to find a patch site in one build. It is one of
// Exported, Proxied or StaticOffset.
type Locator interface {
	locator()
	fmt.Stringer
}

// Exported is a function named in the executable's symbol table. Size is
// the number of prologue bytes that are safe to move.
type Exported struct {
	Name string
	Size int
}

// Proxied is a function exported by a module that is reached through a
// forwarding table.
type Proxied struct {
	Module string
	Name   string
}

// Offset is a recorded address and the prologue size at that address.
type Offset struct {
	Addr uintptr
	Size int
}

// StaticOffset is a fixed address per executable variant, recorded
// against the descriptor's LoadBase.
type StaticOffset struct {
	Offsets map[Variant]Offset
}

func (Exported) locator()     {}
func (Proxied) locator()      {}
func (StaticOffset) locator() {}

func (l Exported) String() string {
	return fmt.Sprintf("exported %s (%d bytes)", l.Name, l.Size)
}

func (l Proxied) String() string {
	return fmt.Sprintf("proxied %s!%s", l.Module, l.Name)
}

func (l StaticOffset) String() string {
	return fmt.Sprintf("static offset (%d variants)", len(l.Offsets))
}

// Descriptor lists the patch sites of one shipped build.
type Descriptor struct {
	Name        string
	Platform    Platform
	Fingerprint string

	// LoadBase is the address the offsets in StaticOffset locators were
	// recorded against.
	LoadBase uintptr

	// Relocatable is set when the executable can load anywhere, so the
	// current base has to be read from the process.
	Relocatable bool

	Hooks map[string]Locator
}

// Site is a resolved patch site. Proxied sites have no address.
type Site struct {
	Hook    string
	Locator Locator
	Addr    uintptr
	Size    int
}

// Proxied reports whether the site is reached through a forwarding table.
func (s Site) Proxied() (Proxied, bool) {
	p, ok := s.Locator.(Proxied)
	return p, ok
}
