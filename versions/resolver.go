package versions

import (
	"fmt"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/pboyd/detour"
	"github.com/pboyd/detour/internal/binfile"
)

// Options adjust how a Resolver looks at the running process. The zero
// value describes the current process.
type Options struct {
	// Executable is the path of the host executable. Defaults to
	// os.Executable.
	Executable string

	// Variant overrides the variant detected from Executable.
	Variant *Variant

	// LoadBase overrides the base address read from the process.
	LoadBase uintptr
}

// Resolver turns the locators of one descriptor into addresses in the
// current process. The load base is fixed when the Resolver is created.
type Resolver struct {
	desc    *Descriptor
	exe     string
	variant Variant
	base    uintptr

	mu         sync.Mutex
	closed     bool
	symbols    *binfile.File
	symbolsErr error
}

// NewResolver prepares to resolve the hooks of desc.
func NewResolver(desc *Descriptor, opts Options) (*Resolver, error) {
	r := &Resolver{desc: desc, exe: opts.Executable}

	if r.exe == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		r.exe = exe
	}

	if opts.Variant != nil {
		r.variant = *opts.Variant
	} else {
		r.variant = DetectVariant(desc.Platform, r.exe)
	}

	switch {
	case opts.LoadBase != 0:
		r.base = opts.LoadBase
	case !desc.Relocatable:
		r.base = desc.LoadBase
	default:
		base, err := moduleBase(r.exe)
		if err != nil {
			return nil, fmt.Errorf("finding load base of %s: %w", r.exe, err)
		}
		r.base = base
	}

	log.WithFields(log.Fields{
		"build":   desc.Name,
		"variant": r.variant,
		"base":    fmt.Sprintf("%#x", r.base),
	}).Debug("resolver ready")

	return r, nil
}

// Descriptor returns the descriptor being resolved.
func (r *Resolver) Descriptor() *Descriptor {
	return r.desc
}

// Variant returns the executable variant in use.
func (r *Resolver) Variant() Variant {
	return r.variant
}

// LoadBase returns the address the executable is loaded at.
func (r *Resolver) LoadBase() uintptr {
	return r.base
}

// Resolve finds the patch site of hook.
func (r *Resolver) Resolve(hook string) (Site, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return Site{}, fmt.Errorf("%w: resolver for %s", detour.ErrClosed, r.desc.Name)
	}

	loc, ok := r.desc.Hooks[hook]
	if !ok {
		return Site{}, fmt.Errorf("%w: no hook %q in %s", detour.ErrUnknownSymbol, hook, r.desc.Name)
	}

	site := Site{Hook: hook, Locator: loc}

	switch loc := loc.(type) {
	case Exported:
		addr, err := r.lookup(loc.Name)
		if err != nil {
			return Site{}, err
		}
		site.Addr = addr
		site.Size = loc.Size

	case StaticOffset:
		off, ok := loc.Offsets[r.variant]
		if !ok {
			return Site{}, fmt.Errorf("%w: %s has no offset for %v", detour.ErrUnknownSymbol, hook, r.variant)
		}
		site.Addr = off.Addr - r.desc.LoadBase + r.base
		site.Size = off.Size

	case Proxied:
		// Reached through the forwarding table of loc.Module.

	default:
		return Site{}, fmt.Errorf("unsupported locator %T", loc)
	}

	return site, nil
}

// lookup returns the address of an exported symbol of the executable.
func (r *Resolver) lookup(name string) (uintptr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, fmt.Errorf("%w: resolver for %s", detour.ErrClosed, r.desc.Name)
	}
	if r.symbols == nil && r.symbolsErr == nil {
		r.symbols, r.symbolsErr = binfile.Open(r.exe)
	}
	if r.symbolsErr != nil {
		return 0, r.symbolsErr
	}

	sym, ok := r.symbols.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", detour.ErrUnknownSymbol, name)
	}
	return uintptr(sym.Addr-r.symbols.Base) + r.base, nil
}

// Close releases the executable's symbol table. Exported symbols can't be
// resolved afterwards.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.symbols == nil {
		return nil
	}
	err := r.symbols.Close()
	r.symbols = nil
	return err
}
