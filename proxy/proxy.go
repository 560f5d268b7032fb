// Package proxy implements forwarding tables: one stub per exported symbol
// of a wrapped module. The host calls the stubs, which jump to the real
// module until a symbol is patched.
package proxy

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/apex/log"
	"github.com/pboyd/detour"
)

// ErrNotBound is returned when a table is patched before BindModule.
var ErrNotBound = errors.New("forwarding table is not bound to a module")

// Module finds the exported symbols of a loaded module.
type Module interface {
	Lookup(symbol string) (uintptr, error)
}

// MapModule is a Module backed by a fixed set of addresses.
type MapModule map[string]uintptr

func (m MapModule) Lookup(symbol string) (uintptr, error) {
	addr, ok := m[symbol]
	if !ok || addr == 0 {
		return 0, fmt.Errorf("%w: %s", detour.ErrUnknownSymbol, symbol)
	}
	return addr, nil
}

// Table is the forwarding table of one module.
type Table struct {
	module string
	arena  *detour.CodeArena

	mu      sync.Mutex
	symbols []string
	stubs   map[string]uintptr

	// bound holds the real implementation of every symbol once the table
	// has been bound.
	bound map[string]uintptr

	// chains holds the active links of each patched symbol, oldest first.
	chains map[string][]*Link
}

// New creates a table for module with a stub for each symbol. The stubs
// trap until the table is bound.
func New(module string, symbols []string) (*Table, error) {
	return NewWithArena(detour.DefaultArena, module, symbols)
}

// NewWithArena is New with stubs allocated from arena.
func NewWithArena(arena *detour.CodeArena, module string, symbols []string) (*Table, error) {
	t := &Table{
		module:  module,
		arena:   arena,
		symbols: slices.Clone(symbols),
		stubs:   make(map[string]uintptr, len(symbols)),
		chains:  make(map[string][]*Link),
	}

	for _, sym := range symbols {
		if _, ok := t.stubs[sym]; ok {
			t.Close()
			return nil, fmt.Errorf("%s: duplicate symbol %s", module, sym)
		}

		entry, err := arena.NewStub()
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("%s: allocating stub for %s: %w", module, sym, err)
		}
		t.stubs[sym] = entry
	}

	log.Debugf("Created %d stubs for %s", len(t.stubs), module)
	return t, nil
}

// Module returns the name of the wrapped module.
func (t *Table) Module() string {
	return t.module
}

// Symbols returns the symbols in the table in the order given to New.
func (t *Table) Symbols() []string {
	return slices.Clone(t.symbols)
}

// Stub returns the entry point the host calls for symbol.
func (t *Table) Stub(symbol string) (uintptr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stub(symbol)
}

func (t *Table) stub(symbol string) (uintptr, error) {
	entry, ok := t.stubs[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no symbol %s", detour.ErrUnknownSymbol, t.module, symbol)
	}
	return entry, nil
}

// IsBound reports whether BindModule has succeeded.
func (t *Table) IsBound() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound != nil
}

// BindModule points every stub at the implementation in m. Either every
// symbol is found and bound, or nothing changes.
func (t *Table) BindModule(m Module) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bound != nil {
		return fmt.Errorf("%s is already bound", t.module)
	}

	bound := make(map[string]uintptr, len(t.symbols))
	for _, sym := range t.symbols {
		addr, err := m.Lookup(sym)
		if err != nil {
			return fmt.Errorf("binding %s: %w", t.module, err)
		}
		bound[sym] = addr
	}

	for _, sym := range t.symbols {
		if err := t.arena.SetStubTarget(t.stubs[sym], bound[sym]); err != nil {
			return err
		}
	}
	t.bound = bound

	log.Infof("Bound %d symbols of %s", len(bound), t.module)
	return nil
}

// Link is one patch on a symbol's stub. Links on a symbol stack up: the
// stub jumps to the newest one, and each link reaches the rest of the chain
// through Previous.
type Link struct {
	table  *Table
	symbol string
	target uintptr
}

// Patch makes symbol's stub jump to target. The new link goes on top of any
// earlier patches of symbol.
func (t *Table) Patch(symbol string, target uintptr) (*Link, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.stub(symbol)
	if err != nil {
		return nil, err
	}
	if t.bound == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, t.module)
	}

	log.Debugf("Proxying function (%s) - %#x => %#x", symbol, entry, target)
	if err := t.arena.SetStubTarget(entry, target); err != nil {
		return nil, err
	}

	link := &Link{table: t, symbol: symbol, target: target}
	t.chains[symbol] = append(t.chains[symbol], link)
	return link, nil
}

// Unpatch points symbol's stub back at the bound implementation and drops
// every link on it.
func (t *Table) Unpatch(symbol string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.stub(symbol)
	if err != nil {
		return err
	}
	if t.bound == nil {
		return fmt.Errorf("%w: %s", ErrNotBound, t.module)
	}

	log.Debugf("Restoring function (%s) - %#x => %#x", symbol, entry, t.bound[symbol])
	if err := t.arena.SetStubTarget(entry, t.bound[symbol]); err != nil {
		return err
	}
	delete(t.chains, symbol)
	return nil
}

// Depth returns the number of links on symbol.
func (t *Table) Depth(symbol string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.chains[symbol])
}

// below returns what the link at index i of symbol's chain falls through to.
func (t *Table) below(symbol string, i int) uintptr {
	if i == 0 {
		return t.bound[symbol]
	}
	return t.chains[symbol][i-1].target
}

// Symbol returns the patched symbol.
func (l *Link) Symbol() string {
	return l.symbol
}

// Target returns the code the link installed.
func (l *Link) Target() uintptr {
	return l.target
}

// Previous returns the code the link's target should call to run the
// original function: the link below it, or the bound implementation. It's
// zero once the link has been removed.
func (l *Link) Previous() uintptr {
	t := l.table
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.Index(t.chains[l.symbol], l)
	if i < 0 {
		return 0
	}
	return t.below(l.symbol, i)
}

// Remove takes the link out of its chain. The stub is only rewritten when
// the link is on top; a link lower down is spliced out, so the link above
// it falls through to the one below. Removing a link twice does nothing.
//
// Once Remove returns, the table no longer refers to the link's target.
func (l *Link) Remove() error {
	t := l.table
	t.mu.Lock()
	defer t.mu.Unlock()

	chain := t.chains[l.symbol]
	i := slices.Index(chain, l)
	if i < 0 {
		return nil
	}

	if i == len(chain)-1 {
		entry, err := t.stub(l.symbol)
		if err != nil {
			return err
		}
		previous := t.below(l.symbol, i)
		log.Debugf("Restoring function (%s) - %#x => %#x", l.symbol, entry, previous)
		if err := t.arena.SetStubTarget(entry, previous); err != nil {
			return err
		}
	}

	chain = slices.Delete(chain, i, i+1)
	if len(chain) == 0 {
		delete(t.chains, l.symbol)
	} else {
		t.chains[l.symbol] = chain
	}
	return nil
}

// Target returns where symbol's stub currently jumps.
func (t *Table) Target(symbol string) (uintptr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.stub(symbol)
	if err != nil {
		return 0, err
	}
	return detour.StubTarget(entry), nil
}

// Bound returns the real implementation of symbol.
func (t *Table) Bound(symbol string) (uintptr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.stub(symbol); err != nil {
		return 0, err
	}
	if t.bound == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotBound, t.module)
	}
	return t.bound[symbol], nil
}

// Close frees the stubs. Nothing may call them afterwards.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for sym, entry := range t.stubs {
		errs = append(errs, t.arena.FreeStub(entry))
		delete(t.stubs, sym)
	}
	t.bound = nil
	clear(t.chains)
	return errors.Join(errs...)
}
