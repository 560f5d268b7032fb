// Package hook installs named hooks into the running executable. An Engine
// identifies the executable, resolves hook names to patch sites and keeps
// one Context per hook.
package hook

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/apex/log"
	"github.com/pboyd/detour"
	"github.com/pboyd/detour/proxy"
	"github.com/pboyd/detour/versions"
)

// Options configure New.
type Options struct {
	// DB defaults to versions.Default.
	DB *versions.DB

	// Fingerprint identifies the executable. Defaults to the fingerprint
	// of the running executable.
	Fingerprint string

	Resolver versions.Options
}

// Engine is the registry of hooks installed in the process.
type Engine struct {
	resolver *versions.Resolver

	// mu is held while a hook is patched or unpatched, and is taken
	// before any Context's lock.
	mu     sync.Mutex
	hooks  map[string]*Context
	closed bool

	tablesMu sync.Mutex
	tables   map[string]*proxy.Table
}

// New identifies the executable and prepares to install hooks. An
// unrecognized executable is not an error: the engine is returned
// inactive and installs nothing.
func New(opts Options) (*Engine, error) {
	e := &Engine{
		hooks:  map[string]*Context{},
		tables: map[string]*proxy.Table{},
	}

	db := opts.DB
	if db == nil {
		db = versions.Default
	}

	fp := opts.Fingerprint
	if fp == "" {
		var err error
		fp, err = versions.SelfFingerprint()
		if err != nil {
			return nil, fmt.Errorf("fingerprinting executable: %w", err)
		}
	}

	desc, err := db.Find(fp)
	if errors.Is(err, detour.ErrUnknownVersion) {
		log.WithError(err).Warn("Unrecognized executable, no hooks will be installed")
		return e, nil
	} else if err != nil {
		return nil, err
	}

	e.resolver, err = versions.NewResolver(desc, opts.Resolver)
	if err != nil {
		return nil, err
	}

	log.Infof("Game version: %s", desc.Name)
	return e, nil
}

// Active reports whether the executable was recognized.
func (e *Engine) Active() bool {
	return e.resolver != nil
}

// Descriptor returns the recognized build, or nil.
func (e *Engine) Descriptor() *versions.Descriptor {
	if e.resolver == nil {
		return nil
	}
	return e.resolver.Descriptor()
}

// AddProxy makes a forwarding table available to proxied hooks.
func (e *Engine) AddProxy(t *proxy.Table) error {
	e.tablesMu.Lock()
	defer e.tablesMu.Unlock()

	if _, ok := e.tables[t.Module()]; ok {
		return fmt.Errorf("forwarding table for %s already added", t.Module())
	}
	e.tables[t.Module()] = t
	return nil
}

// Table returns the forwarding table of module.
func (e *Engine) Table(module string) (*proxy.Table, error) {
	e.tablesMu.Lock()
	defer e.tablesMu.Unlock()

	t, ok := e.tables[module]
	if !ok {
		return nil, fmt.Errorf("%w: no forwarding table for %s", detour.ErrUnknownSymbol, module)
	}
	return t, nil
}

// BindModule binds the forwarding table of module to the library at path.
func (e *Engine) BindModule(module, path string) error {
	t, err := e.Table(module)
	if err != nil {
		return err
	}

	m, err := proxy.Open(path)
	if err != nil {
		return err
	}
	return t.BindModule(m)
}

// Register installs replacement on the hook called name, replacing any
// earlier replacement. replacement is either a code address (uintptr) or a
// Go function with the hooked function's calling convention.
//
// The returned Context's Original calls the function as it was before.
func (e *Engine) Register(name string, replacement any) (*Context, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: can't register %s", detour.ErrUnknownVersion, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("%w: can't register %s", detour.ErrClosed, name)
	}

	site, err := e.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}

	ctx, ok := e.hooks[name]
	if !ok {
		ctx = NewContext(name, e)
		ctx.Bind(site)
	}

	if addr, ok := replacement.(uintptr); ok {
		err = ctx.Patch(site, addr)
	} else {
		err = ctx.PatchFunc(site, replacement)
	}
	if err != nil {
		if !ctx.Active() {
			delete(e.hooks, name)
		}
		return nil, err
	}
	e.hooks[name] = ctx

	log.WithField("hook", name).Info("Registered hook")
	return ctx, nil
}

// Hook returns the Context of a registered hook.
func (e *Engine) Hook(name string) (*Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, ok := e.hooks[name]
	return ctx, ok
}

// Unregister removes the hook called name.
func (e *Engine) Unregister(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unregisterLocked(name)
}

func (e *Engine) unregisterLocked(name string) error {
	ctx, ok := e.hooks[name]
	if !ok {
		return fmt.Errorf("%w: no hook %s is registered", detour.ErrUnknownSymbol, name)
	}

	if err := ctx.Unpatch(); err != nil {
		return err
	}
	delete(e.hooks, name)
	return nil
}

// Close removes every hook. It's meant for module unload. Register fails
// afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(e.hooks)) {
		errs = append(errs, e.unregisterLocked(name))
	}
	if e.resolver != nil {
		errs = append(errs, e.resolver.Close())
	}
	return errors.Join(errs...)
}

// RegisterFunc is Register for a typed Go replacement. The returned
// function gives the current original as a T.
func RegisterFunc[T any](e *Engine, name string, replacement T) (func() T, error) {
	ctx, err := e.Register(name, replacement)
	if err != nil {
		return nil, err
	}
	return func() T {
		return detour.Func[T](ctx.Original())
	}, nil
}
