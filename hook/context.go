package hook

import (
	"fmt"
	"sync"

	"github.com/apex/log"
	"github.com/pboyd/detour"
	"github.com/pboyd/detour/proxy"
	"github.com/pboyd/detour/versions"
)

// Proxies finds the forwarding table of a wrapped module.
type Proxies interface {
	Table(module string) (*proxy.Table, error)
}

// Context is one hook point. At most one patch is active on a Context at a
// time, and every method is safe for concurrent use.
type Context struct {
	name    string
	proxies Proxies

	mu   sync.Mutex
	site versions.Site

	// Set while a trampoline patch is active.
	patch *detour.Patch

	// Set while a forwarding table patch is active. relay is freed once
	// the link is out of the table.
	link  *proxy.Link
	relay *detour.Block

	// replacement keeps a Go func value alive while machine code refers
	// to it.
	replacement any
}

// NewContext returns an inactive hook point. proxies may be nil if no site
// given to Patch is proxied.
func NewContext(name string, proxies Proxies) *Context {
	return &Context{name: name, proxies: proxies}
}

// Bind records where the hook point lives without patching it, so that
// Original can return the unpatched code. Patch binds its site too.
func (c *Context) Bind(site versions.Site) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.site = site
}

// Name returns the hook's name.
func (c *Context) Name() string {
	return c.name
}

// Patch redirects site to the machine code at replacement. An active patch
// is removed first.
func (c *Context) Patch(site versions.Site, replacement uintptr) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.patchLocked(site, replacement, 0, nil)
}

// PatchFunc redirects site to the Go function fn. fn must have the calling
// convention of the code at site.
func (c *Context) PatchFunc(site versions.Site, fn any) error {
	entry, closure, err := detour.FuncEntry(fn)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.patchLocked(site, entry, closure, fn)
}

func (c *Context) patchLocked(site versions.Site, entry, closure uintptr, keep any) error {
	if err := c.unpatchLocked(); err != nil {
		return err
	}
	c.site = site

	label := "hook for " + c.name

	switch loc := site.Locator.(type) {
	case versions.Exported, versions.StaticOffset:
		if site.Addr == 0 {
			return fmt.Errorf("%w: %s was not resolved", detour.ErrUnknownSymbol, c.name)
		}
		p, err := detour.NewPatchContext(site.Addr, entry, closure, site.Size, label)
		if err != nil {
			return err
		}
		c.patch = p

	case versions.Proxied:
		table, err := c.lookupTable(loc.Module)
		if err != nil {
			return err
		}

		target := entry
		var relay *detour.Block
		if closure != 0 {
			relay, err = detour.NewRelay(closure, entry)
			if err != nil {
				return err
			}
			target = relay.Addr()
		}

		link, err := table.Patch(loc.Name, target)
		if err != nil {
			if relay != nil {
				relay.Free()
			}
			return err
		}
		c.link, c.relay = link, relay

	default:
		return fmt.Errorf("%s: unsupported locator %T", c.name, loc)
	}

	c.replacement = keep
	log.WithFields(log.Fields{"hook": c.name, "locator": site.Locator}).Debug("patched")
	return nil
}

func (c *Context) lookupTable(module string) (*proxy.Table, error) {
	if c.proxies == nil {
		return nil, fmt.Errorf("%w: no forwarding table for %s", detour.ErrUnknownSymbol, module)
	}
	return c.proxies.Table(module)
}

// Unpatch removes the active patch. It does nothing when no patch is
// active.
func (c *Context) Unpatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.unpatchLocked()
}

func (c *Context) unpatchLocked() error {
	switch {
	case c.patch != nil:
		if err := c.patch.Close(); err != nil {
			return err
		}
		c.patch = nil

	case c.link != nil:
		if err := c.link.Remove(); err != nil {
			return err
		}
		var err error
		if c.relay != nil {
			err = c.relay.Free()
		}
		c.link, c.relay = nil, nil
		if err != nil {
			return err
		}

	default:
		return nil
	}

	c.replacement = nil
	log.WithField("hook", c.name).Debug("unpatched")
	return nil
}

// Active reports whether a patch is installed.
func (c *Context) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patch != nil || c.link != nil
}

// Original returns code that behaves like the hooked function did before
// the active patch. For a proxied site that is whatever the patch sits on,
// which changes as patches below it come and go. With no active patch it
// returns the bound site's address, or the current target of a proxied
// site. It returns zero if nothing is known.
func (c *Context) Original() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.patch != nil:
		return c.patch.Original()
	case c.link != nil:
		return c.link.Previous()
	}

	if loc, ok := c.site.Proxied(); ok {
		table, err := c.lookupTable(loc.Module)
		if err != nil {
			return 0
		}
		target, err := table.Target(loc.Name)
		if err != nil {
			return 0
		}
		return target
	}
	return c.site.Addr
}
