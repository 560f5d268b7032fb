package hook

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/pboyd/detour"
	"github.com/pboyd/detour/versions"
)

var (
	mu        sync.RWMutex
	redefined = map[uintptr]*Context{}
)

// Redefine replaces the Go function fn with newFn. An error will be
// returned if fn or newFn are not functions or if their signatures do not
// match.
//
// Note that if fn has been inlined this will silently fail. If possible, add a
// noinline directive to work-around this problem:
//
//	//go:noinline
//	func myfunc() {
//		...
//	}
func Redefine(fn, newFn any) error {
	return redefine(fn, newFn, 0)
}

// RedefineMethod is Redefine for method expressions. The receiver types
// may differ, so a method of a type with the same layout can stand in:
//
//	type myResolver net.Resolver
//	hook.RedefineMethod((*net.Resolver).LookupHost, (*myResolver).LookupHost)
func RedefineMethod(fn, newFn any) error {
	return redefine(fn, newFn, 1)
}

func redefine(fn, newFn any, skip int) error {
	fnv := reflect.ValueOf(fn)
	if fnv.Kind() != reflect.Func {
		return fmt.Errorf("not a function, kind: %v", fnv.Kind())
	}
	newFnv := reflect.ValueOf(newFn)
	if newFnv.Kind() != reflect.Func {
		return fmt.Errorf("not a function, kind: %v", newFnv.Kind())
	}
	if diff := diffFuncs(fnv.Type(), newFnv.Type(), skip); diff != nil {
		return fmt.Errorf("function signatures do not match: %w", diff.Error())
	}

	site, err := funcSite(fnv)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	ctx, ok := redefined[site.Addr]
	if !ok {
		ctx = NewContext(site.Hook, nil)
	}
	if err := ctx.PatchFunc(site, newFn); err != nil {
		return err
	}
	redefined[site.Addr] = ctx
	return nil
}

// funcSite describes the entry of a Go function as a patch site.
func funcSite(fnv reflect.Value) (versions.Site, error) {
	entry := fnv.Pointer()
	if entry == 0 {
		return versions.Site{}, fmt.Errorf("nil function %v", fnv.Type())
	}

	name := fmt.Sprintf("%#x", entry)
	if f := runtime.FuncForPC(entry); f != nil {
		name = f.Name()
	}

	size, err := detour.PrologueAt(entry)
	if err != nil {
		return versions.Site{}, fmt.Errorf("%s: %w", name, err)
	}

	return versions.Site{
		Hook:    name,
		Locator: versions.Exported{Name: name, Size: size},
		Addr:    entry,
		Size:    size,
	}, nil
}

// Restore undoes Redefine or RedefineMethod.
func Restore(fn any) error {
	fnv := reflect.ValueOf(fn)
	if fnv.Kind() != reflect.Func {
		return fmt.Errorf("not a function, kind: %v", fnv.Kind())
	}

	mu.Lock()
	defer mu.Unlock()

	ctx, ok := redefined[fnv.Pointer()]
	if !ok {
		return fmt.Errorf("%v has not been redefined", fnv.Type())
	}
	if err := ctx.Unpatch(); err != nil {
		return err
	}
	delete(redefined, fnv.Pointer())
	return nil
}

// Original returns a function with the same behavior as the original version
// of the function. If the function has not been redefined, fn itself is
// returned.
//
// The returned function runs a relocated copy of fn's first instructions
// and then continues in fn. If fn has to grow its stack it restarts from its
// entry, which runs the replacement again.
func Original[T any](fn T) T {
	fnv := reflect.ValueOf(fn)
	if fnv.Kind() != reflect.Func {
		var zero T
		return zero
	}

	mu.RLock()
	defer mu.RUnlock()

	ctx, ok := redefined[fnv.Pointer()]
	if !ok || !ctx.Active() {
		// Not redefined, so return the original func.
		return fn
	}

	return detour.Func[T](ctx.Original())
}
