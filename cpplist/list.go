// Package cpplist reads and builds C++ std::list values in the memory
// layout foreign code expects.
package cpplist

import (
	"fmt"
	"iter"
	"reflect"
	"runtime"
	"sync"
	"unsafe"

	"github.com/modern-go/reflect2"
)

// Ownership says whether a List frees its memory.
type Ownership int

const (
	// Borrowed lists belong to foreign code and are never freed.
	Borrowed Ownership = iota

	// Owned lists were created by New and are freed by Free or when the
	// List is garbage collected.
	Owned
)

func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// List is a handle on a foreign list of T. T must not contain Go pointers.
// A List is not safe for concurrent use.
type List[T any] struct {
	root      uintptr
	layout    Layout
	ownership Ownership
	alloc     Allocator

	owner   *owner
	cleanup runtime.Cleanup
}

// owner holds what is needed to release an Owned list. It is kept apart
// from the List so the cleanup doesn't keep the List reachable.
type owner struct {
	root   uintptr
	layout Layout
	alloc  Allocator
	freed  bool
}

func (o *owner) free() {
	if o.freed {
		return
	}
	o.freed = true
	o.layout.freeRoot(o.root, o.alloc)
}

var pointerFree sync.Map

// checkElem returns an error if T can't be stored in foreign memory.
func checkElem[T any]() error {
	typ := reflect2.TypeOfPtr((*T)(nil)).Elem()

	ok, cached := pointerFree.Load(typ.RType())
	if !cached {
		ok = !hasPointers(typ.Type1())
		pointerFree.Store(typ.RType(), ok)
	}
	if !ok.(bool) {
		return fmt.Errorf("%v contains pointers", typ.Type1())
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	}
	return true
}

// Wrap returns a Borrowed view of the foreign list at root.
func Wrap[T any](root uintptr, layout Layout) (*List[T], error) {
	if err := checkElem[T](); err != nil {
		return nil, err
	}
	if root == 0 {
		return nil, fmt.Errorf("nil %v list", layout)
	}
	return &List[T]{root: root, layout: layout, ownership: Borrowed}, nil
}

// New allocates an empty Owned list. A nil alloc uses DefaultAllocator.
//
// The list is freed when the returned List is collected, so it must stay
// reachable while foreign code uses Root.
func New[T any](alloc Allocator, layout Layout) (*List[T], error) {
	if err := checkElem[T](); err != nil {
		return nil, err
	}
	if alloc == nil {
		def, err := DefaultAllocator()
		if err != nil {
			return nil, err
		}
		alloc = def
	}

	root, err := layout.newRoot(alloc)
	if err != nil {
		return nil, err
	}

	l := &List[T]{
		root:      root,
		layout:    layout,
		ownership: Owned,
		alloc:     alloc,
		owner:     &owner{root: root, layout: layout, alloc: alloc},
	}
	l.cleanup = runtime.AddCleanup(l, (*owner).free, l.owner)
	return l, nil
}

// Root returns the address foreign code knows the list by.
func (l *List[T]) Root() uintptr {
	return l.root
}

// Layout returns the list's layout.
func (l *List[T]) Layout() Layout {
	return l.layout
}

// Ownership reports whether l frees its memory.
func (l *List[T]) Ownership() Ownership {
	return l.ownership
}

// Len returns the length stored in the list.
func (l *List[T]) Len() int {
	return int(*l.layout.length(l.root))
}

// Push appends v. Only Owned lists can grow: the memory of a Borrowed list
// belongs to the foreign allocator.
func (l *List[T]) Push(v T) error {
	if l.ownership != Owned {
		return fmt.Errorf("push to %s list", l.ownership)
	}
	if l.owner.freed {
		return fmt.Errorf("push to freed list")
	}

	node, err := l.alloc.Alloc(nodeSize(unsafe.Sizeof(v)))
	if err != nil {
		return err
	}
	*(*T)(unsafe.Pointer(data(node))) = v

	l.layout.linkBefore(node, l.layout.sentinel(l.root))
	*l.layout.length(l.root)++
	return nil
}

// All yields a pointer to each element from head to tail. The pointers refer
// to foreign memory and are valid until the node is freed.
func (l *List[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		s := l.layout.sentinel(l.root)
		for node := l.layout.next(s); node != s; node = l.layout.next(node) {
			if !yield((*T)(unsafe.Pointer(data(node)))) {
				return
			}
		}
	}
}

// Values copies the elements into a slice.
func (l *List[T]) Values() []T {
	values := make([]T, 0, l.Len())
	for v := range l.All() {
		values = append(values, *v)
	}
	return values
}

// Free releases an Owned list. It does nothing for a Borrowed list or one
// already freed.
func (l *List[T]) Free() {
	if l.ownership != Owned {
		return
	}
	l.cleanup.Stop()
	l.owner.free()
}
