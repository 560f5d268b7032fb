package detour

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Func returns a function of type T that calls the machine code at entry.
// T must be a func type whose calling convention matches the code, which
// is normally true only for Go functions and their trampolines. It returns
// the zero T when entry is zero.
func Func[T any](entry uintptr) T {
	var fn T
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("Func called with non-function type %T", fn))
	}
	if entry == 0 {
		return fn
	}

	// A func value points to a word holding the entry address, optionally
	// followed by captured variables.
	code := new(uintptr)
	*code = entry
	return *(*T)(unsafe.Pointer(&code))
}

// FuncEntry returns the entry address of a Go func value and the closure
// pointer the function expects in DX.
func FuncEntry(fn any) (entry, closure uintptr, err error) {
	fnv := reflect.ValueOf(fn)
	if fnv.Kind() != reflect.Func {
		return 0, 0, fmt.Errorf("not a function, kind: %v", fnv.Kind())
	}
	if fnv.IsNil() {
		return 0, 0, fmt.Errorf("nil %v", fnv.Type())
	}

	// The data word of the interface is the func value itself.
	closure = (*[2]uintptr)(unsafe.Pointer(&fn))[1]
	return fnv.Pointer(), closure, nil
}
