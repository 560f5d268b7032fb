package hook

import (
	"errors"
	"fmt"
	"reflect"
)

type funcDifferences struct {
	In  []*argDifference
	Out []*argDifference
}

func (d *funcDifferences) Error() error {
	errs := []error{}
	for i, arg := range d.In {
		if arg != nil {
			errs = append(errs, fmt.Errorf("argument %d: %v != %v", i, arg.A, arg.B))
		}
	}
	for i, out := range d.Out {
		if out != nil {
			errs = append(errs, fmt.Errorf("output %d: %v != %v", i, out.A, out.B))
		}
	}

	return errors.Join(errs...)
}

type argDifference struct {
	A reflect.Type
	B reflect.Type
}

// diffFuncs compares the signatures of two function types, ignoring the
// first skip arguments. It returns nil when they match.
func diffFuncs(a, b reflect.Type, skip int) *funcDifferences {
	diff := funcDifferences{
		In:  diffTypes(a.NumIn(), b.NumIn(), a.In, b.In, skip),
		Out: diffTypes(a.NumOut(), b.NumOut(), a.Out, b.Out, 0),
	}
	if diff.In == nil && diff.Out == nil {
		return nil
	}
	return &diff
}

// diffTypes returns one entry per position, nil where the types match, or
// nil if every position matches.
func diffTypes(na, nb int, ta, tb func(int) reflect.Type, skip int) []*argDifference {
	n := max(na, nb)
	diffs := make([]*argDifference, n)
	found := false

	for i := skip; i < n; i++ {
		var a, b reflect.Type
		if i < na {
			a = ta(i)
		}
		if i < nb {
			b = tb(i)
		}
		if a != b {
			diffs[i] = &argDifference{A: a, B: b}
			found = true
		}
	}

	if !found {
		return nil
	}
	return diffs
}
