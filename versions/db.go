package versions

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/pboyd/detour"
)

// DB maps fingerprints to descriptors. Entries can be added but never
// changed or removed.
type DB struct {
	mu            sync.RWMutex
	byFingerprint map[string]*Descriptor
}

// NewDB returns a database holding descs.
func NewDB(descs ...Descriptor) (*DB, error) {
	db := &DB{byFingerprint: map[string]*Descriptor{}}
	for _, d := range descs {
		if err := db.Add(d); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Add inserts d. Adding a fingerprint that is already present is an error.
func (db *DB) Add(d Descriptor) error {
	fp := strings.ToLower(d.Fingerprint)
	if fp == "" {
		return fmt.Errorf("descriptor %q has no fingerprint", d.Name)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if old, ok := db.byFingerprint[fp]; ok {
		return fmt.Errorf("fingerprint %s already belongs to %q", fp, old.Name)
	}

	d.Fingerprint = fp
	d.Hooks = maps.Clone(d.Hooks)
	db.byFingerprint[fp] = &d
	return nil
}

// Find returns the descriptor for fingerprint.
func (db *DB) Find(fingerprint string) (*Descriptor, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	d, ok := db.byFingerprint[strings.ToLower(fingerprint)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", detour.ErrUnknownVersion, fingerprint)
	}
	return d, nil
}

// All returns every descriptor, ordered by name.
func (db *DB) All() []*Descriptor {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return slices.SortedFunc(maps.Values(db.byFingerprint), func(a, b *Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
}
