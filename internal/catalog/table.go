package catalog

import (
	"iter"
	"slices"
)

// Table is an immutable key to entry index with a fixed, sorted iteration
// order. Sorting makes fuzzy tie-breaks deterministic: when two keys score
// the same, the lexicographically smaller one is seen first.
type Table[E Entry] struct {
	byKey  map[string]E
	keys   []string
	values map[string]struct{}
}

func newTable[E Entry](entries []E, keyOf func(E) string) *Table[E] {
	t := &Table[E]{
		byKey:  make(map[string]E, len(entries)),
		keys:   make([]string, 0, len(entries)),
		values: make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		k := keyOf(e)
		if _, dup := t.byKey[k]; !dup {
			t.keys = append(t.keys, k)
		}
		t.byKey[k] = e
		t.values[e.CanonicalValue()] = struct{}{}
	}
	slices.Sort(t.keys)
	return t
}

// Len returns the number of entries.
func (t *Table[E]) Len() int { return len(t.keys) }

// Lookup returns the entry stored under key.
func (t *Table[E]) Lookup(key string) (E, bool) {
	e, ok := t.byKey[key]
	return e, ok
}

// Value returns the canonical value stored under key.
func (t *Table[E]) Value(key string) (string, bool) {
	e, ok := t.byKey[key]
	if !ok {
		return "", false
	}
	return e.CanonicalValue(), true
}

// HasKey reports whether key is present.
func (t *Table[E]) HasKey(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

// HasValue reports whether any entry's canonical value equals v.
func (t *Table[E]) HasValue(v string) bool {
	_, ok := t.values[v]
	return ok
}

// Keys returns the keys in iteration order.
func (t *Table[E]) Keys() []string { return slices.Clone(t.keys) }

// KeysInOrder iterates over the keys without copying them.
func (t *Table[E]) KeysInOrder() iter.Seq[string] {
	return slices.Values(t.keys)
}

// All iterates over the entries in key order.
func (t *Table[E]) All() iter.Seq2[string, E] {
	return func(yield func(string, E) bool) {
		for _, k := range t.keys {
			if !yield(k, t.byKey[k]) {
				return
			}
		}
	}
}
