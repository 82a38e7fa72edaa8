package persist

import "reflect"

// Pair is the Go stand-in for the original's unnamed two-element tuple
// record, used for fields like a top-of-book pair of price levels. Go has
// no unnamed-tuple construct and struct fields are always named, so rather
// than overloading arbitrary two-field structs with tuple semantics, this
// package gives tuples a dedicated generic type the derivation engine
// special-cases by its PersistSchema/PersistAppend implementation.
type Pair[X, Y any] struct {
	First  X
	Second Y
}

// NewPair constructs a Pair from its two elements.
func NewPair[X, Y any](first X, second Y) Pair[X, Y] {
	return Pair[X, Y]{First: first, Second: second}
}

// PersistSchema implements Persistable: First's leaves are suffixed "_0",
// Second's "_1" (or bare "0"/"1" if prefix is empty), per SPEC_FULL.md §4.2.
func (p Pair[X, Y]) PersistSchema(b *SchemaBuilder, prefix string) {
	deriveSchema(b, reflect.TypeOf(p.First), joinName(prefix, "0"))
	deriveSchema(b, reflect.TypeOf(p.Second), joinName(prefix, "1"))
}

// PersistAppend implements Persistable: First then Second, in order.
func (p Pair[X, Y]) PersistAppend(row *RowBuffer) {
	appendValue(row, reflect.ValueOf(p.First))
	appendValue(row, reflect.ValueOf(p.Second))
}
