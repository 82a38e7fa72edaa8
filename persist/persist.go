// Package persist implements a schema-deriving, columnar-buffering,
// file-rolling writer for arbitrary user-defined record types. Given a
// record type it has never seen, it derives a Parquet-compatible column
// layout by reflection, buffers rows in column-major form, and periodically
// flushes compressed row groups to rolling local files.
package persist

import "reflect"

// SchemaBuilder accumulates leaf descriptors as a type is walked. It's a
// thin, reusable alias over a slice so both the derivation engine and any
// type implementing the escape hatch below share the same append-only sink.
type SchemaBuilder struct {
	leaves []Leaf
}

func (b *SchemaBuilder) push(l Leaf) {
	b.leaves = append(b.leaves, l)
}

// Persistable is the escape hatch a concrete, locally-defined named type may
// implement directly instead of relying on the reflection-driven derivation
// engine in derive.go. Pair[X, Y] implements it. Foreign types this package
// special-cases (time.Time, time.Duration, decimal.Decimal) can't: Go
// forbids defining new methods on types declared in another package, so
// those are matched by identity inside the derivation engine instead.
type Persistable interface {
	// PersistSchema appends this type's leaves to b, using prefix as the
	// parent name (joined with "_"). Repetition is decided by the caller:
	// an enclosing pointer forces every produced leaf to Optional, applied
	// as a post-pass over the leaves this call appends.
	PersistSchema(b *SchemaBuilder, prefix string)
	// PersistAppend pushes exactly FieldCount(reflect.TypeOf(self)) values
	// into row, in the same order PersistSchema produced them.
	PersistAppend(row *RowBuffer)
}

// Variant marks a type whose schema collapses to a single discriminator
// string column — the Go analogue of the original's tagged-enum record.
// Any payload fields the concrete type carries are not serialized.
type Variant interface {
	PersistVariant() string
}

// SchemaOf returns the leaf layout a value of type t would produce, as if
// recorded into a fresh writer with no inherited prefix. It is the entry
// point TableWriter uses to freeze a schema on the first row.
func SchemaOf(t reflect.Type) []Leaf {
	b := &SchemaBuilder{}
	deriveSchema(b, t, "")
	return append([]Leaf(nil), b.leaves...)
}

// FieldCount returns the number of leaves a value of type t produces. It is
// memoized per type by the same cache the derivation engine uses.
func FieldCount(t reflect.Type) int {
	return len(planFor(t).leaves)
}

// Append drives row through value's derived (or hand-implemented) append
// procedure, pushing exactly FieldCount(reflect.TypeOf(value)) fields.
func Append(row *RowBuffer, value any) {
	appendValue(row, reflect.ValueOf(value))
}
