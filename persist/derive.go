package persist

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// planLeaf is a Leaf whose Name is relative to its own type's root — i.e.
// as if the type were schema'd with no inherited prefix. Composing a type
// into a parent (a struct field, a tuple slot, an array element) is just one
// more joinName step; see buildPlan's struct/array/pointer cases.
type planLeaf struct {
	name       string
	physical   PhysicalType
	logical    LogicalType
	repetition Repetition
}

// typePlan is the memoized, per-type derivation result: the flattened,
// ordered leaf list, and a single closure that walks a value of this type
// and pushes exactly len(leaves) fields into a RowBuffer, in order. Building
// a plan is a one-time reflect-heavy cost paid on the first row of a table;
// every subsequent row of the same type reuses the cached plan.
type typePlan struct {
	leaves []planLeaf
	extract func(row *RowBuffer, v reflect.Value)
}

var planCache sync.Map // reflect.Type -> *typePlan

// schemaError is the payload of a panic raised by buildPlan when a type
// cannot be schema'd at all (an unsupported Go kind, or a field attribute
// that doesn't apply). This mirrors the original derive macro's failure
// mode: schema derivation is a property of a *type*, so a failure here is a
// programmer error, not a runtime data error, and is only ever raised while
// building a plan for a brand-new type — never on the per-row hot path.
// Package-boundary entry points (TableWriter's first Record call) recover it
// and turn it into a KindInvariant error.
type schemaError string

func schemaErrorf(format string, args ...any) {
	panic(schemaError(fmt.Sprintf(format, args...)))
}

func planFor(t reflect.Type) *typePlan {
	if cached, ok := planCache.Load(t); ok {
		return cached.(*typePlan)
	}
	plan := buildPlan(t)
	actual, _ := planCache.LoadOrStore(t, plan)
	return actual.(*typePlan)
}

var (
	persistableType = reflect.TypeOf((*Persistable)(nil)).Elem()
	variantType     = reflect.TypeOf((*Variant)(nil)).Elem()
	timeTimeType    = reflect.TypeOf(time.Time{})
	durationType    = reflect.TypeOf(time.Duration(0))
	decimalType     = reflect.TypeOf(decimal.Decimal{})
)

// joinName composes a parent name and a child's relative name the way every
// level of schema derivation does: "tob" + "0_price" -> "tob_0_price",
// "" + "price" -> "price", "price" + "" -> "price".
func joinName(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "_" + name
	}
}

// deriveSchema appends t's leaves to b, each prefixed by prefix.
func deriveSchema(b *SchemaBuilder, t reflect.Type, prefix string) {
	plan := planFor(t)
	for _, l := range plan.leaves {
		b.push(Leaf{
			Name:       joinName(prefix, l.name),
			Physical:   l.physical,
			Repetition: l.repetition,
			Logical:    l.logical,
		})
	}
}

// appendValue pushes v's fields into row via its cached plan.
func appendValue(row *RowBuffer, v reflect.Value) {
	planFor(v.Type()).extract(row, v)
}

// buildPlan constructs the plan for t, dispatching in a fixed order: pointers
// (optionals) first so a pointer to a Persistable- or Variant-implementing
// type is never mistaken for that type itself; then the three foreign
// built-ins Go won't let this package attach methods to; then the escape
// hatch and variant-marker interfaces; then structural kinds; then
// primitives.
func buildPlan(t reflect.Type) *typePlan {
	switch {
	case t.Kind() == reflect.Ptr:
		return buildPointerPlan(t)
	case t == timeTimeType:
		return buildTimePlan()
	case t == durationType:
		return buildDurationPlan()
	case t == decimalType:
		return buildDecimalPlan()
	case t.Implements(persistableType):
		return buildPersistablePlan(t)
	case t.Implements(variantType):
		return buildVariantPlan()
	}

	switch t.Kind() {
	case reflect.Struct:
		return buildStructPlan(t)
	case reflect.Array:
		return buildArrayPlan(t)
	case reflect.Slice, reflect.Map:
		return buildStringifiedPlan()
	case reflect.Bool:
		return leafPlan(PhysicalBool, LogicalType{}, func(row *RowBuffer, v reflect.Value) {
			row.Push(BoolField(v.Bool()))
		})
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return leafPlan(PhysicalInt32, LogicalType{}, func(row *RowBuffer, v reflect.Value) {
			row.Push(IntField(int32(v.Int())))
		})
	case reflect.Int, reflect.Int64:
		return leafPlan(PhysicalInt64, LogicalType{}, func(row *RowBuffer, v reflect.Value) {
			row.Push(LongField(v.Int()))
		})
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return leafPlan(PhysicalInt32, LogicalType{}, func(row *RowBuffer, v reflect.Value) {
			row.Push(UIntField(uint32(v.Uint())))
		})
	case reflect.Uint, reflect.Uint64:
		return leafPlan(PhysicalInt64, LogicalType{}, func(row *RowBuffer, v reflect.Value) {
			row.Push(ULongField(v.Uint()))
		})
	case reflect.Float32:
		return leafPlan(PhysicalFloat, LogicalType{}, func(row *RowBuffer, v reflect.Value) {
			row.Push(FloatField(float32(v.Float())))
		})
	case reflect.Float64:
		return leafPlan(PhysicalDouble, LogicalType{}, func(row *RowBuffer, v reflect.Value) {
			row.Push(DoubleField(v.Float()))
		})
	case reflect.String:
		return leafPlan(PhysicalByteArray, StringLogical, func(row *RowBuffer, v reflect.Value) {
			row.Push(StrField(v.String()))
		})
	default:
		schemaErrorf("persist: type %s cannot be persisted (unsupported kind %s)", t, t.Kind())
		panic("unreachable")
	}
}

// leafPlan builds the common case: a single leaf, required, with a plain
// extraction closure.
func leafPlan(physical PhysicalType, logical LogicalType, extract func(row *RowBuffer, v reflect.Value)) *typePlan {
	return &typePlan{
		leaves:  []planLeaf{{physical: physical, logical: logical, repetition: Required}},
		extract: extract,
	}
}

func buildPointerPlan(t reflect.Type) *typePlan {
	elem := planFor(t.Elem())
	leaves := make([]planLeaf, len(elem.leaves))
	for i, l := range elem.leaves {
		leaves[i] = planLeaf{name: l.name, physical: l.physical, logical: l.logical, repetition: Optional}
	}
	n := len(elem.leaves)
	return &typePlan{
		leaves: leaves,
		extract: func(row *RowBuffer, v reflect.Value) {
			if v.IsNil() {
				for i := 0; i < n; i++ {
					row.Push(NullField())
				}
				return
			}
			elem.extract(row, v.Elem())
		},
	}
}

func buildTimePlan() *typePlan {
	return &typePlan{
		leaves: []planLeaf{{physical: PhysicalInt64, logical: TimestampLogical(UnitNanos), repetition: Required}},
		extract: func(row *RowBuffer, v reflect.Value) {
			row.Push(ULongField(safeUnixNano(v.Interface().(time.Time))))
		},
	}
}

func buildDurationPlan() *typePlan {
	return &typePlan{
		leaves: []planLeaf{{name: "ns", physical: PhysicalInt64, repetition: Required}},
		extract: func(row *RowBuffer, v reflect.Value) {
			d := v.Interface().(time.Duration)
			row.Push(ULongField(uint64(d.Nanoseconds())))
		},
	}
}

func buildDecimalPlan() *typePlan {
	return &typePlan{
		leaves: []planLeaf{{physical: PhysicalDouble, repetition: Required}},
		extract: func(row *RowBuffer, v reflect.Value) {
			d := v.Interface().(decimal.Decimal)
			row.Push(DoubleField(d.InexactFloat64()))
		},
	}
}

func buildPersistablePlan(t reflect.Type) *typePlan {
	tmp := &SchemaBuilder{}
	zero := reflect.Zero(t).Interface().(Persistable)
	zero.PersistSchema(tmp, "")
	leaves := make([]planLeaf, len(tmp.leaves))
	for i, l := range tmp.leaves {
		leaves[i] = planLeaf{name: l.Name, physical: l.Physical, logical: l.Logical, repetition: l.Repetition}
	}
	return &typePlan{
		leaves: leaves,
		extract: func(row *RowBuffer, v reflect.Value) {
			v.Interface().(Persistable).PersistAppend(row)
		},
	}
}

func buildVariantPlan() *typePlan {
	return &typePlan{
		leaves: []planLeaf{{physical: PhysicalByteArray, logical: StringLogical, repetition: Required}},
		extract: func(row *RowBuffer, v reflect.Value) {
			row.Push(StrField(v.Interface().(Variant).PersistVariant()))
		},
	}
}

func buildStringifiedPlan() *typePlan {
	return &typePlan{
		leaves: []planLeaf{{physical: PhysicalByteArray, logical: StringLogical, repetition: Required}},
		extract: func(row *RowBuffer, v reflect.Value) {
			row.Push(StrField(fmt.Sprintf("%v", v.Interface())))
		},
	}
}

func buildArrayPlan(t reflect.Type) *typePlan {
	n := t.Len()
	elem := planFor(t.Elem())
	var leaves []planLeaf
	for i := 0; i < n; i++ {
		idx := strconv.Itoa(i)
		for _, l := range elem.leaves {
			leaves = append(leaves, planLeaf{name: joinName(idx, l.name), physical: l.physical, logical: l.logical, repetition: l.repetition})
		}
	}
	return &typePlan{
		leaves: leaves,
		extract: func(row *RowBuffer, v reflect.Value) {
			for i := 0; i < n; i++ {
				elem.extract(row, v.Index(i))
			}
		},
	}
}

func buildStructPlan(t reflect.Type) *typePlan {
	var leaves []planLeaf
	var steps []func(row *RowBuffer, v reflect.Value)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name, ignore, tsUnit, hasTS := parsePersistTag(field.Tag.Get("persist"), field.Name)
		if ignore {
			continue
		}

		fieldIndex := i
		child := planFor(field.Type)

		if hasTS {
			if len(child.leaves) != 1 {
				schemaErrorf("persist: field %s.%s has a timestamp attribute but derives %d leaves (must derive exactly 1)", t, field.Name, len(child.leaves))
			}
			cl := child.leaves[0]
			leaves = append(leaves, planLeaf{name: joinName(name, cl.name), physical: cl.physical, logical: TimestampLogical(tsUnit), repetition: cl.repetition})
			steps = append(steps, func(row *RowBuffer, v reflect.Value) {
				child.extract(row, v.Field(fieldIndex))
			})
			continue
		}

		for _, cl := range child.leaves {
			leaves = append(leaves, planLeaf{name: joinName(name, cl.name), physical: cl.physical, logical: cl.logical, repetition: cl.repetition})
		}
		steps = append(steps, func(row *RowBuffer, v reflect.Value) {
			child.extract(row, v.Field(fieldIndex))
		})
	}

	return &typePlan{
		leaves: leaves,
		extract: func(row *RowBuffer, v reflect.Value) {
			for _, step := range steps {
				step(row, v)
			}
		},
	}
}
