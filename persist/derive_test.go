package persist

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simplePoint struct {
	X float64
	Y float64
}

func TestSchemaOf_Primitives(t *testing.T) {
	leaves := SchemaOf(reflect.TypeOf(simplePoint{}))
	require.Len(t, leaves, 2)
	assert.Equal(t, "X", leaves[0].Name)
	assert.Equal(t, PhysicalDouble, leaves[0].Physical)
	assert.Equal(t, Required, leaves[0].Repetition)
	assert.Equal(t, "Y", leaves[1].Name)
}

type optionalTuple struct {
	X *Pair[float64, float64]
}

func TestSchemaOf_OptionalTupleExpansion(t *testing.T) {
	leaves := SchemaOf(reflect.TypeOf(optionalTuple{}))
	require.Len(t, leaves, 2)
	assert.Equal(t, "X_0", leaves[0].Name)
	assert.Equal(t, Optional, leaves[0].Repetition)
	assert.Equal(t, "X_1", leaves[1].Name)
	assert.Equal(t, Optional, leaves[1].Repetition)
}

func TestAppend_OptionalAbsentPushesNulls(t *testing.T) {
	row := NewRowBuffer()
	row.Begin()
	Append(row, optionalTuple{X: nil})
	assert.Equal(t, 1, row.Len())
	assert.True(t, row.columns[0][0].IsNull())
	assert.True(t, row.columns[1][0].IsNull())
}

type nestedOrderBook struct {
	Tob Pair[simplePoint, simplePoint] `persist:"tob"`
}

func TestSchemaOf_NestedTupleNaming(t *testing.T) {
	leaves := SchemaOf(reflect.TypeOf(nestedOrderBook{}))
	require.Len(t, leaves, 4)
	names := []string{leaves[0].Name, leaves[1].Name, leaves[2].Name, leaves[3].Name}
	assert.Equal(t, []string{"tob_0_X", "tob_0_Y", "tob_1_X", "tob_1_Y"}, names)
}

type timestampAttr struct {
	Ts uint64 `persist:"ts,timestamp=ns"`
}

func TestSchemaOf_TimestampAttribute(t *testing.T) {
	leaves := SchemaOf(reflect.TypeOf(timestampAttr{}))
	require.Len(t, leaves, 1)
	assert.Equal(t, PhysicalInt64, leaves[0].Physical)
	assert.Equal(t, LogicalTimestamp, leaves[0].Logical.Kind)
	assert.Equal(t, UnitNanos, leaves[0].Logical.Unit)
	assert.True(t, leaves[0].Logical.AdjustedToUTC)
}

func TestAppend_TimestampAttributeValue(t *testing.T) {
	row := NewRowBuffer()
	row.Begin()
	Append(row, timestampAttr{Ts: 1700000000000000000})
	assert.Equal(t, uint64(1700000000000000000), row.columns[0][0].ULong())
}

type ignoredField struct {
	A      int64
	Hidden string `persist:"-"`
	B      int64
}

func TestSchemaOf_IgnoredFieldSkipped(t *testing.T) {
	leaves := SchemaOf(reflect.TypeOf(ignoredField{}))
	require.Len(t, leaves, 2)
	assert.Equal(t, "A", leaves[0].Name)
	assert.Equal(t, "B", leaves[1].Name)
}

func TestAppend_IgnoredFieldSkipped(t *testing.T) {
	row := NewRowBuffer()
	row.Begin()
	Append(row, ignoredField{A: 1, Hidden: "nope", B: 2})
	assert.Equal(t, int64(1), row.columns[0][0].Long())
	assert.Equal(t, int64(2), row.columns[1][0].Long())
}

func TestFieldCount_MemoizedAcrossCalls(t *testing.T) {
	first := FieldCount(reflect.TypeOf(simplePoint{}))
	second := FieldCount(reflect.TypeOf(simplePoint{}))
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first)
}

func TestSchemaOf_StringifiedSliceAndMap(t *testing.T) {
	type container struct {
		Tags  []string
		Props map[string]string
	}
	leaves := SchemaOf(reflect.TypeOf(container{}))
	require.Len(t, leaves, 2)
	for _, l := range leaves {
		assert.Equal(t, PhysicalByteArray, l.Physical)
		assert.Equal(t, LogicalString, l.Logical.Kind)
	}
}

func TestSchemaOf_UnsupportedKindPanics(t *testing.T) {
	type hasChan struct {
		C chan int
	}
	assert.Panics(t, func() {
		SchemaOf(reflect.TypeOf(hasChan{}))
	})
}
