package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPair_SchemaNamesBothSlots(t *testing.T) {
	p := NewPair(1.0, "two")
	b := &SchemaBuilder{}
	p.PersistSchema(b, "tob")
	require.Len(t, b.leaves, 2)
	assert.Equal(t, "tob_0", b.leaves[0].Name)
	assert.Equal(t, "tob_1", b.leaves[1].Name)
}

func TestPair_SchemaNamesWithoutPrefix(t *testing.T) {
	p := NewPair(1.0, "two")
	b := &SchemaBuilder{}
	p.PersistSchema(b, "")
	assert.Equal(t, "0", b.leaves[0].Name)
	assert.Equal(t, "1", b.leaves[1].Name)
}

func TestPair_AppendOrder(t *testing.T) {
	p := NewPair(1.0, 2.0)
	row := NewRowBuffer()
	row.Begin()
	p.PersistAppend(row)
	assert.Equal(t, 1.0, row.columns[0][0].Float64())
	assert.Equal(t, 2.0, row.columns[1][0].Float64())
}
