package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeColumnWriter records every batch it's asked to write, so tests can
// assert on exactly what RowBuffer.Record sends a Parquet writer without
// depending on the real library.
type fakeColumnWriter struct {
	physical  PhysicalType
	bools     []bool
	i32s      []int32
	i64s      []int64
	f32s      []float32
	f64s      []float64
	strs      [][]byte
	defLevels []int16
	closed    bool
}

func (w *fakeColumnWriter) Physical() PhysicalType { return w.physical }

func (w *fakeColumnWriter) WriteBools(values []bool, defLevels []int16) error {
	w.bools = append([]bool(nil), values...)
	w.defLevels = defLevels
	return nil
}

func (w *fakeColumnWriter) WriteInt32s(values []int32, defLevels []int16) error {
	w.i32s = append([]int32(nil), values...)
	w.defLevels = defLevels
	return nil
}

func (w *fakeColumnWriter) WriteInt64s(values []int64, defLevels []int16) error {
	w.i64s = append([]int64(nil), values...)
	w.defLevels = defLevels
	return nil
}

func (w *fakeColumnWriter) WriteFloat32s(values []float32, defLevels []int16) error {
	w.f32s = append([]float32(nil), values...)
	w.defLevels = defLevels
	return nil
}

func (w *fakeColumnWriter) WriteFloat64s(values []float64, defLevels []int16) error {
	w.f64s = append([]float64(nil), values...)
	w.defLevels = defLevels
	return nil
}

func (w *fakeColumnWriter) WriteByteArrays(values [][]byte, defLevels []int16) error {
	w.strs = append([][]byte(nil), values...)
	w.defLevels = defLevels
	return nil
}

func (w *fakeColumnWriter) Close() error {
	w.closed = true
	return nil
}

type fakeSink struct {
	writers []*fakeColumnWriter
	closed  bool
}

func newFakeSink(physicals []PhysicalType) *fakeSink {
	s := &fakeSink{}
	for _, p := range physicals {
		s.writers = append(s.writers, &fakeColumnWriter{physical: p})
	}
	return s
}

func (s *fakeSink) NextColumn(i int) (ColumnWriter, error) {
	return s.writers[i], nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

func TestRowBuffer_RecordRequiredColumn(t *testing.T) {
	buf := NewRowBuffer()
	buf.Begin()
	buf.Push(DoubleField(1.5))
	buf.Begin()
	buf.Push(DoubleField(2.5))

	leaves := []Leaf{{Name: "price", Physical: PhysicalDouble, Repetition: Required}}
	sink := newFakeSink([]PhysicalType{PhysicalDouble})

	rows, err := buf.Record(sink, leaves)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, []float64{1.5, 2.5}, sink.writers[0].f64s)
	assert.Nil(t, sink.writers[0].defLevels)
	assert.True(t, sink.writers[0].closed)
	assert.True(t, sink.closed)
}

func TestRowBuffer_RecordOptionalColumnDefLevels(t *testing.T) {
	buf := NewRowBuffer()
	buf.Begin()
	buf.Push(DoubleField(1.5))
	buf.Begin()
	buf.Push(NullField())

	leaves := []Leaf{{Name: "price", Physical: PhysicalDouble, Repetition: Optional}}
	sink := newFakeSink([]PhysicalType{PhysicalDouble})

	rows, err := buf.Record(sink, leaves)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, []float64{1.5}, sink.writers[0].f64s)
	assert.Equal(t, []int16{1, 0}, sink.writers[0].defLevels)
}

func TestRowBuffer_RecordEmptyBufferIsNoop(t *testing.T) {
	buf := NewRowBuffer()
	rows, err := buf.Record(newFakeSink(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestRowBuffer_RecordLaneCountMismatch(t *testing.T) {
	buf := NewRowBuffer()
	buf.Begin()
	buf.Push(DoubleField(1.0))

	_, err := buf.Record(newFakeSink(nil), nil)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindInvariant, perr.Kind)
}

func TestRowBuffer_RecordKindMismatchIsInvariantError(t *testing.T) {
	buf := NewRowBuffer()
	buf.Begin()
	buf.Push(StrField("oops"))

	leaves := []Leaf{{Name: "price", Physical: PhysicalDouble, Repetition: Required}}
	_, err := buf.Record(newFakeSink([]PhysicalType{PhysicalDouble}), leaves)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindInvariant, perr.Kind)
}

func TestRowBuffer_RecordClearsLanesForReuse(t *testing.T) {
	buf := NewRowBuffer()
	buf.Begin()
	buf.Push(DoubleField(1.0))

	leaves := []Leaf{{Name: "price", Physical: PhysicalDouble, Repetition: Required}}
	_, err := buf.Record(newFakeSink([]PhysicalType{PhysicalDouble}), leaves)
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len())

	buf.Begin()
	buf.Push(DoubleField(9.0))
	assert.Equal(t, 1, buf.Len())
}
