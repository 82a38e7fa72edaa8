package persist

// ColumnWriter is the narrow surface RowBuffer.Record needs from a single
// Parquet column chunk writer. parquetio.go implements it over the concrete
// apache/arrow-go column writer types, keeping this file free of any
// Parquet-library import — the column-major buffering logic is pure domain
// code, independent of which Parquet binding eventually drains it.
type ColumnWriter interface {
	Physical() PhysicalType
	WriteBools(values []bool, defLevels []int16) error
	WriteInt32s(values []int32, defLevels []int16) error
	WriteInt64s(values []int64, defLevels []int16) error
	WriteFloat32s(values []float32, defLevels []int16) error
	WriteFloat64s(values []float64, defLevels []int16) error
	WriteByteArrays(values [][]byte, defLevels []int16) error
	Close() error
}

// ColumnSink hands out one ColumnWriter per schema-ordered column of a row
// group, and knows when the group itself is complete.
type ColumnSink interface {
	NextColumn(i int) (ColumnWriter, error)
	Close() error
}

// RowBuffer is the column-major accumulator described in SPEC_FULL.md §4.3:
// one lane per leaf, built up row by row, drained as a single row group.
// Scratch vectors are reused across flushes to avoid per-row allocation.
type RowBuffer struct {
	columns [][]Field
	current int

	notNull []int16
	bools   []bool
	i32s    []int32
	i64s    []int64
	f32s    []float32
	f64s    []float64
	strs    [][]byte
}

// NewRowBuffer returns an empty buffer ready for its first row.
func NewRowBuffer() *RowBuffer {
	return &RowBuffer{}
}

// Begin resets the column cursor for a new row. Between rows the cursor
// equals the number of lanes, or zero when no field has been pushed since
// the last Begin; Begin panics if the cursor is anywhere else, since that
// means the previous row was left part-way.
func (b *RowBuffer) Begin() {
	if b.current != 0 && b.current != len(b.columns) {
		panic("persist: RowBuffer.Begin called while a row is only partly pushed")
	}
	b.current = 0
}

// Push appends field to the lane at the current column and advances the
// cursor. The first row determines the number of lanes; every subsequent
// row must push exactly that many fields before the next Begin.
func (b *RowBuffer) Push(f Field) {
	if b.current == len(b.columns) {
		b.columns = append(b.columns, make([]Field, 0, 8))
	}
	b.columns[b.current] = append(b.columns[b.current], f)
	b.current++
}

// Len reports the number of buffered rows (the length of lane zero, zero if
// no lane exists yet).
func (b *RowBuffer) Len() int {
	if len(b.columns) == 0 {
		return 0
	}
	return len(b.columns[0])
}

// Record drains every lane into sink as one row group, in schema order, and
// clears the lanes (keeping their capacity). leaves must have the same
// length and order as the lanes; its Repetition is used to decide whether
// definition levels are meaningful for a column, its Physical is *not*
// trusted — the column writer's own reported physical type is authoritative,
// and a mismatch against the tagged Field values is a fatal Invariant error.
func (b *RowBuffer) Record(sink ColumnSink, leaves []Leaf) (int, error) {
	rows := b.Len()
	if rows == 0 {
		return 0, nil
	}
	if len(b.columns) != len(leaves) {
		return 0, Invariantf("persist: row buffer has %d lanes but schema has %d leaves", len(b.columns), len(leaves))
	}

	for col, lane := range b.columns {
		cw, err := sink.NextColumn(col)
		if err != nil {
			return 0, wrapParquet(err)
		}

		b.notNull = b.notNull[:0]
		for _, f := range lane {
			if f.IsNull() {
				b.notNull = append(b.notNull, 0)
			} else {
				b.notNull = append(b.notNull, 1)
			}
		}
		var defLevels []int16
		if leaves[col].Repetition == Optional {
			defLevels = b.notNull
		}

		if err := b.writeLane(cw, lane, defLevels); err != nil {
			return 0, err
		}
		if err := cw.Close(); err != nil {
			return 0, wrapParquet(err)
		}
		b.columns[col] = lane[:0]
	}

	if err := sink.Close(); err != nil {
		return 0, wrapParquet(err)
	}
	return rows, nil
}

func (b *RowBuffer) writeLane(cw ColumnWriter, lane []Field, defLevels []int16) error {
	switch cw.Physical() {
	case PhysicalBool:
		b.bools = b.bools[:0]
		for _, f := range lane {
			if f.IsNull() {
				continue
			}
			if f.Kind() != KindBool {
				return mismatchErr(f, PhysicalBool)
			}
			b.bools = append(b.bools, f.Bool())
		}
		return wrapParquet(cw.WriteBools(b.bools, defLevels))

	case PhysicalInt32:
		b.i32s = b.i32s[:0]
		for _, f := range lane {
			if f.IsNull() {
				continue
			}
			switch f.Kind() {
			case KindInt:
				b.i32s = append(b.i32s, f.Int())
			case KindUInt:
				b.i32s = append(b.i32s, int32(f.UInt()))
			default:
				return mismatchErr(f, PhysicalInt32)
			}
		}
		return wrapParquet(cw.WriteInt32s(b.i32s, defLevels))

	case PhysicalInt64:
		b.i64s = b.i64s[:0]
		for _, f := range lane {
			if f.IsNull() {
				continue
			}
			switch f.Kind() {
			case KindLong:
				b.i64s = append(b.i64s, f.Long())
			case KindULong:
				b.i64s = append(b.i64s, int64(f.ULong()))
			default:
				return mismatchErr(f, PhysicalInt64)
			}
		}
		return wrapParquet(cw.WriteInt64s(b.i64s, defLevels))

	case PhysicalFloat:
		b.f32s = b.f32s[:0]
		for _, f := range lane {
			if f.IsNull() {
				continue
			}
			if f.Kind() != KindFloat {
				return mismatchErr(f, PhysicalFloat)
			}
			b.f32s = append(b.f32s, f.Float32())
		}
		return wrapParquet(cw.WriteFloat32s(b.f32s, defLevels))

	case PhysicalDouble:
		b.f64s = b.f64s[:0]
		for _, f := range lane {
			if f.IsNull() {
				continue
			}
			if f.Kind() != KindDouble {
				return mismatchErr(f, PhysicalDouble)
			}
			b.f64s = append(b.f64s, f.Float64())
		}
		return wrapParquet(cw.WriteFloat64s(b.f64s, defLevels))

	case PhysicalByteArray:
		b.strs = b.strs[:0]
		for _, f := range lane {
			if f.IsNull() {
				continue
			}
			if f.Kind() != KindStr {
				return mismatchErr(f, PhysicalByteArray)
			}
			b.strs = append(b.strs, []byte(f.Str()))
		}
		return wrapParquet(cw.WriteByteArrays(b.strs, defLevels))

	default:
		return Otherf("persist: unsupported column physical type %v", cw.Physical())
	}
}

func mismatchErr(f Field, want PhysicalType) error {
	return Invariantf("persist: field kind %d does not match column physical type %s", f.Kind(), want)
}
