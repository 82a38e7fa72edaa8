package persist

import (
	"io"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
)

// This file is the only place persist imports a Parquet library. Everything
// above (Field, Leaf, RowBuffer, the derivation engine) is plain domain
// logic; here it's translated into github.com/apache/arrow-go/v18/parquet
// calls. That library was chosen over github.com/parquet-go/parquet-go
// because its schema.FieldList is an ordered slice — this
// package's leaves must round-trip in declaration order, and parquet-go's
// own Group type is a map that doesn't preserve it (see DESIGN.md).

func repetitionOf(r Repetition) parquet.Repetition {
	if r == Optional {
		return parquet.Repetitions.Optional
	}
	return parquet.Repetitions.Required
}

func buildNode(l Leaf) (pqschema.Node, error) {
	rep := repetitionOf(l.Repetition)
	switch l.Physical {
	case PhysicalBool:
		return pqschema.NewBooleanNode(l.Name, rep, -1), nil
	case PhysicalInt32:
		return pqschema.NewInt32Node(l.Name, rep, -1), nil
	case PhysicalInt64:
		if l.Logical.Kind == LogicalTimestamp {
			return pqschema.NewPrimitiveNodeLogical(l.Name, rep, pqschema.NewTimestampLogicalType(l.Logical.AdjustedToUTC, timeUnitOf(l.Logical.Unit)), parquet.Types.Int64, 0, -1)
		}
		return pqschema.NewInt64Node(l.Name, rep, -1), nil
	case PhysicalFloat:
		return pqschema.NewFloat32Node(l.Name, rep, -1), nil
	case PhysicalDouble:
		return pqschema.NewFloat64Node(l.Name, rep, -1), nil
	case PhysicalByteArray:
		return pqschema.NewPrimitiveNodeConverted(l.Name, rep, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)
	default:
		return nil, Otherf("persist: leaf %q has unsupported physical type %v", l.Name, l.Physical)
	}
}

func timeUnitOf(u TimeUnit) pqschema.TimeUnitType {
	switch u {
	case UnitMicros:
		return pqschema.TimeUnitMicros
	case UnitMillis:
		return pqschema.TimeUnitMillis
	default:
		return pqschema.TimeUnitNanos
	}
}

// buildSchema materializes the "schema" group root over leaves, in order.
func buildSchema(leaves []Leaf) (*pqschema.GroupNode, error) {
	fields := make(pqschema.FieldList, 0, len(leaves))
	for _, l := range leaves {
		node, err := buildNode(l)
		if err != nil {
			return nil, err
		}
		fields = append(fields, node)
	}
	group, err := pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return nil, Otherf("persist: building schema: %v", err)
	}
	return group, nil
}

// writerProperties returns the fixed compression policy SPEC_FULL.md §6
// requires: ZSTD level 1, no other tuning.
func writerProperties() *parquet.WriterProperties {
	return parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithCompressionLevel(1),
	)
}

// parquetSink adapts a single apache/arrow-go buffered row group writer to
// the ColumnSink interface RowBuffer.Record expects.
type parquetSink struct {
	rgw pqfile.BufferedRowGroupWriter
}

func (s *parquetSink) NextColumn(i int) (ColumnWriter, error) {
	cw, err := s.rgw.Column(i)
	if err != nil {
		return nil, err
	}
	return &columnWriterAdapter{cw: cw}, nil
}

func (s *parquetSink) Close() error {
	return s.rgw.Close()
}

// columnWriterAdapter adapts one apache/arrow-go column chunk writer to the
// narrow ColumnWriter interface, dispatching WriteXxx calls to the one
// concrete typed writer the column actually is.
type columnWriterAdapter struct {
	cw pqfile.ColumnChunkWriter
}

func (a *columnWriterAdapter) Physical() PhysicalType {
	switch a.cw.(type) {
	case *pqfile.BooleanColumnChunkWriter:
		return PhysicalBool
	case *pqfile.Int32ColumnChunkWriter:
		return PhysicalInt32
	case *pqfile.Int64ColumnChunkWriter:
		return PhysicalInt64
	case *pqfile.Float32ColumnChunkWriter:
		return PhysicalFloat
	case *pqfile.Float64ColumnChunkWriter:
		return PhysicalDouble
	case *pqfile.ByteArrayColumnChunkWriter:
		return PhysicalByteArray
	default:
		return PhysicalByteArray
	}
}

func (a *columnWriterAdapter) WriteBools(values []bool, defLevels []int16) error {
	w, ok := a.cw.(*pqfile.BooleanColumnChunkWriter)
	if !ok {
		return Invariantf("persist: column writer is not boolean")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (a *columnWriterAdapter) WriteInt32s(values []int32, defLevels []int16) error {
	w, ok := a.cw.(*pqfile.Int32ColumnChunkWriter)
	if !ok {
		return Invariantf("persist: column writer is not int32")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (a *columnWriterAdapter) WriteInt64s(values []int64, defLevels []int16) error {
	w, ok := a.cw.(*pqfile.Int64ColumnChunkWriter)
	if !ok {
		return Invariantf("persist: column writer is not int64")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (a *columnWriterAdapter) WriteFloat32s(values []float32, defLevels []int16) error {
	w, ok := a.cw.(*pqfile.Float32ColumnChunkWriter)
	if !ok {
		return Invariantf("persist: column writer is not float32")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (a *columnWriterAdapter) WriteFloat64s(values []float64, defLevels []int16) error {
	w, ok := a.cw.(*pqfile.Float64ColumnChunkWriter)
	if !ok {
		return Invariantf("persist: column writer is not float64")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (a *columnWriterAdapter) WriteByteArrays(values [][]byte, defLevels []int16) error {
	w, ok := a.cw.(*pqfile.ByteArrayColumnChunkWriter)
	if !ok {
		return Invariantf("persist: column writer is not byte array")
	}
	batch := make([]parquet.ByteArray, len(values))
	for i, v := range values {
		batch[i] = parquet.ByteArray(v)
	}
	_, err := w.WriteBatch(batch, defLevels, nil)
	return err
}

func (a *columnWriterAdapter) Close() error {
	return a.cw.Close()
}

// writeRowGroup opens one buffered row group on w, drains buf through it
// using schema (already frozen by the caller), and returns the row count.
func writeRowGroup(w *pqfile.Writer, buf *RowBuffer, leaves []Leaf) (int, error) {
	rgw := w.AppendBufferedRowGroup()
	return buf.Record(&parquetSink{rgw: rgw}, leaves)
}

// openWriter creates a new Parquet file writer at dst with the frozen
// schema and the fixed compression policy.
func openWriter(dst io.Writer, leaves []Leaf) (*pqfile.Writer, error) {
	schema, err := buildSchema(leaves)
	if err != nil {
		return nil, err
	}
	return pqfile.NewParquetWriter(dst, schema, pqfile.WithWriterProps(writerProperties())), nil
}
