package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"

	"github.com/fran0x/dixit/internal/logx"
)

const defaultFlushSize = 1_000_000

// TableWriter is the stateful controller described in SPEC_FULL.md §4.4: it
// decides when to start a file, when to roll, and how to flush compressed
// row groups to disk, for exactly one record type.
type TableWriter struct {
	table     string
	directory string
	enabled   bool

	flushSize int
	autoFlush bool

	fileIndex int

	buffer       *RowBuffer
	rowType      reflect.Type
	leaves       []Leaf
	schemaFrozen bool

	closed bool
}

// New constructs a writer for table, applying cfg's enable/wipe rules.
// If enabled, the table's directory is created; if cfg.Keep is false, any
// existing contents are removed first. Construction failures (directory
// creation) are returned, never deferred to first use.
func New(table string, cfg Config) (*TableWriter, error) {
	w := &TableWriter{
		table:     table,
		enabled:   cfg.tableEnabled(table),
		flushSize: defaultFlushSize,
		autoFlush: true,
		buffer:    NewRowBuffer(),
	}
	if !w.enabled {
		return w, nil
	}

	w.directory = filepath.Join(cfg.Directory, table)
	if !cfg.Keep {
		if err := os.RemoveAll(w.directory); err != nil {
			return nil, wrapIO(err)
		}
		logx.Warn("wiped table directory", "table", table, "directory", w.directory)
	}
	if err := os.MkdirAll(w.directory, 0o755); err != nil {
		return nil, wrapIO(err)
	}

	runtime.SetFinalizer(w, finalizeTableWriter)
	return w, nil
}

// finalizeTableWriter is the defense-in-depth net described in
// SPEC_FULL.md §3: if a caller forgets to Close a writer, best-effort flush
// whatever is buffered and log the outcome, but never panic and never
// surface an error to anyone (there's no one left to receive it).
func finalizeTableWriter(w *TableWriter) {
	if w.closed || w.buffer.Len() == 0 {
		return
	}
	if _, err := w.flushLocked(); err != nil {
		logx.Error("flush on finalize failed", "table", w.table, "err", err)
	}
}

// SetFlushSize overrides the default 1,000,000-row auto-flush threshold.
// Intended for tests and for tables with unusually large or small rows.
func (w *TableWriter) SetFlushSize(n int) {
	w.flushSize = n
}

// Enabled reports whether this writer is actually persisting. A disabled
// writer makes every operation a successful no-op (SPEC_FULL.md §7).
func (w *TableWriter) Enabled() bool {
	return w.enabled
}

// RowBuilder is the transient handle Begin returns, scoping exactly one row.
type RowBuilder struct {
	w   *TableWriter
	err error
}

// Begin opens a new row scope. If the buffer has already reached the flush
// threshold, it is flushed first so a flush never happens mid-row.
func (w *TableWriter) Begin() (*RowBuilder, error) {
	if !w.enabled {
		return &RowBuilder{w: w}, nil
	}
	if err := w.FlushIfNeeded(); err != nil {
		return nil, err
	}
	w.buffer.Begin()
	return &RowBuilder{w: w}, nil
}

// Record derives (on the first call) or reuses the frozen schema for
// value's type, then appends value's fields into the row. Recording a
// second, different concrete type on an already-schema'd writer is a
// KindInvariant error (see SPEC_FULL.md §9 — the original leaves this
// undefined; this module detects it instead, since reflect.Type identity
// comparison makes the check essentially free).
func (b *RowBuilder) Record(value any) (*RowBuilder, error) {
	if b.err != nil || !b.w.enabled {
		return b, b.err
	}

	t := reflect.TypeOf(value)
	if !b.w.schemaFrozen && b.w.rowType == nil {
		b.w.rowType = t
	} else if b.w.rowType != t {
		b.err = Invariantf("persist: table %s received value of type %s, expected %s", b.w.table, t, b.w.rowType)
		return b, b.err
	}

	if err := b.deriveSchemaIfNeeded(t); err != nil {
		b.err = err
		return b, b.err
	}

	appendValue(b.w.buffer, reflect.ValueOf(value))
	return b, nil
}

func (b *RowBuilder) deriveSchemaIfNeeded(t reflect.Type) (err error) {
	if b.w.schemaFrozen {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(schemaError)
			if !ok {
				panic(r)
			}
			err = Invariantf("persist: %s", string(se))
		}
	}()
	b.w.leaves = SchemaOf(t)
	return nil
}

// End closes the row scope. On the first row it logs the frozen schema, then
// (if auto-flush is on) checks the flush threshold.
func (b *RowBuilder) End() error {
	if b.err != nil {
		return b.err
	}
	if !b.w.enabled {
		return nil
	}
	if !b.w.schemaFrozen {
		b.w.schemaFrozen = true
		fields := make([]string, len(b.w.leaves))
		for i, l := range b.w.leaves {
			fields[i] = l.String()
		}
		logx.Info("schema frozen", "table", b.w.table, "directory", b.w.directory, "fields", fmt.Sprint(fields))
	}
	if b.w.autoFlush {
		return b.w.FlushIfNeeded()
	}
	return nil
}

// FlushIfNeeded flushes when the buffer has reached the flush-size
// threshold; otherwise it's a no-op. Only ever checked at row boundaries.
func (w *TableWriter) FlushIfNeeded() error {
	if w.buffer.Len() >= w.flushSize {
		_, err := w.Flush()
		return err
	}
	return nil
}

// Flush serializes all buffered rows as one row group into a freshly rolled
// file, and clears the buffer. A no-op (returning 0, nil) if disabled or the
// buffer is empty.
func (w *TableWriter) Flush() (int, error) {
	return w.flushLocked()
}

func (w *TableWriter) flushLocked() (int, error) {
	if !w.enabled || w.buffer.Len() == 0 {
		return 0, nil
	}

	path, index, err := nextFilePath(w.directory, w.fileIndex)
	if err != nil {
		return 0, wrapIO(err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, wrapIO(err)
	}

	pw, err := openWriter(f, w.leaves)
	if err != nil {
		f.Close()
		return 0, err
	}

	rows, err := writeRowGroup(pw, w.buffer, w.leaves)
	if err != nil {
		pw.Close()
		f.Close()
		return 0, err
	}
	if err := pw.Close(); err != nil {
		f.Close()
		return 0, wrapParquet(err)
	}
	if err := f.Close(); err != nil {
		return 0, wrapIO(err)
	}

	w.fileIndex = index + 1
	logx.Info("flushed row group", "table", w.table, "path", path, "rows", rows)
	return rows, nil
}

// nextFilePath scans upward from startIndex for the first non-existing
// NNNNNNNNN.parquet path in dir, creating none of them — the caller
// exclusively creates the one it settles on. Returns the chosen path and
// the index used, so the caller can resume scanning past it next time.
func nextFilePath(dir string, startIndex int) (string, int, error) {
	for i := startIndex; ; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%09d.parquet", i))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, i, nil
		} else if err != nil {
			return "", 0, err
		}
	}
}

// Close flushes any buffered rows and marks the writer closed. Unlike the
// finalizer, this is the normal path: it propagates the flush error to the
// caller instead of only logging it.
func (w *TableWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	runtime.SetFinalizer(w, nil)
	_, err := w.flushLocked()
	return err
}
