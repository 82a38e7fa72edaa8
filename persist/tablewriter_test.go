package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickRecord struct {
	Price float64
	Size  int64
}

func TestTableWriter_RollsFilesAtFlushSize(t *testing.T) {
	dir := t.TempDir()
	w, err := New("ticks", Config{Directory: dir, Keep: true})
	require.NoError(t, err)
	w.SetFlushSize(3)

	for i := 0; i < 7; i++ {
		row, err := w.Begin()
		require.NoError(t, err)
		_, err = row.Record(tickRecord{Price: float64(i), Size: int64(i)})
		require.NoError(t, err)
		require.NoError(t, row.End())
	}
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(filepath.Join(dir, "ticks"))
	require.NoError(t, err)
	assert.Equal(t, 3, len(entries))
	assert.Equal(t, "000000000.parquet", entries[0].Name())
	assert.Equal(t, "000000001.parquet", entries[1].Name())
	assert.Equal(t, "000000002.parquet", entries[2].Name())
}

func TestTableWriter_DisabledWhenDirectoryEmpty(t *testing.T) {
	w, err := New("ticks", Config{})
	require.NoError(t, err)
	assert.False(t, w.Enabled())

	row, err := w.Begin()
	require.NoError(t, err)
	_, err = row.Record(tickRecord{Price: 1, Size: 1})
	require.NoError(t, err)
	require.NoError(t, row.End())

	rows, err := w.Flush()
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestTableWriter_DisabledWhenTableNotWhitelisted(t *testing.T) {
	dir := t.TempDir()
	w, err := New("ticks", Config{Directory: dir, Tables: []string{"other"}})
	require.NoError(t, err)
	assert.False(t, w.Enabled())
}

func TestTableWriter_MixedTypeIsInvariantError(t *testing.T) {
	dir := t.TempDir()
	w, err := New("ticks", Config{Directory: dir, Keep: true})
	require.NoError(t, err)

	row, err := w.Begin()
	require.NoError(t, err)
	_, err = row.Record(tickRecord{Price: 1, Size: 1})
	require.NoError(t, err)
	require.NoError(t, row.End())

	row2, err := w.Begin()
	require.NoError(t, err)
	_, err = row2.Record(simplePoint{X: 1, Y: 2})
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindInvariant, perr.Kind)
}

func TestTableWriter_FlushWritesRowGroupAndClearsBuffer(t *testing.T) {
	dir := t.TempDir()
	w, err := New("ticks", Config{Directory: dir, Keep: true})
	require.NoError(t, err)

	row, err := w.Begin()
	require.NoError(t, err)
	_, err = row.Record(tickRecord{Price: 1, Size: 1})
	require.NoError(t, err)
	require.NoError(t, row.End())

	rows, err := w.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	entries, err := os.ReadDir(filepath.Join(dir, "ticks"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err := os.Stat(filepath.Join(dir, "ticks", entries[0].Name()))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTableWriter_WipesDirectoryWhenKeepFalse(t *testing.T) {
	dir := t.TempDir()
	tableDir := filepath.Join(dir, "ticks")
	require.NoError(t, os.MkdirAll(tableDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tableDir, "stale.parquet"), []byte("x"), 0o644))

	_, err := New("ticks", Config{Directory: dir, Keep: false})
	require.NoError(t, err)

	entries, err := os.ReadDir(tableDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTableWriter_KeepTruePreservesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	tableDir := filepath.Join(dir, "ticks")
	require.NoError(t, os.MkdirAll(tableDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tableDir, "000000000.parquet"), []byte("x"), 0o644))

	w, err := New("ticks", Config{Directory: dir, Keep: true})
	require.NoError(t, err)

	row, err := w.Begin()
	require.NoError(t, err)
	_, err = row.Record(tickRecord{Price: 1, Size: 1})
	require.NoError(t, err)
	require.NoError(t, row.End())
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(tableDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "000000000.parquet", entries[0].Name())
	assert.Equal(t, "000000001.parquet", entries[1].Name())
}
