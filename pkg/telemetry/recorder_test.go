package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	return matches
}

func TestRecorderFlushesFullBatch(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, 2, nil)
	require.NoError(t, err)

	rec.Record(QueryRecord{Operation: "search", Query: "q1", ResultCount: 3})
	assert.Empty(t, parquetFiles(t, dir))

	rec.Record(QueryRecord{Operation: "search", Query: "q2", ResultCount: 1})
	files := parquetFiles(t, dir)
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[QueryRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "q1", rows[0].Query)
	assert.Equal(t, "q2", rows[1].Query)
	assert.NotEmpty(t, rows[0].ID)
	assert.False(t, rows[0].Timestamp.IsZero())
}

func TestRecorderCloseFlushesRemainder(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, 100, nil)
	require.NoError(t, err)

	rec.Record(QueryRecord{
		Operation:  "answer",
		Query:      "what is RAG?",
		Model:      "deepseek-chat",
		DurationMS: 1200,
		Timestamp:  time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, rec.Close())

	files := parquetFiles(t, dir)
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[QueryRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "answer", rows[0].Operation)
	assert.Equal(t, time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC), rows[0].Timestamp.UTC())
}

func TestRecorderFlushEmptyIsNoop(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, 10, nil)
	require.NoError(t, err)

	require.NoError(t, rec.Flush())
	assert.Empty(t, parquetFiles(t, dir))
}

func TestNewRecorderCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "telemetry")
	_, err := NewRecorder(dir, 0, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
