package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderWritesParquetOnClose(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, "clean", nil)
	require.NoError(t, err)
	require.NotEmpty(t, r.RunID())

	r.Record("CV_001", []string{"Cv_001", "cv-001"}, "CV", "success", "entities merged", 7, 1)
	r.Record("Software Engineer", []string{"software_engineer"}, "PROFILE", "failed", "API returned status 503", 0, 3)
	require.NoError(t, r.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "clean_operations_"))

	rows, err := parquet.ReadFile[OperationRecord](filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CV_001", rows[0].Survivor)
	assert.Equal(t, "Cv_001,cv-001", rows[0].Merged)
	assert.Equal(t, r.RunID(), rows[1].RunID)
	assert.Equal(t, 3, rows[1].Attempts)
}

func TestRecorderEmptyCloseWritesNothing(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, "clean", nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.Empty(t, r.RunID())
	r.Record("a", nil, "", "success", "", 0, 1)
	assert.NoError(t, r.Close())
}
