package etl_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
)

func TestCSVWriter_HeaderAndRowOrder(t *testing.T) {
	dir := t.TempDir()
	w := &etl.CSVWriter{Dir: dir}

	records := []etl.Record{
		{Data: map[string]string{"a": "one", "b": "1"}},
		{Data: map[string]string{"a": "two", "b": ""}},
	}

	written, err := w.Write(context.Background(), "cdxallnam", twoFieldSchema, records)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	f, err := os.Open(filepath.Join(dir, "cdxallnam.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b"}, rows[0])
	assert.Equal(t, []string{"one", "1"}, rows[1])
	// Empty field values stay as empty strings, not a null marker.
	assert.Equal(t, []string{"two", ""}, rows[2])
}

func TestCSVWriter_EmptyDataset(t *testing.T) {
	dir := t.TempDir()
	w := &etl.CSVWriter{Dir: dir}

	written, err := w.Write(context.Background(), "llcallnam", twoFieldSchema, nil)
	require.NoError(t, err)
	assert.Zero(t, written)

	// Header-only file still exists so outputs are complete per dataset.
	data, err := os.ReadFile(filepath.Join(dir, "llcallnam.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestCSVWriter_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := &etl.CSVWriter{Dir: dir}

	_, err := w.Write(context.Background(), "cdxallmst", twoFieldSchema, nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "cdxallmst.csv"))
	assert.NoError(t, err)
}

func TestCSVWriter_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &etl.CSVWriter{Dir: t.TempDir()}
	records := []etl.Record{{Data: map[string]string{"a": "x", "b": "y"}}}

	written, err := w.Write(ctx, "cdxallmst", twoFieldSchema, records)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, written)
}
