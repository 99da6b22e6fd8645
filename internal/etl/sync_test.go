package etl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
)

type fakeSource struct {
	text string
	err  error
}

func (f *fakeSource) Spec() etl.SourceSpec { return etl.SourceSpec{Type: "fake", Label: "Fake"} }

func (f *fakeSource) Fetch(_ context.Context, _ etl.Dataset) (string, error) {
	return f.text, f.err
}

type fakeDest struct {
	written map[string][]etl.Record
	err     error
}

func (d *fakeDest) Write(_ context.Context, id string, _ *etl.Schema, records []etl.Record) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if d.written == nil {
		d.written = make(map[string][]etl.Record)
	}
	d.written[id] = records
	return len(records), nil
}

func TestEngine_RunDataset(t *testing.T) {
	ds, err := etl.DatasetByID("llcallnam")
	require.NoError(t, err)

	dest := &fakeDest{}
	engine := &etl.Engine{
		Source: &fakeSource{text: "HDR\n00000001ACME LLC\n00000002BETA LLC\nFTR"},
		Dest:   dest,
	}

	result := engine.RunDataset(context.Background(), ds)

	assert.Equal(t, etl.StatusSuccess, result.Status)
	assert.NoError(t, result.Err)
	assert.Equal(t, 2, result.RowsRead)
	assert.Equal(t, 2, result.RowsWritten)

	records := dest.written["llcallnam"]
	require.Len(t, records, 2)
	assert.Equal(t, "00000001", records[0].Data["file_number"])
	assert.Equal(t, "ACME LLC", records[0].Data["name"])
}

func TestEngine_RunDataset_UnknownSchema(t *testing.T) {
	engine := &etl.Engine{Source: &fakeSource{}, Dest: &fakeDest{}}

	result := engine.RunDataset(context.Background(), etl.Dataset{ID: "mystery"})

	assert.Equal(t, etl.StatusError, result.Status)
	assert.ErrorIs(t, result.Err, etl.ErrUnknownDataset)
}

func TestEngine_RunDataset_FetchError(t *testing.T) {
	ds, err := etl.DatasetByID("cdxallmst")
	require.NoError(t, err)

	engine := &etl.Engine{
		Source: &fakeSource{err: errors.New("connection refused")},
		Dest:   &fakeDest{},
	}

	result := engine.RunDataset(context.Background(), ds)

	assert.Equal(t, etl.StatusError, result.Status)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "fetch cdxallmst")
	assert.Zero(t, result.RowsRead)
}

func TestEngine_RunDataset_WriteError(t *testing.T) {
	ds, err := etl.DatasetByID("llcallnam")
	require.NoError(t, err)

	engine := &etl.Engine{
		Source: &fakeSource{text: "HDR\n00000001ACME LLC\nFTR"},
		Dest:   &fakeDest{err: errors.New("disk full")},
	}

	result := engine.RunDataset(context.Background(), ds)

	assert.Equal(t, etl.StatusError, result.Status)
	assert.Contains(t, result.Err.Error(), "write llcallnam")
	assert.Equal(t, 1, result.RowsRead)
	assert.Zero(t, result.RowsWritten)
}

func TestBatchSummary(t *testing.T) {
	summary := &etl.BatchSummary{Results: []etl.SyncResult{
		{DatasetID: "cdxallmst", Status: etl.StatusSuccess},
		{DatasetID: "cdxallnam", Status: etl.StatusError, Err: errors.New("http 404")},
		{DatasetID: "llcallnam", Status: etl.StatusSuccess},
	}}

	assert.False(t, summary.OK())
	failed := summary.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "cdxallnam", failed[0].DatasetID)
	assert.Equal(t, "http 404", failed[0].ErrorMessage())

	ok := &etl.BatchSummary{Results: []etl.SyncResult{{Status: etl.StatusSuccess}}}
	assert.True(t, ok.OK())
}
