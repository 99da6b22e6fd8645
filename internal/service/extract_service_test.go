package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
	"github.com/landlordmapper/ilsos-downloader/internal/service"
)

// fakeRunner runs pipelines without any I/O, failing the ids in failIDs.
type fakeRunner struct {
	mu      sync.Mutex
	failIDs map[string]bool
	ran     []string
	block   chan struct{} // if set, RunDataset waits until closed
}

func (f *fakeRunner) RunDataset(_ context.Context, ds etl.Dataset) *etl.SyncResult {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.ran = append(f.ran, ds.ID)
	f.mu.Unlock()

	result := &etl.SyncResult{DatasetID: ds.ID, StartedAt: time.Now(), Status: etl.StatusSuccess, RowsRead: 1, RowsWritten: 1}
	if f.failIDs[ds.ID] {
		result.Status = etl.StatusError
		result.Err = errors.New("fetch failed")
	}
	return result
}

func testDatasets(ids ...string) []etl.Dataset {
	datasets := make([]etl.Dataset, len(ids))
	for i, id := range ids {
		datasets[i] = etl.Dataset{Name: id, ID: id}
	}
	return datasets
}

func TestRunBatch_IsolatesFailures(t *testing.T) {
	runner := &fakeRunner{failIDs: map[string]bool{"cdxallnam": true}}
	reporter := &service.MockReporter{}
	svc := service.NewExtractService(runner, nil, reporter,
		testDatasets("cdxallmst", "cdxallnam", "llcallnam"), 2)

	summary := svc.RunBatch(context.Background())

	// Every dataset ran despite the middle one failing.
	require.Len(t, summary.Results, 3)
	failed := summary.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "cdxallnam", failed[0].DatasetID)

	assert.ElementsMatch(t, []string{"cdxallmst", "cdxallnam", "llcallnam"}, runner.ran)
	assert.ElementsMatch(t, []string{"cdxallmst", "cdxallnam", "llcallnam"}, reporter.Started)
	require.Len(t, reporter.Batches, 1)
}

func TestRunBatch_ResultsFollowDatasetOrder(t *testing.T) {
	runner := &fakeRunner{}
	svc := service.NewExtractService(runner, nil, &service.MockReporter{},
		testDatasets("llcallmst", "llcallnam", "llcallagt"), 3)

	summary := svc.RunBatch(context.Background())

	require.Len(t, summary.Results, 3)
	assert.Equal(t, "llcallmst", summary.Results[0].DatasetID)
	assert.Equal(t, "llcallnam", summary.Results[1].DatasetID)
	assert.Equal(t, "llcallagt", summary.Results[2].DatasetID)
}

func TestRunDatasetByID_UnknownDataset(t *testing.T) {
	svc := service.NewExtractService(&fakeRunner{}, nil, &service.MockReporter{}, nil, 1)

	_, err := svc.RunDatasetByID(context.Background(), "nonesuch")

	assert.ErrorIs(t, err, etl.ErrUnknownDataset)
}

func TestRunDatasetByID_RunsRealDatasetEntry(t *testing.T) {
	runner := &fakeRunner{}
	reporter := &service.MockReporter{}
	svc := service.NewExtractService(runner, nil, reporter, nil, 1)

	result, err := svc.RunDatasetByID(context.Background(), "cdxallagt")

	require.NoError(t, err)
	assert.Equal(t, etl.StatusSuccess, result.Status)
	assert.Equal(t, []string{"cdxallagt"}, runner.ran)
	require.Len(t, reporter.Finished, 1)
}

func TestRunningGuard(t *testing.T) {
	var guard service.ExportedRunningGuard

	require.True(t, guard.TryLock("cdxallmst"))
	assert.False(t, guard.TryLock("cdxallmst"), "same dataset must not double-run")
	assert.True(t, guard.TryLock("llcallmst"), "different datasets run freely")

	guard.Unlock("cdxallmst")
	assert.True(t, guard.TryLock("cdxallmst"), "released dataset can run again")

	guard.Unlock("cdxallmst")
	guard.Unlock("llcallmst")

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		guard.WaitAll(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("WaitAll hung with nothing running")
	}
}

func TestRunBatch_GuardBlocksConcurrentDuplicate(t *testing.T) {
	block := make(chan struct{})
	runner := &fakeRunner{block: block}
	svc := service.NewExtractService(runner, nil, &service.MockReporter{},
		testDatasets("cdxallmst"), 1)

	first := make(chan *etl.BatchSummary, 1)
	go func() { first <- svc.RunBatch(context.Background()) }()

	// Wait for the first run to hold the dataset lock, then race a second.
	time.Sleep(50 * time.Millisecond)
	secondResult, err := svc.RunDatasetByID(context.Background(), "cdxallmst")
	require.NoError(t, err)
	assert.Equal(t, etl.StatusError, secondResult.Status)
	assert.Contains(t, secondResult.Err.Error(), "already running")

	close(block)
	summary := <-first
	assert.True(t, summary.OK())
}

func TestStop_Idempotent(t *testing.T) {
	svc := service.NewExtractService(&fakeRunner{}, nil, &service.MockReporter{}, nil, 1)
	svc.Stop()
	svc.Stop()
}
