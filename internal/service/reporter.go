package service

import (
	"log/slog"
	"sync"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
)

// ─────────────────────────────────────────────────────────────
// Reporter — decouples the service from its log sink
// ─────────────────────────────────────────────────────────────

// Reporter receives pipeline lifecycle notifications. The service emits
// through this interface instead of logging directly, which makes it
// independently testable with a mock reporter.
type Reporter interface {
	DatasetStarted(ds etl.Dataset)
	DatasetFinished(ds etl.Dataset, result *etl.SyncResult)
	BatchFinished(summary *etl.BatchSummary)
}

// LogReporter emits structured log lines for each notification.
type LogReporter struct {
	Logger *slog.Logger
}

func (r *LogReporter) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *LogReporter) DatasetStarted(ds etl.Dataset) {
	r.logger().Info("fetching dataset", "dataset", ds.Name, "id", ds.ID, "url", ds.URL)
}

func (r *LogReporter) DatasetFinished(ds etl.Dataset, result *etl.SyncResult) {
	log := r.logger()
	if result.Err != nil {
		log.Error("dataset failed",
			"dataset", ds.Name, "id", ds.ID,
			"error", result.Err, "duration", result.Duration)
		return
	}
	log.Info("dataset complete",
		"dataset", ds.Name, "id", ds.ID,
		"rows_read", result.RowsRead, "rows_written", result.RowsWritten,
		"duration", result.Duration)
}

func (r *LogReporter) BatchFinished(summary *etl.BatchSummary) {
	log := r.logger()
	failed := summary.Failed()
	if len(failed) == 0 {
		log.Info("batch complete", "datasets", len(summary.Results))
		return
	}
	ids := make([]string, len(failed))
	for i, f := range failed {
		ids[i] = f.DatasetID
	}
	log.Warn("batch finished with failures",
		"datasets", len(summary.Results), "failed", ids)
}

// MockReporter is a test-friendly Reporter that records all calls.
type MockReporter struct {
	mu       sync.Mutex
	Started  []string
	Finished []*etl.SyncResult
	Batches  []*etl.BatchSummary
}

func (m *MockReporter) DatasetStarted(ds etl.Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = append(m.Started, ds.ID)
}

func (m *MockReporter) DatasetFinished(_ etl.Dataset, result *etl.SyncResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Finished = append(m.Finished, result)
}

func (m *MockReporter) BatchFinished(summary *etl.BatchSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, summary)
}
