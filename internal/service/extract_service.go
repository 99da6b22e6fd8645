package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
	"github.com/landlordmapper/ilsos-downloader/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Extract Service — batch orchestration for dataset pipelines
// ─────────────────────────────────────────────────────────────

// Runner executes one dataset's pipeline. Satisfied by *etl.Engine;
// tests substitute a fake.
type Runner interface {
	RunDataset(ctx context.Context, ds etl.Dataset) *etl.SyncResult
}

// ExtractService runs dataset pipelines with per-dataset isolation: a
// failing dataset is reported and recorded, never aborting the rest of
// the batch. It also owns the optional cron and archive-drop triggers.
type ExtractService struct {
	engine      Runner
	store       *storage.RunStore // nil disables the run ledger
	reporter    Reporter
	datasets    []etl.Dataset
	concurrency int

	running runningDatasetsGuard

	// trigger lifecycle
	cronSched   *cron.Cron
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
}

// NewExtractService creates an ExtractService ready for use.
func NewExtractService(
	engine Runner,
	store *storage.RunStore,
	reporter Reporter,
	datasets []etl.Dataset,
	concurrency int,
) *ExtractService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ExtractService{
		engine:      engine,
		store:       store,
		reporter:    reporter,
		datasets:    datasets,
		concurrency: concurrency,
	}
}

// ── Batch ──────────────────────────────────────────────────

// RunBatch runs every configured dataset's pipeline, at most
// concurrency at a time, and returns the per-dataset results as a
// first-class summary. Each pipeline is fully independent; failures
// land in the summary instead of stopping the batch.
func (s *ExtractService) RunBatch(ctx context.Context) *etl.BatchSummary {
	startedAt := time.Now()
	results := make([]etl.SyncResult, len(s.datasets))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ds := range s.datasets {
		i, ds := i, ds
		g.Go(func() error {
			results[i] = *s.runDataset(ctx, ds)
			return nil
		})
	}
	g.Wait()

	summary := &etl.BatchSummary{Results: results}
	s.reporter.BatchFinished(summary)

	if s.store != nil {
		if _, err := s.store.RecordBatch(summary, startedAt, time.Now()); err != nil {
			slog.Warn("failed to record batch in run ledger", "error", err)
		}
	}
	return summary
}

// RunDatasetByID runs a single dataset's pipeline and records it as a
// standalone run. Used by the archive-drop watcher.
func (s *ExtractService) RunDatasetByID(ctx context.Context, id string) (*etl.SyncResult, error) {
	ds, err := etl.DatasetByID(id)
	if err != nil {
		return nil, err
	}

	result := s.runDataset(ctx, ds)

	if s.store != nil {
		run := &storage.RunLog{
			DatasetID:   result.DatasetID,
			StartedAt:   result.StartedAt,
			FinishedAt:  result.StartedAt.Add(result.Duration),
			Status:      result.Status,
			RowsRead:    result.RowsRead,
			RowsWritten: result.RowsWritten,
			Error:       result.ErrorMessage(),
		}
		if err := s.store.CreateRun(run); err != nil {
			slog.Warn("failed to record run in ledger", "id", id, "error", err)
		}
	}
	return result, nil
}

func (s *ExtractService) runDataset(ctx context.Context, ds etl.Dataset) *etl.SyncResult {
	// Prevent concurrent runs of the same dataset.
	if !s.running.TryLock(ds.ID) {
		return &etl.SyncResult{
			DatasetID: ds.ID,
			Status:    etl.StatusError,
			StartedAt: time.Now(),
			Err:       fmt.Errorf("dataset %s is already running", ds.ID),
		}
	}
	defer s.running.Unlock(ds.ID)

	s.reporter.DatasetStarted(ds)
	result := s.engine.RunDataset(ctx, ds)
	s.reporter.DatasetFinished(ds, result)
	return result
}

// ── Triggers (cron + archive drop) ─────────────────────────

// StartSchedule runs the full batch on a cron schedule until Stop.
func (s *ExtractService) StartSchedule(ctx context.Context, expr string) error {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		slog.Info("scheduled batch starting", "schedule", expr)
		s.RunBatch(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	c.Start()
	s.cronSched = c
	slog.Info("batch scheduled", "schedule", expr)
	return nil
}

// StartWatch watches dir for dropped {id}.zip archives and runs the
// matching dataset's pipeline. Writes are debounced so a slow copy
// triggers a single run.
func (s *ExtractService) StartWatch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", dir, err)
	}
	s.watcher = watcher

	watchCtx, cancel := context.WithCancel(context.Background())
	s.watchCancel = cancel

	go func() {
		timers := make(map[string]*time.Timer)
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				base := filepath.Base(event.Name)
				if !strings.HasSuffix(strings.ToLower(base), ".zip") {
					continue
				}
				id := strings.TrimSuffix(base, filepath.Ext(base))
				if _, err := etl.DatasetByID(id); err != nil {
					continue
				}
				if t, exists := timers[id]; exists {
					t.Stop()
				}
				timers[id] = time.AfterFunc(500*time.Millisecond, func() {
					slog.Info("archive dropped, running dataset", "id", id)
					if _, err := s.RunDatasetByID(ctx, id); err != nil {
						slog.Warn("drop-triggered run failed to start", "id", id, "error", err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("watcher error", "error", err)
			}
		}
	}()

	slog.Info("watching for dropped archives", "dir", dir)
	return nil
}

// WaitRunning blocks until all running pipelines finish or ctx is
// cancelled. Used for graceful shutdown.
func (s *ExtractService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}

// Stop tears down the cron scheduler and archive watcher.
func (s *ExtractService) Stop() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
