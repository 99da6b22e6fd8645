package service

import (
	"context"
	"sync"
)

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runningDatasetsGuard

// ─────────────────────────────────────────────────────────────
// runningDatasetsGuard — prevents concurrent runs of one dataset
// ─────────────────────────────────────────────────────────────

// runningDatasetsGuard ensures only one pipeline per dataset ID runs at
// a time. Distinct datasets run freely in parallel; the core holds no
// cross-dataset state.
type runningDatasetsGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock attempts to mark datasetID as running. Returns false if that
// dataset's pipeline is already in flight.
func (g *runningDatasetsGuard) TryLock(datasetID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[datasetID]; ok {
		return false
	}
	g.running[datasetID] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock marks the dataset as no longer running. Must be called after
// TryLock returns true.
func (g *runningDatasetsGuard) Unlock(datasetID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, datasetID)
	g.wg.Done()
}

// WaitAll blocks until all running pipelines complete or ctx is cancelled.
func (g *runningDatasetsGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
