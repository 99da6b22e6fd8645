package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
)

// ── Local directory source ──────────────────────────────────
// Reads {id}.zip from a local drop directory. Used for offline runs and
// by the archive-drop watcher, where archives are downloaded out of
// band and placed on disk.

type localDirSource struct {
	mu  sync.RWMutex
	dir string
}

func init() {
	etl.RegisterSource(&localDirSource{dir: "drop"})
}

// SetDropDir points the registered local source at a drop directory.
// Called by the app at startup.
func SetDropDir(dir string) {
	s, err := etl.GetSource("localdir")
	if err != nil {
		return
	}
	ls := s.(*localDirSource)
	ls.mu.Lock()
	ls.dir = dir
	ls.mu.Unlock()
}

func (s *localDirSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{Type: "localdir", Label: "Local archive directory"}
}

func (s *localDirSource) Fetch(ctx context.Context, ds etl.Dataset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()

	path := filepath.Join(dir, ds.ID+".zip")
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read archive %s: %w", path, err)
	}
	return extractArchiveText(raw)
}
