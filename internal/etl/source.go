package etl

import (
	"context"
	"fmt"
	"sync"
)

// ── Source ──────────────────────────────────────────────────
// A Source retrieves one dataset's export and hands back its decoded
// text. Implementations live in etl/sources — one file per source type.

// SourceSpec describes a source type.
type SourceSpec struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Source is the interface every archive source must implement.
type Source interface {
	// Spec returns metadata about this source type.
	Spec() SourceSpec

	// Fetch retrieves the dataset's zip archive, extracts the single
	// .txt member, and returns its content decoded from the legacy
	// export charset. The returned text is ready for Decode.
	Fetch(ctx context.Context, ds Dataset) (string, error)
}

// ── Source registry ────────────────────────────────────────
// Compile-time registration via init() in each source file.

var (
	sourcesMu sync.RWMutex
	sources   = map[string]Source{}
)

// RegisterSource registers a source by its spec type.
// Called from init() in each source implementation file.
func RegisterSource(s Source) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sources[s.Spec().Type] = s
}

// GetSource returns a registered source by type, or an error if not found.
func GetSource(typ string) (Source, error) {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	s, ok := sources[typ]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %q", typ)
	}
	return s, nil
}

// ListSources returns the specs of all registered sources.
func ListSources() []SourceSpec {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	specs := make([]SourceSpec, 0, len(sources))
	for _, s := range sources {
		specs = append(specs, s.Spec())
	}
	return specs
}
