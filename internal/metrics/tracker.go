package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/contentcache/contentcache/pkg/types"
)

// Tracker aggregates cache traffic per file extension. It is the
// content-aware companion to the Prometheus collector: where the collector
// exports totals, the tracker answers "which file types are hot".
type Tracker struct {
	mu         sync.RWMutex
	extensions map[string]*types.ExtensionStats
}

// NewTracker creates an empty per-extension tracker.
func NewTracker() *Tracker {
	return &Tracker{
		extensions: make(map[string]*types.ExtensionStats),
	}
}

func (t *Tracker) stats(ext string) *types.ExtensionStats {
	s, ok := t.extensions[ext]
	if !ok {
		s = &types.ExtensionStats{Extension: ext}
		t.extensions[ext] = s
	}
	return s
}

// RecordHit records a hit for an extension.
func (t *Tracker) RecordHit(ext string, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats(ext)
	s.Hits++
	s.BytesRead += bytes
	s.LastAccess = time.Now()
}

// RecordMiss records a miss for an extension.
func (t *Tracker) RecordMiss(ext string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats(ext)
	s.Misses++
	s.LastAccess = time.Now()
}

// RecordEviction records an eviction for an extension.
func (t *Tracker) RecordEviction(ext string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats(ext).Evictions++
}

// Snapshot returns per-extension stats ordered by hits descending.
func (t *Tracker) Snapshot() []types.ExtensionStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]types.ExtensionStats, 0, len(t.extensions))
	for _, s := range t.extensions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}
		return out[i].Extension < out[j].Extension
	})
	return out
}

// Reset drops all accumulated stats.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.extensions = make(map[string]*types.ExtensionStats)
}
