package cache

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/contentcache/contentcache/internal/metrics"
	cerrors "github.com/contentcache/contentcache/pkg/errors"
	"github.com/contentcache/contentcache/pkg/retry"
	"github.com/contentcache/contentcache/pkg/types"
)

// DefaultMaxSize is the cache bound used when none is configured.
const DefaultMaxSize = 64 * 1024 * 1024

// Bound on concurrent write-backs during an engine-wide flush.
const flushParallelism = 8

// Options configure a Cache.
type Options struct {
	// MaxSize is the cache bound in bytes. Defaults to DefaultMaxSize.
	MaxSize int64

	// TypePriorities is merged over the built-in priority table.
	// Extensions are normalised, values clamped to [0,1].
	TypePriorities map[string]float64

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics defaults to a disabled collector.
	Metrics *metrics.Collector

	// Tracker defaults to a fresh per-extension tracker.
	Tracker *metrics.Tracker

	// WriteRetry controls write-back retries; zero values take defaults.
	WriteRetry retry.Config
}

// Cache is the content-aware file cache engine. It owns every entry, the
// type-priority table, and the counters; a single mutex guards all of them.
type Cache struct {
	mu sync.Mutex

	maxSize     int64
	currentSize int64

	entries map[string]*entry
	lru     *lruIndex

	priorities map[string]float64

	hits       uint64
	misses     uint64
	diskReads  uint64
	diskWrites uint64
	evictions  uint64

	logger  *zap.Logger
	metrics *metrics.Collector
	tracker *metrics.Tracker
	retryer *retry.Retryer
}

// New creates a cache engine.
func New(opts *Options) *Cache {
	if opts == nil {
		opts = &Options{}
	}

	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	priorities := DefaultTypePriorities()
	for ext, p := range opts.TypePriorities {
		priorities[normalizeExt(ext)] = clamp01(p)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewDisabled()
	}

	tracker := opts.Tracker
	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	c := &Cache{
		maxSize:    maxSize,
		entries:    make(map[string]*entry),
		lru:        newLRUIndex(),
		priorities: priorities,
		logger:     logger,
		metrics:    collector,
		tracker:    tracker,
		retryer:    retry.New(opts.WriteRetry),
	}
	c.metrics.UpdateSize(0, maxSize)
	return c
}

// Open returns a handle over the cached contents of path. On a hit the
// existing entry is reused without disk I/O. On a miss, a mode containing
// 'w' without 'r' creates an empty entry; any other mode loads the whole
// backing file.
func (c *Cache) Open(path, mode string) (*File, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		c.hits++
		c.metrics.RecordHit()
		c.tracker.RecordHit(e.meta.Extension, e.memoryUsage())
		c.lru.touch(path)
		return newFile(c, e, m), nil
	}

	c.misses++
	c.metrics.RecordMiss()
	c.tracker.RecordMiss(normalizeExt(filepath.Ext(path)))

	if m.read {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, cerrors.NotFound(path)
			}
			return nil, cerrors.ReadFailed(path, err)
		}
	}

	if m.write && !m.read {
		return newFile(c, c.admitEmpty(path), m), nil
	}

	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return newFile(c, e, m), nil
}

// admitEmpty inserts a fresh zero-length entry for a write-mode open.
// Any prior on-disk contents are superseded at the next write-back.
func (c *Cache) admitEmpty(path string) *entry {
	now := time.Now()
	meta := FileMetadata{
		Path:         path,
		Extension:    normalizeExt(filepath.Ext(path)),
		LastModified: now,
	}
	if probed, err := probeMetadata(path); err == nil {
		meta = probed
	}
	meta.Size = 0

	e := &entry{
		meta:  meta,
		stats: AccessStats{LastAccessed: now},
	}
	c.entries[path] = e
	c.lru.touch(path)
	e.score = scoreEntry(e, c.priorities, now)
	c.metrics.UpdateEntryCount(len(c.entries))
	return e
}

// load reads the whole backing file into a new entry, evicting first if
// room is needed.
func (c *Cache) load(path string) (*entry, error) {
	meta, err := probeMetadata(path)
	if err != nil {
		return nil, cerrors.ReadFailed(path, err)
	}
	if meta.Size == 0 {
		return nil, cerrors.New(cerrors.ErrCodeEmptyFile, "backing file is empty or unreadable").
			WithPath(path).WithOperation("load")
	}

	c.makeRoom(meta.Size, "")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.ReadFailed(path, err)
	}
	// The buffer length is authoritative; the file may have changed
	// between stat and read.
	meta.Size = int64(len(data))

	now := time.Now()
	e := &entry{
		meta:  meta,
		stats: AccessStats{LastAccessed: now},
		data:  data,
	}
	c.entries[path] = e
	c.currentSize += e.memoryUsage()
	c.lru.touch(path)
	c.diskReads++
	c.metrics.RecordDiskRead(e.memoryUsage())
	e.score = scoreEntry(e, c.priorities, now)
	c.metrics.UpdateSize(c.currentSize, c.maxSize)
	c.metrics.UpdateEntryCount(len(c.entries))
	return e, nil
}

// makeRoom evicts until required extra bytes fit. When eviction cannot
// recover enough, the bound is raised so the operation still makes
// progress. exclude names an entry that must not be chosen as victim (the
// one currently being grown).
func (c *Cache) makeRoom(required int64, exclude string) {
	if c.currentSize+required <= c.maxSize {
		return
	}

	// Victim selection must see current recency, not cached drift.
	c.updateAllScores()

	for c.currentSize+required > c.maxSize && len(c.entries) > 0 {
		path, ok := c.victim(exclude)
		if !ok {
			break
		}
		c.evict(path)
	}

	if c.currentSize+required > c.maxSize {
		c.logger.Warn("raising cache bound to admit oversized data",
			zap.Int64("current_size", c.currentSize),
			zap.Int64("required", required),
			zap.Int64("old_max_size", c.maxSize))
		c.maxSize = c.currentSize + required
	}

	c.metrics.UpdateSize(c.currentSize, c.maxSize)
}

// victim picks the entry with the lowest score. Ties are resolved by
// walking the LRU index tail-first, so the least recently touched of the
// tied entries goes.
func (c *Cache) victim(exclude string) (string, bool) {
	lowest := math.MaxFloat64
	candidate := ""
	tied := 0

	for path, e := range c.entries {
		if path == exclude {
			continue
		}
		if e.score < lowest {
			lowest = e.score
			candidate = path
			tied = 1
		} else if e.score == lowest {
			tied++
		}
	}

	if candidate == "" {
		return "", false
	}

	if tied > 1 {
		c.lru.scanFromBack(func(path string) bool {
			if path == exclude {
				return true
			}
			if e, ok := c.entries[path]; ok && e.score == lowest {
				candidate = path
				return false
			}
			return true
		})
	}

	return candidate, true
}

// evict drops an entry, writing a dirty buffer back first so unclosed
// modifications are not lost.
func (c *Cache) evict(path string) {
	e, ok := c.entries[path]
	if !ok {
		return
	}

	if e.dirty {
		if err := c.writeFile(e); err != nil {
			c.logger.Error("write-back of dirty entry failed during eviction",
				zap.String("path", path), zap.Error(err))
		} else {
			c.diskWrites++
			c.metrics.RecordDiskWrite(e.memoryUsage())
			e.dirty = false
		}
	}

	c.lru.remove(path)
	c.currentSize -= e.memoryUsage()
	delete(c.entries, path)
	c.evictions++
	c.metrics.RecordEviction()
	c.tracker.RecordEviction(e.meta.Extension)
	c.metrics.UpdateEntryCount(len(c.entries))

	c.logger.Debug("evicted entry",
		zap.String("path", path),
		zap.Int64("size", e.memoryUsage()),
		zap.Float64("score", e.score))
}

// writeFile writes an entry's buffer to its backing path, retrying
// transient failures. Callers account the disk-write counter.
func (c *Cache) writeFile(e *entry) error {
	return c.retryer.Do(func() error {
		if err := os.WriteFile(e.meta.Path, e.data, 0o644); err != nil {
			return cerrors.WriteFailed(e.meta.Path, err)
		}
		return nil
	})
}

// Flush writes every entry's buffer to its backing path. Failures are
// collected; successful writes are counted individually.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *Cache) flushLocked() error {
	if len(c.entries) == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		emu  sync.Mutex
		errs []error
	)
	g.SetLimit(flushParallelism)

	for _, e := range c.entries {
		e := e
		g.Go(func() error {
			if err := c.writeFile(e); err != nil {
				emu.Lock()
				errs = append(errs, err)
				emu.Unlock()
				return nil
			}
			emu.Lock()
			c.diskWrites++
			c.metrics.RecordDiskWrite(e.memoryUsage())
			e.dirty = false
			emu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return multierr.Combine(errs...)
}

// Clear flushes, then drops every entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.flushLocked()

	c.entries = make(map[string]*entry)
	c.lru = newLRUIndex()
	c.currentSize = 0
	c.metrics.UpdateSize(0, c.maxSize)
	c.metrics.UpdateEntryCount(0)

	return err
}

// Resize changes the cache bound. Shrinking below the resident size evicts
// until the new bound holds.
func (c *Cache) Resize(newMax int64) {
	if newMax < 0 {
		newMax = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if newMax < c.maxSize {
		c.makeRoom(c.maxSize-newMax, "")
	}
	c.maxSize = newMax
	c.metrics.UpdateSize(c.currentSize, c.maxSize)
}

// SetTypePriority sets the priority for an extension and rescores resident
// entries of that type. The extension is normalised to leading-dot
// lowercase; the value is clamped to [0,1].
func (c *Cache) SetTypePriority(ext string, priority float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ext = normalizeExt(ext)
	priority = clamp01(priority)
	c.priorities[ext] = priority

	now := time.Now()
	for _, e := range c.entries {
		if e.meta.Extension == ext {
			e.score = scoreEntry(e, c.priorities, now)
		}
	}
}

func (c *Cache) updateAllScores() {
	now := time.Now()
	for _, e := range c.entries {
		e.score = scoreEntry(e, c.priorities, now)
	}
}

// grow extends an entry's buffer to newLen, making room first. Accounting
// only applies while the entry is still resident; a handle over an evicted
// entry keeps a private buffer.
func (c *Cache) grow(e *entry, newLen int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := newLen - int64(len(e.data))
	if delta <= 0 {
		return
	}

	resident := c.entries[e.meta.Path] == e
	if resident {
		c.makeRoom(delta, e.meta.Path)
	}

	if int64(cap(e.data)) >= newLen {
		e.data = e.data[:newLen]
	} else {
		grown := make([]byte, newLen)
		copy(grown, e.data)
		e.data = grown
	}
	e.meta.Size = newLen

	if resident {
		c.currentSize += delta
		c.metrics.UpdateSize(c.currentSize, c.maxSize)
	}
}

// closeEntry ticks access stats and rescores; called from handle close.
func (c *Cache) closeEntry(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e.stats.AccessCount++
	e.stats.LastAccessed = now
	e.score = scoreEntry(e, c.priorities, now)
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (c *Cache) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitRateLocked()
}

func (c *Cache) hitRateLocked() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// DiskReadCount returns the number of whole-file loads from disk.
func (c *Cache) DiskReadCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diskReads
}

// DiskWriteCount returns the number of successful buffer write-backs.
func (c *Cache) DiskWriteCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diskWrites
}

// Size returns the resident bytes.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// MaxSize returns the current bound.
func (c *Cache) MaxSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSize
}

// EntryCount returns the number of resident entries.
func (c *Cache) EntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := types.CacheStats{
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		DiskReads:  c.diskReads,
		DiskWrites: c.diskWrites,
		Size:       c.currentSize,
		Capacity:   c.maxSize,
		Entries:    len(c.entries),
		HitRate:    c.hitRateLocked(),
	}
	if c.maxSize > 0 {
		stats.Utilization = float64(c.currentSize) / float64(c.maxSize)
	}
	return stats
}

// ExtensionStats returns per-extension traffic, hottest first.
func (c *Cache) ExtensionStats() []types.ExtensionStats {
	return c.tracker.Snapshot()
}

// WriteStats writes the human-readable statistics block.
func (c *Cache) WriteStats(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(w, "Cache Statistics:\n")
	fmt.Fprintf(w, "  Cache Size: %d / %d bytes\n", c.currentSize, c.maxSize)
	fmt.Fprintf(w, "  Cache Entries: %d\n", len(c.entries))
	fmt.Fprintf(w, "  Cache Hits: %d\n", c.hits)
	fmt.Fprintf(w, "  Cache Misses: %d\n", c.misses)
	fmt.Fprintf(w, "  Hit Rate: %.2f%%\n", c.hitRateLocked()*100)
	fmt.Fprintf(w, "  Disk Reads: %d\n", c.diskReads)
	fmt.Fprintf(w, "  Disk Writes: %d\n", c.diskWrites)
}
