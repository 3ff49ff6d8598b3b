// Package cache implements a content-aware file cache: an in-memory layer
// in front of the local filesystem that serves reads and writes out of RAM
// and writes dirty buffers back to disk on flush, close, and eviction.
//
// # Scoring
//
// Eviction is not plain LRU. Every entry carries a priority score in [0,1]
// combining four signals:
//
//	type     0.30  per-extension table (config files high, binaries low)
//	size     0.20  small files score 1.0, large files sink
//	access   0.30  log-scaled access count
//	recency  0.20  exponential decay over ~1h since last access
//
// The eviction selector drops the lowest-scoring entry; exact ties fall
// back to the least recently touched path in the LRU index.
//
// # Concurrency
//
// One mutex guards the whole engine: entry map, LRU index, counters,
// priority table, and both size fields. Engine operations hold it for
// their full duration, including whole-file disk I/O on the load path.
// Handle reads, writes, and seeks run without the engine lock; a write
// that grows its buffer reacquires it, as does handle close. A single
// handle is not goroutine-safe, and one path must not be opened for
// writing concurrently.
//
// # Bound
//
// The configured capacity is a soft bound: when eviction cannot free
// enough room (one oversized write on an otherwise empty cache), the bound
// is raised so the operation completes, and a warning is logged.
package cache
