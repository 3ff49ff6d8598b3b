// Package metrics provides observability for the content-aware cache.
//
// Two layers cooperate:
//
//   - Collector exports Prometheus counters and gauges (lookups by outcome,
//     disk operations, evictions, resident bytes, capacity, entry count) and
//     optionally serves them over HTTP.
//   - Tracker aggregates traffic per file extension, giving the
//     content-aware view: which file types hit, miss, and get evicted.
//
// A Collector constructed with Enabled false (or via NewDisabled) is inert;
// every method is a safe no-op, so callers never need nil checks.
package metrics
