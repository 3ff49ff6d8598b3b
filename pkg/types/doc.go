// Package types holds the shared statistics types exposed by the cache
// engine and the metrics layer.
package types
