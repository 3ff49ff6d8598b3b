package types

import "time"

// CacheStats represents cache performance statistics.
type CacheStats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	DiskReads   uint64  `json:"disk_reads"`
	DiskWrites  uint64  `json:"disk_writes"`
	Size        int64   `json:"size"`
	Capacity    int64   `json:"capacity"`
	Entries     int     `json:"entries"`
	HitRate     float64 `json:"hit_rate"`
	Utilization float64 `json:"utilization"`
}

// ExtensionStats aggregates traffic for one file extension.
type ExtensionStats struct {
	Extension  string    `json:"extension"`
	Hits       uint64    `json:"hits"`
	Misses     uint64    `json:"misses"`
	Evictions  uint64    `json:"evictions"`
	BytesRead  int64     `json:"bytes_read"`
	LastAccess time.Time `json:"last_access"`
}
