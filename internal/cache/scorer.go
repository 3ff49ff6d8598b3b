package cache

import (
	"math"
	"time"
)

// Subscore weights. They sum to 1.0, which together with each subscore
// lying in [0,1] keeps the combined score in [0,1].
const (
	typeWeight    = 0.30
	sizeWeight    = 0.20
	accessWeight  = 0.30
	recencyWeight = 0.20
)

const (
	// Files at or below this size get the full size subscore.
	smallFileBytes = 1024
	// Numerator of the size subscore for larger files.
	sizeScoreScale = 10240.0
	// Recency decays with this time constant, in seconds.
	recencyDecaySeconds = 3600.0

	// Priority for extensions absent from the table.
	defaultTypePriority = 0.5
)

// DefaultTypePriorities returns the built-in per-extension priority table.
// Config-like text files rank high, large binary artifacts rank low.
func DefaultTypePriorities() map[string]float64 {
	return map[string]float64{
		".txt":  0.7,
		".cfg":  0.9,
		".conf": 0.9,
		".ini":  0.9,
		".log":  0.6,
		".json": 0.8,
		".xml":  0.8,
		".cpp":  0.7,
		".h":    0.7,
		".c":    0.7,
		".py":   0.7,
		".jpg":  0.4,
		".png":  0.4,
		".pdf":  0.3,
		".exe":  0.1,
		".so":   0.1,
		".dll":  0.1,
	}
}

// scoreEntry computes the priority score of an entry at the given instant.
// Higher means keep. The function is pure: it mutates nothing.
func scoreEntry(e *entry, priorities map[string]float64, now time.Time) float64 {
	typeScore := defaultTypePriority
	if p, ok := priorities[e.meta.Extension]; ok {
		typeScore = p
	}

	sizeScore := 1.0
	if e.meta.Size > smallFileBytes {
		sizeScore = math.Min(1.0, sizeScoreScale/float64(e.meta.Size))
	}

	accessScore := 0.1 + math.Min(0.9, math.Log2(1+float64(e.stats.AccessCount))/10)

	age := now.Sub(e.stats.LastAccessed).Seconds()
	if age < 0 {
		age = 0
	}
	recencyScore := math.Exp(-age / recencyDecaySeconds)

	return typeScore*typeWeight +
		sizeScore*sizeWeight +
		accessScore*accessWeight +
		recencyScore*recencyWeight
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
