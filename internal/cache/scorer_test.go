package cache

import (
	"math"
	"testing"
	"time"
)

func testEntry(ext string, size int64, accessCount uint64, lastAccessed time.Time) *entry {
	return &entry{
		meta: FileMetadata{
			Path:      "/tmp/file" + ext,
			Extension: ext,
			Size:      size,
		},
		stats: AccessStats{
			AccessCount:  accessCount,
			LastAccessed: lastAccessed,
		},
		data: make([]byte, size),
	}
}

func TestScoreRange(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	entries := []*entry{
		testEntry(".cfg", 10, 0, now),
		testEntry(".exe", 100*1024*1024, 0, now.Add(-24*time.Hour)),
		testEntry(".txt", 1024, 1000000, now),
		testEntry("", 0, 0, now),
		testEntry(".bin", 1, 1, now.Add(-365*24*time.Hour)),
	}

	for _, e := range entries {
		score := scoreEntry(e, priorities, now)
		if score < 0 || score > 1 {
			t.Errorf("score for %s out of range: %g", e.meta.Path, score)
		}
	}
}

func TestScoreTypePriority(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	cfg := testEntry(".cfg", 512, 1, now)
	exe := testEntry(".exe", 512, 1, now)

	if scoreEntry(cfg, priorities, now) <= scoreEntry(exe, priorities, now) {
		t.Error("expected .cfg to outscore .exe at equal size and stats")
	}
}

func TestScoreUnknownExtensionDefaults(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	unknown := testEntry(".zzz", 512, 1, now)
	got := scoreEntry(unknown, priorities, now)

	want := defaultTypePriority*typeWeight +
		1.0*sizeWeight +
		(0.1+math.Min(0.9, math.Log2(2)/10))*accessWeight +
		1.0*recencyWeight

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected score %g for unknown extension, got %g", want, got)
	}
}

func TestScoreSizePenalty(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	small := testEntry(".txt", 1024, 1, now)
	large := testEntry(".txt", 1024*1024, 1, now)

	if scoreEntry(small, priorities, now) <= scoreEntry(large, priorities, now) {
		t.Error("expected the small file to outscore the large one")
	}
}

func TestScoreSizeBoundary(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	// Up to 10240 bytes the size subscore stays saturated at 1.0:
	// min(1, 10240/size) == 1 for size <= 10240.
	atBoundary := testEntry(".txt", 10240, 1, now)
	justOver := testEntry(".txt", 10241, 1, now)

	if scoreEntry(atBoundary, priorities, now) <= scoreEntry(justOver, priorities, now) {
		t.Error("expected penalty to start past 10240 bytes")
	}
}

func TestScoreAccessFrequency(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	cold := testEntry(".txt", 512, 0, now)
	hot := testEntry(".txt", 512, 100, now)

	if scoreEntry(hot, priorities, now) <= scoreEntry(cold, priorities, now) {
		t.Error("expected the frequently accessed entry to outscore the cold one")
	}
}

func TestScoreRecencyDecay(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	fresh := testEntry(".txt", 512, 1, now)
	stale := testEntry(".txt", 512, 1, now.Add(-2*time.Hour))

	if scoreEntry(fresh, priorities, now) <= scoreEntry(stale, priorities, now) {
		t.Error("expected the recently accessed entry to outscore the stale one")
	}
}

func TestScoreFutureAccessClamped(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()

	// A clock jump must not push the recency subscore above 1.
	future := testEntry(".txt", 512, 1, now.Add(time.Hour))
	score := scoreEntry(future, priorities, now)
	if score > 1 {
		t.Errorf("score exceeded 1 with future access time: %g", score)
	}
}

func TestScoreIsPure(t *testing.T) {
	now := time.Now()
	priorities := DefaultTypePriorities()
	e := testEntry(".txt", 512, 3, now)

	before := *e
	_ = scoreEntry(e, priorities, now)
	if e.stats != before.stats || e.meta != before.meta {
		t.Error("scoreEntry must not mutate the entry")
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}
