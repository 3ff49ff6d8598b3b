package cache

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileMetadata describes the backing file of a cache entry. Size tracks the
// resident buffer length, not the on-disk length.
type FileMetadata struct {
	Path         string
	Extension    string // lowercase, leading dot
	Size         int64
	LastModified time.Time
}

// AccessStats tracks how often and how recently an entry is used. The
// counter ticks on handle close, not on individual reads.
type AccessStats struct {
	AccessCount  uint64
	LastAccessed time.Time
}

// entry is the unit of storage: one file's metadata, buffer, stats, and
// cached priority score. Entries are owned exclusively by the Cache; file
// handles borrow them until closed.
type entry struct {
	meta  FileMetadata
	stats AccessStats
	data  []byte
	score float64
	dirty bool
}

func (e *entry) memoryUsage() int64 {
	return int64(len(e.data))
}

// probeMetadata reads path, extension, size, and mtime of a backing file.
func probeMetadata(path string) (FileMetadata, error) {
	meta := FileMetadata{
		Path:      path,
		Extension: normalizeExt(filepath.Ext(path)),
	}

	info, err := os.Stat(path)
	if err != nil {
		return meta, err
	}

	meta.Size = info.Size()
	meta.LastModified = info.ModTime()
	return meta, nil
}

// normalizeExt lowercases an extension and ensures the leading dot.
func normalizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}
